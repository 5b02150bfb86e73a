package domain

import "errors"

// RecipientResult is the outcome of one Create call in a fan-out.
type RecipientResult struct {
	UserID       string
	Notification *Notification
	Err          error
}

// BatchResult holds one result per recipient, in the order recipients were given.
type BatchResult struct {
	Results []RecipientResult
}

func (b BatchResult) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

func (b BatchResult) Failed() int {
	return len(b.Results) - b.Succeeded()
}

// Err joins every recipient error, or returns nil when all succeeded.
func (b BatchResult) Err() error {
	var errs []error
	for _, r := range b.Results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}
