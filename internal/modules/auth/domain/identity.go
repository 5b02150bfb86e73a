package domain

import "context"

const (
	RoleInstructor = "instructor"
	RoleStudent    = "student"
	RoleAdmin      = "admin"
)

// Identity is the authenticated caller attached to every /api request.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// TokenValidator resolves a bearer token into an Identity.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (Identity, error)
}
