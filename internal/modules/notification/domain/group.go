package domain

import "context"

// GroupRecipients is the part of a group the producers need.
type GroupRecipients struct {
	ID         string
	Name       string
	StudentIDs []string
}

// GroupFinder loads a group's recipients. It returns nil, nil when the group does not exist.
type GroupFinder interface {
	FindRecipients(ctx context.Context, groupID string) (*GroupRecipients, error)
}

// Meeting is a scheduled group meeting as reported by the conferencing provider.
type Meeting struct {
	ID        string `json:"id"`
	Topic     string `json:"topic,omitempty"`
	JoinURL   string `json:"join_url"`
	StartTime string `json:"start_time"`
}
