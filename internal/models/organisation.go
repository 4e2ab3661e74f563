package models

import "time"

// Organisation is a tenant that users join through memberships.
type Organisation struct {
	ID          string    `json:"orgId"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
