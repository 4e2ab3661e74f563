package models

import "time"

// Membership links one user to one organisation.
type Membership struct {
	UserID    string    `json:"userId"`
	OrgID     string    `json:"orgId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
