package dto

import "github.com/hongminglow/orgs-be/internal/models"

type CreateOrganisationRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

type AddMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type OrganisationList struct {
	Organisations []models.Organisation `json:"organisations"`
}
