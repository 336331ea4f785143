package model

import (
	"strings"

	"catalog-api/internal/shared/apperror"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	msgNameLength        = "Category name must be at least 2 characters long."
	msgNameTooLong       = "Ensure this field has no more than 100 characters."
	msgDescriptionLength = "Description must be at least 10 characters long."
)

// CreateCategoryRequest - POST /api/v1/categories
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r *CreateCategoryRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
}

func (r CreateCategoryRequest) Validate() error {
	return apperror.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Name, nameRules()...),
		validation.Field(&r.Description, descriptionRules()...),
	))
}

// UpdateCategoryRequest - PUT/PATCH /api/v1/categories/:id
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (r *UpdateCategoryRequest) Normalize() {
	if r.Name != nil {
		s := strings.TrimSpace(*r.Name)
		r.Name = &s
	}
	if r.Description != nil {
		s := strings.TrimSpace(*r.Description)
		r.Description = &s
	}
}

func (r UpdateCategoryRequest) Validate() error {
	return apperror.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.When(r.Name != nil, nameRules()...)),
		validation.Field(&r.Description, validation.When(r.Description != nil, descriptionRules()...)),
	))
}

func (r *UpdateCategoryRequest) Apply(c *Category) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Description != nil {
		c.Description = *r.Description
	}
}

func nameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(msgNameLength),
		validation.RuneLength(MinNameLength, 0).Error(msgNameLength),
		validation.RuneLength(0, MaxNameLength).Error(msgNameTooLong),
	}
}

// An empty description is allowed; RuneLength skips empty values.
func descriptionRules() []validation.Rule {
	return []validation.Rule{
		validation.RuneLength(MinDescriptionLength, 0).Error(msgDescriptionLength),
	}
}
