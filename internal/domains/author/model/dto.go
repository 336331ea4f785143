package model

import (
	"errors"
	"strings"

	"catalog-api/internal/shared/apperror"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	msgNameLength   = "Author name must be at least 2 characters long."
	msgNameTooLong  = "Ensure this field has no more than 200 characters."
	msgEmailInvalid = "Please enter a valid email address."
)

// CreateAuthorRequest - POST /api/v1/authors
type CreateAuthorRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Bio   string `json:"bio"`
}

func (r *CreateAuthorRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Bio = strings.TrimSpace(r.Bio)
}

func (r CreateAuthorRequest) Validate() error {
	return apperror.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error(msgNameLength),
			validation.RuneLength(MinNameLength, 0).Error(msgNameLength),
			validation.RuneLength(0, MaxNameLength).Error(msgNameTooLong),
		),
		validation.Field(&r.Email,
			validation.Required.Error(msgEmailInvalid),
			validation.By(emailRule),
			validation.RuneLength(0, MaxEmailLength).Error(msgEmailInvalid),
		),
	))
}

// UpdateAuthorRequest - PUT/PATCH /api/v1/authors/:id
// Nil fields are left untouched.
type UpdateAuthorRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Bio   *string `json:"bio,omitempty"`
}

func (r *UpdateAuthorRequest) Normalize() {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		s := strings.TrimSpace(*p)
		return &s
	}
	r.Name = trim(r.Name)
	r.Email = trim(r.Email)
	r.Bio = trim(r.Bio)
}

func (r UpdateAuthorRequest) Validate() error {
	return apperror.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.When(r.Name != nil,
				validation.Required.Error(msgNameLength),
				validation.RuneLength(MinNameLength, 0).Error(msgNameLength),
				validation.RuneLength(0, MaxNameLength).Error(msgNameTooLong),
			),
		),
		validation.Field(&r.Email,
			validation.When(r.Email != nil,
				validation.Required.Error(msgEmailInvalid),
				validation.By(emailRule),
				validation.RuneLength(0, MaxEmailLength).Error(msgEmailInvalid),
			),
		),
	))
}

// Apply copies the fields present in r onto a.
func (r *UpdateAuthorRequest) Apply(a *Author) {
	if r.Name != nil {
		a.Name = *r.Name
	}
	if r.Email != nil {
		a.Email = *r.Email
	}
	if r.Bio != nil {
		a.Bio = *r.Bio
	}
}

// emailRule only demands an "@"; uniqueness is checked by the service.
func emailRule(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return errors.New("must be a string")
	}
	if s != "" && !strings.Contains(s, "@") {
		return validation.NewError("email_invalid", msgEmailInvalid)
	}
	return nil
}
