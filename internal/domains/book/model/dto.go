package model

import (
	"strings"

	"catalog-api/internal/shared/apperror"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

const (
	msgRequired     = "This field is required."
	msgISBNLength   = "ISBN must be 13 characters long"
	msgPricePositiv = "Price must be greater than zero"
	msgPriceScale   = "Ensure that there are no more than 2 decimal places."
	msgPriceDigits  = "Ensure that there are no more than 10 digits in total."
	msgTitleLength  = "Ensure this field has no more than 200 characters."
)

var maxPrice = decimal.New(1, MaxPriceDigits-PriceScale)

// CreateBookRequest - POST /api/v1/books
type CreateBookRequest struct {
	Title       string           `json:"title"`
	ISBN        string           `json:"isbn"`
	Price       *decimal.Decimal `json:"price"`
	AuthorID    int64            `json:"author_id"`
	CategoryIDs []int64          `json:"category_ids"`
}

// Normalize trims the free-text fields.
func (r *CreateBookRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.ISBN = strings.TrimSpace(r.ISBN)
}

func (r CreateBookRequest) Validate() error {
	return apperror.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error(msgRequired),
			validation.RuneLength(1, MaxTitleLength).Error(msgTitleLength),
		),
		validation.Field(&r.ISBN,
			validation.Required.Error(msgRequired),
			validation.RuneLength(ISBNLength, ISBNLength).Error(msgISBNLength),
		),
		validation.Field(&r.Price,
			validation.NotNil.Error(msgRequired),
			validation.By(validatePrice),
		),
		validation.Field(&r.AuthorID, validation.Required.Error(msgRequired)),
	))
}

// UpdateBookRequest - PUT/PATCH /api/v1/books/:id
// Nil fields are left untouched. CategoryIDs distinguishes "absent" (nil)
// from "present and empty", which clears every category.
type UpdateBookRequest struct {
	Title       *string          `json:"title,omitempty"`
	ISBN        *string          `json:"isbn,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	AuthorID    *int64           `json:"author_id,omitempty"`
	CategoryIDs *[]int64         `json:"category_ids,omitempty"`
}

func (r *UpdateBookRequest) Normalize() {
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		r.Title = &t
	}
	if r.ISBN != nil {
		s := strings.TrimSpace(*r.ISBN)
		r.ISBN = &s
	}
}

func (r UpdateBookRequest) Validate() error {
	return apperror.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.When(r.Title != nil,
				validation.Required.Error(msgRequired),
				validation.RuneLength(1, MaxTitleLength).Error(msgTitleLength),
			),
		),
		validation.Field(&r.ISBN,
			validation.When(r.ISBN != nil,
				validation.Required.Error(msgRequired),
				validation.RuneLength(ISBNLength, ISBNLength).Error(msgISBNLength),
			),
		),
		validation.Field(&r.Price, validation.By(validatePrice)),
		validation.Field(&r.AuthorID,
			validation.When(r.AuthorID != nil, validation.Required.Error(msgRequired)),
		),
	))
}

// Apply copies the scalar fields present in r onto b. Author and category
// changes go through the repository.
func (r *UpdateBookRequest) Apply(b *Book) {
	if r.Title != nil {
		b.Title = *r.Title
	}
	if r.ISBN != nil {
		b.ISBN = *r.ISBN
	}
	if r.Price != nil {
		b.Price = *r.Price
	}
	if r.AuthorID != nil {
		b.AuthorID = *r.AuthorID
	}
}

// CategoryActionRequest - POST /api/v1/books/:id/add_category and remove_category
type CategoryActionRequest struct {
	CategoryID int64 `json:"category_id"`
}

func (r CategoryActionRequest) Validate() error {
	return apperror.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.CategoryID, validation.Required.Error("category_id is required")),
	))
}

func validatePrice(value interface{}) error {
	var p decimal.Decimal
	switch v := value.(type) {
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		p = *v
	case decimal.Decimal:
		p = v
	default:
		return nil
	}

	if !p.IsPositive() {
		return validation.NewError("price_not_positive", msgPricePositiv)
	}
	if !p.Equal(p.Truncate(PriceScale)) {
		return validation.NewError("price_max_decimal_places", msgPriceScale)
	}
	if p.GreaterThanOrEqual(maxPrice) {
		return validation.NewError("price_max_digits", msgPriceDigits)
	}
	return nil
}
