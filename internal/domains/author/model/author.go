package model

import (
	"time"

	bookmodel "catalog-api/internal/domains/book/model"

	"github.com/shopspring/decimal"
)

const (
	MinNameLength  = 2
	MaxNameLength  = 200
	MaxEmailLength = 254
)

// Author owns zero or more books. Books holds id, title, isbn, price and
// created_at of each book, newest first.
type Author struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Bio       string    `json:"bio" db:"bio"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Books []bookmodel.Book `json:"books"`
}

func (a *Author) BookCount() int {
	return len(a.Books)
}

// Statistics are aggregates over the author's books.
type Statistics struct {
	TotalBooks      int
	TotalCategories int
	AveragePrice    decimal.Decimal
	LatestBook      *string
}
