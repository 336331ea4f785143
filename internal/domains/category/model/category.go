package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinNameLength        = 2
	MaxNameLength        = 100
	MinDescriptionLength = 10

	DefaultPopularLimit = 10
)

// Category groups books. Books holds the titles of the assigned books,
// newest first.
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Books []BookRef `json:"books"`
}

// BookRef is the part of a book a category payload shows.
type BookRef struct {
	ID    int64
	Title string
}

func (c *Category) BookCount() int {
	return len(c.Books)
}

// Statistics are aggregates over the books in a category.
type Statistics struct {
	TotalBooks   int
	TotalAuthors int
	AveragePrice decimal.Decimal
	MinPrice     decimal.Decimal
	MaxPrice     decimal.Decimal
	LatestBook   *string
}
