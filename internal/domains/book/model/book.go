package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ISBNLength     = 13
	MaxTitleLength = 200
	PriceScale     = 2
	// NUMERIC(10,2) leaves eight digits before the decimal point.
	MaxPriceDigits = 10
)

// Book is the catalog entry. Author is always set when loaded by a
// repository; Categories is nil until categories are attached.
type Book struct {
	ID       int64           `json:"id" db:"id"`
	Title    string          `json:"title" db:"title"`
	ISBN     string          `json:"isbn" db:"isbn"`
	Price    decimal.Decimal `json:"price" db:"price"`
	AuthorID int64           `json:"author_id" db:"author_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined data
	Author     AuthorRef     `json:"author"`
	Categories []CategoryRef `json:"categories"`
}

// AuthorRef is the author as embedded in book payloads.
type AuthorRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CategoryRef is a category as embedded in book payloads.
type CategoryRef struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HasCategory reports whether categoryID is attached to the book.
func (b *Book) HasCategory(categoryID int64) bool {
	for _, c := range b.Categories {
		if c.ID == categoryID {
			return true
		}
	}
	return false
}
