package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney renders a monetary value with exactly two decimals.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(PriceScale)
}

// FormatPriceDisplay renders a price for humans, e.g. "$12.50".
func FormatPriceDisplay(d decimal.Decimal) string {
	return "$" + FormatMoney(d)
}

// BookListResponse is the compact book representation used by every listing.
type BookListResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	ISBN         string `json:"isbn"`
	Price        string `json:"price"`
	PriceDisplay string `json:"price_display"`
	AuthorName   string `json:"author_name"`
}

// BookDetailResponse - GET /api/v1/books/:id
type BookDetailResponse struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	ISBN         string        `json:"isbn"`
	Price        string        `json:"price"`
	PriceDisplay string        `json:"price_display"`
	Author       AuthorRef     `json:"author"`
	Categories   []CategoryRef `json:"categories"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// BookSummary is a book as embedded in author payloads.
type BookSummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	ISBN  string `json:"isbn"`
	Price string `json:"price"`
}

func (b *Book) ToListResponse() BookListResponse {
	return BookListResponse{
		ID:           b.ID,
		Title:        b.Title,
		ISBN:         b.ISBN,
		Price:        FormatMoney(b.Price),
		PriceDisplay: FormatPriceDisplay(b.Price),
		AuthorName:   b.Author.Name,
	}
}

func (b *Book) ToDetailResponse() BookDetailResponse {
	categories := b.Categories
	if categories == nil {
		categories = []CategoryRef{}
	}
	return BookDetailResponse{
		ID:           b.ID,
		Title:        b.Title,
		ISBN:         b.ISBN,
		Price:        FormatMoney(b.Price),
		PriceDisplay: FormatPriceDisplay(b.Price),
		Author:       b.Author,
		Categories:   categories,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func (b *Book) ToSummary() BookSummary {
	return BookSummary{
		ID:    b.ID,
		Title: b.Title,
		ISBN:  b.ISBN,
		Price: FormatMoney(b.Price),
	}
}

// ToListResponses maps books in order.
func ToListResponses(books []*Book) []BookListResponse {
	out := make([]BookListResponse, 0, len(books))
	for _, b := range books {
		out = append(out, b.ToListResponse())
	}
	return out
}
