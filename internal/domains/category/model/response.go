package model

import (
	"time"

	bookmodel "catalog-api/internal/domains/book/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CategoryListResponse - one row of GET /api/v1/categories
type CategoryListResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	NameDisplay string `json:"name_display"`
	BookCount   int    `json:"book_count"`
}

// CategoryDetailResponse - GET /api/v1/categories/:id
type CategoryDetailResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	NameDisplay string    `json:"name_display"`
	Description string    `json:"description"`
	Books       []string  `json:"books"`
	BookCount   int       `json:"book_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PriceRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// StatisticsResponse - GET /api/v1/categories/:id/statistics
type StatisticsResponse struct {
	TotalBooks   int        `json:"total_books"`
	TotalAuthors int        `json:"total_authors"`
	AveragePrice string     `json:"average_price"`
	PriceRange   PriceRange `json:"price_range"`
	LatestBook   *string    `json:"latest_book"`
}

// DisplayName title-cases a category name ("science fiction" -> "Science Fiction").
func DisplayName(name string) string {
	return cases.Title(language.Und).String(name)
}

func (c *Category) ToListResponse() CategoryListResponse {
	return CategoryListResponse{
		ID:          c.ID,
		Name:        c.Name,
		NameDisplay: DisplayName(c.Name),
		BookCount:   c.BookCount(),
	}
}

func (c *Category) ToDetailResponse() CategoryDetailResponse {
	titles := make([]string, 0, len(c.Books))
	for _, b := range c.Books {
		titles = append(titles, b.Title)
	}
	return CategoryDetailResponse{
		ID:          c.ID,
		Name:        c.Name,
		NameDisplay: DisplayName(c.Name),
		Description: c.Description,
		Books:       titles,
		BookCount:   c.BookCount(),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ToListResponses(categories []*Category) []CategoryListResponse {
	out := make([]CategoryListResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.ToListResponse())
	}
	return out
}

func (s *Statistics) ToResponse() StatisticsResponse {
	return StatisticsResponse{
		TotalBooks:   s.TotalBooks,
		TotalAuthors: s.TotalAuthors,
		AveragePrice: bookmodel.FormatMoney(s.AveragePrice),
		PriceRange: PriceRange{
			Min: bookmodel.FormatMoney(s.MinPrice),
			Max: bookmodel.FormatMoney(s.MaxPrice),
		},
		LatestBook: s.LatestBook,
	}
}
