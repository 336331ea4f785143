package model

import (
	"time"

	bookmodel "catalog-api/internal/domains/book/model"
)

// AuthorListResponse - one row of GET /api/v1/authors
type AuthorListResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	BookCount int    `json:"book_count"`
}

// AuthorDetailResponse - GET /api/v1/authors/:id
type AuthorDetailResponse struct {
	ID        int64                   `json:"id"`
	Name      string                  `json:"name"`
	Email     string                  `json:"email"`
	Bio       string                  `json:"bio"`
	Books     []bookmodel.BookSummary `json:"books"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// StatisticsResponse - GET /api/v1/authors/:id/statistics
type StatisticsResponse struct {
	TotalBooks      int     `json:"total_books"`
	TotalCategories int     `json:"total_categories"`
	AveragePrice    string  `json:"average_price"`
	LatestBook      *string `json:"latest_book"`
}

func (a *Author) ToListResponse() AuthorListResponse {
	return AuthorListResponse{
		ID:        a.ID,
		Name:      a.Name,
		FullName:  a.Name + " (" + a.Email + ")",
		Email:     a.Email,
		BookCount: a.BookCount(),
	}
}

func (a *Author) ToDetailResponse() AuthorDetailResponse {
	books := make([]bookmodel.BookSummary, 0, len(a.Books))
	for i := range a.Books {
		books = append(books, a.Books[i].ToSummary())
	}
	return AuthorDetailResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Bio:       a.Bio,
		Books:     books,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (s *Statistics) ToResponse() StatisticsResponse {
	return StatisticsResponse{
		TotalBooks:      s.TotalBooks,
		TotalCategories: s.TotalCategories,
		AveragePrice:    bookmodel.FormatMoney(s.AveragePrice),
		LatestBook:      s.LatestBook,
	}
}
