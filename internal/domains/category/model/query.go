package model

import (
	"net/url"
	"strings"

	"catalog-api/internal/shared/filter"
)

// CategoryOrderingFields are the values accepted by ?ordering= on /categories.
var CategoryOrderingFields = []string{"name", "created_at"}

// ListCategoriesRequest - query parameters of GET /categories
type ListCategoriesRequest struct {
	Search   string
	Ordering filter.Ordering
}

func (r ListCategoriesRequest) CacheKey() string {
	v := url.Values{}
	if terms := filter.SearchTerms(r.Search); len(terms) > 0 {
		v.Set("search", strings.Join(terms, " "))
	}
	if len(r.Ordering) > 0 {
		v.Set("ordering", r.Ordering.String())
	}
	return v.Encode()
}
