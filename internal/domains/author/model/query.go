package model

import (
	"net/url"
	"strings"

	"catalog-api/internal/shared/filter"
)

// AuthorOrderingFields are the values accepted by ?ordering= on /authors.
var AuthorOrderingFields = []string{"name", "email", "created_at"}

// ListAuthorsRequest - query parameters of GET /authors
type ListAuthorsRequest struct {
	Search   string
	Ordering filter.Ordering
}

func (r ListAuthorsRequest) CacheKey() string {
	v := url.Values{}
	if terms := filter.SearchTerms(r.Search); len(terms) > 0 {
		v.Set("search", strings.Join(terms, " "))
	}
	if len(r.Ordering) > 0 {
		v.Set("ordering", r.Ordering.String())
	}
	return v.Encode()
}
