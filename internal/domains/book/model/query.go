package model

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"catalog-api/internal/shared/filter"
)

// BookOrderingFields are the values accepted by ?ordering= on /books.
var BookOrderingFields = []string{"title", "price", "created_at"}

// ListBooksRequest - query parameters of GET /books
type ListBooksRequest struct {
	AuthorID    *int64
	CategoryIDs []int64
	Search      string
	Ordering    filter.Ordering
}

// CacheKey identifies the result set: equivalent requests share a key.
func (r ListBooksRequest) CacheKey() string {
	v := url.Values{}
	if r.AuthorID != nil {
		v.Set("author", strconv.FormatInt(*r.AuthorID, 10))
	}
	if len(r.CategoryIDs) > 0 {
		ids := append([]int64(nil), r.CategoryIDs...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for i, id := range ids {
			if i > 0 && id == ids[i-1] {
				continue
			}
			v.Add("categories", strconv.FormatInt(id, 10))
		}
	}
	if terms := filter.SearchTerms(r.Search); len(terms) > 0 {
		v.Set("search", strings.Join(terms, " "))
	}
	if len(r.Ordering) > 0 {
		v.Set("ordering", r.Ordering.String())
	}
	return v.Encode()
}
