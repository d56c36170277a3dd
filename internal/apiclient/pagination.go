// internal/apiclient/pagination.go
package apiclient

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
)

// Pagination is the single internal pagination shape.
type Pagination struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	Total           int64 `json:"total"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// RawPagination accepts both the nested shape
// {currentPage,totalPages,totalItems,itemsPerPage,hasNextPage,hasPreviousPage}
// and the legacy flat shape {page,limit,total,pages}.
type RawPagination struct {
	CurrentPage     *int   `json:"currentPage,omitempty"`
	TotalPages      *int   `json:"totalPages,omitempty"`
	TotalItems      *int64 `json:"totalItems,omitempty"`
	ItemsPerPage    *int   `json:"itemsPerPage,omitempty"`
	HasNextPage     *bool  `json:"hasNextPage,omitempty"`
	HasPreviousPage *bool  `json:"hasPreviousPage,omitempty"`

	Page  *int   `json:"page,omitempty"`
	Limit *int   `json:"limit,omitempty"`
	Total *int64 `json:"total,omitempty"`
	Pages *int   `json:"pages,omitempty"`
}

func (r *RawPagination) empty() bool {
	return r == nil ||
		r.CurrentPage == nil && r.TotalPages == nil && r.TotalItems == nil && r.ItemsPerPage == nil &&
			r.Page == nil && r.Limit == nil && r.Total == nil && r.Pages == nil
}

type rawPageData struct {
	Items      json.RawMessage `json:"items"`
	Pagination *RawPagination  `json:"pagination"`
	RawPagination
}

// NormalizePagination maps either pagination shape onto Pagination. A
// missing pagination means everything fits in one page.
func NormalizePagination(raw *RawPagination, itemCount int) Pagination {
	if raw.empty() {
		return Pagination{
			Page:       1,
			Limit:      itemCount,
			Total:      int64(itemCount),
			TotalPages: 1,
		}
	}

	p := Pagination{
		Page:  firstInt(1, raw.CurrentPage, raw.Page),
		Limit: firstInt(itemCount, raw.ItemsPerPage, raw.Limit),
		Total: int64(itemCount),
	}
	if raw.TotalItems != nil {
		p.Total = *raw.TotalItems
	} else if raw.Total != nil {
		p.Total = *raw.Total
	}

	computed := 1
	if p.Limit > 0 {
		computed = int(math.Ceil(float64(p.Total) / float64(p.Limit)))
	}
	p.TotalPages = firstInt(computed, raw.TotalPages, raw.Pages)

	if p.Page < 1 {
		p.Page = 1
	}
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}

	if raw.HasNextPage != nil {
		p.HasNextPage = *raw.HasNextPage
	} else {
		p.HasNextPage = p.Page < p.TotalPages
	}
	if raw.HasPreviousPage != nil {
		p.HasPreviousPage = *raw.HasPreviousPage
	} else {
		p.HasPreviousPage = p.Page > 1
	}

	return p
}

func firstInt(fallback int, candidates ...*int) int {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return fallback
}

// decodePageData accepts a bare array or an object carrying items plus
// nested or flat pagination.
func decodePageData[T any](data json.RawMessage) (Page[T], error) {
	var page Page[T]
	if len(data) == 0 || string(data) == "null" {
		page.Items = []T{}
		page.Pagination = NormalizePagination(nil, 0)
		return page, nil
	}

	if data[0] == '[' {
		if err := json.Unmarshal(data, &page.Items); err != nil {
			return page, err
		}
		page.Pagination = NormalizePagination(nil, len(page.Items))
		return page, nil
	}

	var raw rawPageData
	if err := json.Unmarshal(data, &raw); err != nil {
		return page, err
	}
	if len(raw.Items) > 0 && string(raw.Items) != "null" {
		if err := json.Unmarshal(raw.Items, &page.Items); err != nil {
			return page, err
		}
	}
	if page.Items == nil {
		page.Items = []T{}
	}

	source := raw.Pagination
	if source.empty() {
		source = &raw.RawPagination
	}
	page.Pagination = NormalizePagination(source, len(page.Items))
	return page, nil
}

func getPage[T any](ctx context.Context, c *Client, path string, query url.Values, token string) (Page[T], error) {
	var data json.RawMessage
	if err := c.call(ctx, http.MethodGet, path, query, token, nil, &data); err != nil {
		return Page[T]{}, err
	}

	page, err := decodePageData[T](data)
	if err != nil {
		return Page[T]{}, &Error{Kind: KindServer, Status: http.StatusOK, Message: "formato de lista inesperado", Err: err}
	}
	return page, nil
}
