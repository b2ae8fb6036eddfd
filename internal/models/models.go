package models

import (
	"errors"
	"fmt"
	"strings"
)

// Dog is a single adoptable dog as returned by the remote service.
type Dog struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Breed   string `json:"breed"`
	Age     int    `json:"age"`
	ZipCode string `json:"zip_code"`
	Img     string `json:"img"`
}

// SortField is the dog attribute search results are ordered by.
type SortField string

const (
	SortByBreed SortField = "breed"
	SortByName  SortField = "name"
	SortByAge   SortField = "age"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort is a field plus direction, serialized as "<field>:<order>".
type Sort struct {
	Field SortField
	Order SortOrder
}

// DefaultSort is applied when the caller never chooses one.
var DefaultSort = Sort{Field: SortByBreed, Order: SortAsc}

// ErrInvalidSort is returned by ParseSort for anything but field:order.
var ErrInvalidSort = errors.New("invalid sort")

// String renders the sort as the service expects it, e.g. "breed:asc".
func (s Sort) String() string {
	return string(s.Field) + ":" + string(s.Order)
}

// Valid reports whether both parts of the sort are known values.
func (s Sort) Valid() bool {
	switch s.Field {
	case SortByBreed, SortByName, SortByAge:
	default:
		return false
	}

	return s.Order == SortAsc || s.Order == SortDesc
}

// ParseSort parses "<field>:<order>". An empty string yields DefaultSort.
func ParseSort(raw string) (Sort, error) {
	if raw == "" {
		return DefaultSort, nil
	}

	field, order, found := strings.Cut(raw, ":")
	if !found {
		return Sort{}, fmt.Errorf("%w: %q", ErrInvalidSort, raw)
	}

	sort := Sort{Field: SortField(field), Order: SortOrder(order)}
	if !sort.Valid() {
		return Sort{}, fmt.Errorf("%w: %q", ErrInvalidSort, raw)
	}

	return sort, nil
}

// SearchParams is the query for GET /dogs/search. Nil pointers and empty
// slices are left out of the query string.
type SearchParams struct {
	Breeds   []string
	ZipCodes []string
	AgeMin   *int
	AgeMax   *int
	Size     *int
	From     *int
	Sort     string
}

// SearchResults is one page of dog ids.
type SearchResults struct {
	ResultIDs []string `json:"resultIds"`
	Total     int      `json:"total"`
	Next      *string  `json:"next,omitempty"`
	Prev      *string  `json:"prev,omitempty"`
}

// HasNext reports whether the service advertised a next page.
func (r *SearchResults) HasNext() bool {
	return r != nil && r.Next != nil
}

// HasPrev reports whether the service advertised a previous page.
func (r *SearchResults) HasPrev() bool {
	return r != nil && r.Prev != nil
}

// Match is the id the service picked among the submitted candidates.
type Match struct {
	Match string `json:"match"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeRedis
	StorageTypeBolt
	StorageTypeFile
	StorageTypeMemory
)

// Ptr returns a pointer to v. It is handy for the optional numeric fields
// of SearchParams and LocationSearchParams.
func Ptr[T any](v T) *T {
	return &v
}
