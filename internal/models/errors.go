package models

import (
	"errors"
	"fmt"
)

// Request validation errors
var (
	ErrInvalidDomain = errors.New("invalid domain")
	ErrEmptyMessage  = errors.New("message is required")
)

// Analysis pipeline errors
var (
	ErrPageFetch          = errors.New("failed to fetch page")
	ErrEmptyContent       = errors.New("page has no analyzable content")
	ErrNoResponse         = errors.New("no response from text generation service")
	ErrMissingCategoryKey = errors.New("response is missing the category key")
	ErrMalformedCategory  = errors.New("category value is not an object of factors")
)

// FetchStatusError is returned when a fetched URL answers with a non-2xx status.
type FetchStatusError struct {
	URL    string
	Status int
}

func (fe FetchStatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", fe.URL, fe.Status)
}
