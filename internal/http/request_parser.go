// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// maxElementIDLength bounds the element id path segment.
const maxElementIDLength = 128

// ElementRequest holds the validated parameters of a finance details request.
type ElementRequest struct {
	ID string
	// Year is zero when the latest year is requested.
	Year int
}

// ParseElementRequest extracts the element id from the path and the
// optional year from the query string.
func ParseElementRequest(r *http.Request) (ElementRequest, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := validateElementID(id); err != nil {
		return ElementRequest{}, err
	}

	req := ElementRequest{ID: id}
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y <= 0 {
			return ElementRequest{}, fmt.Errorf("invalid year %q", v)
		}
		req.Year = y
	}
	return req, nil
}

// validateElementID accepts ids made of letters, digits, '.', '-' and '_'.
func validateElementID(id string) error {
	if id == "" {
		return fmt.Errorf("missing element id")
	}
	if len(id) > maxElementIDLength {
		return fmt.Errorf("element id longer than %d characters", maxElementIDLength)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '_':
		default:
			return fmt.Errorf("invalid character %q in element id", r)
		}
	}
	return nil
}
