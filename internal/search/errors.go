// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"errors"
	"fmt"
)

// ErrAPI matches every *APIError via errors.Is.
var ErrAPI = errors.New("arXiv API error")

// APIError is a failure reported by the arXiv API, either as a non-200
// status or as an error entry inside the feed.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("arXiv API returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("arXiv API returned HTTP %d: %s", e.StatusCode, e.Message)
}

// Is reports whether target is ErrAPI.
func (e *APIError) Is(target error) bool { return target == ErrAPI }
