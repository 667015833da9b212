// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists paper metadata in per-topic JSON stores and
// looks papers up across all of them.
//
// Layout under the root directory:
//
//	<root>/<topic_key>/papers_info.json
//
// Each store is a JSON array of PaperRecord in discovery order. Stores are
// append-only and deduplicated by entry ID. A store that cannot be read or
// parsed is treated as empty; it never fails an operation.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pdiddy/paper-index/internal/logging"
	"github.com/pdiddy/paper-index/pkg/types"
)

const defaultMaxResults = 5

// ErrNoSearcher is returned by SearchAndPersist when the Library was built
// without a search provider.
var ErrNoSearcher = errors.New("no search provider configured")

// Searcher is the external academic search provider. It returns at most
// maxResults candidates in provider-ranked order.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.Candidate, error)
}

// SearchError wraps a failure of the search provider. The topic store is
// left untouched when it occurs.
type SearchError struct {
	Topic string
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("searching %q: %v", e.Topic, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// Library is a set of topic stores under one root directory.
type Library struct {
	root       string
	searcher   Searcher
	log        *slog.Logger
	maxResults int
}

// Option configures a Library.
type Option func(*Library)

// WithSearcher sets the search provider used by SearchAndPersist.
func WithSearcher(s Searcher) Option {
	return func(l *Library) {
		l.searcher = s
	}
}

// WithLogger sets the logger for warnings about malformed stores.
func WithLogger(log *slog.Logger) Option {
	return func(l *Library) {
		if log != nil {
			l.log = log
		}
	}
}

// WithDefaultMaxResults sets the batch size used when a caller passes a
// non-positive maxResults.
func WithDefaultMaxResults(n int) Option {
	return func(l *Library) {
		if n > 0 {
			l.maxResults = n
		}
	}
}

// New returns a Library rooted at root.
func New(root string, opts ...Option) *Library {
	if root == "" {
		root = "."
	}
	l := &Library{
		root:       root,
		log:        logging.Discard(),
		maxResults: defaultMaxResults,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Root returns the directory holding the topic stores.
func (l *Library) Root() string { return l.root }
