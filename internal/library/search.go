// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// SearchSummary describes one SearchAndPersist run.
type SearchSummary struct {
	// Topic is the storage key the results were merged into.
	Topic string

	// Path is the absolute path of the topic store.
	Path string

	// IDs lists the entry IDs the provider returned for this search, in
	// provider order, including ones that were already stored.
	IDs []string

	// Added counts records appended to the store by this run.
	Added int
}

// SearchAndPersist queries the search provider for topic and merges the
// results into the topic's store. The store is rewritten on every
// successful search, even when nothing new was found. A provider failure is
// returned as *SearchError and leaves the store unchanged.
func (l *Library) SearchAndPersist(ctx context.Context, topic string, maxResults int) (SearchSummary, error) {
	if l.searcher == nil {
		return SearchSummary{}, ErrNoSearcher
	}
	key, err := TopicKey(topic)
	if err != nil {
		return SearchSummary{}, err
	}
	if maxResults <= 0 {
		maxResults = l.maxResults
	}

	log := l.log.With("run", uuid.NewString(), "topic", key)
	path := l.storePath(key)

	stored, state := l.loadTolerant(path)
	log.Debug("loaded topic store", "path", path, "records", len(stored))

	candidates, err := l.searcher.Search(ctx, topic, maxResults)
	if err != nil {
		return SearchSummary{}, &SearchError{Topic: topic, Err: err}
	}

	stored, ids, added, err := merge(stored, candidates)
	if err != nil {
		return SearchSummary{}, fmt.Errorf("merging results for %s: %w", key, err)
	}

	// The malformed file is copied, not moved, so it stays in place if the
	// write below fails.
	if state == stateMalformed {
		if backup, err := backupStore(path); err != nil {
			log.Warn("could not back up malformed topic store", "path", path, "err", err)
		} else {
			log.Warn("malformed topic store copied aside", "backup", backup)
		}
	}

	if err := writeStore(path, stored); err != nil {
		return SearchSummary{}, fmt.Errorf("saving topic %s: %w", key, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	log.Info("results saved", "path", abs, "found", len(ids), "added", added, "total", len(stored))

	return SearchSummary{
		Topic: key,
		Path:  abs,
		IDs:   ids,
		Added: added,
	}, nil
}
