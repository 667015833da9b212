// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdiddy/paper-index/pkg/types"
)

// Result is the outcome of a Lookup. Record and Raw are nil when no store
// holds the requested entry ID. Raw is the stored element exactly as
// written, including keys PaperRecord does not know.
type Result struct {
	EntryID string
	Topic   string
	Record  *types.PaperRecord
	Raw     json.RawMessage
}

// Found reports whether a record matched.
func (r Result) Found() bool { return r.Record != nil }

// NotFoundMessage is the human-readable text for a miss.
func (r Result) NotFoundMessage() string {
	return fmt.Sprintf("There's no saved information related to paper %s.", r.EntryID)
}

// Lookup scans every topic store under the root for a record with the given
// entry ID and returns the first match. Stores are visited in directory
// order; malformed stores are skipped with a warning. A miss is not an
// error. There is no index: each call reads every store.
func (l *Library) Lookup(entryID string) (Result, error) {
	res := Result{EntryID: entryID}

	keys, err := l.topicKeys()
	if err != nil {
		return res, err
	}

	for _, key := range keys {
		path := l.storePath(key)
		stored, state, err := readStore(path)
		switch state {
		case stateMissing:
			continue
		case stateMalformed:
			l.log.Warn("skipping malformed topic store", "path", path, "err", err)
			continue
		}
		for _, s := range stored {
			if s.entryID != "" && s.entryID == entryID {
				rec := s.record()
				res.Topic = key
				res.Record = &rec
				res.Raw = s.raw
				return res, nil
			}
		}
	}
	return res, nil
}

// topicKeys lists the subdirectories of the root in name order. A missing
// root has no topics.
func (l *Library) topicKeys() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading paper directory %s: %w", l.root, err)
	}

	var keys []string
	for _, entry := range entries {
		if !entry.IsDir() {
			if entry.Type()&fs.ModeSymlink == 0 {
				continue
			}
			info, err := os.Stat(filepath.Join(l.root, entry.Name()))
			if err != nil || !info.IsDir() {
				continue
			}
		}
		keys = append(keys, entry.Name())
	}
	return keys, nil
}
