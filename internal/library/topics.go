// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"errors"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-index/pkg/types"
)

// ErrTopicNotFound is returned by Export when the topic has no store.
var ErrTopicNotFound = errors.New("topic not found")

// Topic is one topic store found under the root.
type Topic struct {
	Key       string
	Path      string
	Records   []types.PaperRecord
	Malformed bool
}

// Topics loads every topic store under the root. Directories without a
// store file are skipped; malformed stores are returned empty with
// Malformed set.
func (l *Library) Topics() ([]Topic, error) {
	keys, err := l.topicKeys()
	if err != nil {
		return nil, err
	}

	var topics []Topic
	for _, key := range keys {
		path := l.storePath(key)
		stored, state, err := readStore(path)
		switch state {
		case stateMissing:
			continue
		case stateMalformed:
			l.log.Warn("topic store is malformed", "path", path, "err", err)
		}
		topics = append(topics, Topic{
			Key:       key,
			Path:      path,
			Records:   recordsOf(stored),
			Malformed: state == stateMalformed,
		})
	}
	return topics, nil
}

// Export writes the records stored for topic to w as "json" (the store
// file's elements unchanged, 4-space indented) or "yaml" (PaperRecord
// fields only).
func (l *Library) Export(topic, format string, w io.Writer) error {
	key, err := TopicKey(topic)
	if err != nil {
		return err
	}
	path := l.storePath(key)
	stored, state := l.loadTolerant(path)
	if state == stateMissing {
		return fmt.Errorf("%w: %s", ErrTopicNotFound, key)
	}

	switch format {
	case "json", "":
		data, err := encodeStore(stored)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "yaml":
		records := recordsOf(stored)
		if records == nil {
			records = []types.PaperRecord{}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q: use json or yaml", format)
	}
}
