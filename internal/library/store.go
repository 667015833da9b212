// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdiddy/paper-index/pkg/types"
)

const (
	storeFile  = "papers_info.json"
	backupExt  = ".bak"
	jsonIndent = "    "
)

var (
	errNotList   = errors.New("data is not a list")
	errNotRecord = errors.New("element is not an object")
)

// maxBackups bounds the numbered backup names tried for one store.
const maxBackups = 100

// loadState reports what was found at a store path.
type loadState int

const (
	stateMissing loadState = iota
	stateLoaded
	stateMalformed
)

// storedRecord is one element of a store file, kept as written so that
// saving the store never alters records this process did not create.
type storedRecord struct {
	raw     json.RawMessage
	entryID string // "" when entry_id is missing or not a string
}

// parseStoredRecord checks that raw is a JSON object and extracts its
// entry_id.
func parseStoredRecord(raw json.RawMessage) (storedRecord, error) {
	var fields map[string]json.RawMessage
	if t := bytes.TrimSpace(raw); len(t) == 0 || t[0] != '{' {
		return storedRecord{}, errNotRecord
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return storedRecord{}, fmt.Errorf("decoding record: %w", err)
	}
	rec := storedRecord{raw: raw}
	if id, ok := fields["entry_id"]; ok {
		var s string
		if json.Unmarshal(id, &s) == nil {
			rec.entryID = s
		}
	}
	return rec, nil
}

// newStoredRecord encodes r compactly for appending to a store.
func newStoredRecord(r types.PaperRecord) (storedRecord, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return storedRecord{}, fmt.Errorf("encoding record %s: %w", r.EntryID, err)
	}
	return storedRecord{raw: bytes.TrimSuffix(buf.Bytes(), []byte("\n")), entryID: r.EntryID}, nil
}

// record decodes the element into a PaperRecord. Fields holding a JSON
// value of the wrong type are left at their zero value.
func (s storedRecord) record() types.PaperRecord {
	var r types.PaperRecord
	_ = json.Unmarshal(s.raw, &r)
	return r
}

func recordsOf(stored []storedRecord) []types.PaperRecord {
	if stored == nil {
		return nil
	}
	out := make([]types.PaperRecord, len(stored))
	for i, s := range stored {
		out[i] = s.record()
	}
	return out
}

func (l *Library) storePath(key string) string {
	return filepath.Join(l.root, key, storeFile)
}

// readStore reads the elements at path. A missing file is stateMissing with
// no error; unreadable or unparsable content is stateMalformed with the
// cause, for the caller to log.
func readStore(path string) ([]storedRecord, loadState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, stateMissing, nil
		}
		return nil, stateMalformed, err
	}
	stored, err := decodeStore(data)
	if err != nil {
		return nil, stateMalformed, err
	}
	return stored, stateLoaded, nil
}

// decodeStore parses a store file body. Anything other than a JSON array
// of objects is rejected; the objects themselves may hold any keys.
func decodeStore(data []byte) ([]storedRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decoding JSON: empty file")
	}
	if trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("decoding JSON: invalid syntax")
		}
		return nil, errNotList
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	stored := make([]storedRecord, 0, len(elems))
	for i, e := range elems {
		rec, err := parseStoredRecord(e)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		stored = append(stored, rec)
	}
	return stored, nil
}

// Load returns the records stored for topic. A missing or malformed store
// yields an empty collection; malformed stores are logged as warnings. The
// only error is an unusable topic.
func (l *Library) Load(topic string) ([]types.PaperRecord, error) {
	key, err := TopicKey(topic)
	if err != nil {
		return nil, err
	}
	stored, _ := l.loadTolerant(l.storePath(key))
	return recordsOf(stored), nil
}

func (l *Library) loadTolerant(path string) ([]storedRecord, loadState) {
	stored, state, err := readStore(path)
	if state == stateMalformed {
		l.log.Warn("topic store is malformed, starting with an empty list of papers",
			"path", path, "err", err)
		return nil, state
	}
	return stored, state
}

// Save replaces the store for topic with records, creating the topic
// directory if needed.
func (l *Library) Save(topic string, records []types.PaperRecord) error {
	key, err := TopicKey(topic)
	if err != nil {
		return err
	}
	stored := make([]storedRecord, 0, len(records))
	for _, r := range records {
		rec, err := newStoredRecord(r)
		if err != nil {
			return err
		}
		stored = append(stored, rec)
	}
	if err := writeStore(l.storePath(key), stored); err != nil {
		return fmt.Errorf("saving topic %s: %w", key, err)
	}
	return nil
}

// encodeStore renders elements as a JSON array indented with 4 spaces.
// Each element keeps its keys, key order and values; only whitespace
// changes.
func encodeStore(stored []storedRecord) ([]byte, error) {
	if len(stored) == 0 {
		return []byte("[]\n"), nil
	}
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, s := range stored {
		buf.WriteString(jsonIndent)
		if err := json.Indent(&buf, s.raw, jsonIndent, jsonIndent); err != nil {
			return nil, fmt.Errorf("indenting element %d: %w", i, err)
		}
		if i < len(stored)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")
	return buf.Bytes(), nil
}

// writeStore writes elements to path. The data goes to a temp file in the
// same directory and is renamed into place, so a reader never sees a
// partial file.
func writeStore(path string, stored []storedRecord) error {
	data, err := encodeStore(stored)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".papers_info-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting mode on %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// backupStore copies the store at path to the first free name among
// papers_info.json.bak, papers_info.json.1.bak, ... and returns that name.
// Existing backups are never overwritten.
func backupStore(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	for n := 0; n < maxBackups; n++ {
		name := path + backupExt
		if n > 0 {
			name = fmt.Sprintf("%s.%d%s", path, n, backupExt)
		}
		dst, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(dst, src); err != nil {
			dst.Close()
			os.Remove(name)
			return "", err
		}
		if err := dst.Close(); err != nil {
			os.Remove(name)
			return "", err
		}
		return name, nil
	}
	return "", fmt.Errorf("no free backup name for %s", path)
}

// merge appends every candidate whose entry ID is not already present in
// stored, in candidate order. Existing elements are returned untouched. It
// returns the updated elements, the entry IDs of all candidates (known or
// not, in order) and how many were appended. A duplicate inside
// candidates is appended at most once.
func merge(stored []storedRecord, candidates []types.Candidate) ([]storedRecord, []string, int, error) {
	known := make(map[string]struct{}, len(stored)+len(candidates))
	for _, s := range stored {
		if s.entryID != "" {
			known[s.entryID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(candidates))
	added := 0
	for _, c := range candidates {
		ids = append(ids, c.EntryID)
		if _, ok := known[c.EntryID]; ok {
			continue
		}
		rec, err := newStoredRecord(types.RecordFromCandidate(c))
		if err != nil {
			return nil, nil, 0, err
		}
		stored = append(stored, rec)
		known[c.EntryID] = struct{}{}
		added++
	}
	return stored, ids, added, nil
}
