// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-index/internal/logging"
	"github.com/pdiddy/paper-index/pkg/types"
)

// --- fake searcher ---

type fakeSearcher struct {
	batches [][]types.Candidate
	err     error
	calls   int
	queries []string
	limits  []int
}

func (f *fakeSearcher) Search(_ context.Context, query string, maxResults int) ([]types.Candidate, error) {
	f.queries = append(f.queries, query)
	f.limits = append(f.limits, maxResults)
	if f.err != nil {
		return nil, f.err
	}
	var batch []types.Candidate
	if f.calls < len(f.batches) {
		batch = f.batches[f.calls]
	} else if len(f.batches) > 0 {
		batch = f.batches[len(f.batches)-1]
	}
	f.calls++
	return batch, nil
}

func candidate(id string) types.Candidate {
	return types.Candidate{
		EntryID:   id,
		Title:     "Paper " + id,
		Authors:   []types.Author{{Name: "Ada Lovelace"}, {Name: "Alan Turing"}},
		Summary:   "Summary of " + id,
		PDFURL:    "http://arxiv.org/pdf/" + id,
		Published: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
	}
}

func record(id string) types.PaperRecord {
	return types.RecordFromCandidate(candidate(id))
}

func newTestLibrary(t *testing.T, s Searcher) (*Library, string, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	var logs bytes.Buffer
	lib := New(root, WithSearcher(s), WithLogger(logging.New("debug", &logs)))
	return lib, root, &logs
}

func writeRaw(t *testing.T, root, key, content string) string {
	t.Helper()
	dir := filepath.Join(root, key)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, storeFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func toStored(t *testing.T, records ...types.PaperRecord) []storedRecord {
	t.Helper()
	stored := make([]storedRecord, 0, len(records))
	for _, r := range records {
		rec, err := newStoredRecord(r)
		require.NoError(t, err)
		stored = append(stored, rec)
	}
	return stored
}

func writeRecords(t *testing.T, root, key string, records []types.PaperRecord) {
	t.Helper()
	require.NoError(t, writeStore(filepath.Join(root, key, storeFile), toStored(t, records...)))
}

// compactElements returns each element of a JSON array with insignificant
// whitespace removed.
func compactElements(t *testing.T, data []byte) []string {
	t.Helper()
	var elems []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &elems))
	out := make([]string, len(elems))
	for i, e := range elems {
		var buf bytes.Buffer
		require.NoError(t, json.Compact(&buf, e))
		out[i] = buf.String()
	}
	return out
}

func readRecords(t *testing.T, root, key string) []types.PaperRecord {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, key, storeFile))
	require.NoError(t, err)
	var records []types.PaperRecord
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func entryIDs(records []types.PaperRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.EntryID
	}
	return ids
}

// --- TopicKey ---

func TestTopicKey(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"Quantum Computing", "quantum_computing"},
		{"machine learning", "machine_learning"},
		{"LLM", "llm"},
		{"graph\tneural  nets", "graph_neural__nets"},
		{"a/b", "a_b"},
		{`..\..`, ".._.."},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, err := TopicKey(tt.topic)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTopicKeyRejectsUnusableNames(t *testing.T) {
	for _, topic := range []string{"", ".", ".."} {
		_, err := TopicKey(topic)
		assert.ErrorIs(t, err, ErrInvalidTopic, "topic %q", topic)
	}
}

// --- Merge ---

func TestMergeAppendsOnlyNewRecords(t *testing.T) {
	existing := toStored(t, record("A"))
	merged, ids, added, err := merge(existing, []types.Candidate{candidate("B"), candidate("A"), candidate("C")})
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A", "C"}, ids)
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"A", "B", "C"}, entryIDs(recordsOf(merged)))
}

func TestMergeDeduplicatesWithinBatch(t *testing.T) {
	merged, ids, added, err := merge(nil, []types.Candidate{candidate("X"), candidate("X")})
	require.NoError(t, err)

	assert.Equal(t, []string{"X", "X"}, ids)
	assert.Equal(t, 1, added)
	assert.Len(t, merged, 1)
}

func TestMergeEmptyBatch(t *testing.T) {
	existing := toStored(t, record("A"))
	merged, ids, added, err := merge(existing, nil)
	require.NoError(t, err)

	assert.NotNil(t, ids)
	assert.Empty(t, ids)
	assert.Zero(t, added)
	assert.Equal(t, existing, merged)
}

func TestMergeIgnoresRecordsWithoutStringID(t *testing.T) {
	stored, err := decodeStore([]byte(`[{"title": "NoID"}, {"entry_id": 12345}]`))
	require.NoError(t, err)

	merged, _, added, err := merge(stored, []types.Candidate{candidate("12345")})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Len(t, merged, 3)
}

func TestRecordFromCandidate(t *testing.T) {
	got := types.RecordFromCandidate(candidate("http://arxiv.org/abs/2301.07041v1"))
	assert.Equal(t, types.PaperRecord{
		Title:         "Paper http://arxiv.org/abs/2301.07041v1",
		Authors:       []string{"Ada Lovelace", "Alan Turing"},
		Summary:       "Summary of http://arxiv.org/abs/2301.07041v1",
		PDFURL:        "http://arxiv.org/pdf/http://arxiv.org/abs/2301.07041v1",
		PublishedDate: "2024-01-02",
		EntryID:       "http://arxiv.org/abs/2301.07041v1",
	}, got)
}

// --- SearchAndPersist ---

func TestSearchAndPersistCreatesStore(t *testing.T) {
	s := &fakeSearcher{batches: [][]types.Candidate{{candidate("A"), candidate("B")}}}
	lib, root, _ := newTestLibrary(t, s)

	sum, err := lib.SearchAndPersist(context.Background(), "Quantum Computing", 2)
	require.NoError(t, err)

	assert.Equal(t, "quantum_computing", sum.Topic)
	assert.Equal(t, []string{"A", "B"}, sum.IDs)
	assert.Equal(t, 2, sum.Added)
	assert.True(t, filepath.IsAbs(sum.Path))
	assert.Equal(t, []string{"Quantum Computing"}, s.queries)
	assert.Equal(t, []int{2}, s.limits)

	data, err := os.ReadFile(filepath.Join(root, "quantum_computing", storeFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n    {\n        \"title\": "),
		"store should be a 4-space indented array, got:\n%s", data)
	assert.Equal(t, []types.PaperRecord{record("A"), record("B")}, readRecords(t, root, "quantum_computing"))
}

func TestSearchAndPersistGrowsByNewOnly(t *testing.T) {
	s := &fakeSearcher{batches: [][]types.Candidate{{candidate("K"), candidate("N1"), candidate("N2")}}}
	lib, root, _ := newTestLibrary(t, s)
	writeRecords(t, root, "quantum_computing", []types.PaperRecord{record("K")})

	sum, err := lib.SearchAndPersist(context.Background(), "Quantum Computing", 3)
	require.NoError(t, err)

	assert.Len(t, sum.IDs, 3)
	assert.Equal(t, 2, sum.Added)
	assert.Equal(t, []string{"K", "N1", "N2"}, entryIDs(readRecords(t, root, "quantum_computing")))
}

func TestSearchAndPersistIsIdempotentOnStoredSet(t *testing.T) {
	batch := []types.Candidate{candidate("A"), candidate("B"), candidate("A")}
	s := &fakeSearcher{batches: [][]types.Candidate{batch, batch}}
	lib, root, _ := newTestLibrary(t, s)

	first, err := lib.SearchAndPersist(context.Background(), "ml", 3)
	require.NoError(t, err)
	after1 := readRecords(t, root, "ml")

	second, err := lib.SearchAndPersist(context.Background(), "ml", 3)
	require.NoError(t, err)
	after2 := readRecords(t, root, "ml")

	assert.Equal(t, after1, after2)
	assert.Equal(t, []string{"A", "B"}, entryIDs(after2))
	assert.Equal(t, []string{"A", "B", "A"}, first.IDs)
	assert.Equal(t, first.IDs, second.IDs)
	assert.Equal(t, 2, first.Added)
	assert.Zero(t, second.Added)
}

func TestSearchAndPersistKeepsExistingRecords(t *testing.T) {
	existing := []types.PaperRecord{
		{Title: "Hand written", Authors: []string{"X"}, EntryID: "old-1", PublishedDate: "1999-12-31"},
		record("old-2"),
	}
	s := &fakeSearcher{batches: [][]types.Candidate{{candidate("new-1"), candidate("old-2")}}}
	lib, root, _ := newTestLibrary(t, s)
	writeRecords(t, root, "ml", existing)

	_, err := lib.SearchAndPersist(context.Background(), "ml", 2)
	require.NoError(t, err)

	got := readRecords(t, root, "ml")
	require.Len(t, got, 3)
	assert.Equal(t, existing, got[:2])
	assert.Equal(t, "new-1", got[2].EntryID)
}

func TestSearchAndPersistEmptyBatch(t *testing.T) {
	s := &fakeSearcher{batches: [][]types.Candidate{{}}}
	lib, root, _ := newTestLibrary(t, s)
	writeRecords(t, root, "ml", []types.PaperRecord{record("A")})

	sum, err := lib.SearchAndPersist(context.Background(), "ml", 5)
	require.NoError(t, err)

	assert.Empty(t, sum.IDs)
	assert.Zero(t, sum.Added)
	assert.Equal(t, []types.PaperRecord{record("A")}, readRecords(t, root, "ml"))
}

func TestSearchAndPersistEmptyBatchOnNewTopicWritesEmptyArray(t *testing.T) {
	lib, root, _ := newTestLibrary(t, &fakeSearcher{})

	_, err := lib.SearchAndPersist(context.Background(), "nothing here", 5)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "nothing_here", storeFile))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestSearchAndPersistDefaultMaxResults(t *testing.T) {
	s := &fakeSearcher{}
	root := t.TempDir()
	lib := New(root, WithSearcher(s), WithDefaultMaxResults(7))

	_, err := lib.SearchAndPersist(context.Background(), "ml", 0)
	require.NoError(t, err)
	_, err = lib.SearchAndPersist(context.Background(), "ml", -3)
	require.NoError(t, err)

	assert.Equal(t, []int{7, 7}, s.limits)
}

func TestSearchAndPersistToleratesMalformedStore(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"object instead of array", `{"entry_id": "A"}`},
		{"truncated JSON", `[{"title": "Paper A", "entry_id": `},
		{"empty file", ""},
		{"null", "null"},
		{"array of numbers", "[1, 2, 3]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSearcher{batches: [][]types.Candidate{{candidate("A")}}}
			lib, root, logs := newTestLibrary(t, s)
			path := writeRaw(t, root, "ml", tt.content)

			sum, err := lib.SearchAndPersist(context.Background(), "ml", 1)
			require.NoError(t, err)

			assert.Equal(t, []string{"A"}, sum.IDs)
			assert.Equal(t, 1, sum.Added)
			assert.Equal(t, []types.PaperRecord{record("A")}, readRecords(t, root, "ml"))
			assert.Contains(t, logs.String(), "level=WARN")

			backup, err := os.ReadFile(path + backupExt)
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(backup))
		})
	}
}

func TestSearchAndPersistKeepsStoredElementsVerbatim(t *testing.T) {
	s := &fakeSearcher{batches: [][]types.Candidate{{candidate("B")}}}
	lib, root, _ := newTestLibrary(t, s)
	original := []string{
		`{"title":"Old","entry_id":"A","doi":"10.1/x"}`,
		`{"title":"NoID"}`,
		`{"entry_id":12345,"title":"Numeric ID"}`,
		`{"zeta":"<b>&amp;</b>","alpha":[1,2.50,{"nested":null}]}`,
	}
	writeRaw(t, root, "ml", "["+strings.Join(original, ",")+"]")

	sum, err := lib.SearchAndPersist(context.Background(), "ml", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Added)

	data, err := os.ReadFile(filepath.Join(root, "ml", storeFile))
	require.NoError(t, err)
	got := compactElements(t, data)
	require.Len(t, got, 5)
	assert.Equal(t, original, got[:4])
	assert.Contains(t, got[4], `"entry_id":"B"`)
	assert.True(t, strings.HasPrefix(string(data), "[\n    {\n        \"title\": \"Old\","))

	_, err = os.Stat(filepath.Join(root, "ml", storeFile+backupExt))
	assert.True(t, os.IsNotExist(err), "a readable store must not be backed up")
}

func TestSearchAndPersistBackupsNeverOverwrite(t *testing.T) {
	s := &fakeSearcher{batches: [][]types.Candidate{{candidate("A")}}}
	lib, root, _ := newTestLibrary(t, s)

	path := writeRaw(t, root, "ml", "{first")
	_, err := lib.SearchAndPersist(context.Background(), "ml", 1)
	require.NoError(t, err)

	writeRaw(t, root, "ml", "{second")
	_, err = lib.SearchAndPersist(context.Background(), "ml", 1)
	require.NoError(t, err)

	first, err := os.ReadFile(path + backupExt)
	require.NoError(t, err)
	assert.Equal(t, "{first", string(first))

	second, err := os.ReadFile(path + ".1" + backupExt)
	require.NoError(t, err)
	assert.Equal(t, "{second", string(second))

	assert.Equal(t, []types.PaperRecord{record("A")}, readRecords(t, root, "ml"))
}

func TestSearchAndPersistProviderFailureLeavesStore(t *testing.T) {
	providerErr := errors.New("arXiv unavailable")
	lib, root, _ := newTestLibrary(t, &fakeSearcher{err: providerErr})
	writeRecords(t, root, "ml", []types.PaperRecord{record("A")})

	_, err := lib.SearchAndPersist(context.Background(), "ml", 5)
	require.Error(t, err)

	var searchErr *SearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, "ml", searchErr.Topic)
	assert.ErrorIs(t, err, providerErr)
	assert.Equal(t, []types.PaperRecord{record("A")}, readRecords(t, root, "ml"))
}

func TestSearchAndPersistProviderFailureCreatesNothing(t *testing.T) {
	lib, root, _ := newTestLibrary(t, &fakeSearcher{err: errors.New("boom")})

	_, err := lib.SearchAndPersist(context.Background(), "new topic", 5)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(root, "new_topic"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSearchAndPersistWithoutSearcher(t *testing.T) {
	lib := New(t.TempDir())
	_, err := lib.SearchAndPersist(context.Background(), "ml", 1)
	assert.ErrorIs(t, err, ErrNoSearcher)
}

func TestSearchAndPersistInvalidTopic(t *testing.T) {
	s := &fakeSearcher{}
	lib, _, _ := newTestLibrary(t, s)
	_, err := lib.SearchAndPersist(context.Background(), "..", 1)
	assert.ErrorIs(t, err, ErrInvalidTopic)
	assert.Zero(t, s.calls)
}

// --- Load ---

func TestLoad(t *testing.T) {
	lib, root, logs := newTestLibrary(t, nil)

	records, err := lib.Load("Missing Topic")
	require.NoError(t, err)
	assert.Empty(t, records)

	writeRecords(t, root, "ml", []types.PaperRecord{record("A")})
	records, err = lib.Load("ML")
	require.NoError(t, err)
	assert.Equal(t, []types.PaperRecord{record("A")}, records)

	writeRaw(t, root, "bad", "{oops")
	records, err = lib.Load("bad")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Contains(t, logs.String(), "malformed")
}

func TestSaveThenLoad(t *testing.T) {
	lib, root, _ := newTestLibrary(t, nil)

	want := []types.PaperRecord{record("A"), record("B")}
	require.NoError(t, lib.Save("Graph Theory", want))

	got, err := lib.Load("graph theory")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"A", "B"}, entryIDs(readRecords(t, root, "graph_theory")))

	assert.ErrorIs(t, lib.Save("..", want), ErrInvalidTopic)
}

// --- Lookup ---

func TestLookupFindsExactRecord(t *testing.T) {
	lib, root, _ := newTestLibrary(t, nil)
	rec := types.PaperRecord{
		Title:         "Attention Is All You Need",
		Authors:       []string{"Ashish Vaswani", "Noam Shazeer"},
		Summary:       "We propose the Transformer.",
		PDFURL:        "http://arxiv.org/pdf/1706.03762v7",
		PublishedDate: "2017-06-12",
		EntryID:       "http://arxiv.org/abs/1706.03762v7",
	}
	writeRecords(t, root, "ml", []types.PaperRecord{record("A"), rec})
	writeRecords(t, root, "quantum_computing", []types.PaperRecord{record("Q")})

	res, err := lib.Lookup(rec.EntryID)
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, rec, *res.Record)
	assert.Equal(t, "ml", res.Topic)

	res, err = lib.Lookup("Q")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "quantum_computing", res.Topic)
}

func TestLookupReturnsStoredElement(t *testing.T) {
	lib, root, _ := newTestLibrary(t, nil)
	writeRaw(t, root, "ml", `[{"title": "NoID"}, {"entry_id": 7}, {"title": "Old", "entry_id": "A", "doi": "10.1/x"}]`)

	res, err := lib.Lookup("A")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.JSONEq(t, `{"title": "Old", "entry_id": "A", "doi": "10.1/x"}`, string(res.Raw))
	assert.Equal(t, "Old", res.Record.Title)

	for _, id := range []string{"", "7"} {
		res, err := lib.Lookup(id)
		require.NoError(t, err)
		assert.False(t, res.Found(), "id %q", id)
	}
}

func TestLookupNotFound(t *testing.T) {
	lib, root, _ := newTestLibrary(t, nil)
	writeRecords(t, root, "ml", []types.PaperRecord{record("A")})

	res, err := lib.Lookup("this_id_should_not_exist_12345")
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Equal(t,
		"There's no saved information related to paper this_id_should_not_exist_12345.",
		res.NotFoundMessage())
}

func TestLookupSkipsMalformedStores(t *testing.T) {
	lib, root, logs := newTestLibrary(t, nil)
	writeRaw(t, root, "aaa_bad", `{"entry_id": "A"}`)
	writeRaw(t, root, "bbb_truncated", `[{"entry_id": "A"`)
	writeRecords(t, root, "ccc_good", []types.PaperRecord{record("A")})

	res, err := lib.Lookup("A")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "ccc_good", res.Topic)
	assert.Equal(t, 2, strings.Count(logs.String(), "skipping malformed topic store"))
}

func TestLookupIgnoresFilesAndEmptyDirs(t *testing.T) {
	lib, root, _ := newTestLibrary(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	res, err := lib.Lookup("A")
	require.NoError(t, err)
	assert.False(t, res.Found())
}

func TestLookupMissingRoot(t *testing.T) {
	lib := New(filepath.Join(t.TempDir(), "does-not-exist"))
	res, err := lib.Lookup("A")
	require.NoError(t, err)
	assert.False(t, res.Found())
}

func TestLookupCompleteness(t *testing.T) {
	lib, root, _ := newTestLibrary(t, nil)
	stores := map[string][]types.PaperRecord{
		"ml":      {record("1"), record("2")},
		"physics": {record("3")},
		"bio":     {record("4"), record("5"), record("6")},
	}
	for key, records := range stores {
		writeRecords(t, root, key, records)
	}

	for key, records := range stores {
		for _, rec := range records {
			res, err := lib.Lookup(rec.EntryID)
			require.NoError(t, err)
			require.True(t, res.Found(), rec.EntryID)
			assert.Equal(t, rec, *res.Record)
			assert.Equal(t, key, res.Topic)
		}
	}
}

// --- Topics / Export ---

func TestTopics(t *testing.T) {
	lib, root, _ := newTestLibrary(t, nil)
	writeRecords(t, root, "ml", []types.PaperRecord{record("A"), record("B")})
	writeRaw(t, root, "broken", "nope")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "no_store"), 0o755))

	topics, err := lib.Topics()
	require.NoError(t, err)
	require.Len(t, topics, 2)

	assert.Equal(t, "broken", topics[0].Key)
	assert.True(t, topics[0].Malformed)
	assert.Empty(t, topics[0].Records)

	assert.Equal(t, "ml", topics[1].Key)
	assert.False(t, topics[1].Malformed)
	assert.Len(t, topics[1].Records, 2)
}

func TestExport(t *testing.T) {
	lib, root, _ := newTestLibrary(t, nil)
	writeRecords(t, root, "ml", []types.PaperRecord{record("A")})

	var jsonOut bytes.Buffer
	require.NoError(t, lib.Export("ML", "json", &jsonOut))
	stored, err := os.ReadFile(filepath.Join(root, "ml", storeFile))
	require.NoError(t, err)
	assert.Equal(t, string(stored), jsonOut.String())

	var yamlOut bytes.Buffer
	require.NoError(t, lib.Export("ml", "yaml", &yamlOut))
	var fromYAML []types.PaperRecord
	require.NoError(t, yaml.Unmarshal(yamlOut.Bytes(), &fromYAML))
	assert.Equal(t, []types.PaperRecord{record("A")}, fromYAML)
	assert.Contains(t, yamlOut.String(), "entry_id: A")

	assert.ErrorIs(t, lib.Export("unknown", "json", &bytes.Buffer{}), ErrTopicNotFound)
	assert.Error(t, lib.Export("ml", "xml", &bytes.Buffer{}))
}
