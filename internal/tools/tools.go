// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools exposes the library operations to a tool-calling
// orchestrator: a closed set of named tools, each with a typed argument
// struct, and a formatter that renders every result as one display string.
package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/pdiddy/paper-index/internal/library"
)

// Name identifies a registered tool.
type Name string

const (
	// SearchPapers searches for a topic and stores the results.
	SearchPapers Name = "search_papers"

	// ExtractInfo returns the stored metadata for one paper.
	ExtractInfo Name = "extract_info"
)

// registry maps every accepted tool name to its tool. The descriptive
// operation names are aliases of the orchestrator-facing names.
var registry = map[string]Name{
	string(SearchPapers): SearchPapers,
	"searchAndPersist":   SearchPapers,
	string(ExtractInfo):  ExtractInfo,
	"lookup":             ExtractInfo,
}

// Resolve returns the tool registered under name.
func Resolve(name string) (Name, bool) {
	n, ok := registry[name]
	return n, ok
}

// Names lists the canonical tool names in sorted order.
func Names() []string {
	return []string{string(ExtractInfo), string(SearchPapers)}
}

var (
	// ErrToolNotFound matches every *ToolNotFoundError via errors.Is.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidArgs is wrapped by argument decoding and validation failures.
	ErrInvalidArgs = errors.New("invalid tool arguments")
)

// ToolNotFoundError is returned by Execute for an unregistered tool name.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found", e.Name)
}

// Is reports whether target is ErrToolNotFound.
func (e *ToolNotFoundError) Is(target error) bool { return target == ErrToolNotFound }

// SearchPapersArgs are the arguments of search_papers.
type SearchPapersArgs struct {
	Topic      string `mapstructure:"topic"`
	MaxResults *int   `mapstructure:"max_results"`
}

// ExtractInfoArgs are the arguments of extract_info. Either key may carry
// the entry ID.
type ExtractInfoArgs struct {
	PaperID string `mapstructure:"paper_id"`
	EntryID string `mapstructure:"entry_id"`
}

// Library is the part of *library.Library the dispatcher calls.
type Library interface {
	SearchAndPersist(ctx context.Context, topic string, maxResults int) (library.SearchSummary, error)
	Lookup(entryID string) (library.Result, error)
}

// Dispatcher executes tools by name against a Library.
type Dispatcher struct {
	lib        Library
	maxResults int
}

// NewDispatcher returns a Dispatcher. defaultMaxResults applies when
// search_papers is called without max_results; non-positive means 5.
func NewDispatcher(lib Library, defaultMaxResults int) *Dispatcher {
	if defaultMaxResults <= 0 {
		defaultMaxResults = 5
	}
	return &Dispatcher{lib: lib, maxResults: defaultMaxResults}
}

// Execute runs the named tool with args and returns its formatted result.
// An unknown name yields *ToolNotFoundError. Provider failures from
// search_papers are returned unchanged.
func (d *Dispatcher) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	tool, ok := Resolve(name)
	if !ok {
		return "", &ToolNotFoundError{Name: name}
	}
	result, err := d.call(ctx, tool, args)
	if err != nil {
		return "", err
	}
	return Format(result), nil
}

func (d *Dispatcher) call(ctx context.Context, tool Name, args map[string]any) (any, error) {
	switch tool {
	case SearchPapers:
		var a SearchPapersArgs
		if err := decodeArgs(tool, args, &a); err != nil {
			return nil, err
		}
		maxResults, err := a.validate(d.maxResults)
		if err != nil {
			return nil, err
		}
		sum, err := d.lib.SearchAndPersist(ctx, a.Topic, maxResults)
		if err != nil {
			return nil, err
		}
		return sum.IDs, nil

	case ExtractInfo:
		var a ExtractInfoArgs
		if err := decodeArgs(tool, args, &a); err != nil {
			return nil, err
		}
		id, err := a.validate()
		if err != nil {
			return nil, err
		}
		res, err := d.lib.Lookup(id)
		if err != nil {
			return nil, err
		}
		if !res.Found() {
			return res.NotFoundMessage(), nil
		}
		return res.Raw, nil
	}
	return nil, &ToolNotFoundError{Name: string(tool)}
}

func (a SearchPapersArgs) validate(defaultMax int) (int, error) {
	if strings.TrimSpace(a.Topic) == "" {
		return 0, fmt.Errorf("%w: %s: topic is required", ErrInvalidArgs, SearchPapers)
	}
	if a.MaxResults == nil {
		return defaultMax, nil
	}
	if *a.MaxResults < 1 {
		return 0, fmt.Errorf("%w: %s: max_results must be at least 1, got %d", ErrInvalidArgs, SearchPapers, *a.MaxResults)
	}
	return *a.MaxResults, nil
}

func (a ExtractInfoArgs) validate() (string, error) {
	switch {
	case a.PaperID == "" && a.EntryID == "":
		return "", fmt.Errorf("%w: %s: paper_id is required", ErrInvalidArgs, ExtractInfo)
	case a.PaperID != "" && a.EntryID != "" && a.PaperID != a.EntryID:
		return "", fmt.Errorf("%w: %s: paper_id and entry_id disagree", ErrInvalidArgs, ExtractInfo)
	case a.PaperID != "":
		return a.PaperID, nil
	default:
		return a.EntryID, nil
	}
}

// decodeArgs decodes an argument mapping into out. Keys match field tags
// ignoring case and underscores, so max_results and maxResults are the same
// key. Unknown keys are rejected.
func decodeArgs(tool Name, args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		DecodeHook:  mapstructure.DecodeHookFuncType(integralFloat),
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		},
	})
	if err != nil {
		return fmt.Errorf("building argument decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidArgs, tool, err)
	}
	return nil
}

// integralFloat converts a float argument bound for an integer field to
// int64, rejecting fractions and values outside the int64 range.
func integralFloat(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}

	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return data, nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("expected an integer, got %v", f)
	}
	if f < math.MinInt64 || f >= -math.MinInt64 {
		return nil, fmt.Errorf("integer %v is out of range", f)
	}
	return int64(f), nil
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

// Aliases lists every accepted tool name, canonical and alias, sorted.
func Aliases() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
