// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a SQLite index of every saved paper so records can
// be filtered by text, topic, and publication date. The topic stores stay
// the source of truth; the catalog is rebuilt from them on demand.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-index/internal/library"
	"github.com/pdiddy/paper-index/pkg/types"
)

const table = "papers"

var columns = []string{
	"topic",
	"entry_id",
	"title",
	"authors_json",
	"summary",
	"pdf_url",
	"published_date",
}

// TopicSource lists topic stores. *library.Library satisfies it.
type TopicSource interface {
	Topics() ([]library.Topic, error)
}

// Catalog wraps the SQLite database.
type Catalog struct {
	db   *sql.DB
	path string
}

// Open opens or creates the catalog database at path and ensures the
// schema exists.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	c := &Catalog{db: db, path: path}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return c, nil
}

// Path returns the database file path.
func (c *Catalog) Path() string { return c.path }

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			topic TEXT NOT NULL,
			entry_id TEXT NOT NULL,
			title TEXT,
			authors_json TEXT,
			summary TEXT,
			pdf_url TEXT,
			published_date TEXT,
			PRIMARY KEY (topic, entry_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_entry_id ON papers(entry_id)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_published ON papers(published_date)`,
	}
	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RebuildSummary holds counts from a rebuild.
type RebuildSummary struct {
	Topics  int
	Papers  int
	Skipped int // malformed topic stores
	NoID    int // records without a string entry_id
}

// Rebuild replaces the catalog contents with the records currently held
// in src. Malformed topic stores and records without an entry ID are
// skipped and counted.
func (c *Catalog) Rebuild(ctx context.Context, src TopicSource) (RebuildSummary, error) {
	topics, err := src.Topics()
	if err != nil {
		return RebuildSummary{}, fmt.Errorf("listing topics: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return RebuildSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	del, args, err := sq.Delete(table).ToSql()
	if err != nil {
		return RebuildSummary{}, err
	}
	if _, err := tx.ExecContext(ctx, del, args...); err != nil {
		return RebuildSummary{}, fmt.Errorf("clearing catalog: %w", err)
	}

	var summary RebuildSummary
	for _, t := range topics {
		if t.Malformed {
			summary.Skipped++
			continue
		}
		summary.Topics++
		for _, r := range t.Records {
			if r.EntryID == "" {
				summary.NoID++
				continue
			}
			if err := insertRecord(ctx, tx, t.Key, r); err != nil {
				return RebuildSummary{}, fmt.Errorf("indexing %s in %s: %w", r.EntryID, t.Key, err)
			}
			summary.Papers++
		}
	}

	if err := tx.Commit(); err != nil {
		return RebuildSummary{}, fmt.Errorf("committing catalog: %w", err)
	}
	return summary, nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, topic string, r types.PaperRecord) error {
	authors := r.Authors
	if authors == nil {
		authors = []string{}
	}
	authorsJSON, err := json.Marshal(authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}

	query, args, err := sq.Insert(table).
		Options("OR REPLACE").
		Columns(columns...).
		Values(topic, r.EntryID, r.Title, string(authorsJSON), r.Summary, r.PDFURL, r.PublishedDate).
		ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// Filter narrows a catalog search. Zero fields are ignored.
type Filter struct {
	Term  string    // substring of title, summary, or author names
	Topic string    // topic name; normalized to its key
	Since time.Time // earliest publication date, inclusive
	Limit int
}

// Entry is one catalog row.
type Entry struct {
	Topic  string
	Record types.PaperRecord
}

// Search returns catalog entries matching f, newest first.
func (c *Catalog) Search(ctx context.Context, f Filter) ([]Entry, error) {
	query, args, err := buildSearch(f)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			authorsJSON string
		)
		if err := rows.Scan(
			&e.Topic, &e.Record.EntryID, &e.Record.Title, &authorsJSON,
			&e.Record.Summary, &e.Record.PDFURL, &e.Record.PublishedDate,
		); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		if err := json.Unmarshal([]byte(authorsJSON), &e.Record.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors for %s: %w", e.Record.EntryID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func buildSearch(f Filter) (string, []any, error) {
	q := sq.Select(columns...).From(table)

	if f.Term != "" {
		pattern := "%" + f.Term + "%"
		q = q.Where(sq.Or{
			sq.Like{"title": pattern},
			sq.Like{"summary": pattern},
			sq.Like{"authors_json": pattern},
		})
	}
	if f.Topic != "" {
		key, err := library.TopicKey(f.Topic)
		if err != nil {
			return "", nil, err
		}
		q = q.Where(sq.Eq{"topic": key})
	}
	if !f.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"published_date": f.Since.UTC().Format(types.PublishedDateLayout)})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	return q.OrderBy("published_date DESC", "topic", "entry_id").ToSql()
}

// Count returns the number of rows in the catalog.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	query, args, err := sq.Select("count(*)").From(table).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting catalog rows: %w", err)
	}
	return n, nil
}
