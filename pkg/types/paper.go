// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PublishedDateLayout is the layout of PaperRecord.PublishedDate.
const PublishedDateLayout = "2006-01-02"

// PaperRecord is the metadata persisted for one paper in a topic store.
// Records are append-only: once stored under a topic they are never
// rewritten. Field order here is the field order of the JSON file.
type PaperRecord struct {
	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Summary is the paper abstract.
	Summary string `json:"summary" yaml:"summary"`

	// PDFURL links to the paper PDF.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// PublishedDate is the first publication date in YYYY-MM-DD form.
	PublishedDate string `json:"published_date" yaml:"published_date"`

	// EntryID is the globally unique identifier assigned by the search
	// provider (for arXiv, the abs URL including version).
	EntryID string `json:"entry_id" yaml:"entry_id"`
}

// RecordFromCandidate converts a search candidate into the record that is
// written to disk.
func RecordFromCandidate(c Candidate) PaperRecord {
	authors := make([]string, 0, len(c.Authors))
	for _, a := range c.Authors {
		authors = append(authors, a.Name)
	}
	var published string
	if !c.Published.IsZero() {
		published = c.Published.UTC().Format(PublishedDateLayout)
	}
	return PaperRecord{
		Title:         c.Title,
		Authors:       authors,
		Summary:       c.Summary,
		PDFURL:        c.PDFURL,
		PublishedDate: published,
		EntryID:       c.EntryID,
	}
}

// Published parses PublishedDate. It returns the zero time when the field
// is empty or malformed.
func (r PaperRecord) Published() time.Time {
	t, err := time.Parse(PublishedDateLayout, r.PublishedDate)
	if err != nil {
		return time.Time{}
	}
	return t
}
