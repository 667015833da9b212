// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for paper-index: the
// persisted PaperRecord, the Candidate returned by a search provider, and
// configuration.
package types

import "time"

// Author identifies a paper author as reported by the search provider.
type Author struct {
	// Name is the author's display name.
	Name string `json:"name" yaml:"name"`
}

// Candidate is one result returned by the external search provider, in
// provider-ranked order.
type Candidate struct {
	// EntryID is the provider's unique identifier for the paper.
	EntryID string `json:"entry_id" yaml:"entry_id"`

	// Title is the paper title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []Author `json:"authors" yaml:"authors"`

	// Summary is the paper abstract.
	Summary string `json:"summary" yaml:"summary"`

	// PDFURL links to the PDF rendition, if the provider has one.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Published is the first publication time.
	Published time.Time `json:"published" yaml:"published"`
}
