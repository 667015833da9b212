// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries the arXiv API for papers matching a topic.
package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-index/internal/httputil"
	"github.com/pdiddy/paper-index/pkg/types"
)

// DefaultArxivBaseURL is the arXiv search endpoint.
const DefaultArxivBaseURL = "https://export.arxiv.org/api/query"

const (
	defaultMaxResults = 5
	defaultTimeout    = 30 * time.Second
	defaultUserAgent  = "paper-index/0.1"
	errorIDMarker     = "/api/errors"
)

// Arxiv queries the arXiv Atom API. Requests are paced to one per
// RequestInterval and retried on 429/503.
type Arxiv struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     types.ArxivConfig
}

// NewArxiv builds an arXiv backend. A nil client gets one with cfg.Timeout.
// A non-positive RequestInterval disables pacing.
func NewArxiv(cfg types.ArxivConfig, client *http.Client) *Arxiv {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultArxivBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	a := &Arxiv{client: client, cfg: cfg}
	if cfg.RequestInterval > 0 {
		a.limiter = rate.NewLimiter(rate.Every(cfg.RequestInterval), 1)
	}
	return a
}

// Name returns the backend identifier.
func (a *Arxiv) Name() string { return "arxiv" }

// Search returns up to maxResults candidates for query, ranked by arXiv
// relevance.
func (a *Arxiv) Search(ctx context.Context, query string, maxResults int) ([]types.Candidate, error) {
	q := buildArxivQuery(query)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	params := url.Values{
		"search_query": {q},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(maxResults)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}
	reqURL := a.cfg.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.cfg.UserAgent)

	resp, err := httputil.Do(ctx, a.client, a.limiter, req, a.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	candidates := make([]types.Candidate, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		id := strings.TrimSpace(entry.ID)
		if strings.Contains(id, errorIDMarker) {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(entry.Summary)}
		}
		if id == "" {
			continue
		}
		candidates = append(candidates, entry.candidate())
		if len(candidates) == maxResults {
			break
		}
	}
	return candidates, nil
}

// buildArxivQuery turns a topic into a search_query value. Plain text
// becomes all-field terms joined with AND; a query that already uses arXiv
// field prefixes ("ti:", "au:", ...) is passed through.
func buildArxivQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}
	if strings.Contains(query, ":") {
		return query
	}
	terms := strings.Fields(query)
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = "all:" + t
	}
	return strings.Join(parts, " AND ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

func (e arxivEntry) candidate() types.Candidate {
	c := types.Candidate{
		EntryID: strings.TrimSpace(e.ID),
		Title:   strings.Join(strings.Fields(e.Title), " "),
		Summary: strings.TrimSpace(e.Summary),
		PDFURL:  e.pdfURL(),
	}
	for _, a := range e.Authors {
		c.Authors = append(c.Authors, types.Author{Name: strings.TrimSpace(a.Name)})
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		c.Published = t
	}
	return c
}

// pdfURL returns the href of the entry's PDF link.
func (e arxivEntry) pdfURL() string {
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			return l.Href
		}
	}
	return ""
}
