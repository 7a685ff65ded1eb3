// Package search provides a deterministic, concurrency-safe in-memory
// full-text index over quotes. It stands in for an external search service:
// callers only see the Index interface, and the index is kept in sync with
// the store through post-commit change events (see SyncHandler).
//
//   - No logging in the library (callers decide how/what to log)
//   - Functional options (Option pattern)
//   - Unicode-aware, accent-insensitive tokenization with optional stop-word removal
//   - Deterministic scoring and sorting (stable order for ties)
//
// Each field is scored with Jaccard similarity between the query token set
// and the field token set, score = |Q ∩ F| / |Q ∪ F|, and the field scores
// are combined with per-field weights (quotation outweighs author).
package search

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Document is the searchable projection of a quote.
type Document struct {
	ID        uint
	Author    string
	Quotation string
}

// Index is the search collaborator consumed by the feed. Search returns
// document ids ordered by relevance, best first.
type Index interface {
	Upsert(ctx context.Context, d Document) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, limit int) ([]uint, error)
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	stopwords       map[string]struct{}
	quotationWeight float64
	authorWeight    float64
	defaultLimit    int
}

func defaultConfig() config {
	return config{
		stopwords:       nil,
		quotationWeight: 1.0,
		authorWeight:    0.5,
		defaultLimit:    100,
	}
}

func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithFieldWeights sets the relative weight of quotation and author matches.
// Negative values are ignored.
func WithFieldWeights(quotation, author float64) Option {
	return func(c *config) {
		if quotation >= 0 {
			c.quotationWeight = quotation
		}
		if author >= 0 {
			c.authorWeight = author
		}
	}
}

// WithDefaultLimit sets the number of ids returned when Search is called
// with a non-positive limit.
func WithDefaultLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.defaultLimit = n
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type doc struct {
	id        uint
	quotation map[string]struct{}
	author    map[string]struct{}
	lenRunes  int
}

// MemoryIndex is an Index held in process memory. The zero value is not
// usable; construct with NewMemoryIndex.
type MemoryIndex struct {
	cfg  config
	mu   sync.RWMutex
	docs map[uint]doc
}

var _ Index = (*MemoryIndex)(nil)

// NewMemoryIndex returns an empty index.
func NewMemoryIndex(opts ...Option) *MemoryIndex {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &MemoryIndex{cfg: cfg, docs: make(map[uint]doc)}
}

// Upsert adds d or replaces the document with the same id. A document with
// no indexable tokens is removed.
func (i *MemoryIndex) Upsert(ctx context.Context, d Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q := strings.TrimSpace(normalizeWhitespace(d.Quotation))
	a := strings.TrimSpace(normalizeWhitespace(d.Author))
	entry := doc{
		id:        d.ID,
		quotation: tokenize(q, i.cfg.stopwords),
		author:    tokenize(a, i.cfg.stopwords),
		lenRunes:  utf8.RuneCountInString(q),
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if len(entry.quotation) == 0 && len(entry.author) == 0 {
		delete(i.docs, d.ID)
		return nil
	}
	i.docs[d.ID] = entry
	return nil
}

// Delete removes document id. Deleting an unknown id is not an error.
func (i *MemoryIndex) Delete(ctx context.Context, id uint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i.mu.Lock()
	delete(i.docs, id)
	i.mu.Unlock()
	return nil
}

// Len returns the number of indexed documents.
func (i *MemoryIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}

// Search returns up to limit document ids by descending weighted score.
// Ties are broken by shorter quotation, then lower id.
func (i *MemoryIndex) Search(ctx context.Context, q string, limit int) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(q) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = i.cfg.defaultLimit
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil, nil
	}

	type scored struct {
		id       uint
		score    float64
		lenRunes int
	}

	i.mu.RLock()
	buf := make([]scored, 0, min(limit*4, len(i.docs)))
	for _, d := range i.docs {
		score := i.cfg.quotationWeight*jaccard(qTokens, d.quotation) +
			i.cfg.authorWeight*jaccard(qTokens, d.author)
		if score <= 0 {
			continue
		}
		buf = append(buf, scored{id: d.id, score: score, lenRunes: d.lenRunes})
	}
	i.mu.RUnlock()

	if len(buf) == 0 {
		return nil, nil
	}

	sort.Slice(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if buf[a].lenRunes != buf[b].lenRunes {
			return buf[a].lenRunes < buf[b].lenRunes
		}
		return buf[a].id < buf[b].id
	})

	if limit > len(buf) {
		limit = len(buf)
	}
	out := make([]uint, limit)
	for k := 0; k < limit; k++ {
		out[k] = buf[k].id
	}
	return out, nil
}

// ----------------------------------------------------------------------------
// Helpers

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*|\p{N}+`)

// foldAccents maps "Café" to "Cafe" so queries match with or without marks.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	s = strings.ToLower(foldAccents(s))
	words := wordRE.FindAllString(s, -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

func jaccard(q, f map[string]struct{}) float64 {
	over := overlap(q, f)
	if over == 0 {
		return 0
	}
	union := len(q) + len(f) - over
	if union <= 0 {
		return 0
	}
	return float64(over) / float64(union)
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := 0
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
