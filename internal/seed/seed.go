// Package seed loads JSON seed files into the store. Each file holds one
// model:
//
//	{"model": "QuoteStatus", "data": [{"name": "archived", "display_name": "Archived"}]}
//	{"model": "Quote", "data": [{"author": "Seneca", "quotation": "...", "source": "https://..."}]}
//
// Statuses are upserted by name. Quotes are created through the quote
// service as the first admin, published, so they go through the same
// sanitization, de-duplication and index sync as API submissions; quotes
// that already exist are skipped.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-quotes-backend/internal/domain"
	"github.com/tbourn/go-quotes-backend/internal/repo"
	"github.com/tbourn/go-quotes-backend/internal/services"
)

// Model names accepted in seed files.
const (
	ModelQuoteStatus = "QuoteStatus"
	ModelQuote       = "Quote"
)

// ErrUnknownModel is returned for a seed file with an unsupported model.
var ErrUnknownModel = errors.New("unknown seed model")

// File is one parsed seed file.
type File struct {
	Path  string
	Model string          `json:"model"`
	Data  json.RawMessage `json:"data"`
}

// StatusRecord is a QuoteStatus seed entry.
type StatusRecord struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// QuoteRecord is a Quote seed entry.
type QuoteRecord struct {
	Author    string `json:"author"`
	Quotation string `json:"quotation"`
	Source    string `json:"source"`
}

// Result counts what Apply did.
type Result struct {
	Statuses      int
	Quotes        int
	SkippedQuotes int
}

// LoadDir parses every *.json file in dir, in name order.
func LoadDir(dir string) ([]File, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	files := make([]File, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		var f File
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		f.Path = p
		switch f.Model {
		case ModelQuoteStatus, ModelQuote:
		default:
			return nil, fmt.Errorf("%s: %w %q", p, ErrUnknownModel, f.Model)
		}
		files = append(files, f)
	}
	return files, nil
}

// Apply writes files to the store. Status files are applied before quote
// files so quotes can rely on the statuses. Quote files require an admin
// user; without one Apply fails with services.ErrNoAdmin.
func Apply(ctx context.Context, db *gorm.DB, quotes *services.QuoteService, files []File) (Result, error) {
	var res Result

	for _, f := range files {
		if f.Model != ModelQuoteStatus {
			continue
		}
		var recs []StatusRecord
		if err := json.Unmarshal(f.Data, &recs); err != nil {
			return res, fmt.Errorf("%s: %w", f.Path, err)
		}
		for _, r := range recs {
			name := strings.TrimSpace(r.Name)
			if name == "" {
				return res, fmt.Errorf("%s: status without name", f.Path)
			}
			st := domain.QuoteStatus{Name: name, DisplayName: strings.TrimSpace(r.DisplayName)}
			if st.DisplayName == "" {
				st.DisplayName = name
			}
			if err := repo.UpsertStatus(ctx, db, &st); err != nil {
				return res, fmt.Errorf("%s: status %q: %w", f.Path, name, err)
			}
			res.Statuses++
		}
	}

	var admin *services.Caller
	for _, f := range files {
		if f.Model != ModelQuote {
			continue
		}
		if admin == nil {
			u, err := repo.FirstAdmin(ctx, db)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return res, services.ErrNoAdmin
				}
				return res, err
			}
			admin = &services.Caller{UserID: u.ID, Admin: true}
		}

		var recs []QuoteRecord
		if err := json.Unmarshal(f.Data, &recs); err != nil {
			return res, fmt.Errorf("%s: %w", f.Path, err)
		}
		for i, r := range recs {
			_, _, err := quotes.Create(ctx, *admin, services.CreateQuoteInput{
				Author:    r.Author,
				Quotation: r.Quotation,
				Source:    r.Source,
				Status:    domain.StatusPublished,
			})
			switch {
			case err == nil:
				res.Quotes++
			case errors.Is(err, services.ErrDuplicateQuote):
				res.SkippedQuotes++
			default:
				return res, fmt.Errorf("%s: quote #%d: %w", f.Path, i, err)
			}
		}
		log.Info().Str("file", f.Path).Int("quotes", len(recs)).Msg("seed file applied")
	}
	return res, nil
}
