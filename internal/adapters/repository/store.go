// Package repository loads client rows from the configured row store.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/prioritise/internal/domain/model"
)

// Source kinds understood by New.
const (
	KindSQLite = "sqlite"
	KindCSV    = "csv"
)

// Source reads the full client cohort.
type Source interface {
	// Load returns every client row in store order. Rows with a blank
	// identifier yield ErrMissingID; a repeated identifier yields
	// ErrDuplicateClient.
	Load(ctx context.Context) ([]model.ClientRecord, error)
}

// New builds the Source for kind reading from path.
func New(kind, path string, opts ...Option) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindSQLite:
		return NewSQLiteSource(path, opts...), nil
	case KindCSV:
		return NewCSVSource(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// validate enforces identifier presence and uniqueness across a loaded cohort.
func validate(records []model.ClientRecord) error {
	seen := make(map[string]int, len(records))
	for i, r := range records {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			return fmt.Errorf("%w: row %d", ErrMissingID, i+1)
		}
		if first, ok := seen[id]; ok {
			return fmt.Errorf("%w: %q at rows %d and %d", ErrDuplicateClient, id, first+1, i+1)
		}
		seen[id] = i
	}
	return nil
}

// StaticSource serves a fixed cohort held in memory.
type StaticSource struct {
	records []model.ClientRecord
}

// NewStaticSource copies records so later caller mutation is not observed.
func NewStaticSource(records []model.ClientRecord) *StaticSource {
	return &StaticSource{records: append([]model.ClientRecord(nil), records...)}
}

// Load returns a copy of the held cohort.
func (s *StaticSource) Load(ctx context.Context) ([]model.ClientRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validate(s.records); err != nil {
		return nil, err
	}
	return append([]model.ClientRecord(nil), s.records...), nil
}
