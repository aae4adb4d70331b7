package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/okian/prioritise/internal/domain/model"
	"github.com/okian/prioritise/pkg/metrics"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// clientColumns are read in this order; names follow the record's field names.
var clientColumns = []string{
	"id", "name", "email", "phone", "account_count",
	"Total Portfolio AUA", "TotalFees", "LoginsL12M", "MeetingsL12M",
}

// SQLiteSource reads the client table of a SQLite database file.
// Metric columns may hold any storage class; values are kept loose.
type SQLiteSource struct {
	path  string
	table string
}

// NewSQLiteSource creates a source over the database at path.
func NewSQLiteSource(path string, opts ...Option) *SQLiteSource {
	s := &SQLiteSource{path: path, table: DefaultTable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads every row of the client table in rowid order.
func (s *SQLiteSource) Load(ctx context.Context) ([]model.ClientRecord, error) {
	start := time.Now()

	// sql.Open would silently create a missing file.
	if _, err := os.Stat(s.path); err != nil {
		metrics.RecordErrorByComponent("repository", "open")
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "open")
		return nil, fmt.Errorf("%w: open %s: %w", ErrLoad, s.path, err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, s.query())
	if err != nil {
		metrics.RecordErrorByComponent("repository", "query")
		return nil, fmt.Errorf("%w: query %s: %w", ErrLoad, s.table, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ClientRecord
	for rows.Next() {
		var id, name, email, phone, accounts, aua, fees, logins, meetings sql.NullString
		if err := rows.Scan(&id, &name, &email, &phone, &accounts, &aua, &fees, &logins, &meetings); err != nil {
			metrics.RecordErrorByComponent("repository", "scan")
			return nil, fmt.Errorf("%w: scan row %d: %w", ErrLoad, len(out)+1, err)
		}
		out = append(out, model.ClientRecord{
			ID:           id.String,
			Name:         name.String,
			Email:        email.String,
			Phone:        phone.String,
			AccountCount: model.Loose(accounts.String),
			AUA:          model.Loose(aua.String),
			Fees:         model.Loose(fees.String),
			Logins:       model.Loose(logins.String),
			Meetings:     model.Loose(meetings.String),
		})
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		metrics.RecordErrorByComponent("repository", "query")
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	if err := validate(out); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_row")
		return nil, err
	}
	metrics.RecordSourceLoad(float64(time.Since(start).Microseconds())/1000.0, len(out))
	return out, nil
}

func (s *SQLiteSource) query() string {
	cols := make([]string, len(clientColumns))
	for i, c := range clientColumns {
		cols[i] = quoteIdent(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(cols, ", "), quoteIdent(s.table))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
