package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/okian/prioritise/internal/domain/model"
	"github.com/okian/prioritise/pkg/metrics"
)

// CSVSource reads clients from a header-addressed CSV file. Column order is
// free; only the id column is required and unknown columns are ignored.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source over the file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Load reads every data row of the file.
func (s *CSVSource) Load(ctx context.Context) ([]model.ClientRecord, error) {
	start := time.Now()

	f, err := os.Open(s.path)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "open")
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer func() { _ = f.Close() }()

	out, err := readCSV(ctx, f)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "parse")
		return nil, err
	}
	if err := validate(out); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_row")
		return nil, err
	}
	metrics.RecordSourceLoad(float64(time.Since(start).Microseconds())/1000.0, len(out))
	return out, nil
}

func readCSV(ctx context.Context, r io.Reader) ([]model.ClientRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrLoad, err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := col[h]; !dup {
			col[h] = i
		}
	}
	if _, ok := col["id"]; !ok {
		return nil, fmt.Errorf("%w: id", ErrMissingColumn)
	}

	var out []model.ClientRecord
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrLoad, line, err)
		}
		get := func(name string) string {
			if i, ok := col[name]; ok && i < len(row) {
				return row[i]
			}
			return ""
		}
		out = append(out, model.ClientRecord{
			ID:           get("id"),
			Name:         get("name"),
			Email:        get("email"),
			Phone:        get("phone"),
			AccountCount: model.Loose(get("account_count")),
			AUA:          model.Loose(get("Total Portfolio AUA")),
			Fees:         model.Loose(get("TotalFees")),
			Logins:       model.Loose(get("LoginsL12M")),
			Meetings:     model.Loose(get("MeetingsL12M")),
		})
	}
	return out, nil
}
