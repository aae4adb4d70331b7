package repository

// DefaultTable is the SQLite table read when none is configured.
const DefaultTable = "clients"

// Option applies a configuration option to the SQLiteSource.
type Option func(*SQLiteSource)

// WithTable sets the table holding client rows.
func WithTable(table string) Option {
	return func(s *SQLiteSource) {
		if table != "" {
			s.table = table
		}
	}
}
