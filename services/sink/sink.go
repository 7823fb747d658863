package sink

import "context"

// Sink receives the rows of a run. The column order is fixed for the whole run and
// every row carries every column.
type Sink interface {
	// WriteRows writes rows under the given schema
	WriteRows(ctx context.Context, columns []string, rows []map[string]string) error

	// Name identifies the sink in logs and summaries
	Name() string

	// Close releases the sink's resources
	Close() error
}
