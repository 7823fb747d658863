package sink

import (
	"bufio"
	"context"
	"encoding/csv"
	"os"

	apperrors "sjsage522/catalogscraper/pkg/errors"
)

// CSVSink writes one CSV file per run, header first
type CSVSink struct {
	path string
}

// NewCSVSink creates a sink writing to path. The file is replaced on every write.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Name implements Sink
func (s *CSVSink) Name() string {
	return "csv:" + s.path
}

// WriteRows implements Sink
func (s *CSVSink) WriteRows(ctx context.Context, columns []string, rows []map[string]string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewSink(s.Name(), "write aborted", err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return apperrors.NewSink(s.Name(), "failed to create file", err)
	}
	defer f.Close()

	bufw := bufio.NewWriterSize(f, 1<<20)
	w := csv.NewWriter(bufw)
	if err := w.Write(columns); err != nil {
		return apperrors.NewSink(s.Name(), "failed to write header", err)
	}

	rec := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			rec[i] = row[col]
		}
		if err := w.Write(rec); err != nil {
			return apperrors.NewSink(s.Name(), "failed to write row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.NewSink(s.Name(), "failed to flush rows", err)
	}
	if err := bufw.Flush(); err != nil {
		return apperrors.NewSink(s.Name(), "failed to flush file", err)
	}
	if err := f.Sync(); err != nil {
		return apperrors.NewSink(s.Name(), "failed to sync file", err)
	}
	return nil
}

// Close implements Sink
func (s *CSVSink) Close() error {
	return nil
}
