package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "sjsage522/catalogscraper/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVSinkWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	s := NewCSVSink(path)
	defer s.Close()

	columns := []string{"slug", "name", "type"}
	rows := []map[string]string{
		{"slug": "gin-a", "name": "Gin A", "type": "London Dry"},
		{"slug": "gin-b", "name": "Gin B, \"Navy\"", "type": ""},
		{"slug": "gin-c"},
	}

	require.NoError(t, s.WriteRows(context.Background(), columns, rows))

	assert.Equal(t, [][]string{
		{"slug", "name", "type"},
		{"gin-a", "Gin A", "London Dry"},
		{"gin-b", "Gin B, \"Navy\"", ""},
		{"gin-c", "", ""},
	}, readCSV(t, path))
}

func TestCSVSinkReplacesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	s := NewCSVSink(path)

	require.NoError(t, s.WriteRows(context.Background(), []string{"slug"}, []map[string]string{{"slug": "old"}}))
	require.NoError(t, s.WriteRows(context.Background(), []string{"slug"}, nil))

	assert.Equal(t, [][]string{{"slug"}}, readCSV(t, path))
}

func TestCSVSinkErrors(t *testing.T) {
	s := NewCSVSink(filepath.Join(t.TempDir(), "missing", "catalog.csv"))
	err := s.WriteRows(context.Background(), []string{"slug"}, nil)

	var sinkErr *apperrors.CrawlerError
	require.True(t, errors.As(err, &sinkErr))
	assert.Equal(t, apperrors.ErrorTypeSink, sinkErr.Type)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewCSVSink(filepath.Join(t.TempDir(), "x.csv")).WriteRows(ctx, nil, nil), context.Canceled)
}
