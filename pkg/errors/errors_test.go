package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchFailureClassification(t *testing.T) {
	transient := NewTransientFetch("https://example.com/a", 503, 3, nil)
	assert.True(t, transient.IsRetryable())
	assert.Contains(t, transient.Error(), "status 503 after 3 attempt(s)")

	permanent := NewPermanentFetch("https://example.com/b", 404, 1)
	assert.False(t, permanent.IsRetryable())
	assert.Equal(t, ErrorTypePermanentFetch, permanent.Type)

	netErr := errors.New("connection reset by peer")
	network := NewTransientFetch("https://example.com/c", 0, 3, netErr)
	assert.ErrorIs(t, network, netErr)
	assert.Contains(t, network.Error(), "connection reset by peer")
}

func TestCategoryFailureKind(t *testing.T) {
	wrapped := fmt.Errorf("listing: %w", NewPermanentFetch("https://example.com/x", 410, 1))
	failure := NewCategory("gin", wrapped)
	assert.Equal(t, ErrorTypePermanentFetch, failure.Kind())
	assert.Contains(t, failure.Error(), "category gin")

	var ff *FetchFailure
	assert.True(t, errors.As(failure, &ff))
	assert.Equal(t, 410, ff.Status)

	parsing := NewCategory("rum", NewParsing("rum", "bad markup", nil))
	assert.Equal(t, ErrorTypeParsing, parsing.Kind())
}
