package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeTransientFetch represents 5xx responses and transport failures
	ErrorTypeTransientFetch ErrorType = "transient_fetch"
	// ErrorTypePermanentFetch represents any other non-2xx response
	ErrorTypePermanentFetch ErrorType = "permanent_fetch"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeSink represents output sink errors
	ErrorTypeSink ErrorType = "sink"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// CrawlerError represents a scraper error that is not tied to a single fetch
type CrawlerError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *CrawlerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlerError) Unwrap() error {
	return e.Err
}

// New creates a new CrawlerError
func New(errType ErrorType, source, message string, err error) *CrawlerError {
	return &CrawlerError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *CrawlerError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewSink creates a new sink error
func NewSink(source, message string, err error) *CrawlerError {
	return New(ErrorTypeSink, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlerError {
	return New(ErrorTypeConfiguration, "config", message, err)
}

// FetchFailure is returned when a page could not be retrieved.
// Status is zero when no HTTP response was received.
type FetchFailure struct {
	Type     ErrorType
	URL      string
	Status   int
	Attempts int
	Err      error
}

// Error implements the error interface
func (f *FetchFailure) Error() string {
	switch {
	case f.Status != 0 && f.Err != nil:
		return fmt.Sprintf("[%s] %s: status %d after %d attempt(s) - %v", f.Type, f.URL, f.Status, f.Attempts, f.Err)
	case f.Status != 0:
		return fmt.Sprintf("[%s] %s: status %d after %d attempt(s)", f.Type, f.URL, f.Status, f.Attempts)
	default:
		return fmt.Sprintf("[%s] %s: after %d attempt(s) - %v", f.Type, f.URL, f.Attempts, f.Err)
	}
}

// Unwrap returns the last transport error, if any
func (f *FetchFailure) Unwrap() error {
	return f.Err
}

// IsRetryable returns true if the failure kind is worth retrying
func (f *FetchFailure) IsRetryable() bool {
	return f.Type == ErrorTypeTransientFetch
}

// NewTransientFetch creates a failure for an exhausted 5xx or transport error sequence
func NewTransientFetch(url string, status, attempts int, err error) *FetchFailure {
	return &FetchFailure{Type: ErrorTypeTransientFetch, URL: url, Status: status, Attempts: attempts, Err: err}
}

// NewPermanentFetch creates a failure for a non-retryable status
func NewPermanentFetch(url string, status, attempts int) *FetchFailure {
	return &FetchFailure{Type: ErrorTypePermanentFetch, URL: url, Status: status, Attempts: attempts}
}

// CategoryFailure records that a whole category listing could not be processed
type CategoryFailure struct {
	Category string
	Err      error
}

// Error implements the error interface
func (c *CategoryFailure) Error() string {
	return fmt.Sprintf("category %s: %v", c.Category, c.Err)
}

// Unwrap returns the underlying error
func (c *CategoryFailure) Unwrap() error {
	return c.Err
}

// Kind classifies the failure by its underlying cause
func (c *CategoryFailure) Kind() ErrorType {
	var ff *FetchFailure
	if errors.As(c.Err, &ff) {
		return ff.Type
	}
	var ce *CrawlerError
	if errors.As(c.Err, &ce) {
		return ce.Type
	}
	return ErrorTypeParsing
}

// NewCategory wraps err as a CategoryFailure
func NewCategory(category string, err error) *CategoryFailure {
	return &CategoryFailure{Category: category, Err: err}
}
