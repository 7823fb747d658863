package crawler

import (
	"context"
	"time"

	apperrors "sjsage522/catalogscraper/pkg/errors"
)

// Column names shared by every profile
const (
	ColRegion       = "region"
	ColCategory     = "category"
	ColBrand        = "brand"
	ColName         = "name"
	ColSlug         = "slug"
	ColSize         = "size"
	ColRating       = "rating"
	ColPrice        = "price"
	ColCompound     = "compound"
	ColImageURL     = "image_url"
	ColType         = "type"
	ColBotanicals   = "botanicals"
	ColDescription  = "description"
	ColTastingNotes = "tasting_notes"
)

// ItemSummary holds the fields read from one listing card
type ItemSummary struct {
	Region   string `json:"region"`
	Category string `json:"category"`
	Brand    string `json:"brand"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Size     string `json:"size"`
	Rating   string `json:"rating"`
	Price    string `json:"price"`
	Compound string `json:"compound,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// ItemDetail holds the fields read from an item's own page. The zero value is the
// result of a failed enrichment.
type ItemDetail struct {
	ImageURL     string `json:"image_url,omitempty"`
	Type         string `json:"type"`
	Botanicals   string `json:"botanicals,omitempty"`
	Description  string `json:"description"`
	TastingNotes string `json:"tasting_notes"`
}

// EnrichedRow is one merged output row
type EnrichedRow struct {
	ItemSummary
	Detail ItemDetail

	// DetailFailed is set when the detail page could not be read
	DetailFailed bool
}

// Record renders the row as a column map. Every requested column is present.
func (r EnrichedRow) Record(columns []string) map[string]string {
	image := r.ImageURL
	if image == "" {
		image = r.Detail.ImageURL
	}
	all := map[string]string{
		ColRegion:       r.Region,
		ColCategory:     r.Category,
		ColBrand:        r.Brand,
		ColName:         r.Name,
		ColSlug:         r.Slug,
		ColSize:         r.Size,
		ColRating:       r.Rating,
		ColPrice:        r.Price,
		ColCompound:     r.Compound,
		ColImageURL:     image,
		ColType:         r.Detail.Type,
		ColBotanicals:   r.Detail.Botanicals,
		ColDescription:  r.Detail.Description,
		ColTastingNotes: r.Detail.TastingNotes,
	}

	record := make(map[string]string, len(columns))
	for _, col := range columns {
		record[col] = all[col]
	}
	return record
}

// Records renders rows in order
func Records(rows []EnrichedRow, columns []string) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		out[i] = row.Record(columns)
	}
	return out
}

// PageFetcher retrieves a page body with whatever retry policy it carries
type PageFetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

// CategoryOutcome records what one category contributed to a run
type CategoryOutcome struct {
	Category       string
	Rows           int
	DetailFailures int
	Skipped        int
	Err            *apperrors.CategoryFailure
	Elapsed        time.Duration
}

// Failed reports whether the whole category was lost
func (o CategoryOutcome) Failed() bool {
	return o.Err != nil
}

// RunResult is the outcome of a full pipeline run
type RunResult struct {
	Rows      []EnrichedRow
	Outcomes  []CategoryOutcome
	Cancelled bool
}

// DetailFailures counts rows merged with an empty detail record
func (r RunResult) DetailFailures() int {
	n := 0
	for _, o := range r.Outcomes {
		n += o.DetailFailures
	}
	return n
}

// FailedCategories counts categories that contributed no rows because of an error
func (r RunResult) FailedCategories() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Failed() {
			n++
		}
	}
	return n
}
