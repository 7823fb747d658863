package crawler

import (
	"context"
	"errors"
	"time"

	"sjsage522/catalogscraper/internal/locator"
	"sjsage522/catalogscraper/logger"
	apperrors "sjsage522/catalogscraper/pkg/errors"
)

// DetailEnricher reads the detail page of a single item
type DetailEnricher struct {
	fetcher PageFetcher
	site    Site
	timeout time.Duration
	log     *logger.Logger
}

// NewDetailEnricher creates an enricher. timeout bounds each detail request.
func NewDetailEnricher(fetcher PageFetcher, site Site, timeout time.Duration, log *logger.Logger) *DetailEnricher {
	if log == nil {
		log = logger.ForComponent("enricher")
	}
	return &DetailEnricher{fetcher: fetcher, site: site, timeout: timeout, log: log}
}

// Enrich fetches and extracts the detail record for slug. Failures are logged and
// yield an empty record with ok == false; they are never returned to the caller.
func (e *DetailEnricher) Enrich(ctx context.Context, slug string, set locator.Set) (detail ItemDetail, ok bool) {
	if len(set) == 0 {
		return ItemDetail{}, true
	}

	url := e.site.DetailURL(slug)
	body, err := e.fetcher.Fetch(ctx, url, e.timeout)
	if err != nil {
		e.logFailure(slug, url, err)
		return ItemDetail{}, false
	}

	doc, err := locator.Parse(body)
	if err != nil {
		e.logFailure(slug, url, err)
		return ItemDetail{}, false
	}

	values, err := locator.Extract(doc.Selection, set)
	if err != nil {
		e.logFailure(slug, url, err)
		return ItemDetail{}, false
	}

	return ItemDetail{
		ImageURL:     values[ColImageURL],
		Type:         values[ColType],
		Botanicals:   values[ColBotanicals],
		Description:  values[ColDescription],
		TastingNotes: values[ColTastingNotes],
	}, true
}

func (e *DetailEnricher) logFailure(slug, url string, err error) {
	event := e.log.Warn().Err(err).Str("slug", slug).Str("url", url)

	var failure *apperrors.FetchFailure
	if errors.As(err, &failure) {
		event = event.
			Str("kind", string(failure.Type)).
			Int("status", failure.Status).
			Int("attempts", failure.Attempts)
	}
	event.Msg("Detail enrichment failed, keeping summary only")
}
