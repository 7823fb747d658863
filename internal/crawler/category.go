package crawler

import (
	"context"
	"time"

	"sjsage522/catalogscraper/helpers"
	"sjsage522/catalogscraper/internal/locator"
	"sjsage522/catalogscraper/logger"
	apperrors "sjsage522/catalogscraper/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// CategoryStats counts per-item events of a single crawl
type CategoryStats struct {
	Cards          int
	Skipped        int
	DetailFailures int
}

// CategoryCrawler turns one listing page into enriched rows
type CategoryCrawler struct {
	fetcher        PageFetcher
	enricher       *DetailEnricher
	site           Site
	listingTimeout time.Duration
	workers        int
	log            *logger.Logger
}

// CategoryOptions configures a CategoryCrawler
type CategoryOptions struct {
	ListingTimeout time.Duration
	DetailWorkers  int
	Logger         *logger.Logger
}

// NewCategoryCrawler creates a crawler. Listing and detail pages share the same fetcher.
func NewCategoryCrawler(fetcher PageFetcher, enricher *DetailEnricher, site Site, opts CategoryOptions) *CategoryCrawler {
	if opts.DetailWorkers < 1 {
		opts.DetailWorkers = 1
	}
	if opts.Logger == nil {
		opts.Logger = logger.ForComponent("category")
	}
	return &CategoryCrawler{
		fetcher:        fetcher,
		enricher:       enricher,
		site:           site,
		listingTimeout: opts.ListingTimeout,
		workers:        opts.DetailWorkers,
		log:            opts.Logger,
	}
}

// Crawl fetches the listing of category, extracts a summary per card and enriches each
// from its detail page. Rows come back in listing order. Only a listing failure is
// returned as an error, always a *errors.CategoryFailure.
func (c *CategoryCrawler) Crawl(ctx context.Context, category string, summary, detail locator.Set) ([]EnrichedRow, error) {
	rows, _, err := c.crawl(ctx, category, summary, detail)
	return rows, err
}

func (c *CategoryCrawler) crawl(ctx context.Context, category string, summary, detail locator.Set) ([]EnrichedRow, CategoryStats, error) {
	var stats CategoryStats
	log := c.log.ForCategory(category)

	url := c.site.ListingURL(category)
	body, err := c.fetcher.Fetch(ctx, url, c.listingTimeout)
	if err != nil {
		return nil, stats, apperrors.NewCategory(category, err)
	}

	doc, err := locator.Parse(body)
	if err != nil {
		return nil, stats, apperrors.NewCategory(category, err)
	}

	items := c.summaries(doc, category, summary, log, &stats)
	log.Debug().Int("cards", stats.Cards).Int("items", len(items)).Msg("Listing parsed")

	slots := make([]EnrichedRow, len(items))
	merged := make([]bool, len(items))

	var g errgroup.Group
	g.SetLimit(c.workers)

	for i, item := range items {
		if ctx.Err() != nil {
			log.Info().Int("remaining", len(items)-i).Msg("Run cancelled, not dispatching further items")
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			d, ok := c.enricher.Enrich(ctx, item.Slug, detail)
			slots[i] = EnrichedRow{ItemSummary: item, Detail: d, DetailFailed: !ok}
			merged[i] = true
			return nil
		})
	}
	_ = g.Wait()

	rows := make([]EnrichedRow, 0, len(items))
	for i, row := range slots {
		if !merged[i] {
			continue
		}
		if row.DetailFailed {
			stats.DetailFailures++
		}
		rows = append(rows, row)
	}
	return rows, stats, nil
}

// summaries enumerates item cards in document order
func (c *CategoryCrawler) summaries(doc *goquery.Document, category string, set locator.Set, log *logger.Logger, stats *CategoryStats) []ItemSummary {
	host, prefix := c.site.Host(), c.site.ItemPrefix()

	var items []ItemSummary
	doc.Find("a[href]").Each(func(_ int, card *goquery.Selection) {
		href, _ := card.Attr("href")
		if _, ok := helpers.ItemPath(href, host, prefix); !ok {
			return
		}
		stats.Cards++

		slug := helpers.SlugFromHref(href, host, prefix)
		if slug == "" {
			stats.Skipped++
			log.Warn().Str("href", href).Msg("Card has no slug, skipping")
			return
		}

		values, err := locator.Extract(card, set)
		if err != nil {
			stats.Skipped++
			log.Warn().Err(err).Str("href", href).Msg("Card could not be read, skipping")
			return
		}

		items = append(items, ItemSummary{
			Region:   c.site.Region,
			Category: category,
			Brand:    values[ColBrand],
			Name:     values[ColName],
			Slug:     slug,
			Size:     values[ColSize],
			Rating:   values[ColRating],
			Price:    values[ColPrice],
			Compound: values[ColCompound],
			ImageURL: values[ColImageURL],
		})
	})
	return items
}
