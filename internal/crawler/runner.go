package crawler

import (
	"context"
	"errors"
	"time"

	"sjsage522/catalogscraper/logger"
	apperrors "sjsage522/catalogscraper/pkg/errors"
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Runner crawls categories one after another and collects their rows
type Runner struct {
	crawler *CategoryCrawler
	delay   time.Duration
	sleep   SleepFunc
	log     *logger.Logger
}

// NewRunner creates a runner. delay is the pause between two categories.
func NewRunner(crawler *CategoryCrawler, delay time.Duration, sleep SleepFunc, log *logger.Logger) *Runner {
	if sleep == nil {
		sleep = sleepContext
	}
	if log == nil {
		log = logger.ForComponent("runner")
	}
	return &Runner{crawler: crawler, delay: delay, sleep: sleep, log: log}
}

// Run crawls each category in order with the given profile. A failed category is
// recorded in its outcome and contributes no rows; the run always continues.
// Cancelling ctx stops the run before the next category and keeps merged rows.
func (r *Runner) Run(ctx context.Context, categories []string, profile Profile) RunResult {
	var result RunResult

	for i, category := range categories {
		if i > 0 {
			if err := r.sleep(ctx, r.delay); err != nil {
				result.Cancelled = true
				break
			}
		}
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}

		log := r.log.ForCategory(category)
		start := time.Now()
		rows, stats, err := r.crawler.crawl(ctx, category, profile.Summary, profile.Detail)
		outcome := CategoryOutcome{
			Category:       category,
			Rows:           len(rows),
			DetailFailures: stats.DetailFailures,
			Skipped:        stats.Skipped,
			Elapsed:        time.Since(start),
		}

		if err != nil {
			var failure *apperrors.CategoryFailure
			if !errors.As(err, &failure) {
				failure = apperrors.NewCategory(category, err)
			}
			outcome.Rows = 0
			outcome.Err = failure
			log.Error().
				Err(failure.Err).
				Str("kind", string(failure.Kind())).
				Msg("Category failed, continuing")
		} else {
			result.Rows = append(result.Rows, rows...)
			log.Info().
				Int("rows", outcome.Rows).
				Int("detail_failures", outcome.DetailFailures).
				Int("skipped", outcome.Skipped).
				Dur("elapsed", outcome.Elapsed).
				Msg("Category scraped")
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if ctx.Err() != nil {
		result.Cancelled = true
	}
	return result
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
