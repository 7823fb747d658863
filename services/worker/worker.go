package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"sjsage522/catalogscraper/internal/crawler"
	"sjsage522/catalogscraper/logger"
	"sjsage522/catalogscraper/services/sink"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Worker runs the pipeline and hands its rows to the sinks
type Worker struct {
	runner     *crawler.Runner
	profile    crawler.Profile
	categories []string
	sinks      []sink.Sink
	summary    io.Writer
	log        *logger.Logger
}

// NewWorker creates a new worker. summary receives the end-of-run table and may be nil.
func NewWorker(
	runner *crawler.Runner,
	profile crawler.Profile,
	categories []string,
	sinks []sink.Sink,
	summary io.Writer,
	log *logger.Logger,
) *Worker {
	if log == nil {
		log = logger.ForComponent("worker")
	}
	return &Worker{
		runner:     runner,
		profile:    profile,
		categories: categories,
		sinks:      sinks,
		summary:    summary,
		log:        log,
	}
}

// Start runs the pipeline every interval until ctx is cancelled.
// With a zero interval it runs once.
func (w *Worker) Start(ctx context.Context, interval time.Duration) error {
	for {
		start := time.Now()
		_, err := w.RunOnce(ctx)
		if err != nil {
			w.log.Error().Err(err).Msg("Run finished with sink errors")
		}
		w.log.Info().Dur("elapsed", time.Since(start)).Msg("Run finished")

		if interval <= 0 || ctx.Err() != nil {
			return err
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// RunOnce crawls every category, writes the rows to each sink once and renders the
// summary. Rows already merged are written even when ctx was cancelled mid-run.
func (w *Worker) RunOnce(ctx context.Context) (crawler.RunResult, error) {
	result := w.runner.Run(ctx, w.categories, w.profile)
	if result.Cancelled {
		w.log.Warn().Int("rows", len(result.Rows)).Msg("Run cancelled, flushing merged rows")
	}

	records := crawler.Records(result.Rows, w.profile.Columns)
	writeCtx := context.WithoutCancel(ctx)

	var errs []error
	for _, s := range w.sinks {
		if err := s.WriteRows(writeCtx, w.profile.Columns, records); err != nil {
			w.log.Error().Err(err).Str("sink", s.Name()).Msg("Failed to write rows")
			errs = append(errs, err)
			continue
		}
		w.log.Info().Str("sink", s.Name()).Int("rows", len(records)).Msg("Rows written")
	}

	if w.summary != nil {
		RenderSummary(w.summary, result)
	}
	return result, errors.Join(errs...)
}

// RenderSummary prints one line per category and the run totals
func RenderSummary(out io.Writer, result crawler.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Category", "Rows", "Detail failures", "Skipped", "Error"})

	for _, o := range result.Outcomes {
		errText := ""
		if o.Failed() {
			errText = fmt.Sprintf("%s: %v", o.Err.Kind(), o.Err.Err)
		}
		t.AppendRow(table.Row{o.Category, o.Rows, o.DetailFailures, o.Skipped, errText})
	}

	status := ""
	if result.Cancelled {
		status = "cancelled"
	}
	t.AppendFooter(table.Row{"Total", len(result.Rows), result.DetailFailures(), "", status})

	t.SetStyle(table.StyleRounded)
	t.Render()
}
