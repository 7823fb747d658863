package fetch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"sjsage522/catalogscraper/helpers"
	"sjsage522/catalogscraper/logger"
	apperrors "sjsage522/catalogscraper/pkg/errors"
	"sjsage522/catalogscraper/services/cache"

	"golang.org/x/time/rate"
)

// Policy bounds the retry loop
type Policy struct {
	MaxAttempts int
	BackoffBase time.Duration
}

// Backoff returns the wait after the given failed attempt (1-based)
func (p Policy) Backoff(attempt int) time.Duration {
	return p.BackoffBase * time.Duration(1<<(attempt-1))
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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

// Options configures a Fetcher
type Options struct {
	Policy    Policy
	UserAgent string
	Sleep     SleepFunc
	Cache     cache.CacheService
	CacheTTL  time.Duration
	Limiter   *rate.Limiter
	Logger    *logger.Logger
}

// Fetcher retrieves pages with bounded retry on transient failures
type Fetcher struct {
	transport helpers.Transport
	policy    Policy
	headers   map[string]string
	sleep     SleepFunc
	cache     cache.CacheService
	cacheTTL  time.Duration
	limiter   *rate.Limiter
	log       *logger.Logger
}

// NewFetcher creates a fetcher over the given transport
func NewFetcher(transport helpers.Transport, opts Options) *Fetcher {
	if opts.Policy.MaxAttempts < 1 {
		opts.Policy.MaxAttempts = 1
	}
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	if opts.Logger == nil {
		opts.Logger = logger.ForComponent("fetcher")
	}
	return &Fetcher{
		transport: transport,
		policy:    opts.Policy,
		headers:   helpers.DefaultHeaders(opts.UserAgent),
		sleep:     opts.Sleep,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		limiter:   opts.Limiter,
		log:       opts.Logger,
	}
}

// Fetch returns the body of url. 5xx responses and transport errors are retried with
// exponential backoff; any other non-2xx status fails at once. Failures are *errors.FetchFailure.
//
// ctx only gates the start of the fetch. Once the first attempt is made the fetch runs
// to completion, backoff waits and retries included, even if ctx is cancelled.
func (f *Fetcher) Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if body, ok := f.cached(url); ok {
		return body, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTransientFetch(url, 0, 0, err)
	}
	ctx = context.WithoutCancel(ctx)

	var (
		lastStatus int
		lastErr    error
	)
	for attempt := 1; attempt <= f.policy.MaxAttempts; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, apperrors.NewTransientFetch(url, lastStatus, attempt-1, err)
			}
		}

		resp, err := f.transport.Get(ctx, url, f.headers, timeout)
		switch {
		case err != nil:
			lastStatus, lastErr = 0, err
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			f.store(url, resp.Body)
			return resp.Body, nil
		case resp.StatusCode >= 500 && resp.StatusCode < 600:
			lastStatus, lastErr = resp.StatusCode, nil
		default:
			f.log.Debug().Str("url", url).Int("status", resp.StatusCode).Msg("Non-retryable status")
			return nil, apperrors.NewPermanentFetch(url, resp.StatusCode, attempt)
		}

		if attempt == f.policy.MaxAttempts {
			break
		}

		wait := f.policy.Backoff(attempt)
		f.log.Warn().
			Str("url", url).
			Int("status", lastStatus).
			AnErr("cause", lastErr).
			Int("attempt", attempt).
			Int("max_attempts", f.policy.MaxAttempts).
			Dur("backoff", wait).
			Msg("Transient fetch failure, retrying")

		if err := f.sleep(ctx, wait); err != nil {
			return nil, apperrors.NewTransientFetch(url, lastStatus, attempt, err)
		}
	}

	return nil, apperrors.NewTransientFetch(url, lastStatus, f.policy.MaxAttempts, lastErr)
}

func cacheKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return "page:" + hex.EncodeToString(sum[:])
}

func (f *Fetcher) cached(url string) ([]byte, bool) {
	if f.cache == nil {
		return nil, false
	}
	body, err := f.cache.Get(cacheKey(url))
	if err != nil || len(body) == 0 {
		return nil, false
	}
	f.log.Debug().Str("url", url).Msg("Page served from cache")
	return body, true
}

func (f *Fetcher) store(url string, body []byte) {
	if f.cache == nil || f.cacheTTL <= 0 {
		return
	}
	if err := f.cache.Set(cacheKey(url), body, f.cacheTTL); err != nil {
		f.log.Debug().Err(err).Str("url", url).Msg("Failed to cache page")
	}
}
