package crawler

import (
	"context"
	"sync"
	"time"

	"sjsage522/catalogscraper/helpers"
	"sjsage522/catalogscraper/internal/fetch"
	"sjsage522/catalogscraper/logger"
)

const testBase = "https://shop.test"

var testSite = Site{BaseURL: testBase, Region: "bangalore"}

// reply is one scripted transport response
type reply struct {
	status int
	body   string
	err    error
	delay  time.Duration
}

// MockTransport serves scripted replies per URL; the last reply for a URL repeats
type MockTransport struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   map[string]int
	order   []string
	onGet   func(url string)
}

func NewMockTransport() *MockTransport {
	return &MockTransport{replies: make(map[string][]reply), calls: make(map[string]int)}
}

func (m *MockTransport) On(url string, replies ...reply) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[url] = replies
	return m
}

func (m *MockTransport) Calls(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[url]
}

func (m *MockTransport) Get(ctx context.Context, url string, headers map[string]string, timeout time.Duration) (*helpers.Response, error) {
	m.mu.Lock()
	script, ok := m.replies[url]
	n := m.calls[url]
	m.calls[url]++
	m.order = append(m.order, url)
	onGet := m.onGet
	m.mu.Unlock()

	if onGet != nil {
		onGet(url)
	}
	if !ok {
		return &helpers.Response{StatusCode: 404}, nil
	}
	if n >= len(script) {
		n = len(script) - 1
	}
	r := script[n]
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.err != nil {
		return nil, r.err
	}
	return &helpers.Response{StatusCode: r.status, Body: []byte(r.body)}, nil
}

func okReply(body string) reply {
	return reply{status: 200, body: body}
}

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

// newTestPipeline wires the real fetcher over a mock transport without backoff waits
func newTestPipeline(tr *MockTransport, workers int) (*CategoryCrawler, *fetch.Fetcher) {
	f := fetch.NewFetcher(tr, fetch.Options{
		Policy: fetch.Policy{MaxAttempts: 3, BackoffBase: time.Second},
		Sleep:  noSleep,
		Logger: logger.Nop(),
	})
	enricher := NewDetailEnricher(f, testSite, 10*time.Second, logger.Nop())
	c := NewCategoryCrawler(f, enricher, testSite, CategoryOptions{
		ListingTimeout: 30 * time.Second,
		DetailWorkers:  workers,
		Logger:         logger.Nop(),
	})
	return c, f
}
