package webpoet

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNoDownloader is returned when a client executes a request without a
// downloader supplied by the surrounding framework.
var ErrNoDownloader = errors.New("no downloader configured")

// Downloader executes a materialized request and returns a fully
// materialized response. The implementation — transport, retries,
// concurrency with the outside world — is the framework's business, not
// this module's.
type Downloader func(ctx context.Context, req *HttpRequest) (*HttpResponse, error)

// HttpClient is a convenience for issuing additional requests from
// extraction code. It builds HttpRequest values and hands them to the
// configured Downloader; it performs no I/O of its own.
type HttpClient struct {
	downloader Downloader
	logger     zerolog.Logger

	// MaxConcurrent bounds in-flight batch requests per client.
	// Zero means unlimited.
	maxConcurrent int
	limiter       chan struct{}
	limiterOnce   sync.Once
}

// ClientOption configures an HttpClient.
type ClientOption func(*HttpClient)

// WithLogger attaches a logger for request tracing. The default discards
// everything.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *HttpClient) { c.logger = logger }
}

// WithMaxConcurrent caps how many batch requests run at once.
func WithMaxConcurrent(n int) ClientOption {
	return func(c *HttpClient) { c.maxConcurrent = n }
}

// NewHttpClient builds a client around the given downloader.
func NewHttpClient(downloader Downloader, opts ...ClientOption) *HttpClient {
	c := &HttpClient{downloader: downloader, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request builds a request for url with the given options and executes it.
func (c *HttpClient) Request(ctx context.Context, url string, opts ...RequestOption) (*HttpResponse, error) {
	req, err := NewHttpRequest(url, opts...)
	if err != nil {
		return nil, err
	}
	return c.Execute(ctx, req)
}

// Get executes a GET request for url.
func (c *HttpClient) Get(ctx context.Context, url string, opts ...RequestOption) (*HttpResponse, error) {
	return c.Request(ctx, url, opts...)
}

// Post executes a POST request for url with the given body bytes.
func (c *HttpClient) Post(ctx context.Context, url string, body []byte, opts ...RequestOption) (*HttpResponse, error) {
	merged := append([]RequestOption{WithMethod("POST"), WithRequestBody(body)}, opts...)
	return c.Request(ctx, url, merged...)
}

// Execute hands a single request to the downloader.
func (c *HttpClient) Execute(ctx context.Context, req *HttpRequest) (*HttpResponse, error) {
	if c.downloader == nil {
		return nil, ErrNoDownloader
	}
	c.logger.Debug().
		Str("method", req.Method()).
		Stringer("url", req.URL()).
		Msg("requesting page")
	return c.downloader(ctx, req)
}

// BatchResult pairs a response with the error that produced it, so that a
// batch can salvage usable responses despite individual failures.
type BatchResult struct {
	Response *HttpResponse
	Err      error
}

// BatchExecute runs the requests concurrently, bounded by the client's
// concurrency cap, and returns one result per request in input order.
func (c *HttpClient) BatchExecute(ctx context.Context, reqs ...*HttpRequest) []BatchResult {
	results := make([]BatchResult, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req *HttpRequest) {
			defer wg.Done()
			c.acquire()
			defer c.release()
			resp, err := c.Execute(ctx, req)
			results[i] = BatchResult{Response: resp, Err: err}
		}(i, req)
	}
	wg.Wait()
	return results
}

// Concurrency gate per client instance, initialized on first use.
func (c *HttpClient) acquire() {
	if c.maxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.maxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *HttpClient) release() {
	if c.maxConcurrent <= 0 {
		return
	}
	// Blocks forever on an unbalanced release; acquire always precedes.
	<-c.limiter
}
