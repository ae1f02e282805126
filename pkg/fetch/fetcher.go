package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/Sriram-PR/webdumper/pkg/utils"
)

// Response is a fully read, successful (2xx) HTTP response.
type Response struct {
	URL        *url.URL // Final URL after redirects
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Options configures a Fetcher.
type Options struct {
	UserAgent             string
	Timeout               time.Duration // Per-request deadline, covering headers and body
	MaxBodyBytes          int64         // Default body cap for Fetch; 0 = unlimited
	MaxConcurrentRequests int           // 0 = unbounded
}

// Fetcher performs single-attempt GET requests. Failures are always *utils.FetchError.
type Fetcher struct {
	client *http.Client
	opts   Options
	sem    *semaphore.Weighted // nil when unbounded
	log    *logrus.Entry
}

// NewFetcher creates a new Fetcher instance
func NewFetcher(client *http.Client, opts Options, log *logrus.Entry) *Fetcher {
	f := &Fetcher{client: client, opts: opts, log: log}
	if opts.MaxConcurrentRequests > 0 {
		f.sem = semaphore.NewWeighted(int64(opts.MaxConcurrentRequests))
	}
	return f
}

// Fetch GETs target using the default body cap.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*Response, error) {
	return f.FetchLimited(ctx, target, f.opts.MaxBodyBytes)
}

// FetchLimited GETs target and reads at most maxBytes of body (0 = unlimited).
// The per-request timeout starts once a concurrency slot is held.
func (f *Fetcher) FetchLimited(ctx context.Context, target string, maxBytes int64) (*Response, error) {
	reqLog := f.log.WithField("url", target)

	if f.sem != nil {
		if err := f.sem.Acquire(ctx, 1); err != nil {
			return nil, classify(target, err)
		}
		defer f.sem.Release(1)
	}

	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &utils.FetchError{
			Kind: utils.FetchKindTransport,
			URL:  target,
			Err:  fmt.Errorf("%w: %w", utils.ErrRequestCreation, err),
		}
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		reqLog.Debugf("Request failed: %v", err)
		return nil, classify(target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10)) // let the connection be reused
		reqLog.WithField("status_code", resp.StatusCode).Debug("Non-success status")
		return nil, &utils.FetchError{Kind: utils.FetchKindHTTPStatus, URL: target, StatusCode: resp.StatusCode}
	}

	if maxBytes > 0 && resp.ContentLength > maxBytes {
		return nil, &utils.FetchError{
			Kind: utils.FetchKindTransport,
			URL:  target,
			Err:  fmt.Errorf("%w: declares %d bytes (limit %d)", utils.ErrBodyTooLarge, resp.ContentLength, maxBytes),
		}
	}

	var reader io.Reader = resp.Body
	if maxBytes > 0 {
		reader = io.LimitReader(resp.Body, maxBytes+1) // +1 to detect exceeding the limit
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		if fe := classify(target, err); fe.Kind == utils.FetchKindTimeout {
			return nil, fe
		}
		return nil, &utils.FetchError{
			Kind: utils.FetchKindTransport,
			URL:  target,
			Err:  fmt.Errorf("%w: %w", utils.ErrResponseBodyRead, err),
		}
	}
	if maxBytes > 0 && int64(len(body)) > maxBytes {
		return nil, &utils.FetchError{
			Kind: utils.FetchKindTransport,
			URL:  target,
			Err:  fmt.Errorf("%w: exceeds %d bytes", utils.ErrBodyTooLarge, maxBytes),
		}
	}

	reqLog.Debugf("Fetched %d bytes", len(body))
	return &Response{
		URL:        resp.Request.URL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// classify maps a transport-level error to a FetchError kind.
func classify(target string, err error) *utils.FetchError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &utils.FetchError{Kind: utils.FetchKindTimeout, URL: target, Err: err}
	}
	return &utils.FetchError{Kind: utils.FetchKindTransport, URL: target, Err: err}
}
