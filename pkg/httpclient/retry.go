package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"ordersaga/pkg/logger"
)

// RetryClient re-sends a request on transport errors, 5xx and 429.
// Explicit cancellation and deadline expiry are never retried.
type RetryClient struct {
	delegate    HTTPClient
	maxRetries  int
	ShouldRetry func(*http.Response, error) bool
	logger      logger.Interface
}

func NewRetryClient(delegate HTTPClient, maxRetries int, l logger.Interface) *RetryClient {
	if maxRetries == 0 {
		maxRetries = 3
	}

	return &RetryClient{
		delegate:   delegate,
		maxRetries: maxRetries,
		ShouldRetry: func(resp *http.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			if resp == nil {
				return true
			}
			return resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		},
		logger: l,
	}
}

func (c *RetryClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	// The body must be replayable across attempts.
	if req.Body != nil && req.GetBody == nil {
		buf, readErr := io.ReadAll(req.Body)
		if readErr != nil {
			return nil, readErr
		}
		_ = req.Body.Close()
		req.ContentLength = int64(len(buf))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(buf)), nil
		}
	}

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if req.GetBody != nil {
			rc, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, bodyErr
			}
			req.Body = rc
		}

		resp, err = c.delegate.Do(ctx, req.Clone(ctx))

		if !c.ShouldRetry(resp, err) || attempt == c.maxRetries-1 {
			return resp, err
		}

		// Drain so the connection goes back to the pool before retrying.
		if resp != nil && resp.Body != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}

		backoff := nextBackoff(attempt + 1)

		c.logger.Warn("httpclient - RetryClient - retry attempt=%d backoff=%s method=%s url=%s err=%v",
			attempt+1, backoff, req.Method, req.URL.String(), err)

		if err = sleepCtx(ctx, backoff); err != nil {
			return resp, fmt.Errorf("httpclient - RetryClient - retry sleep canceled: %w", err)
		}
	}

	return resp, err
}

func nextBackoff(attempt int) time.Duration {
	base := 100 * time.Millisecond << (attempt - 1)
	if base > 2*time.Second {
		base = 2 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
