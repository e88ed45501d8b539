// Package service forwards boundary requests to the ledger services.
// The gateway adds no semantics of its own: it picks the upstream,
// replays the request and hands the answer back untouched.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"ordersaga/pkg/httpclient"
	"ordersaga/pkg/logger"
)

type Result struct {
	Status      int
	ContentType string
	Body        []byte
}

type Forwarder struct {
	client httpclient.HTTPClient
	logger logger.Interface
}

func New(client httpclient.HTTPClient, l logger.Interface) *Forwarder {
	return &Forwarder{client: client, logger: l}
}

// Forward replays the request against baseURL. Transport retries live
// in the client; a response that still cannot be obtained is the only
// error path.
func (f *Forwarder) Forward(ctx context.Context, method, baseURL, path string, query, body []byte) (*Result, error) {
	url := baseURL + path
	if len(query) > 0 {
		url += "?" + string(query)
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("Forwarder - Forward - http.NewRequestWithContext: %w", err)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Forwarder - Forward - f.client.Do: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Forwarder - Forward - io.ReadAll: %w", err)
	}

	return &Result{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}
