package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"
)

type HTTPClient interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

type Client struct {
	http *http.Client
	tr   *http.Transport
}

func New(connectTimeout, clientTimeout time.Duration, maxIdleConnsPerHost int) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		http: &http.Client{Transport: tr, Timeout: clientTimeout},
		tr:   tr,
	}
}

func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.http.Do(req.WithContext(ctx))
}

func (c *Client) CloseIdle() {
	c.tr.CloseIdleConnections()
}
