package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ordersaga/pkg/httpclient"
	"ordersaga/pkg/logger"
)

func TestForward(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Errorf("path = %s, want /v1/orders", r.URL.Path)
		}
		if r.URL.RawQuery != "user_id=7" {
			t.Errorf("query = %s, want user_id=7", r.URL.RawQuery)
		}

		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"user_id":7}` {
			t.Errorf("body = %s", body)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order_id":"abc"}`))
	}))
	defer upstream.Close()

	f := New(httpclient.New(time.Second, 5*time.Second, 2), logger.New("error"))

	res, err := f.Forward(context.Background(), http.MethodPost, upstream.URL, "/v1/orders", []byte("user_id=7"), []byte(`{"user_id":7}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Status != http.StatusCreated {
		t.Errorf("status = %d, want 201", res.Status)
	}
	if string(res.Body) != `{"order_id":"abc"}` {
		t.Errorf("body = %s", res.Body)
	}
	if res.ContentType != "application/json" {
		t.Errorf("content type = %s", res.ContentType)
	}
}

func TestForwardPassesUpstreamErrorsThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"order not found"}`))
	}))
	defer upstream.Close()

	f := New(httpclient.New(time.Second, 5*time.Second, 2), logger.New("error"))

	res, err := f.Forward(context.Background(), http.MethodGet, upstream.URL, "/v1/orders/abc/status", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Upstream answers, whatever their status, are relayed untouched.
	if res.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", res.Status)
	}
	if string(res.Body) != `{"error":"order not found"}` {
		t.Errorf("body = %s", res.Body)
	}
}

func TestForwardUnreachableUpstream(t *testing.T) {
	f := New(httpclient.New(100*time.Millisecond, 500*time.Millisecond, 1), logger.New("error"))

	_, err := f.Forward(context.Background(), http.MethodGet, "http://127.0.0.1:1", "/health", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}
