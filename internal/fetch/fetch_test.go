package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient() *Client {
	c := New(5 * time.Second)
	c.RetryDelay = time.Millisecond
	return c
}

func TestGetHTMLReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("request had no User-Agent")
		}
		w.Write([]byte("<html><h1>hello</h1></html>"))
	}))
	defer srv.Close()

	body, err := testClient().GetHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetHTML() error: %v", err)
	}
	if body != "<html><h1>hello</h1></html>" {
		t.Errorf("body = %q", body)
	}
}

func TestGetHTMLRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := testClient().GetHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetHTML() error: %v", err)
	}
	if body != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestGetHTMLDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient().GetHTML(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("GetHTML() expected error for 404, got nil")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("error = %v, want StatusError 404", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestGetHTMLHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := testClient().GetHTML(ctx, srv.URL); err == nil {
		t.Error("GetHTML() expected error after context timeout, got nil")
	}
}

func TestIsTransient(t *testing.T) {
	if isTransient(&StatusError{StatusCode: 404}) {
		t.Error("404 should not be transient")
	}
	if !isTransient(&StatusError{StatusCode: 503}) {
		t.Error("503 should be transient")
	}
	if !isTransient(&StatusError{StatusCode: 429}) {
		t.Error("429 should be transient")
	}
	if isTransient(errors.New("parse failure")) {
		t.Error("plain errors should not be transient")
	}
}
