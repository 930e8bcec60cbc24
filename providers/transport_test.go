package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGetBody_SetsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token123" {
			t.Errorf("Expected Authorization header, got %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer token123")

	body, err := GetBody(context.Background(), srv.Client(), srv.URL, header)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(body) != "payload" {
		t.Errorf("Expected 'payload', got %q", body)
	}
}

func TestGetBody_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := GetBody(context.Background(), srv.Client(), srv.URL, nil); err == nil {
		t.Error("Expected error for 404 response")
	}
}

func TestGetWithRelay_DirectSucceeds(t *testing.T) {
	relayCalled := false
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		relayCalled = true
	}))
	defer relay.Close()

	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("direct body"))
	}))
	defer direct.Close()

	body, err := GetWithRelay(context.Background(), direct.Client(), direct.URL, relay.URL+"/get?url=", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(body) != "direct body" {
		t.Errorf("Expected direct body, got %q", body)
	}
	if relayCalled {
		t.Error("Relay must not be called when the direct path succeeds")
	}
}

func TestGetWithRelay_FallsBackToRelay(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "url=") {
			t.Errorf("Expected wrapped target URL in query, got %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]string{"contents": `{"ok":true}`})
	}))
	defer relay.Close()

	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer direct.Close()

	body, err := GetWithRelay(context.Background(), direct.Client(), direct.URL, relay.URL+"/get?url=", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("Expected unwrapped relay contents, got %q", body)
	}
}

func TestGetWithRelay_BothFail(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	if _, err := GetWithRelay(context.Background(), down.Client(), down.URL, down.URL+"/get?url=", nil); err == nil {
		t.Error("Expected error when both paths fail")
	}
}

func TestGetWithRelay_NoRelayConfigured(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	if _, err := GetWithRelay(context.Background(), down.Client(), down.URL, "", nil); err == nil {
		t.Error("Expected error when direct fails and no relay is configured")
	}
}

func TestGetWithRelay_HonorsDeadline(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := GetWithRelay(ctx, slow.Client(), slow.URL, slow.URL+"/get?url=", nil)
	if err == nil {
		t.Fatal("Expected deadline error")
	}
	// The relay attempt must not add a second full wait once the shared
	// deadline has expired.
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("Both strategies ran past the shared deadline (%v)", elapsed)
	}
}
