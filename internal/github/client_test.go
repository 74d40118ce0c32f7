package github

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	// Explicit token
	client, err := NewClient(ctx, "test-token")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Client == nil {
		t.Error("Expected client to be initialized with explicit token")
	}

	// No token (should still init client, just unauthenticated)
	client, err = NewClient(ctx, "")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Client == nil {
		t.Error("Expected client to be initialized even without token")
	}
}

func TestNewClient_NilContextReturnsError(t *testing.T) {
	var nilCtx context.Context
	_, err := NewClient(nilCtx, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "ctx is nil") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewClient_WithBaseURL(t *testing.T) {
	ctx := context.Background()

	client, err := NewClient(ctx, "tok", WithBaseURL("https://ghes.example.com/api/v3"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if got := client.Client.BaseURL.String(); got != "https://ghes.example.com/api/v3/" {
		t.Fatalf("BaseURL = %q, want trailing slash added and nothing else", got)
	}

	if _, err := NewClient(ctx, "tok", WithBaseURL("ftp://nope")); err == nil {
		t.Fatal("expected error for non-http scheme")
	}
}

func TestNewClient_WithVerbose_LogsAndAuthHeader(t *testing.T) {
	ctx := context.Background()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	t.Cleanup(server.Close)

	var buf bytes.Buffer
	c, err := NewClient(ctx, "secret-token", WithVerbose(true, &buf), WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	req, err := c.Client.NewRequest("GET", "rate_limit", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if _, err := c.Client.Do(ctx, req, nil); err != nil {
		t.Fatalf("Do: %v", err)
	}

	if !strings.Contains(buf.String(), "[verbose] github api: GET") {
		t.Fatalf("expected verbose request log, got: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[verbose] github api: 200") {
		t.Fatalf("expected verbose response log, got: %q", buf.String())
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
	if strings.Contains(buf.String(), "secret-token") {
		t.Fatalf("verbose log leaked the token: %q", buf.String())
	}
}
