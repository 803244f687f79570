package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"zeladoria/internal/cache"
)

func newMapsServer(t *testing.T, body string, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if !strings.HasSuffix(r.URL.Path, "/geocode/json") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("language") != "pt-BR" {
			t.Errorf("expected pt-BR language, got %q", r.URL.Query().Get("language"))
		}
		if r.URL.Query().Get("latlng") == "" {
			t.Errorf("expected latlng parameter")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGoogleReverse(t *testing.T) {
	var hits int32
	server := newMapsServer(t, `{"status":"OK","results":[{"formatted_address":" Praça da Sé, São Paulo - SP "}]}`, &hits)
	g, err := NewGoogle("key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("new google: %v", err)
	}
	addr, err := g.Reverse(context.Background(), -23.5505, -46.6333)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if addr != "Praça da Sé, São Paulo - SP" {
		t.Fatalf("unexpected address %q", addr)
	}
}

func TestGoogleReverseZeroResults(t *testing.T) {
	var hits int32
	server := newMapsServer(t, `{"status":"ZERO_RESULTS","results":[]}`, &hits)
	g, err := NewGoogle("key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("new google: %v", err)
	}
	if _, err := g.Reverse(context.Background(), 0, 0); err == nil {
		t.Fatalf("expected an error for zero results")
	}
}

func TestNewGoogleRequiresKey(t *testing.T) {
	if _, err := NewGoogle(""); err == nil {
		t.Fatalf("expected missing key error")
	}
}

type stubReverser struct {
	addr  string
	err   error
	calls int
}

func (s *stubReverser) Reverse(context.Context, float64, float64) (string, error) {
	s.calls++
	return s.addr, s.err
}

func TestResolverFallsBackOnError(t *testing.T) {
	r := NewResolver(&stubReverser{err: errors.New("REQUEST_DENIED")}, nil, time.Minute, nil)
	if got := r.Normalize(context.Background(), "Rua do cidadão", 1, 2); got != "Rua do cidadão" {
		t.Fatalf("expected fallback to citizen text, got %q", got)
	}
}

func TestResolverDisabled(t *testing.T) {
	var r *Resolver
	if got := r.Normalize(context.Background(), "texto", 1, 2); got != "texto" {
		t.Fatalf("nil resolver must keep text")
	}
	if got := NewResolver(nil, nil, 0, nil).Normalize(context.Background(), "texto", 1, 2); got != "texto" {
		t.Fatalf("resolver without reverser must keep text")
	}
}

func TestResolverCachesAddresses(t *testing.T) {
	stub := &stubReverser{addr: "Av. Paulista, 1000"}
	mem := cache.NewMemory(time.Minute, time.Minute)
	r := NewResolver(stub, mem, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if got := r.Normalize(ctx, "perto do MASP", -23.561414, -46.655881); got != "Av. Paulista, 1000" {
			t.Fatalf("unexpected address %q", got)
		}
	}
	if stub.calls != 1 {
		t.Fatalf("expected one provider call, got %d", stub.calls)
	}
}
