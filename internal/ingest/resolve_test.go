// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paperboi/pkg/types"
)

const fakePDF = "%PDF-1.4 fake paper content"

func TestCanonicalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"arxiv abs", "https://arxiv.org/abs/2305.10601", "https://arxiv.org/pdf/2305.10601.pdf"},
		{"arxiv pdf no extension", "arxiv.org/pdf/2305.10601", "https://arxiv.org/pdf/2305.10601.pdf"},
		{"arxiv html", "https://arxiv.org/html/2305.10601v2", "https://arxiv.org/pdf/2305.10601v2.pdf"},
		{"scheme added", "example.com/paper.pdf", "https://example.com/paper.pdf"},
		{"passthrough", "https://example.com/paper.pdf", "https://example.com/paper.pdf"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalizeURL(tt.input); got != tt.want {
				t.Errorf("CanonicalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func newResolver(timeout time.Duration) *HTTPResolver {
	return NewHTTPResolver(types.HTTPConfig{Timeout: timeout, UserAgent: "paperboi-test/0.1"}, io.Discard)
}

func TestResolveReturnsPDFBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); !strings.HasPrefix(got, "paperboi-test") {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "application/pdf")
		io.WriteString(w, fakePDF)
	}))
	defer srv.Close()

	finalURL, body, err := newResolver(5 * time.Second).Resolve(context.Background(), srv.URL+"/paper.pdf")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if string(body) != fakePDF {
		t.Errorf("body = %q", body)
	}
	if !strings.HasPrefix(finalURL, srv.URL) {
		t.Errorf("finalURL = %q", finalURL)
	}
}

func TestResolveFollowsRedirects(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/landing":
			http.Redirect(w, r, srv.URL+"/real.pdf", http.StatusFound)
		case "/real.pdf":
			io.WriteString(w, fakePDF)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	finalURL, body, err := newResolver(5 * time.Second).Resolve(context.Background(), srv.URL+"/landing.pdf")
	if err == nil && string(body) == fakePDF {
		t.Fatalf("unexpected success for missing path: finalURL=%q", finalURL)
	}

	finalURL, body, err = newResolver(5 * time.Second).Resolve(context.Background(), srv.URL+"/landing")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if string(body) != fakePDF {
		t.Errorf("body = %q", body)
	}
	if !strings.HasSuffix(finalURL, "/real.pdf") {
		t.Errorf("finalURL = %q, want redirect target", finalURL)
	}
}

func TestResolveRetriesWithPDFSuffix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/paper":
			w.Header().Set("Content-Type", "text/html")
			io.WriteString(w, "<html>landing page</html>")
		case "/paper.pdf":
			io.WriteString(w, fakePDF)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	_, body, err := newResolver(5 * time.Second).Resolve(context.Background(), srv.URL+"/paper")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if string(body) != fakePDF {
		t.Errorf("body = %q, want PDF from suffix fallback", body)
	}
}

func TestResolveFailsOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, _, err := newResolver(5 * time.Second).Resolve(context.Background(), srv.URL+"/missing.pdf")
	if !errors.Is(err, ErrResolution) {
		t.Errorf("Resolve() error = %v, want ErrResolution", err)
	}
}

func TestResolveNonPDFWithoutFallbackReturnsBody(t *testing.T) {
	// Both the bare URL and the .pdf fallback serve HTML: resolution
	// itself succeeds, leaving the PDF signature check to the pipeline.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>not a paper</html>")
	}))
	defer srv.Close()

	_, body, err := newResolver(5 * time.Second).Resolve(context.Background(), srv.URL+"/page")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if strings.HasPrefix(string(body), "%PDF-") {
		t.Errorf("body unexpectedly PDF: %q", body)
	}
}
