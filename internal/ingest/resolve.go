// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/pdiddy/paperboi/internal/httputil"
	"github.com/pdiddy/paperboi/pkg/types"
)

// ErrResolution indicates the URL could not be resolved to PDF content.
var ErrResolution = errors.New("resolving paper URL")

// maxDownloadSize caps the response body read (papers are rarely over a
// few tens of megabytes).
const maxDownloadSize = 256 << 20

// arxivIDPattern extracts an arXiv identifier from abs/pdf/html URLs.
var arxivIDPattern = regexp.MustCompile(`arxiv\.org/(?:abs|pdf|html)/(\d{4}\.\d{4,5}(?:v\d+)?)`)

// Resolver turns a user-supplied URL into final PDF content. The
// production implementation is HTTP; tests substitute fakes.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (finalURL string, body []byte, err error)
}

// HTTPResolver downloads papers over HTTP, following redirects, with
// arXiv-specific URL rewriting and a one-shot ".pdf" suffix fallback
// when the served content is not a PDF.
type HTTPResolver struct {
	client *http.Client
	cfg    types.HTTPConfig
	out    io.Writer
}

// NewHTTPResolver builds a resolver. w receives progress lines; nil
// discards them.
func NewHTTPResolver(cfg types.HTTPConfig, w io.Writer) *HTTPResolver {
	if w == nil {
		w = io.Discard
	}
	return &HTTPResolver{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		out:    w,
	}
}

// CanonicalizeURL prepares a user-supplied URL for fetching: adds the
// https scheme when missing and rewrites arXiv abs/html links to the
// PDF endpoint, so both forms of the same paper fetch (and dedup) the
// same content.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	if m := arxivIDPattern.FindStringSubmatch(strings.ToLower(raw)); m != nil {
		return "https://arxiv.org/pdf/" + m[1] + ".pdf"
	}
	return raw
}

// Resolve fetches the URL and returns the final (post-redirect) URL and
// body. When the response is not PDF content and the URL lacks a .pdf
// suffix, it retries once with the suffix appended before failing.
func (r *HTTPResolver) Resolve(ctx context.Context, rawURL string) (string, []byte, error) {
	fetchURL := CanonicalizeURL(rawURL)

	finalURL, body, err := r.fetch(ctx, fetchURL)
	if err == nil && looksLikePDF(body) {
		return finalURL, body, nil
	}

	if !strings.HasSuffix(strings.ToLower(fetchURL), ".pdf") {
		fmt.Fprintf(r.out, "not a PDF at %s, retrying with .pdf suffix\n", fetchURL)
		if finalURL2, body2, err2 := r.fetch(ctx, fetchURL+".pdf"); err2 == nil && looksLikePDF(body2) {
			return finalURL2, body2, nil
		}
	}

	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	return finalURL, body, nil
}

func (r *HTTPResolver) fetch(ctx context.Context, url string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, r.client, req, 0, r.out)
	if err != nil {
		return "", nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return "", nil, fmt.Errorf("reading response body: %w", err)
	}

	return resp.Request.URL.String(), body, nil
}

func looksLikePDF(body []byte) bool {
	return len(body) >= 5 && string(body[:5]) == "%PDF-"
}
