// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

// Artifact kinds for DeriveName.
const (
	KindPDF     = "pdf"
	KindSummary = "summary"
)

// maxBaseLen bounds the sanitized stem so derived names stay well under
// filesystem limits even with the timestamp suffix.
const maxBaseLen = 80

var (
	unsafeChars    = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// DeriveName builds a filesystem-safe artifact name from a title or
// URL, a kind, and a timestamp. Pure function: identical inputs yield
// identical names; the second-resolution timestamp keeps names from
// separate papers apart.
func DeriveName(base, kind string, ts time.Time) string {
	stem := sanitizeStem(base)
	if stem == "" {
		stem = "paper"
	}
	if len(stem) > maxBaseLen {
		stem = strings.Trim(stem[:maxBaseLen], "_.")
	}

	suffix := ts.UTC().Format("20060102_150405")

	ext := ".txt"
	if kind == KindPDF {
		ext = ".pdf"
	}
	return stem + "_" + suffix + ext
}

// sanitizeStem reduces a title or URL to allow-listed characters:
// alphanumerics, dash, underscore, dot. Whitespace collapses to single
// underscores.
func sanitizeStem(base string) string {
	base = strings.TrimSpace(base)

	// For URLs, use the last path segment without its extension.
	if strings.Contains(base, "://") {
		if u, err := url.Parse(base); err == nil {
			seg := path.Base(u.Path)
			seg = strings.TrimSuffix(seg, path.Ext(seg))
			if seg != "" && seg != "." && seg != "/" {
				base = seg
			} else {
				base = u.Host
			}
		}
	}

	base = strings.Join(strings.Fields(base), "_")
	base = unsafeChars.ReplaceAllString(base, "_")
	base = underscoreRuns.ReplaceAllString(base, "_")
	return strings.Trim(base, "_.")
}
