// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"strings"
	"testing"
	"time"
)

var namingTS = time.Date(2026, 1, 15, 12, 30, 45, 0, time.UTC)

func TestDeriveName(t *testing.T) {
	tests := []struct {
		name string
		base string
		kind string
		want string
	}{
		{"title", "Tree of Thoughts", KindSummary, "Tree_of_Thoughts_20260115_123045.txt"},
		{"title with punctuation", "GPT-4: What's Next?", KindSummary, "GPT-4_What_s_Next_20260115_123045.txt"},
		{"url uses last segment", "https://example.com/papers/attention.pdf", KindPDF, "attention_20260115_123045.pdf"},
		{"url without filename", "https://example.com/", KindPDF, "example.com_20260115_123045.pdf"},
		{"empty base", "", KindPDF, "paper_20260115_123045.pdf"},
		{"unsafe characters stripped", `bad<>:"/\|?*name`, KindSummary, "bad_name_20260115_123045.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveName(tt.base, tt.kind, namingTS); got != tt.want {
				t.Errorf("DeriveName(%q, %s) = %q, want %q", tt.base, tt.kind, got, tt.want)
			}
		})
	}
}

func TestDeriveNameIsPure(t *testing.T) {
	a := DeriveName("Some Paper", KindSummary, namingTS)
	b := DeriveName("Some Paper", KindSummary, namingTS)
	if a != b {
		t.Errorf("same inputs yielded %q and %q", a, b)
	}
}

func TestDeriveNameTimestampDisambiguates(t *testing.T) {
	a := DeriveName("Some Paper", KindSummary, namingTS)
	b := DeriveName("Some Paper", KindSummary, namingTS.Add(time.Second))
	if a == b {
		t.Errorf("names collide across seconds: %q", a)
	}
}

func TestDeriveNameBoundsLength(t *testing.T) {
	long := strings.Repeat("very long title ", 40)
	got := DeriveName(long, KindSummary, namingTS)
	if len(got) > maxBaseLen+len("_20260115_123045.txt") {
		t.Errorf("name too long (%d): %q", len(got), got)
	}
	if !strings.HasSuffix(got, "_20260115_123045.txt") {
		t.Errorf("suffix missing: %q", got)
	}
}
