// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"errors"
	"testing"
)

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"pdf signature", []byte("%PDF-1.4 content"), true},
		{"html", []byte("<!DOCTYPE html>"), false},
		{"empty", nil, false},
		{"signature mid-stream", []byte("junk%PDF-1.4"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPDF(tt.data); got != tt.want {
				t.Errorf("IsPDF() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractRejectsNonPDF(t *testing.T) {
	_, err := NewExtractor().Extract([]byte("<html>not a paper</html>"))
	if !errors.Is(err, ErrNotPDF) {
		t.Errorf("Extract() error = %v, want ErrNotPDF", err)
	}
}

func TestExtractRejectsCorruptPDF(t *testing.T) {
	// Valid signature, garbage body: parses as PDF by magic but has no
	// cross-reference table.
	_, err := NewExtractor().Extract([]byte("%PDF-1.4\nthis is not a real document"))
	if err == nil {
		t.Fatal("Extract() succeeded on corrupt input")
	}
	if !errors.Is(err, ErrCorrupt) && !errors.Is(err, ErrNotTextBased) {
		t.Errorf("Extract() error = %v, want ErrCorrupt or ErrNotTextBased", err)
	}
}
