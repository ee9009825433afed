// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts plain text from PDF bytes. Scanned or
// image-only documents yield ErrNotTextBased; OCR is out of scope.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrNotPDF indicates the bytes do not carry a PDF signature.
	ErrNotPDF = errors.New("content is not a PDF")

	// ErrCorrupt indicates the PDF structure could not be parsed.
	ErrCorrupt = errors.New("corrupt PDF")

	// ErrNotTextBased indicates the PDF parsed but contains no
	// extractable text (likely a scanned document).
	ErrNotTextBased = errors.New("PDF contains no extractable text")
)

// pdfMagic is the signature every PDF starts with.
var pdfMagic = []byte("%PDF-")

// minTextLength is the threshold below which extraction output is
// treated as no text at all.
const minTextLength = 10

// IsPDF reports whether data starts with the PDF signature.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// Extractor pulls ordered text runs out of PDF bytes.
type Extractor struct{}

// NewExtractor returns a ready Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the document's plain text, pages concatenated in
// order. Pages that fail individually are skipped; a document where no
// page yields text fails with ErrNotTextBased.
func (e *Extractor) Extract(data []byte) (text string, err error) {
	if !IsPDF(data) {
		return "", ErrNotPDF
	}

	// The parser panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrCorrupt, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	full := strings.Join(pages, "\n")
	if len(strings.TrimSpace(full)) < minTextLength {
		return "", ErrNotTextBased
	}
	return full, nil
}
