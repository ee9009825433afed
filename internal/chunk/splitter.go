// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chunk splits extracted paper text into bounded-size,
// sentence-safe chunks for sequential upload.
package chunk

import (
	"errors"
	"strings"
	"unicode"

	"github.com/pdiddy/paperboi/pkg/types"
)

// DefaultMaxSize is the maximum characters per chunk when none is
// configured.
const DefaultMaxSize = 7500

// ErrEmptyInput indicates the text was empty or whitespace-only after
// extraction.
var ErrEmptyInput = errors.New("no text to chunk")

// Splitter produces ordered chunks of at most MaxSize characters.
// Splitting the same text twice yields the same sequence.
type Splitter struct {
	MaxSize int
}

// NewSplitter returns a Splitter, clamping non-positive sizes to the
// default.
func NewSplitter(maxSize int) *Splitter {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Splitter{MaxSize: maxSize}
}

// Split breaks text into chunks at sentence boundaries. Sentences are
// accumulated greedily while the running length stays within MaxSize;
// a sentence that alone exceeds MaxSize is hard-split at the nearest
// whitespace. Newlines are normalized to spaces before splitting, so
// joining the chunk texts with single spaces reproduces the normalized
// input.
func (s *Splitter) Split(text string) ([]types.Chunk, error) {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return nil, ErrEmptyInput
	}

	var (
		chunks  []types.Chunk
		current strings.Builder
	)

	flush := func() {
		t := strings.TrimRight(current.String(), " ")
		if t != "" {
			chunks = append(chunks, types.Chunk{Index: len(chunks), Text: t})
		}
		current.Reset()
	}

	for _, sentence := range sentences(normalized) {
		for _, piece := range hardSplit(sentence, s.MaxSize) {
			need := len(piece)
			if current.Len() > 0 {
				need++ // joining space
			}
			if current.Len()+need > s.MaxSize && current.Len() > 0 {
				flush()
			}
			if current.Len() > 0 {
				current.WriteByte(' ')
			}
			current.WriteString(piece)
		}
	}
	flush()

	return chunks, nil
}

// sentences splits text at sentence-terminal punctuation (., !, ?)
// followed by whitespace or end of text. The terminator stays with its
// sentence.
func sentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		atEnd := i == len(runes)-1
		if !atEnd && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		sent := strings.TrimSpace(string(runes[start : i+1]))
		if sent != "" {
			out = append(out, sent)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}

// hardSplit breaks a single oversized sentence at the nearest whitespace
// at or before max characters from the start of each piece. A run of
// non-whitespace longer than max is cut at max exactly.
func hardSplit(sentence string, max int) []string {
	if len(sentence) <= max {
		return []string{sentence}
	}

	var pieces []string
	rest := sentence
	for len(rest) > max {
		cut := strings.LastIndexFunc(rest[:max+1], unicode.IsSpace)
		if cut <= 0 {
			cut = max
		}
		pieces = append(pieces, strings.TrimSpace(rest[:cut]))
		rest = strings.TrimSpace(rest[cut:])
	}
	if rest != "" {
		pieces = append(pieces, rest)
	}
	return pieces
}
