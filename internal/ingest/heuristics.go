// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"regexp"
	"strings"
)

// doiPattern matches DOIs as they appear in paper headers and footers.
var doiPattern = regexp.MustCompile(`\b(10\.\d{4,9}/[^\s"<>]+)`)

// headScan bounds how far into the text the heuristics look; titles and
// DOIs live on the first page.
const headScan = 4000

// GuessTitle returns a best-effort title: the first plausible line of
// the extracted text. Empty when nothing qualifies; never an error,
// title extraction must not gate the pipeline.
func GuessTitle(text string) string {
	head := text
	if len(head) > headScan {
		head = head[:headScan]
	}
	for _, line := range strings.Split(head, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 8 || len(line) > 200 {
			continue
		}
		// Skip lines that are mostly non-letters (page furniture,
		// arXiv stamps, dates).
		letters := 0
		for _, r := range line {
			if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r == ' ' {
				letters++
			}
		}
		if letters*10 < len(line)*7 {
			continue
		}
		return line
	}
	return ""
}

// GuessDOI returns the first DOI-shaped string near the top of the
// text, or empty.
func GuessDOI(text string) string {
	head := text
	if len(head) > headScan {
		head = head[:headScan]
	}
	m := doiPattern.FindStringSubmatch(head)
	if m == nil {
		return ""
	}
	return strings.TrimRight(m[1], ".,;")
}
