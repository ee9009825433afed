// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import "testing"

func TestGuessTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"first plausible line",
			"Tree of Thoughts: Deliberate Problem Solving\nShunyu Yao, Dian Yu\nAbstract...",
			"Tree of Thoughts: Deliberate Problem Solving",
		},
		{
			"skips short furniture",
			"1\n===\nAttention Is All You Need\nrest of text",
			"Attention Is All You Need",
		},
		{
			"skips numeric stamps",
			"2301.07041v2 [cs.CL] 17 (1) 2 3 4.5 6\nA Survey of Large Language Models\nbody",
			"A Survey of Large Language Models",
		},
		{"nothing plausible", "1\n2\n3\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuessTitle(tt.text); got != tt.want {
				t.Errorf("GuessTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGuessDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain doi", "Published in TMLR.\ndoi: 10.1145/3580305.3599256\nAbstract", "10.1145/3580305.3599256"},
		{"doi url", "Available at https://doi.org/10.1038/s41586-024-07487-w today", "10.1038/s41586-024-07487-w"},
		{"trailing punctuation trimmed", "See 10.1000/xyz123. for details", "10.1000/xyz123"},
		{"absent", "no identifier in this text", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuessDOI(tt.text); got != tt.want {
				t.Errorf("GuessDOI() = %q, want %q", got, tt.want)
			}
		})
	}
}
