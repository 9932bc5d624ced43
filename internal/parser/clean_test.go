package parser

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hyphen break", "Vita-\nmin C", "Vitamin C"},
		{"hyphen break with surrounding space", "nutri- \n tion", "nutrition"},
		{"carriage return", "one\rtwo", "one two"},
		{"tabs and space runs", "one \t  two", "one two"},
		{"newlines become spaces", "one\ntwo\nthree", "one two three"},
		{"whitespace before newline", "one  \ntwo", "one two"},
		{"leading and trailing", "  one two  ", "one two"},
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanTextInvariants(t *testing.T) {
	inputs := []string{
		"Vita-\nmin C and ribo-\nflavin",
		"line one\r\nline two\r\nline three",
		"spaced   out\ttext\n\nwith  paragraphs\n",
		"",
	}
	for _, in := range inputs {
		got := CleanText(in)
		if strings.ContainsAny(got, "\r\n") {
			t.Errorf("CleanText(%q) = %q still contains line breaks", in, got)
		}
		if strings.Contains(got, "  ") {
			t.Errorf("CleanText(%q) = %q still contains a space run", in, got)
		}
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{
		"Vita-\nmin C",
		"one\rtwo  \n three",
		"already clean text",
	}
	for _, in := range inputs {
		once := CleanText(in)
		if twice := CleanText(once); twice != once {
			t.Errorf("CleanText not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}
