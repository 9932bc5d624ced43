// Package splitter cuts normalized text into bounded, overlapping
// windows using a recursive separator strategy: text is split on the
// highest-priority separator present, oversized pieces are re-split
// with the remaining separators, and the resulting pieces are merged
// back together up to the chunk size with a fixed run of trailing
// context carried into the next chunk.
package splitter

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 100
)

// DefaultSeparators is the priority order for splitting. The empty
// string is the terminal fallback and means "split anywhere".
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// New returns a Splitter with the given chunk size and overlap in
// bytes. Non-positive sizes fall back to the defaults and an overlap
// at or above the chunk size is halved.
func New(chunkSize, overlap int, separators []string) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap, separators: separators}
}

// Split returns the ordered chunks of text. Every chunk is at most
// chunkSize bytes and, unless the carry had to shrink to make room,
// each chunk after the first starts with the trailing overlap bytes of
// its predecessor. Whitespace-only chunks are dropped. Separators stay
// attached to the piece before them, so apart from the carried overlap
// the chunks concatenate back to the input.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.merge(s.split(text, s.separators))
}

// split recursively cuts text into pieces no longer than chunkSize.
func (s *Splitter) split(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}
	sep, rest := pickSeparator(text, separators)
	if sep == "" {
		return cutAt(text, s.chunkSize)
	}
	var pieces []string
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if len(part) > s.chunkSize {
			pieces = append(pieces, s.split(part, rest)...)
		} else {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

// pickSeparator returns the first separator that occurs in text and
// the lower-priority separators left to recurse with.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// merge packs pieces into chunks of at most chunkSize bytes, seeding
// each new chunk with the trailing overlap of the one just emitted.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	cur := ""
	for _, p := range pieces {
		if cur != "" && len(cur)+len(p) > s.chunkSize {
			if strings.TrimSpace(cur) != "" {
				chunks = append(chunks, cur)
			}
			cur = tail(cur, s.overlap)
			// shrink the carry when the next piece would overflow
			for cur != "" && len(cur)+len(p) > s.chunkSize {
				_, size := utf8.DecodeRuneInString(cur)
				cur = cur[size:]
			}
		}
		cur += p
	}
	if strings.TrimSpace(cur) != "" {
		chunks = append(chunks, cur)
	}
	return chunks
}

// tail returns the last n bytes of s, shortened if the cut would land
// inside a multi-byte rune.
func tail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	t := s[len(s)-n:]
	for len(t) > 0 && !utf8.RuneStart(t[0]) {
		t = t[1:]
	}
	return t
}

// cutAt slices text into pieces of at most size bytes on rune
// boundaries. Terminal fallback for text with no usable separator.
func cutAt(text string, size int) []string {
	var pieces []string
	for len(text) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = size
		}
		pieces = append(pieces, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		pieces = append(pieces, text)
	}
	return pieces
}
