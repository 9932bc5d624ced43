package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractPagesUnsupportedFormat(t *testing.T) {
	for _, name := range []string{"doc.epub", "doc", "archive.zip"} {
		if _, err := ExtractPages(name); err == nil {
			t.Errorf("ExtractPages(%q) should fail for an unsupported format", name)
		}
	}
}

func TestExtractPagesMissingFile(t *testing.T) {
	if _, err := ExtractPages(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestExtractText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("plain text\nwith a line break\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	pages, err := ExtractPages(path)
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if len(pages) != 1 || pages[0].Number != 1 {
		t.Fatalf("got %+v, want a single page 1", pages)
	}
	if pages[0].Text != "plain text with a line break" {
		t.Errorf("text = %q, want normalized content", pages[0].Text)
	}
}

func TestMarkdownToText(t *testing.T) {
	src := []byte("# Nutrition\n\nVitamin *C* is [water soluble](https://example.com).\n\n- citrus\n- peppers\n")
	got := markdownToText(src)

	for _, want := range []string{"Nutrition", "Vitamin", "C", "water soluble", "citrus", "peppers"} {
		if !strings.Contains(got, want) {
			t.Errorf("plain text missing %q:\n%s", want, got)
		}
	}
	for _, markup := range []string{"#", "*", "](", "https://example.com"} {
		if strings.Contains(got, markup) {
			t.Errorf("markup %q leaked into plain text:\n%s", markup, got)
		}
	}
	if !strings.Contains(got, "\n\n") {
		t.Error("block boundaries should be kept as blank lines for the splitter")
	}
}

func TestExtractMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("# Title\n\nbody text here\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	pages, err := ExtractPages(path)
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if pages[0].Text != "Title body text here" {
		t.Errorf("text = %q", pages[0].Text)
	}
}
