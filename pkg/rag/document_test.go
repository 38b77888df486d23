package rag

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractTxt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("plain text content"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := ExtractFile(path)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if doc.Source != "notes.txt" {
		t.Errorf("Source = %q", doc.Source)
	}
	if doc.Content != "plain text content" {
		t.Errorf("Content = %q", doc.Content)
	}
}

func TestExtractMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	md := "# Title\n\nFirst paragraph with **bold** text.\n\n- item one\n- item two\n\n```\ncode line\n```\n"
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := ExtractFile(path)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	for _, want := range []string{"Title", "First paragraph with bold text.", "item one", "code line"} {
		if !strings.Contains(doc.Content, want) {
			t.Errorf("extracted content missing %q:\n%s", want, doc.Content)
		}
	}
	if strings.Contains(doc.Content, "**") || strings.Contains(doc.Content, "```") {
		t.Errorf("markdown syntax leaked into extraction:\n%s", doc.Content)
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.png")
	if err := os.WriteFile(path, []byte{0x89, 0x50}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ExtractFile(path); err == nil {
		t.Fatal("expected error for unsupported file type")
	}
}

func TestExtractMissingFile(t *testing.T) {
	if _, err := ExtractFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
