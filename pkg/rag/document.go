// Package rag implements retrieval-augmented generation over a vector store.
package rag

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Document is an extracted source file ready for chunking.
type Document struct {
	Source  string
	Content string
}

// SupportedExtensions lists the file extensions ExtractFile accepts.
func SupportedExtensions() []string {
	return []string{".txt", ".md", ".markdown", ".pdf"}
}

// ExtractFile reads a file and extracts its plain text. Supported
// extensions are .txt, .md and .pdf; anything else is an error.
func ExtractFile(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return &Document{Source: filepath.Base(path), Content: string(data)}, nil
	case ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		content, err := extractMarkdown(data)
		if err != nil {
			return nil, fmt.Errorf("parse markdown %s: %w", path, err)
		}
		return &Document{Source: filepath.Base(path), Content: content}, nil
	case ".pdf":
		content, err := extractPDF(path)
		if err != nil {
			return nil, fmt.Errorf("extract pdf %s: %w", path, err)
		}
		return &Document{Source: filepath.Base(path), Content: content}, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .txt, .md or .pdf)", ext)
	}
}

// extractMarkdown walks the markdown AST and collects text content,
// keeping block boundaries as blank lines so the splitter can respect
// paragraph structure.
func extractMarkdown(source []byte) (string, error) {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var b strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString("\n")
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
		}
		if _, isBlock := n.(*ast.Paragraph); isBlock {
			b.WriteString("\n\n")
		}
		if _, isHeading := n.(*ast.Heading); isHeading && b.Len() > 0 {
			b.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
