package rag

import "strings"

// Splitter chunks text recursively: it tries to split on paragraph
// breaks first, then line breaks, then spaces, then raw characters,
// keeping chunks under ChunkSize with ChunkOverlap carried between
// consecutive chunks.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	separators   []string
}

// NewSplitter returns a splitter with the given size and overlap.
// Non-positive size defaults to 1000, negative overlap to 0.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		separators:   []string{"\n\n", "\n", " ", ""},
	}
}

// Split chunks the text. Empty or whitespace-only input yields no chunks.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	if len(text) <= s.ChunkSize {
		return []string{text}
	}

	sep := separators[len(separators)-1]
	rest := separators
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var parts []string
	if sep == "" {
		for start := 0; start < len(text); start += s.ChunkSize {
			end := start + s.ChunkSize
			if end > len(text) {
				end = len(text)
			}
			parts = append(parts, text[start:end])
		}
		return parts
	}

	var chunks []string
	for _, piece := range strings.Split(text, sep) {
		if len(piece) > s.ChunkSize {
			chunks = append(chunks, s.flushMerged(&parts, sep)...)
			chunks = append(chunks, s.split(piece, rest)...)
			continue
		}
		parts = append(parts, piece)
		if s.mergedLen(parts, sep) > s.ChunkSize {
			last := parts[len(parts)-1]
			parts = parts[:len(parts)-1]
			chunks = append(chunks, s.flushMerged(&parts, sep)...)
			parts = append(s.overlapTail(chunks, sep), last)
		}
	}
	chunks = append(chunks, s.flushMerged(&parts, sep)...)
	return chunks
}

func (s *Splitter) mergedLen(parts []string, sep string) int {
	n := 0
	for i, p := range parts {
		if i > 0 {
			n += len(sep)
		}
		n += len(p)
	}
	return n
}

func (s *Splitter) flushMerged(parts *[]string, sep string) []string {
	if len(*parts) == 0 {
		return nil
	}
	merged := strings.TrimSpace(strings.Join(*parts, sep))
	*parts = nil
	if merged == "" {
		return nil
	}
	return []string{merged}
}

// overlapTail returns the trailing portion of the last emitted chunk to
// prepend to the next one, split back into parts on sep.
func (s *Splitter) overlapTail(chunks []string, sep string) []string {
	if s.ChunkOverlap == 0 || len(chunks) == 0 {
		return nil
	}
	last := chunks[len(chunks)-1]
	if len(last) <= s.ChunkOverlap {
		return []string{last}
	}
	tail := last[len(last)-s.ChunkOverlap:]
	// avoid starting the overlap mid-word
	if idx := strings.IndexAny(tail, " \n"); idx >= 0 && idx < len(tail)-1 {
		tail = tail[idx+1:]
	}
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return nil
	}
	return []string{tail}
}
