package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skillet-ai/skillet/pkg/errors"
	"github.com/skillet-ai/skillet/pkg/llm"
	"github.com/skillet-ai/skillet/pkg/memory"
)

// Options configures a Service.
type Options struct {
	Collection   string
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	MinScore     float32
	// EmbedderModel is the embedding model's name, reported by Stats.
	EmbedderModel string
}

// Service ties together extraction, chunking, embedding, vector search
// and answer generation.
type Service struct {
	store    memory.VectorStore
	embedder memory.Embedder
	provider llm.Provider
	splitter *Splitter

	collection    string
	topK          int
	minScore      float32
	embedderModel string

	vectorSize uint64
	logger     *slog.Logger
}

// NewService creates a RAG service. TopK defaults to 4 and the
// collection to "documents" when unset.
func NewService(store memory.VectorStore, embedder memory.Embedder, provider llm.Provider, opts Options) *Service {
	if opts.Collection == "" {
		opts.Collection = "documents"
	}
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	return &Service{
		store:      store,
		embedder:   embedder,
		provider:   provider,
		splitter:   NewSplitter(opts.ChunkSize, opts.ChunkOverlap),
		collection:    opts.Collection,
		topK:          opts.TopK,
		minScore:      opts.MinScore,
		embedderModel: opts.EmbedderModel,
		logger:        slog.Default().With("component", "rag"),
	}
}

// IngestFile extracts, chunks, embeds and stores a file. Returns the
// number of chunks stored.
func (s *Service) IngestFile(ctx context.Context, path string) (int, error) {
	doc, err := ExtractFile(path)
	if err != nil {
		return 0, errors.New(errors.CodeIngestError, "failed to extract document", err)
	}
	return s.IngestText(ctx, doc.Source, doc.Content)
}

// IngestResult reports the outcome of ingesting one file.
type IngestResult struct {
	Path   string
	Chunks int
	Err    error
}

// IngestFiles ingests each path independently. A failed file is
// reported in its result and does not stop, or roll back, the others.
func (s *Service) IngestFiles(ctx context.Context, paths []string) []IngestResult {
	results := make([]IngestResult, 0, len(paths))
	for _, path := range paths {
		n, err := s.IngestFile(ctx, path)
		results = append(results, IngestResult{Path: path, Chunks: n, Err: err})
	}
	return results
}

// IngestText chunks, embeds and stores raw text under the given source
// label.
func (s *Service) IngestText(ctx context.Context, source, content string) (int, error) {
	chunks := s.splitter.Split(content)
	if len(chunks) == 0 {
		return 0, nil
	}

	points := make([]memory.Point, 0, len(chunks))
	for i, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return 0, errors.New(errors.CodeIngestError, "failed to embed chunk", err).
				WithContext("source", source).
				WithContext("chunk", i)
		}
		if err := s.ensureCollection(ctx, uint64(len(vec))); err != nil {
			return 0, err
		}
		points = append(points, memory.Point{
			ID:     uuid.New().String(),
			Vector: vec,
			Payload: map[string]any{
				"text":        chunk,
				"source":      source,
				"chunk_index": int64(i),
			},
			Timestamp: time.Now().Unix(),
		})
	}

	if err := s.store.Upsert(ctx, s.collection, points); err != nil {
		return 0, errors.New(errors.CodeMemoryError, "failed to store chunks", err).
			WithContext("source", source)
	}
	s.logger.Info("ingested document", "source", source, "chunks", len(points))
	return len(points), nil
}

func (s *Service) ensureCollection(ctx context.Context, vectorSize uint64) error {
	if s.vectorSize == vectorSize {
		return nil
	}
	if err := s.store.CreateCollection(ctx, s.collection, vectorSize); err != nil {
		return errors.New(errors.CodeMemoryError, "failed to create collection", err)
	}
	s.vectorSize = vectorSize
	return nil
}

// SearchDocuments embeds the query and returns the nearest chunks.
func (s *Service) SearchDocuments(ctx context.Context, query string) ([]memory.SearchResult, error) {
	return s.search(ctx, query, s.minScore)
}

func (s *Service) search(ctx context.Context, query string, minScore float32) ([]memory.SearchResult, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.New(errors.CodeMemoryError, "failed to embed query", err)
	}
	if err := s.ensureCollection(ctx, uint64(len(vec))); err != nil {
		return nil, err
	}
	results, err := s.store.Search(ctx, s.collection, vec, s.topK, minScore)
	if err != nil {
		return nil, errors.New(errors.CodeMemoryError, "vector search failed", err)
	}
	return results, nil
}

// Answer is a generated response plus the sources that informed it.
type Answer struct {
	Text    string
	Sources []string
	// Grounded is false when no relevant chunks were found and the
	// model answered from its own knowledge.
	Grounded bool
}

// Query answers a question using retrieved context. When nothing
// relevant is found the model is told so and asked to answer generally,
// and the result carries no sources.
func (s *Service) Query(ctx context.Context, question string) (*Answer, error) {
	return s.query(ctx, question, s.minScore)
}

// QueryWithScore is Query with a per-call similarity threshold; chunks
// scoring below it are not considered relevant.
func (s *Service) QueryWithScore(ctx context.Context, question string, minScore float32) (*Answer, error) {
	return s.query(ctx, question, minScore)
}

func (s *Service) query(ctx context.Context, question string, minScore float32) (*Answer, error) {
	results, err := s.search(ctx, question, minScore)
	if err != nil {
		return nil, err
	}

	var prompt string
	grounded := len(results) > 0
	if grounded {
		prompt = buildContextPrompt(question, results)
	} else {
		prompt = fmt.Sprintf(
			"No relevant documents were found for this question. Answer from general knowledge and say that the knowledge base had nothing on it.\n\nQuestion: %s",
			question)
	}

	resp, err := s.provider.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a helpful assistant that answers questions based on the provided context."},
			{Role: llm.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, errors.New(errors.CodeLLMError, "generation failed", err)
	}

	answer := &Answer{Text: resp.Content, Grounded: grounded}
	if grounded {
		answer.Sources = collectSources(results)
		answer.Text += formatSourceFooter(answer.Sources)
	}
	return answer, nil
}

func buildContextPrompt(question string, results []memory.SearchResult) string {
	var b strings.Builder
	b.WriteString("Use the following context to answer the question. If the context does not contain the answer, say so.\n\nContext:\n")
	for i, r := range results {
		text, _ := r.Point.Payload["text"].(string)
		source, _ := r.Point.Payload["source"].(string)
		fmt.Fprintf(&b, "\n[%d] (from %s)\n%s\n", i+1, source, text)
	}
	fmt.Fprintf(&b, "\nQuestion: %s", question)
	return b.String()
}

// collectSources returns unique source names in retrieval order.
func collectSources(results []memory.SearchResult) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, r := range results {
		source, _ := r.Point.Payload["source"].(string)
		if source == "" || seen[source] {
			continue
		}
		seen[source] = true
		sources = append(sources, source)
	}
	return sources
}

func formatSourceFooter(sources []string) string {
	if len(sources) == 0 {
		return ""
	}
	return "\n\nSources: " + strings.Join(sources, ", ")
}

// Stats describes the current state of the knowledge base.
type Stats struct {
	Chunks        uint64
	Collection    string
	EmbedderModel string
	Formats       []string
}

// Stats reports the stored chunk count, the collection name, the
// embedding model and the supported document formats.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	n, err := s.store.Count(ctx, s.collection)
	if err != nil {
		return nil, errors.New(errors.CodeMemoryError, "failed to count chunks", err)
	}
	return &Stats{
		Chunks:        n,
		Collection:    s.collection,
		EmbedderModel: s.embedderModel,
		Formats:       SupportedExtensions(),
	}, nil
}

// Clear drops the collection. The next ingest recreates it.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.DeleteCollection(ctx, s.collection); err != nil {
		return errors.New(errors.CodeMemoryError, "failed to clear knowledge base", err)
	}
	s.vectorSize = 0
	return nil
}
