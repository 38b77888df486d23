// Command skillet is an interactive chat REPL with retrieval, skills
// and agent modes over a local Ollama instance.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/skillet-ai/skillet/pkg/agent"
	"github.com/skillet-ai/skillet/pkg/chat"
	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/llm"
	"github.com/skillet-ai/skillet/pkg/memory"
	memollama "github.com/skillet-ai/skillet/pkg/memory/ollama"
	"github.com/skillet-ai/skillet/pkg/memory/qdrant"
	"github.com/skillet-ai/skillet/pkg/rag"
	"github.com/skillet-ai/skillet/pkg/sheets"
	"github.com/skillet-ai/skillet/pkg/skills"
	"github.com/skillet-ai/skillet/pkg/telemetry"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to config file")
	skillsDir := flag.String("skills", "", "override skills directory")
	sessionID := flag.String("session", "default", "session identifier")
	flag.Parse()

	if err := run(*configPath, *skillsDir, *sessionID); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath, skillsDir, sessionID string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if skillsDir != "" {
		cfg.Skills.Dir = skillsDir
	}

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	shutdown, err := telemetry.InitWithConfig("skillet", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	provider := llm.NewOllama(cfg.LLM.BaseURL)

	convStore, err := buildConversationStore(cfg)
	if err != nil {
		return err
	}
	chatSvc := chat.NewService(provider, convStore, chat.Options{
		Model:        cfg.LLM.Model,
		SystemPrompt: cfg.Chat.SystemPrompt,
		Temperature:  cfg.LLM.Temperature,
		MaxHistory:   cfg.Chat.MaxHistory,
	})

	vectorStore, err := buildVectorStore(cfg)
	if err != nil {
		return err
	}
	embedder := memollama.NewEmbedder(cfg.Embedder.BaseURL, cfg.Embedder.Model)
	ragSvc := rag.NewService(vectorStore, embedder, provider, rag.Options{
		Collection:    cfg.Vector.Collection,
		ChunkSize:     cfg.RAG.ChunkSize,
		ChunkOverlap:  cfg.RAG.ChunkOverlap,
		TopK:          cfg.RAG.TopK,
		MinScore:      float32(cfg.RAG.MinScore),
		EmbedderModel: cfg.Embedder.Model,
	})

	loader := buildSkillLoader(cfg, logger)
	driver := agent.NewTwoStep(provider, loader,
		agent.WithModel(cfg.LLM.AgentModel),
		agent.WithTemperature(cfg.LLM.Temperature))
	agentFn := func(ctx context.Context, _ string, input string) (string, error) {
		return driver.Handle(ctx, input)
	}

	router := chat.NewRouter(chatSvc, ragSvc, agentFn, chat.ModeChat)

	fmt.Printf("skillet %s (model %s). Type /help for commands, /ingest <path> to add documents, /image <path> [prompt] to ask about an image, /quit to exit.\n", version, cfg.LLM.Model)
	return repl(ctx, router, ragSvc, sessionID)
}

func repl(ctx context.Context, router *chat.Router, ragSvc *rag.Service, sessionID string) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for {
		fmt.Printf("[%s]> ", router.SessionMode(sessionID))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch {
		case input == "/quit" || input == "/exit":
			return nil
		case strings.HasPrefix(input, "/ingest "):
			path := strings.TrimSpace(strings.TrimPrefix(input, "/ingest"))
			n, err := ragSvc.IngestFile(ctx, path)
			if err != nil {
				fmt.Println("ingest failed:", err)
				continue
			}
			fmt.Printf("ingested %s (%d chunks)\n", filepath.Base(path), n)
			continue
		case strings.HasPrefix(input, "/image "):
			path, prompt, _ := strings.Cut(strings.TrimSpace(strings.TrimPrefix(input, "/image")), " ")
			out, err := router.HandleImage(ctx, sessionID, strings.TrimSpace(prompt), path)
			if err != nil {
				fmt.Println("image failed:", err)
				continue
			}
			fmt.Println(out)
			continue
		}

		out, err := router.Handle(ctx, sessionID, input)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(out)
	}
}

func buildConversationStore(cfg *config.Config) (memory.ConversationStore, error) {
	switch cfg.Chat.Store {
	case "sqlite":
		store, err := memory.OpenSQLiteConversation(cfg.Chat.SQLitePath, memory.ConversationConfig{})
		if err != nil {
			return nil, fmt.Errorf("open conversation store: %w", err)
		}
		return store, nil
	default:
		return memory.NewInMemoryConversation(memory.ConversationConfig{}), nil
	}
}

func buildVectorStore(cfg *config.Config) (memory.VectorStore, error) {
	switch cfg.Vector.Provider {
	case "inmemory":
		return memory.NewInMemoryVectorStore(), nil
	default:
		store, err := qdrant.New(cfg.Vector.QdrantAddr)
		if err != nil {
			return nil, fmt.Errorf("connect to qdrant: %w", err)
		}
		return store, nil
	}
}

// buildSkillLoader wires the bundled toolsets into a registry and
// returns a loader over the configured skills directory.
func buildSkillLoader(cfg *config.Config, logger *slog.Logger) *skills.Loader {
	registry := skills.NewRegistry()

	dataDir := filepath.Join(cfg.Skills.Dir, sheets.SkillName, "data")
	if workbook, err := sheets.Open(dataDir); err == nil {
		sheets.Register(registry, workbook)
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warn("spreadsheet workbook unavailable", "dir", dataDir, "error", err)
	}

	return skills.NewLoader(cfg.Skills.Dir, skills.WithRegistry(registry))
}
