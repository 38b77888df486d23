// Package config loads skillet configuration from YAML files and the
// environment, with sensible local-first defaults.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	LLM       LLMConfig       `koanf:"llm"`
	Embedder  EmbedderConfig  `koanf:"embedder"`
	Vector    VectorConfig    `koanf:"vector"`
	Skills    SkillsConfig    `koanf:"skills"`
	Chat      ChatConfig      `koanf:"chat"`
	RAG       RAGConfig       `koanf:"rag"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type LLMConfig struct {
	BaseURL     string  `koanf:"base_url"`
	Model       string  `koanf:"model"`
	AgentModel  string  `koanf:"agent_model"` // tool-calling capable model
	Temperature float64 `koanf:"temperature"`
}

type EmbedderConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

type VectorConfig struct {
	Provider   string `koanf:"provider"` // qdrant, inmemory
	QdrantAddr string `koanf:"qdrant_addr"`
	Collection string `koanf:"collection"`
}

type SkillsConfig struct {
	Dir string `koanf:"dir"`
}

type ChatConfig struct {
	SystemPrompt string `koanf:"system_prompt"`
	MaxHistory   int    `koanf:"max_history"`
	Store        string `koanf:"store"` // memory, sqlite
	SQLitePath   string `koanf:"sqlite_path"`
}

type RAGConfig struct {
	ChunkSize    int     `koanf:"chunk_size"`
	ChunkOverlap int     `koanf:"chunk_overlap"`
	TopK         int     `koanf:"top_k"`
	MinScore     float64 `koanf:"min_score"`
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

const defaultSystemPrompt = "You are a professional, friendly assistant. " +
	"Answer accurately and clearly. When a question concerns uploaded documents, " +
	"answer strictly from the provided context and say so when the context is insufficient."

// Load reads configuration from the optional YAML file at path, then
// overlays SKILLET_* environment variables (SKILLET_LLM_MODEL -> llm.model).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("llm.base_url", "http://localhost:11434")
	k.Set("llm.model", "gemma3:4b")
	k.Set("llm.agent_model", "qwen2.5:7b")
	k.Set("llm.temperature", 0.7)

	k.Set("embedder.base_url", "http://localhost:11434")
	k.Set("embedder.model", "nomic-embed-text")

	k.Set("vector.provider", "qdrant")
	k.Set("vector.qdrant_addr", "localhost:6334")
	k.Set("vector.collection", "documents")

	k.Set("skills.dir", "./skills")

	k.Set("chat.system_prompt", defaultSystemPrompt)
	k.Set("chat.max_history", 20)
	k.Set("chat.store", "memory")
	k.Set("chat.sqlite_path", "./skillet.db")

	k.Set("rag.chunk_size", 1000)
	k.Set("rag.chunk_overlap", 200)
	k.Set("rag.top_k", 4)
	k.Set("rag.min_score", 0.0)

	k.Set("telemetry.exporter", "stdout")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("SKILLET_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "SKILLET_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
