// Command twostep answers a single request with the plan-then-execute
// driver: one call to pick a skill, one tool-enabled call to answer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/skillet-ai/skillet/pkg/agent"
	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/llm"
	"github.com/skillet-ai/skillet/pkg/sheets"
	"github.com/skillet-ai/skillet/pkg/skills"
	"github.com/skillet-ai/skillet/pkg/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	skillsDir := flag.String("skills", "", "override skills directory")
	flag.Parse()

	input := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if input == "" {
		fmt.Fprintln(os.Stderr, "usage: twostep [flags] <request>")
		os.Exit(2)
	}

	if err := run(*configPath, *skillsDir, input); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath, skillsDir, input string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if skillsDir != "" {
		cfg.Skills.Dir = skillsDir
	}
	slog.SetDefault(telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format))

	registry := skills.NewRegistry()
	dataDir := filepath.Join(cfg.Skills.Dir, sheets.SkillName, "data")
	if workbook, err := sheets.Open(dataDir); err == nil {
		sheets.Register(registry, workbook)
	}
	loader := skills.NewLoader(cfg.Skills.Dir, skills.WithRegistry(registry))

	provider := llm.NewOllama(cfg.LLM.BaseURL)
	driver := agent.NewTwoStep(provider, loader,
		agent.WithModel(cfg.LLM.AgentModel),
		agent.WithTemperature(cfg.LLM.Temperature))

	out, err := driver.Handle(ctx, input)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
