// Command skillserver publishes skill tools over MCP stdio so external
// clients can call them.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/mcp"
	"github.com/skillet-ai/skillet/pkg/sheets"
	"github.com/skillet-ai/skillet/pkg/skills"
	"github.com/skillet-ai/skillet/pkg/telemetry"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to config file")
	skillsDir := flag.String("skills", "", "override skills directory")
	only := flag.String("skill", "", "serve only this skill (default: all)")
	flag.Parse()

	if err := run(*configPath, *skillsDir, *only); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath, skillsDir, only string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if skillsDir != "" {
		cfg.Skills.Dir = skillsDir
	}

	// stdout carries the MCP protocol, logs must go to stderr
	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	registry := skills.NewRegistry()
	dataDir := filepath.Join(cfg.Skills.Dir, sheets.SkillName, "data")
	if workbook, err := sheets.Open(dataDir); err == nil {
		sheets.Register(registry, workbook)
	}
	loader := skills.NewLoader(cfg.Skills.Dir, skills.WithRegistry(registry))

	names := loader.Discover()
	if only != "" {
		names = []string{only}
	}

	server := mcp.NewServer("skillet", version)
	total := 0
	for _, name := range names {
		n := server.RegisterSkill(loader, name)
		if n > 0 {
			logger.Info("serving skill", "skill", name, "tools", n)
		}
		total += n
	}
	if total == 0 {
		return fmt.Errorf("no tools to serve from %s (skills: %s)",
			cfg.Skills.Dir, strings.Join(names, ", "))
	}

	logger.Info("mcp server starting on stdio", "tools", total)
	return server.ServeStdio()
}
