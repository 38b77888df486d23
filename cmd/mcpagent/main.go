// Command mcpagent runs an agent over the tools of an MCP stdio server,
// such as skillserver. The server is spawned as a subprocess and its
// tools join the model's pool through the client adapter.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/skillet-ai/skillet/pkg/agent"
	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/llm"
	"github.com/skillet-ai/skillet/pkg/mcp"
	"github.com/skillet-ai/skillet/pkg/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	server := flag.String("server", "skillserver", "MCP stdio server command, with arguments")
	flag.Parse()

	input := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if input == "" {
		fmt.Fprintln(os.Stderr, "usage: mcpagent [flags] <request>")
		os.Exit(2)
	}

	if err := run(*configPath, *server, input); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath, server, input string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	command := strings.Fields(server)
	if len(command) == 0 {
		return fmt.Errorf("server command is empty")
	}
	client, err := mcp.NewStdioClient(command[0], command[1:])
	if err != nil {
		return fmt.Errorf("connect to %s: %w", command[0], err)
	}
	defer client.Close()

	tools, err := client.Tools(ctx)
	if err != nil {
		return fmt.Errorf("list tools: %w", err)
	}
	if len(tools) == 0 {
		return fmt.Errorf("%s offers no tools", command[0])
	}
	adapters, err := mcp.Adapters(tools, client)
	if err != nil {
		return err
	}
	logger.Info("connected", "server", command[0], "tools", len(tools))

	runner := agent.NewRunner(llm.NewOllama(cfg.LLM.BaseURL),
		agent.WithModel(cfg.LLM.AgentModel),
		agent.WithTemperature(cfg.LLM.Temperature))

	out, err := runner.Run(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a helpful assistant. Use the available tools to answer."},
		{Role: llm.RoleUser, Content: input},
	}, mcp.Pool(adapters))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
