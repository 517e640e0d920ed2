package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hutchisr/grok/internal/agent"
	"github.com/hutchisr/grok/internal/config"
	"github.com/hutchisr/grok/internal/ledger"
	"github.com/hutchisr/grok/internal/misskey"
	"github.com/hutchisr/grok/internal/provider"
	"github.com/hutchisr/grok/internal/stream"
	"github.com/hutchisr/grok/internal/timeline"
	"github.com/hutchisr/grok/internal/tools"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the instance and answer mentions",
	Run:   runBot,
}

func runBot(cmd *cobra.Command, args []string) {
	printHeader("🤖 grok")

	setupLogging()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	client := misskey.NewClient(cfg.Server.URL, cfg.Server.Token)

	caller := provider.NewOpenAIClient(cfg.Model.MaxTokens, cfg.Model.Temperature)
	dispatcher := provider.NewDispatcher(
		toEndpoints(cfg.Model.ChatEndpoints),
		toEndpoints(cfg.Model.VisionEndpoints),
		caller,
		cfg.Agent.RetryBackoff,
	)
	var describer provider.Describer
	if len(cfg.Model.VisionEndpoints) > 0 {
		describer = dispatcher
	}

	registry := tools.NewRegistry()
	registry.Register(tools.NewCurrentTimeTool())
	registry.Register(tools.NewCreateNoteTool(client, cfg.Server.BotUsername))
	registry.Register(tools.NewSearchUsersTool(client))
	registry.Register(tools.NewSearchNotesTool(client))
	if cfg.Tools.Search.URL != "" {
		registry.Register(tools.NewWebSearchTool(
			cfg.Tools.Search.URL, cfg.Tools.Search.User, cfg.Tools.Search.Password, cfg.Tools.Search.MaxResults))
	}
	if cfg.Ledger.Enabled() {
		store := ledger.NewRedisStore(cfg.Ledger.Addr, cfg.Ledger.Password, cfg.Ledger.DB, cfg.Ledger.KeyPrefix)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := store.Ping(pingCtx)
		cancel()
		if err != nil {
			fmt.Printf("Ledger error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		svc := ledger.NewService(store)
		registry.Register(tools.NewGetScoreTool(svc))
		registry.Register(tools.NewAdjustScoreTool(svc))
		registry.Register(tools.NewGetHistoryTool(svc))
		registry.Register(tools.NewGetLeaderboardTool(svc))
	}
	slog.Info("Tools registered", "tools", registry.Names())

	timeSvc, err := timeline.Open(timelinePath())
	if err != nil {
		fmt.Printf("Failed to init timeline: %v\n", err)
		os.Exit(1)
	}
	defer timeSvc.Close()

	engine := agent.NewReactEngine(dispatcher, registry, cfg.Agent.MaxSteps)
	builder := agent.NewContextBuilder(client, cfg.Agent.MaxContextDepth)
	resolver := agent.NewMentionResolver(client, cfg.Server.BotUsername, cfg.Server.Domain)
	handler := agent.NewHandler(client, builder, engine, resolver, describer, timeSvc,
		cfg.Server.BotUserID, cfg.Prompt.System)

	ingestor := stream.NewIngestor(cfg.Server.WSURL, cfg.Server.Token, handler, cfg.Agent.RetryBackoff)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("Shutting down", "signal", sig)
		ingestor.Shutdown()
	}()

	slog.Info("Connecting to stream", "url", cfg.Server.WSURL)
	if err := ingestor.Run(context.Background()); err != nil {
		fmt.Printf("Stream error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if debugFlag {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func toEndpoints(configured []config.Endpoint) []provider.Endpoint {
	endpoints := make([]provider.Endpoint, 0, len(configured))
	for _, ep := range configured {
		endpoints = append(endpoints, provider.Endpoint{
			URL:      ep.URL,
			Key:      ep.Key,
			Model:    ep.Model,
			Provider: ep.Provider,
		})
	}
	return endpoints
}

func timelinePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "timeline.db"
	}
	dir := filepath.Join(home, ".grok")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "timeline.db"
	}
	return filepath.Join(dir, "timeline.db")
}
