package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/diepdo1810/toolbridge"
	"github.com/diepdo1810/toolbridge/audit"
	"github.com/diepdo1810/toolbridge/providers/anthropic"
	"github.com/diepdo1810/toolbridge/providers/chatcompletion"
)

type serverConfig struct {
	Listen   string `yaml:"listen"`
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	AuditDB  string `yaml:"audit_db"`
	DebugLog string `yaml:"debug_log"`
}

var configPath string

var rootCmd = &cobra.Command{
	Use:   "toolbridge",
	Short: "Tool-dispatch orchestrator for conversational LLMs",
	Long: `toolbridge compiles OpenAPI-like tool schemas into a function catalogue,
lets a completion service pick the calls to make, executes them against the
described APIs and streams the final answer back to the caller.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tool-dispatch HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "toolbridge.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	executor := &toolbridge.Executor{Log: log}
	if cfg.AuditDB != "" {
		store, err := audit.Open(cmd.Context(), cfg.AuditDB)
		if err != nil {
			return fmt.Errorf("opening audit store: %w", err)
		}
		defer store.Close()
		executor.Recorder = store
	}

	orchestrator := &toolbridge.Orchestrator{
		Provider: provider,
		Executor: executor,
		Log:      log,
	}

	mux := http.NewServeMux()
	mux.Handle("/v1/chat/tools", toolbridge.NewHandler(orchestrator, log))

	log.Info("listening", "addr", cfg.Listen, "provider", cfg.Provider, "model", cfg.Model)
	return http.ListenAndServe(cfg.Listen, mux)
}

func loadConfig(path string) (serverConfig, error) {
	cfg := serverConfig{
		Listen:   ":8080",
		Provider: "openai",
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func buildProvider(cfg serverConfig) (toolbridge.CompletionProvider, error) {
	switch cfg.Provider {
	case "openai":
		var opts []chatcompletion.Option
		if cfg.DebugLog != "" {
			opts = append(opts, chatcompletion.WithDebug(cfg.DebugLog))
		}
		return chatcompletion.New(cfg.Model, opts...), nil
	case "anthropic":
		var opts []anthropic.Option
		if cfg.DebugLog != "" {
			opts = append(opts, anthropic.WithDebug(cfg.DebugLog))
		}
		return anthropic.New(cfg.Model, opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
