// Package main provides the CLI entry point for relayforge, a
// multi-provider agentic tool-execution gateway.
//
// # Basic Usage
//
// Start the server:
//
//	relayforge serve --config relayforge.json
//
// Check the configured providers and tool catalog:
//
//	relayforge status --config relayforge.json
//
// # Environment Variables
//
// Every option in relayforge.json can be overridden by environment
// variable; see internal/config for the full precedence chain.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/relayforge/relayforge/internal/agentloop"
	"github.com/relayforge/relayforge/internal/config"
	"github.com/relayforge/relayforge/internal/dispatcher"
	"github.com/relayforge/relayforge/internal/httpapi"
	"github.com/relayforge/relayforge/internal/llm"
	"github.com/relayforge/relayforge/internal/obs"
	"github.com/relayforge/relayforge/internal/planner"
	"github.com/relayforge/relayforge/internal/plugins"
	"github.com/relayforge/relayforge/internal/providers"
	"github.com/relayforge/relayforge/internal/providers/calc"
	"github.com/relayforge/relayforge/internal/providers/dev"
	"github.com/relayforge/relayforge/internal/providers/monitor"
	"github.com/relayforge/relayforge/internal/providers/remote"
	"github.com/relayforge/relayforge/internal/providers/websearch"
	"github.com/relayforge/relayforge/internal/registry"
	"github.com/relayforge/relayforge/internal/session"
	"github.com/relayforge/relayforge/internal/sshpool"
)

// Build information, populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd assembles the CLI command tree. Separated from main for
// testability.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "relayforge",
		Short:        "relayforge - reliable multi-provider tool execution gateway",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	rootCmd.AddCommand(buildServeCmd(), buildStatusCmd(), buildQueryCmd())
	return rootCmd
}

func buildServeCmd() *cobra.Command {
	var (
		configPath string
		envPath    string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the agent loop's HTTP bridge until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, envPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			app, err := buildApp(cfg)
			if err != nil {
				return fmt.Errorf("build app: %w", err)
			}
			return app.run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "relayforge.json", "Path to JSON configuration file")
	cmd.Flags().StringVar(&envPath, "env", ".env", "Path to .env overlay file")
	return cmd
}

func buildStatusCmd() *cobra.Command {
	var (
		configPath string
		envPath    string
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the resolved configuration and registered tool catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, envPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			app, err := buildApp(cfg)
			if err != nil {
				return fmt.Errorf("build app: %w", err)
			}
			defer func() { _ = app.shutdown() }()

			out := cmd.OutOrStdout()
			snap := cfg.Redacted()
			fmt.Fprintf(out, "Config: model=%s http_addr=%s log_level=%s\n", snap.ModelName, snap.HTTPAddr, snap.LogLevel)
			counts := app.registry.ServerCounts()
			fmt.Fprintln(out, "Providers:")
			for name, n := range counts {
				fmt.Fprintf(out, "  - %s: %d tools\n", name, n)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "relayforge.json", "Path to JSON configuration file")
	cmd.Flags().StringVar(&envPath, "env", ".env", "Path to .env overlay file")
	return cmd
}

func buildQueryCmd() *cobra.Command {
	var (
		configPath string
		envPath    string
	)
	cmd := &cobra.Command{
		Use:   "query [message]",
		Short: "Run one message through the agent loop and print the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, envPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			app, err := buildApp(cfg)
			if err != nil {
				return fmt.Errorf("build app: %w", err)
			}
			defer func() { _ = app.shutdown() }()

			answer, err := app.engine.Query(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "relayforge.json", "Path to JSON configuration file")
	cmd.Flags().StringVar(&envPath, "env", ".env", "Path to .env overlay file")
	return cmd
}

// application bundles every long-lived component wired together for a
// single run of the gateway, so serve and status share one
// construction path.
type application struct {
	cfg        config.Config
	log        *slog.Logger
	registry   *registry.Registry
	dispatcher *dispatcher.Dispatcher
	sessions   *session.Store
	sshPool    *sshpool.Pool
	pluginMgr  *plugins.Manager
	httpServer *httpapi.Server
	engine     *agentloop.Engine
	baseline   []providers.Provider
	metrics    *obs.Metrics
	sweepCron  *cron.Cron
	gaugeStop  chan struct{}
}

// buildApp wires every component named in the configuration:
// observability, the registry, the baseline providers, the plugin
// manager, the dispatcher, the session store, the agent loop, and the
// HTTP bridge. It does not start anything — that's run's job — so
// status can inspect the wiring without binding a listener.
func buildApp(cfg config.Config) (*application, error) {
	log := obs.NewLogger(cfg.LogLevel)

	metrics := obs.NewMetrics(prometheus.DefaultRegisterer)

	reg := registry.New(log)

	pool := sshpool.New(log, sshpool.Config{
		User:    cfg.SSHUser,
		KeyPath: cfg.SSHKeyPath,
		IdleTTL: cfg.ConnectionTimeout(),
	})

	baseline := []providers.Provider{
		calc.New(),
		dev.New(),
		monitor.New(log, time.Now),
		remote.New(pool, remote.Config{Host: cfg.SSHHost, User: cfg.SSHUser}),
		websearch.New(nil, nil),
	}

	ctx := context.Background()
	for _, p := range baseline {
		if err := p.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("initialize provider %s: %w", p.Name(), err)
		}
		providers.RegisterAll(reg, p)
	}

	var pluginMgr *plugins.Manager
	for _, dir := range cfg.PluginDiscoveryPaths {
		pluginMgr = plugins.NewManager(dir, reg, log)
		if err := pluginMgr.DiscoverAll(ctx); err != nil {
			log.Warn("plugin discovery failed", "dir", dir, "error", err)
			continue
		}
		break
	}

	sessions := session.New()

	disp := dispatcher.New(reg, log, sessions)
	disp.SetMetrics(metrics)

	var llmClient llm.Client
	if cfg.APIKey != "" {
		anthropicClient, err := llm.NewAnthropicClient(llm.AnthropicConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.APIBaseURL,
			DefaultModel: cfg.ModelName,
		})
		if err != nil {
			return nil, fmt.Errorf("build llm client: %w", err)
		}
		llmClient = anthropicClient
	}

	p := planner.New(reg)
	engine := agentloop.New(reg, disp, p, llmClient, sessions, agentloop.DefaultConfig(), log)

	httpSrv := httpapi.New(reg, disp, sessions, log)

	return &application{
		cfg:        cfg,
		log:        log,
		registry:   reg,
		dispatcher: disp,
		sessions:   sessions,
		sshPool:    pool,
		pluginMgr:  pluginMgr,
		httpServer: httpSrv,
		engine:     engine,
		baseline:   baseline,
		metrics:    metrics,
	}, nil
}

// run starts the HTTP bridge, the SSH pool's idle sweep, and any
// plugin directory watch, then blocks until an interrupt or terminate
// signal, tearing everything down in reverse order of startup.
func (a *application) run(ctx context.Context) error {
	if a.pluginMgr != nil {
		if err := a.pluginMgr.StartWatching(ctx, "@every 30s"); err != nil {
			a.log.Warn("plugin watch failed to start", "error", err)
		}
	}

	a.sweepCron = cron.New()
	if _, err := a.sweepCron.AddFunc("@every 60s", a.sshPool.Sweep); err != nil {
		return fmt.Errorf("schedule ssh pool sweep: %w", err)
	}
	a.sweepCron.Start()

	a.gaugeStop = make(chan struct{})
	go a.reportGauges()

	if err := a.httpServer.Start(a.cfg.HTTPAddr); err != nil {
		return fmt.Errorf("start http bridge: %w", err)
	}
	a.log.Info("relayforge serving", "addr", a.cfg.HTTPAddr)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	a.log.Info("shutting down")

	return a.shutdown()
}

// reportGauges polls the SSH pool size and loaded-plugin count into
// the Prometheus gauges every 15s until gaugeStop is closed.
func (a *application) reportGauges() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.metrics.SSHPoolSize.Set(float64(a.sshPool.Size()))
			if a.pluginMgr != nil {
				a.metrics.PluginsLoaded.Set(float64(len(a.pluginMgr.Records())))
			}
		case <-a.gaugeStop:
			return
		}
	}
}

func (a *application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.gaugeStop != nil {
		close(a.gaugeStop)
	}

	record(a.httpServer.Shutdown(shutdownCtx))

	if a.sweepCron != nil {
		<-a.sweepCron.Stop().Done()
	}
	if a.pluginMgr != nil {
		record(a.pluginMgr.Close())
	}
	for _, p := range a.baseline {
		record(p.Shutdown(shutdownCtx))
	}
	a.sshPool.Close()

	return firstErr
}
