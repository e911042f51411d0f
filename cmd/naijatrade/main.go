// Package main is the entry point for the NaijaTrade terminal client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/naijatrade/business/airdrops"
	airdropsDI "github.com/fd1az/naijatrade/business/airdrops/di"
	"github.com/fd1az/naijatrade/business/arbscanner"
	arbDI "github.com/fd1az/naijatrade/business/arbscanner/di"
	arbDomain "github.com/fd1az/naijatrade/business/arbscanner/domain"
	"github.com/fd1az/naijatrade/business/auth"
	authDI "github.com/fd1az/naijatrade/business/auth/di"
	"github.com/fd1az/naijatrade/business/billing"
	billingDI "github.com/fd1az/naijatrade/business/billing/di"
	"github.com/fd1az/naijatrade/business/insights"
	insightsDI "github.com/fd1az/naijatrade/business/insights/di"
	"github.com/fd1az/naijatrade/business/ngxradar"
	ngxDI "github.com/fd1az/naijatrade/business/ngxradar/di"
	"github.com/fd1az/naijatrade/business/portfolio"
	portfolioDI "github.com/fd1az/naijatrade/business/portfolio/di"
	"github.com/fd1az/naijatrade/business/signals"
	signalsDI "github.com/fd1az/naijatrade/business/signals/di"
	"github.com/fd1az/naijatrade/internal/apm"
	"github.com/fd1az/naijatrade/internal/capability"
	"github.com/fd1az/naijatrade/internal/config"
	"github.com/fd1az/naijatrade/internal/health"
	"github.com/fd1az/naijatrade/internal/logger"
	"github.com/fd1az/naijatrade/internal/metrics"
	"github.com/fd1az/naijatrade/internal/monolith"
	"github.com/fd1az/naijatrade/internal/push"
	"github.com/fd1az/naijatrade/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Print the market report with logs instead of the TUI")
	once := flag.Bool("once", false, "In CLI mode, print one report and exit")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("naijatrade %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for scripting and debugging
	tuiMode := !*cliMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, tuiMode, *once); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode, once bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.UI.TUIMode = tuiMode

	// The TUI owns the terminal, so logs are discarded there.
	level := logger.ParseLevel(cfg.App.LogLevel)
	var log *logger.Logger
	if tuiMode {
		log = logger.New(io.Discard, level, cfg.App.Name, nil)
	} else {
		log = logger.NewConsole(os.Stderr, level, cfg.App.Name)
		log.Info(ctx, "starting NaijaTrade",
			"version", version,
			"environment", cfg.App.Environment,
			"api", cfg.API.BaseURL,
		)
	}

	stopTelemetry, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stopTelemetry()

	mono, err := monolith.New(ctx, cfg, log, version, monolith.Deps{})
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	pinger, err := newAPIPinger(cfg.API, version)
	if err != nil {
		return fmt.Errorf("failed to create api pinger: %w", err)
	}

	if cfg.Health.Enabled {
		hs := newHealthServer(cfg, log, mono, pinger)
		if err := hs.Start(); err != nil {
			log.Warn(ctx, "failed to start health server", "error", err)
		} else {
			log.Info(ctx, "health server started", "port", cfg.Health.Port)
			defer hs.Stop(context.Background())
		}
	}

	// Modules in dependency order. Billing warms the plan catalogs the
	// others gate on; auth schedules token refresh.
	modules := []monolith.Module{
		&billing.Module{},
		&auth.Module{},
		&arbscanner.Module{},
		&ngxradar.Module{},
		&insights.Module{},
		&signals.Module{},
		&airdrops.Module{},
		&portfolio.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	var listener *push.Listener
	if url := cfg.Features.PushURL; url != "" {
		listener = push.NewListener(url, mono.Session(), mono.Queries(), log)
		defer listener.Close()
	}

	if tuiMode {
		return runTUI(ctx, mono, modules, listener, pinger)
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}
	if listener != nil {
		if err := listener.Start(ctx); err != nil {
			log.Warn(ctx, "push channel unavailable, polling only", "error", err)
		}
	}
	return runCLI(ctx, cfg, mono, log, once)
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (func(), error) {
	if !cfg.Telemetry.Enabled {
		return func() {}, nil
	}

	tp, err := apm.NewTraceProvider(apm.WithTelemetry(cfg.Telemetry, log))
	if err != nil {
		return nil, fmt.Errorf("failed to start tracing: %w", err)
	}
	log.Info(ctx, "tracing initialized", "provider", cfg.Telemetry.TraceProvider)

	mp, err := metrics.NewMetricProvider(ctx, metrics.FromTelemetry(cfg.Telemetry)...)
	if err != nil {
		_ = tp.Stop()
		return nil, fmt.Errorf("failed to start metrics: %w", err)
	}

	var prom *metrics.PromServer
	if port := cfg.Telemetry.PrometheusPort; port > 0 {
		prom = metrics.ServePrometheusMetrics(log, metrics.WithPort(strconv.Itoa(port)))
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if prom != nil {
			_ = prom.Stop(shutdownCtx)
		}
		_ = mp.Shutdown(shutdownCtx)
		_ = tp.Stop()
	}, nil
}

func newHealthServer(cfg *config.Config, log logger.LoggerInterface, mono *monolith.App, pinger *apiPinger) *health.Server {
	opts := []health.Option{health.WithLogger(log)}
	if cfg.Telemetry.Enabled && cfg.Telemetry.PrometheusPort == 0 {
		opts = append(opts, health.WithMetrics())
	}
	hs := health.NewServer(cfg.Health.Port, version, opts...)

	hs.RegisterCheck("api", func(ctx context.Context) (bool, string) {
		if err := pinger.Ping(ctx); err != nil {
			return false, err.Error()
		}
		return true, "reachable"
	})
	hs.RegisterCheck("session", func(ctx context.Context) (bool, string) {
		if err := mono.Ping(ctx); err != nil {
			return false, err.Error()
		}
		if mono.Session().Snapshot().Authenticated() {
			return true, "signed in"
		}
		return true, "guest"
	})
	hs.RegisterCheck("cache", func(context.Context) (bool, string) {
		st := mono.Queries().Stats()
		return true, fmt.Sprintf("%d entries, %d subscribers", st.Entries, st.Subscribers)
	})
	return hs
}

func runTUI(ctx context.Context, mono *monolith.App, modules []monolith.Module, listener *push.Listener, pinger *apiPinger) error {
	sr := mono.Services()
	svc := ui.Services{
		Session:   mono.Session(),
		UI:        mono.UI(),
		Auth:      authDI.GetAuthService(sr),
		Scanner:   arbDI.GetScannerService(sr),
		NGX:       ngxDI.GetRadarService(sr),
		Insights:  insightsDI.GetInsightsService(sr),
		Signals:   signalsDI.GetSignalsService(sr),
		Airdrops:  airdropsDI.GetAirdropsService(sr),
		Portfolio: portfolioDI.GetPortfolioService(sr),
		Billing:   billingDI.GetBillingService(sr),
		Ads:       sr.Get(monolith.ServiceAdSlot).(capability.AdSlot),
		Install:   sr.Get(monolith.ServiceInstall).(capability.InstallPrompt),
	}

	deps := ui.Deps{
		Services: svc,
		Cryptos:  arbDomain.Cryptos,
		Log:      mono.Logger(),
		Ping:     pinger.Ping,
		Start: func() {
			startTUIModules(ctx, mono, modules, listener)
		},
	}
	if listener != nil {
		deps.PushConnected = listener.Connected
	}

	err := ui.Run(ctx, deps)
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// startTUIModules runs behind the startup screen and reports each step.
func startTUIModules(ctx context.Context, mono *monolith.App, modules []monolith.Module, listener *push.Listener) {
	step := func(name, status, message string) {
		ui.Send(ui.StartupMsg{Step: name, Status: status, Message: message})
	}

	step(ui.StepConfig, "done", mono.Config().API.BaseURL)

	step(ui.StepSession, "connecting", "")
	if snap := mono.Session().Snapshot(); snap.Authenticated() && snap.Profile != nil {
		step(ui.StepSession, "done", snap.Profile.DisplayName())
	} else {
		step(ui.StepSession, "done", "guest")
	}

	step(ui.StepPush, "connecting", "")
	if listener == nil {
		step(ui.StepPush, "done", "polling")
	} else if err := listener.Start(ctx); err != nil {
		mono.Logger().Warn(ctx, "push channel unavailable, polling only", "error", err)
		step(ui.StepPush, "failed", "polling only")
	} else {
		step(ui.StepPush, "done", "connected")
	}

	step(ui.StepReference, "connecting", "")
	if err := mono.StartModules(ctx, modules...); err != nil {
		step(ui.StepReference, "failed", err.Error())
		ui.Send(ui.ErrorMsg{Err: err})
		return
	}
	if err := insightsDI.GetInsightsService(mono.Services()).Overview(ctx); err != nil {
		mono.Logger().Warn(ctx, "market overview not loaded", "error", err)
		step(ui.StepReference, "failed", "will retry on view")
		return
	}
	step(ui.StepReference, "done", "")
}
