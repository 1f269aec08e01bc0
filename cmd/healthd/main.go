package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"go.uber.org/zap"

	"github.com/SVPraveen1/health-ai-sub000/internal/analytics"
	"github.com/SVPraveen1/health-ai-sub000/internal/api"
	"github.com/SVPraveen1/health-ai-sub000/internal/assess"
	"github.com/SVPraveen1/health-ai-sub000/internal/config"
	"github.com/SVPraveen1/health-ai-sub000/internal/cron"
	"github.com/SVPraveen1/health-ai-sub000/internal/health"
	"github.com/SVPraveen1/health-ai-sub000/internal/llm"
	"github.com/SVPraveen1/health-ai-sub000/internal/metrics"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	initConfig = flag.Bool("init", false, "Write a starter config file and exit")
	devMode    = flag.Bool("dev", false, "Development logging")
	version    = "dev"
)

func main() {
	flag.Parse()

	if len(flag.Args()) > 0 && flag.Args()[0] == "version" {
		fmt.Printf("healthd version %s\n", version)
		return
	}

	if *initConfig {
		runInit()
		return
	}

	logger := newLogger()
	defer logger.Sync()

	logger.Info("Starting healthd", zap.String("version", version))

	cfg, err := config.Load(*configPath, *dataDir)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	store, err := health.Open(cfg.Storage.SQLitePath)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}

	cache, err := analytics.OpenReportCache(
		cfg.Storage.BadgerPath,
		time.Duration(cfg.Analytics.CacheTTLHours)*time.Hour,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to open report cache", zap.Error(err))
	}
	defer cache.Close()

	engine := analytics.NewEngine(logger)
	m := metrics.New()

	var completer llm.Completer
	var assessor *assess.Assessor
	if cfg.LLM.APIKey != "" {
		completer = llm.NewGuard(llm.NewClient(cfg.LLM), cfg.LLM.RPM)
		assessor = assess.New(completer, logger)
	} else {
		logger.Warn("No completion API key configured; assistant endpoints disabled")
	}

	server := api.New(cfg, store, engine, cache, assessor, completer, m, logger)

	runner := cron.New(store, engine, cache, m, logger, cfg.Analytics.MaxConcurrent)
	if err := runner.Start(cfg.Analytics.WeeklySchedule); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	config.Watch(*configPath, logger, func(updated *config.Config) {
		logger.Info("Configuration reloaded")
	})

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	runner.Stop()
	if err := server.Shutdown(); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if *devMode {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return logger
}

func runInit() {
	dir := *dataDir
	if dir == "" {
		dir = "."
	}

	password := os.Getenv("HEALTHAI_SECURITY_ADMIN_PASSWORD")
	if password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("Admin password (empty to allow any): ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			fmt.Printf("Failed to read password: %v\n", err)
			os.Exit(1)
		}
		password = string(raw)
	}

	path, err := config.WriteStarter(dir, password)
	if err != nil {
		fmt.Printf("Failed to write config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote starter config to %s\n", path)
}
