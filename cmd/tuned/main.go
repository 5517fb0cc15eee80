package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emtune/tuner-core/internal/tuned"
	"github.com/emtune/tuner-core/pkg/config"
	"github.com/emtune/tuner-core/pkg/logger"
)

func main() {
	var configPath string
	var httpAddr string
	var logLevel string
	var once bool

	flag.StringVar(&configPath, "config", "campaign.yaml", "campaign config file")
	flag.StringVar(&httpAddr, "http-addr", ":8080", "HTTP listen address")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	flag.BoolVar(&once, "once", false, "run a single scheduler round and exit")
	flag.Parse()

	campaign, err := config.LoadCampaign(configPath)
	if err != nil {
		logger.Error("failed to load campaign", "path", configPath, "error", err)
		os.Exit(1)
	}
	if logLevel == "" {
		logLevel = campaign.LogLevel
	}
	logger.SetDefault(logger.NewText(logLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	set, overrides, err := tuned.BuildSet(campaign)
	if err != nil {
		logger.Error("failed to build optimizer set", "error", err)
		os.Exit(1)
	}

	status := tuned.NewStatusStore()
	interval := time.Duration(campaign.PollIntervalMs) * time.Millisecond
	runner := tuned.NewRunner(set, overrides, interval, status)

	if once {
		if err := runner.RunOnce(); err != nil {
			logger.Error("round failed", "error", err)
			os.Exit(1)
		}
		finishCampaign(runner, campaign)
		return
	}

	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           tuned.NewHTTPServer(status, runner).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	runErr := runner.Run(ctx)
	switch {
	case runErr == nil:
		finishCampaign(runner, campaign)
	case errors.Is(runErr, context.Canceled):
		logger.Info("shutdown requested")
	default:
		logger.Error("tuning run failed", "error", runErr)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		os.Exit(1)
	}
}

func finishCampaign(runner *tuned.Runner, campaign *config.Campaign) {
	if campaign.ReportPath == "" {
		return
	}
	if err := runner.SaveReport(campaign.ReportPath); err != nil {
		logger.Error("failed to write report", "path", campaign.ReportPath, "error", err)
		return
	}
	logger.Info("report written", "path", campaign.ReportPath)
}
