package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/ritego/challenge-analytics-router/analytics"
	"github.com/ritego/challenge-analytics-router/config"
	"github.com/ritego/challenge-analytics-router/router"
	"github.com/ritego/challenge-analytics-router/server"
)

func main() {
	configPath := flag.String("config", ".", "config directory or YAML file")
	flag.Parse()

	loader, cfg := initConfig(*configPath)
	logger := initLogger(loader, cfg)
	table := setupRouter(cfg, logger)
	startServer(cfg, table, logger)
}

func initConfig(path string) (*config.Loader, *config.Config) {
	loader, err := config.NewLoader(path)
	if err != nil {
		log.Fatal("fatal error reading config", "err", err)
	}
	cfg, err := loader.Config()
	if err != nil {
		log.Fatal("fatal error in config", "err", err)
	}
	return loader, cfg
}

func initLogger(loader *config.Loader, cfg *config.Config) *log.Logger {
	logger, err := server.NewLogger(os.Stderr, cfg.Log)
	if err != nil {
		log.Fatal("fatal error building logger", "err", err)
	}

	watching := loader.Watch(func(c *config.Config) {
		if err := server.ApplyLevel(logger, c.Log.Level); err != nil {
			logger.Error("config reload", "err", err)
			return
		}
		logger.Info("config reloaded", "level", c.Log.Level)
	}, func(err error) {
		logger.Error("config reload rejected", "err", err)
	})

	logger.Info("config loaded", "file", loader.File(), "watching", watching)
	return logger
}

func setupRouter(cfg *config.Config, logger *log.Logger) *router.Router {
	table, err := analytics.New(analytics.NotImplemented(),
		router.WithPrefix(cfg.Routes.Prefix),
		router.WithNamespace(cfg.Routes.Namespace),
	)
	if err != nil {
		logger.Fatal("invalid route table", "err", err)
	}

	for _, rt := range table.Routes() {
		logger.Debug("route", "name", rt.Name, "pattern", table.Prefix()+rt.Pattern)
	}
	logger.Info("router loaded", "prefix", table.Prefix(), "routes", len(table.Routes()))
	return table
}

func startServer(cfg *config.Config, table *router.Router, logger *log.Logger) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg, table, logger).Run(ctx); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}
