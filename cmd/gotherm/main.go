package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mlsorensen/gotherm"
	"github.com/mlsorensen/gotherm/internal/config"
	"github.com/mlsorensen/gotherm/internal/logging"
	_ "github.com/mlsorensen/gotherm/pkg/formats/all"
	"github.com/mlsorensen/gotherm/pkg/sinks/mqttpub"
	"github.com/mlsorensen/gotherm/pkg/sinks/recorder"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "gotherm:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	logger := logging.New(cfg, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []gotherm.Sink

	if cfg.SQLitePath != "" {
		rec, err := recorder.Open(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer rec.Close()
		sinks = append(sinks, rec)
		logger.Info("recording readings", "path", cfg.SQLitePath)
	}

	if cfg.MQTTBroker != "" {
		pub, err := mqttpub.New(mqttpub.Options{
			BrokerURL:   cfg.MQTTBroker,
			ClientID:    cfg.MQTTClientID,
			TopicPrefix: cfg.MQTTTopicPrefix,
		}, logger)
		if err != nil {
			return err
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}

	session := gotherm.NewSession(gotherm.NewAdapterSource(logger), logger, sinks...)
	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Stop()

	ticker := time.NewTicker(cfg.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down", "stats", session.Stats().String())
			return nil
		case <-ticker.C:
			logger.Info("scan stats",
				"stats", session.Stats().String(),
				"devices", len(session.Readings()),
			)
		}
	}
}
