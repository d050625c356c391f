package main

import (
	"go.uber.org/zap"

	"github.com/septivank/solar-telemetry-ingest/internal/config"
	"github.com/septivank/solar-telemetry-ingest/internal/logging"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(cfg.ServiceName, cfg.LogLevel)
}
