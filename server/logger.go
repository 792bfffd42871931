package server

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/ritego/challenge-analytics-router/config"
)

// NewLogger builds the process logger from the log section of the config.
func NewLogger(w io.Writer, c config.Log) (*log.Logger, error) {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "analytics",
	})
	if c.Format == "json" {
		logger.SetFormatter(log.JSONFormatter)
	}
	if err := ApplyLevel(logger, c.Level); err != nil {
		return nil, err
	}
	return logger, nil
}

// ApplyLevel changes the level of a live logger.
func ApplyLevel(logger *log.Logger, level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(lvl)
	return nil
}
