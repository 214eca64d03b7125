package logger_test

import (
	"errors"

	"github.com/fairvalue/screener/pkg/config"
	"github.com/fairvalue/screener/pkg/logger"
)

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg).Component("screener")

	log.WithFields(map[string]interface{}{
		"universe": "Dow 30",
		"ranked":   27,
		"unranked": 3,
	}).Info("Screen completed")

	log.WithTicker("BA").
		WithError(errors.New("fcf series empty")).
		Warn("Skipping DCF")
}
