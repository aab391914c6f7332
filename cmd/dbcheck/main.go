// Command dbcheck verifies the configured MongoDB deployment accepts writes. It inserts a
// marker document into the tests collection, removes it again and exits non-zero on any
// failure.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/feedback-go-api/internal/config"
	"github.com/noah-isme/feedback-go-api/internal/database"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error().Err(err).Msg("failed to load configuration")
		return 1
	}

	logger.Info().Str("uri", database.RedactURI(cfg.MongoURI)).Msg("testing mongodb connection")

	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*timeout)
	defer cancel()

	health := database.NewHealth(logger)
	client, err := database.ConnectMongo(ctx, cfg.MongoURI, timeout, health, logger)
	if err != nil {
		logger.Error().Err(err).Msg("connection failed")
		return 1
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if !health.Connected() {
		logger.Error().Msg("connection failed, check the uri and that the server accepts connections from this host")
		return 1
	}

	report, err := database.SelfTest(ctx, client.Database(cfg.MongoDatabase))
	if err != nil {
		logger.Error().Err(err).Msg("self test failed")
		return 1
	}

	logger.Info().
		Str("database", report.Database).
		Str("document_id", report.DocumentID).
		Msg("test document inserted and deleted, connection works")
	return 0
}
