package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo creates a MongoDB client for uri. Topology monitoring keeps health current, so
// the client is returned even when the first ping fails; the driver keeps reconnecting in
// the background and health flips once a writable server is discovered.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration, health *Health, logger zerolog.Logger) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongodb uri must not be empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if health != nil {
		opts.SetServerMonitor(TopologyMonitor(health))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		if health != nil {
			health.MarkDown(err)
		}
		logger.Error().Err(err).Str("uri", RedactURI(uri)).Msg("mongodb connection error")
		return client, nil
	}

	if health != nil {
		health.MarkUp()
	}
	logger.Info().Str("uri", RedactURI(uri)).Msg("mongodb connected")
	return client, nil
}

// ErrNoWritableServer is recorded on Health when the topology has no server that accepts writes.
var ErrNoWritableServer = errors.New("no writable mongodb server")

// TopologyMonitor maps driver topology changes onto h. The store counts as connected while
// the topology holds a writable server, so a failing secondary does not mark it down and a
// live secondary does not mark it up.
func TopologyMonitor(h *Health) *event.ServerMonitor {
	return &event.ServerMonitor{
		TopologyDescriptionChanged: func(e *event.TopologyDescriptionChangedEvent) {
			if e.NewDescription.HasWritableServer() {
				h.MarkUp()
				return
			}
			h.MarkDown(ErrNoWritableServer)
		},
	}
}

// RedactURI hides the password of a connection string for logging.
func RedactURI(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "<invalid uri>"
	}
	return parsed.Redacted()
}
