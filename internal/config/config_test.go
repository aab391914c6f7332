package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, StoreMongo, cfg.StoreDriver)
	require.Equal(t, "3001", cfg.AppPort)
	require.Equal(t, ":3001", cfg.HTTPAddress())
	require.Equal(t, "student_feedback", cfg.MongoDatabase)
	require.Equal(t, "feedbacks", cfg.MongoCollection)
	require.Equal(t, 10*time.Second, cfg.StoreTimeout)
	require.Equal(t, time.Duration(0), cfg.DedupeTTL)
	require.Equal(t, "feedback.created", cfg.NATSSubject)
	require.Equal(t, 20, cfg.RateLimitMax)
	require.Equal(t, 500, cfg.FeedbackListLimit)
}

func TestLoadReadsListLimit(t *testing.T) {
	t.Setenv("FEEDBACK_LIST_LIMIT", "25")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 25, cfg.FeedbackListLimit)
}

func TestLoadReadsUnprefixedHostingVariables(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27017")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8081", cfg.HTTPAddress())
	require.Equal(t, "mongodb://db.internal:27017", cfg.MongoURI)
}

func TestLoadPrefixedVariablesWin(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("FEEDBACK_APP_PORT", ":9000")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTPAddress())
}

func TestLoadSQLiteDefaultsPath(t *testing.T) {
	t.Setenv("FEEDBACK_STORE_DRIVER", "SQLite")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StoreSQLite, cfg.StoreDriver)
	require.Equal(t, "feedback.db", cfg.DatabaseURL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":     {"FEEDBACK_STORE_DRIVER": "cassandra"},
		"postgres needs dsn": {"FEEDBACK_STORE_DRIVER": "postgres"},
		"bad timeout":        {"FEEDBACK_STORE_TIMEOUT": "soon"},
		"negative dedupe":    {"FEEDBACK_DEDUPE_TTL": "-1m"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for key, value := range env {
				t.Setenv(key, value)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
