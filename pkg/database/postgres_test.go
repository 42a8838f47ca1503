package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/precinho/pkg/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	db, err := NewFromURL(url)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestNew(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, db.Ping(ctx))
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Greater(t, status.Stats.MaxConns, int32(0))
}

func TestNewWithInvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL:             "invalid://url",
			MaxConns:        5,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
	}

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	db := openTestDB(t)

	// 이중 Close도 panic 없어야 함
	assert.NotPanics(t, func() {
		db.Close()
		db.Close()
	})
}
