package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillzone-api/internal/config"
)

func TestPoolConfig(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL:    "postgres://u:p@db:5432/skills?sslmode=disable",
		DatabaseConfig: config.DatabaseConfig{MaxConns: 7, MinConns: 2},
	}

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 7, pc.MaxConns)
	assert.EqualValues(t, 2, pc.MinConns)
	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.Equal(t, time.Minute, pc.HealthCheckPeriod)

	cfg.DatabaseURL = "postgres://u:p@db:notaport/skills"
	_, err = poolConfig(cfg)
	assert.Error(t, err)
}

func TestPingWithoutPool(t *testing.T) {
	CloseDB()
	assert.NoError(t, Ping(context.Background()))
}

func TestGetContextHasDeadline(t *testing.T) {
	ctx, cancel := GetContext()
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(queryTimeout), deadline, time.Second)
}
