package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/betbuddy-league/internal/shared/config"
)

func TestResetRequiresConfirmation(t *testing.T) {
	cfg := config.Load()
	cmd := newRootCmd(&cfg, zap.NewNop())
	cmd.SetArgs([]string{"reset-db", "--dsn", "postgres://nobody@127.0.0.1:1/none?sslmode=disable"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestSeedRejectsInvalidLeagueFile(t *testing.T) {
	cfg := config.Load()
	cmd := newRootCmd(&cfg, zap.NewNop())
	cmd.SetArgs([]string{"seed", "--file", t.TempDir() + "/missing.yaml"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	require.Error(t, cmd.ExecuteContext(context.Background()))
}
