package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Equal(t, "figma-context version "+version+"\n", out.String())
}

func TestRootCommand_RequiresToken(t *testing.T) {
	t.Setenv("FIGMA_API_KEY", "")
	t.Setenv("FIGMA_OAUTH_TOKEN", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", t.TempDir(), "fetch", "ABC123"})

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "FIGMA_API_KEY")
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", t.TempDir(), "--token", "x", "--format", "xml", "ABC123"})

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, `invalid output format "xml"`)
}

func TestServeCommand_UnknownTransport(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", t.TempDir(), "--token", "x", "serve", "--transport", "carrier-pigeon"})

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, `unknown transport "carrier-pigeon"`)
}

func TestCachePurge(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", t.TempDir(), "--cache-dir", t.TempDir(), "cache", "purge"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Purged 0 cached response(s)")
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()

	assert.True(t, newLogger("debug", "json", &bytes.Buffer{}).Enabled(ctx, slog.LevelDebug))
	assert.False(t, newLogger("warn", "text", &bytes.Buffer{}).Enabled(ctx, slog.LevelInfo))
	assert.True(t, newLogger("bogus", "text", &bytes.Buffer{}).Enabled(ctx, slog.LevelInfo))

	var buf bytes.Buffer
	newLogger("info", "json", &buf).Info("served design", "nodes", 3)
	assert.Contains(t, buf.String(), `"msg":"served design"`)
	assert.Contains(t, buf.String(), `"nodes":3`)
}
