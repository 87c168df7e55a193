package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"FIGMA_API_KEY", "FIGMA_OAUTH_TOKEN", "HOST", "PORT", "OUTPUT_FORMAT",
		"FIGMA_EXTRACTORS", "SKIP_IMAGE_DOWNLOADS", "FIGMA_CACHE_DIR", "FIGMA_CACHE_TTL",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 3333, c.Port)
	assert.Equal(t, "yaml", c.OutputFormat)
	assert.Equal(t, "all", c.Extractors)
	assert.Empty(t, c.Path)
	for _, key := range keys() {
		assert.Equal(t, SourceDefault, c.Sources[key], key)
	}
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, "figma-context.yml", `
figmaApiKey: file-key
port: 4000
outputFormat: json
cacheTTL: 1h
depth: 3
`)
	t.Setenv("PORT", "5000")
	t.Setenv("SKIP_IMAGE_DOWNLOADS", "true")

	c, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "figma-context.yml"), c.Path)
	assert.Equal(t, "file-key", c.FigmaAPIKey)
	assert.Equal(t, SourceFile, c.Sources[KeyFigmaAPIKey])
	assert.Equal(t, 5000, c.Port)
	assert.Equal(t, SourceEnv, c.Sources[KeyPort])
	assert.Equal(t, "json", c.OutputFormat)
	assert.Equal(t, time.Hour, c.CacheTTL)
	assert.Equal(t, SourceFile, c.Sources[KeyCacheTTL])
	assert.True(t, c.SkipImageDownloads)
	assert.Equal(t, SourceDefault, c.Sources[KeyHost])

	format := "markdown"
	port := 6000
	c.Apply(Overrides{OutputFormat: &format, Port: &port})

	assert.Equal(t, "markdown", c.OutputFormat)
	assert.Equal(t, SourceCLI, c.Sources[KeyOutputFormat])
	assert.Equal(t, 6000, c.Port)
	assert.Equal(t, SourceCLI, c.Sources[KeyPort])
	assert.Equal(t, 3, c.Depth, "unset overrides keep the previous value")
	assert.Equal(t, SourceFile, c.Sources[KeyDepth])
}

func TestLoad_ExplicitFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, t.TempDir(), "custom.yaml", "figmaOAuthToken: oauth\n")

	c, err := Load(path)
	require.NoError(t, err)

	token, oauth := c.Token()
	assert.Equal(t, "oauth", token)
	assert.True(t, oauth)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing explicit file", wantErr: "failed to read config file"},
		{name: "malformed yaml", file: "port: [", wantErr: "failed to parse config file"},
		{name: "bad port", file: "{}", env: map[string]string{"PORT": "http"}, wantErr: `invalid PORT "http"`},
		{name: "bad ttl", file: "{}", env: map[string]string{"FIGMA_CACHE_TTL": "soon"}, wantErr: `invalid FIGMA_CACHE_TTL "soon"`},
		{name: "bad bool", file: "{}", env: map[string]string{"SKIP_IMAGE_DOWNLOADS": "maybe"}, wantErr: "invalid SKIP_IMAGE_DOWNLOADS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "figma-context.yml")
			if tt.file != "" {
				writeConfig(t, filepath.Dir(path), filepath.Base(path), tt.file)
			}

			_, err := Load(path)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.FigmaAPIKey = "key"
		return c
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"no credentials", func(c *Config) { c.FigmaAPIKey = "" }, "FIGMA_API_KEY"},
		{"bad format", func(c *Config) { c.OutputFormat = "xml" }, `invalid output format "xml"`},
		{"bad port", func(c *Config) { c.Port = 70000 }, "invalid port 70000"},
		{"bad preset", func(c *Config) { c.Extractors = "everything" }, "everything"},
		{"negative depth", func(c *Config) { c.Depth = -1 }, "invalid depth -1"},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, "invalid cache ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.wantErr)
		})
	}
}

func TestSummary_MasksSecrets(t *testing.T) {
	c := Default()
	c.FigmaAPIKey = "figd_secret1234"
	c.Sources[KeyFigmaAPIKey] = SourceEnv

	lines := c.Summary()

	assert.Contains(t, lines, "figmaApiKey: ****1234 (env)")
	assert.Contains(t, lines, "port: 3333 (default)")
	for _, line := range lines {
		assert.NotContains(t, line, "secret")
	}
}
