// Package config resolves runtime settings from, in increasing priority, built-in
// defaults, a figma-context.yml file, environment variables and command line flags.
// Every setting remembers where its value came from.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kataras/figma-context/pkg/extractor"
	"github.com/kataras/figma-context/pkg/formatter"
)

// Source tells where a setting's value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceCLI     Source = "cli"
)

// FileNames are the config files Load looks for inside a directory.
var FileNames = []string{"figma-context.yml", "figma-context.yaml"}

// Setting keys, shared by the YAML file, Sources and Summary.
const (
	KeyFigmaAPIKey        = "figmaApiKey"
	KeyFigmaOAuthToken    = "figmaOAuthToken"
	KeyHost               = "host"
	KeyPort               = "port"
	KeyOutputFormat       = "outputFormat"
	KeyExtractors         = "extractors"
	KeyDepth              = "depth"
	KeySkipImageDownloads = "skipImageDownloads"
	KeyCacheDir           = "cacheDir"
	KeyCacheTTL           = "cacheTTL"
)

// Config holds the resolved settings.
type Config struct {
	FigmaAPIKey        string        `yaml:"figmaApiKey,omitempty"`
	FigmaOAuthToken    string        `yaml:"figmaOAuthToken,omitempty"`
	Host               string        `yaml:"host,omitempty"`
	Port               int           `yaml:"port,omitempty"`
	OutputFormat       string        `yaml:"outputFormat,omitempty"`
	Extractors         string        `yaml:"extractors,omitempty"`
	Depth              int           `yaml:"depth,omitempty"`
	SkipImageDownloads bool          `yaml:"skipImageDownloads,omitempty"`
	CacheDir           string        `yaml:"cacheDir,omitempty"`
	CacheTTL           time.Duration `yaml:"cacheTTL,omitempty"`

	// Path is the config file that was read, empty when none was found.
	Path string `yaml:"-"`
	// Sources maps each setting key to where its value came from.
	Sources map[string]Source `yaml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	c := &Config{
		Host:         "127.0.0.1",
		Port:         3333,
		OutputFormat: formatter.YAML,
		Extractors:   "all",
		Sources:      make(map[string]Source),
	}
	for _, key := range keys() {
		c.Sources[key] = SourceDefault
	}
	return c
}

func keys() []string {
	return []string{
		KeyFigmaAPIKey, KeyFigmaOAuthToken, KeyHost, KeyPort, KeyOutputFormat,
		KeyExtractors, KeyDepth, KeySkipImageDownloads, KeyCacheDir, KeyCacheTTL,
	}
}

// Load resolves defaults, the config file and the environment. path may name a
// file or a directory searched for FileNames; a missing file in a directory is not
// an error. Apply command line overrides on the result.
func Load(path string) (*Config, error) {
	c := Default()

	if err := c.loadFile(path); err != nil {
		return nil, err
	}
	if err := c.loadEnv(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) loadFile(path string) error {
	if path == "" {
		path = "."
	}

	candidates := []string{path}
	explicit := true
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		explicit = false
		candidates = candidates[:0]
		for _, name := range FileNames {
			candidates = append(candidates, filepath.Join(path, name))
		}
	}

	for _, file := range candidates {
		data, err := os.ReadFile(file)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && !explicit {
				continue
			}
			return fmt.Errorf("failed to read config file: %w", err)
		}

		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", file, err)
		}
		if err := node.Decode(c); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", file, err)
		}

		for _, key := range presentKeys(&node) {
			if _, ok := c.Sources[key]; ok {
				c.Sources[key] = SourceFile
			}
		}
		c.Path = file
		return nil
	}

	return nil
}

// presentKeys lists the top-level mapping keys of a decoded YAML document.
func presentKeys(doc *yaml.Node) []string {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}

	var names []string
	for i := 0; i+1 < len(doc.Content); i += 2 {
		names = append(names, doc.Content[i].Value)
	}
	return names
}

func (c *Config) loadEnv() error {
	setString := func(env, key string, dst *string) {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
			c.Sources[key] = SourceEnv
		}
	}

	setString("FIGMA_API_KEY", KeyFigmaAPIKey, &c.FigmaAPIKey)
	setString("FIGMA_OAUTH_TOKEN", KeyFigmaOAuthToken, &c.FigmaOAuthToken)
	setString("HOST", KeyHost, &c.Host)
	setString("OUTPUT_FORMAT", KeyOutputFormat, &c.OutputFormat)
	setString("FIGMA_EXTRACTORS", KeyExtractors, &c.Extractors)
	setString("FIGMA_CACHE_DIR", KeyCacheDir, &c.CacheDir)

	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
		c.Sources[KeyPort] = SourceEnv
	}

	if v, ok := os.LookupEnv("SKIP_IMAGE_DOWNLOADS"); ok && v != "" {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SKIP_IMAGE_DOWNLOADS %q: %w", v, err)
		}
		c.SkipImageDownloads = skip
		c.Sources[KeySkipImageDownloads] = SourceEnv
	}

	if v, ok := os.LookupEnv("FIGMA_CACHE_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FIGMA_CACHE_TTL %q: %w", v, err)
		}
		c.CacheTTL = ttl
		c.Sources[KeyCacheTTL] = SourceEnv
	}

	return nil
}

// Overrides carries command line values. Nil fields were not given.
type Overrides struct {
	FigmaAPIKey        *string
	FigmaOAuthToken    *string
	Host               *string
	Port               *int
	OutputFormat       *string
	Extractors         *string
	Depth              *int
	SkipImageDownloads *bool
	CacheDir           *string
	CacheTTL           *time.Duration
}

// Apply sets every non-nil override, marking it as coming from the command line.
func (c *Config) Apply(o Overrides) {
	set := func(key string, ok bool) {
		if ok {
			c.Sources[key] = SourceCLI
		}
	}

	if o.FigmaAPIKey != nil {
		c.FigmaAPIKey = *o.FigmaAPIKey
	}
	set(KeyFigmaAPIKey, o.FigmaAPIKey != nil)
	if o.FigmaOAuthToken != nil {
		c.FigmaOAuthToken = *o.FigmaOAuthToken
	}
	set(KeyFigmaOAuthToken, o.FigmaOAuthToken != nil)
	if o.Host != nil {
		c.Host = *o.Host
	}
	set(KeyHost, o.Host != nil)
	if o.Port != nil {
		c.Port = *o.Port
	}
	set(KeyPort, o.Port != nil)
	if o.OutputFormat != nil {
		c.OutputFormat = *o.OutputFormat
	}
	set(KeyOutputFormat, o.OutputFormat != nil)
	if o.Extractors != nil {
		c.Extractors = *o.Extractors
	}
	set(KeyExtractors, o.Extractors != nil)
	if o.Depth != nil {
		c.Depth = *o.Depth
	}
	set(KeyDepth, o.Depth != nil)
	if o.SkipImageDownloads != nil {
		c.SkipImageDownloads = *o.SkipImageDownloads
	}
	set(KeySkipImageDownloads, o.SkipImageDownloads != nil)
	if o.CacheDir != nil {
		c.CacheDir = *o.CacheDir
	}
	set(KeyCacheDir, o.CacheDir != nil)
	if o.CacheTTL != nil {
		c.CacheTTL = *o.CacheTTL
	}
	set(KeyCacheTTL, o.CacheTTL != nil)
}

// Token returns the credential to use and whether it is an OAuth token.
// An OAuth token wins over a personal access token.
func (c *Config) Token() (string, bool) {
	if c.FigmaOAuthToken != "" {
		return c.FigmaOAuthToken, true
	}
	return c.FigmaAPIKey, false
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.FigmaAPIKey == "" && c.FigmaOAuthToken == "" {
		errs = append(errs, errors.New("a Figma API key (FIGMA_API_KEY) or OAuth token (FIGMA_OAUTH_TOKEN) is required"))
	}
	if !slices.Contains(formatter.Formats(), strings.ToLower(c.OutputFormat)) {
		errs = append(errs, fmt.Errorf("invalid output format %q (expected one of: %s)", c.OutputFormat, strings.Join(formatter.Formats(), ", ")))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if _, err := extractor.Preset(c.Extractors); err != nil {
		errs = append(errs, err)
	}
	if c.Depth < 0 {
		errs = append(errs, fmt.Errorf("invalid depth %d", c.Depth))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("invalid cache ttl %s", c.CacheTTL))
	}

	return errors.Join(errs...)
}

// Summary describes each setting with its source, secrets masked.
func (c *Config) Summary() []string {
	values := map[string]string{
		KeyFigmaAPIKey:        mask(c.FigmaAPIKey),
		KeyFigmaOAuthToken:    mask(c.FigmaOAuthToken),
		KeyHost:               c.Host,
		KeyPort:               strconv.Itoa(c.Port),
		KeyOutputFormat:       c.OutputFormat,
		KeyExtractors:         c.Extractors,
		KeyDepth:              strconv.Itoa(c.Depth),
		KeySkipImageDownloads: strconv.FormatBool(c.SkipImageDownloads),
		KeyCacheDir:           c.CacheDir,
		KeyCacheTTL:           c.CacheTTL.String(),
	}

	lines := make([]string, 0, len(values))
	for _, key := range keys() {
		lines = append(lines, fmt.Sprintf("%s: %s (%s)", key, values[key], c.Sources[key]))
	}
	return lines
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
