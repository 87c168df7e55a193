package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	figmacontext "github.com/kataras/figma-context"
	"github.com/kataras/figma-context/pkg/cache"
	"github.com/kataras/figma-context/pkg/config"
	"github.com/kataras/figma-context/pkg/extractor"
	"github.com/kataras/figma-context/pkg/figma"
	"github.com/kataras/figma-context/pkg/mcpserver"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = figma.Version

var (
	configPath  string
	accessToken string
	oauthToken  string
	format      string
	extractors  string
	depth       int
	cacheDir    string
	cacheTTL    string

	outputFile string
	nodeIDs    string
	images     bool
	imageDir   string
	pngScale   float64

	transport  string
	host       string
	port       int
	logLevel   string
	logFormat  string
	skipImages bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "figma-context <figma-url|file-key>",
		Short: "Simplify Figma designs into compact design context",
		Long: "Fetches a Figma file or some of its nodes and turns it into a compact design tree " +
			"with shared layouts, text styles, fills, strokes and effects, ready to hand to an LLM.",
		Args:          cobra.ExactArgs(1),
		RunE:          runFetch,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", ".", "Config file, or directory containing figma-context.yml")
	pf.StringVarP(&accessToken, "token", "t", "", "Figma Personal Access Token (env FIGMA_API_KEY)")
	pf.StringVar(&oauthToken, "oauth-token", "", "Figma OAuth token, used instead of --token (env FIGMA_OAUTH_TOKEN)")
	pf.StringVarP(&format, "format", "f", "yaml", "Output format: yaml, json, markdown (env OUTPUT_FORMAT)")
	pf.StringVarP(&extractors, "extractors", "e", "all", fmt.Sprintf("Extractor preset: %v", extractor.PresetNames()))
	pf.IntVarP(&depth, "depth", "d", 0, "Maximum tree depth to fetch and simplify, 0 for unlimited")
	pf.StringVar(&cacheDir, "cache-dir", "", "Directory of the response cache, empty to disable (env FIGMA_CACHE_DIR)")
	pf.StringVar(&cacheTTL, "cache-ttl", "0s", "Lifetime of cached responses, 0s to keep forever (env FIGMA_CACHE_TTL)")

	addFetchFlags(rootCmd)

	fetchCmd := &cobra.Command{
		Use:   "fetch <figma-url|file-key>",
		Short: "Fetch and simplify a Figma file (default command)",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetch,
	}
	addFetchFlags(fetchCmd)

	imagesCmd := &cobra.Command{
		Use:   "images <figma-url|file-key>",
		Short: "Download the images referenced by a Figma file or node",
		Args:  cobra.ExactArgs(1),
		RunE:  runImages,
	}
	imagesCmd.Flags().StringVarP(&nodeIDs, "node-ids", "n", "", "Comma-separated node IDs (defaults to the node-id of the URL)")
	imagesCmd.Flags().StringVar(&imageDir, "image-dir", "figma-assets", "Output directory for images")
	imagesCmd.Flags().Float64Var(&pngScale, "png-scale", 2, "Export scale of rendered PNG images")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Figma tools over the Model Context Protocol",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&transport, "transport", "stdio", "Transport: stdio or http")
	serveCmd.Flags().StringVar(&host, "host", "127.0.0.1", "HTTP listen host (env HOST)")
	serveCmd.Flags().IntVarP(&port, "port", "p", 3333, "HTTP listen port (env PORT)")
	serveCmd.Flags().BoolVar(&skipImages, "skip-image-downloads", false, "Do not register the image download tool (env SKIP_IMAGE_DOWNLOADS)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	serveCmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired cached responses, or all of them when no ttl is set",
		Args:  cobra.NoArgs,
		RunE:  runCachePurge,
	})

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "figma-context version %s\n", version)
		},
	}

	rootCmd.AddCommand(fetchCmd, imagesCmd, serveCmd, cacheCmd, versionCmd)
	return rootCmd
}

func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVarP(&nodeIDs, "node-ids", "n", "", "Comma-separated node IDs (defaults to the node-id of the URL, or the entire file)")
	cmd.Flags().BoolVar(&images, "images", false, "Also download the images referenced by the design")
	cmd.Flags().StringVar(&imageDir, "image-dir", "figma-assets", "Output directory for images")
	cmd.Flags().Float64Var(&pngScale, "png-scale", 2, "Export scale of rendered PNG images")
}

// loadConfig resolves the config file, environment and the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("token") {
		o.FigmaAPIKey = &accessToken
	}
	if flags.Changed("oauth-token") {
		o.FigmaOAuthToken = &oauthToken
	}
	if flags.Changed("format") {
		o.OutputFormat = &format
	}
	if flags.Changed("extractors") {
		o.Extractors = &extractors
	}
	if flags.Changed("depth") {
		o.Depth = &depth
	}
	if flags.Changed("cache-dir") {
		o.CacheDir = &cacheDir
	}
	if flags.Changed("cache-ttl") {
		ttl, err := time.ParseDuration(cacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid --cache-ttl: %w", err)
		}
		o.CacheTTL = &ttl
	}
	if flags.Lookup("host") != nil && flags.Changed("host") {
		o.Host = &host
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		o.Port = &port
	}
	if flags.Lookup("skip-image-downloads") != nil && flags.Changed("skip-image-downloads") {
		o.SkipImageDownloads = &skipImages
	}
	cfg.Apply(o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openCache opens the response cache when one is configured. The returned close
// function is never nil.
func openCache(cfg *config.Config) (*cache.Store, func(), error) {
	if cfg.CacheDir == "" {
		return nil, func() {}, nil
	}
	store, err := cache.Open(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

func newClient(cfg *config.Config, store *cache.Store) *figma.Client {
	token, oauth := cfg.Token()
	var opts []figma.ClientOption
	if oauth {
		opts = append(opts, figma.WithOAuth())
	}
	if store != nil {
		opts = append(opts, figma.WithCache(store))
	}
	return figma.NewClient(token, opts...)
}

func runFetch(cmd *cobra.Command, args []string) error {
	return fetch(cmd, args[0], images)
}

func runImages(cmd *cobra.Command, args []string) error {
	return fetch(cmd, args[0], true)
}

func fetch(cmd *cobra.Command, fileURL string, downloadImages bool) error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, closeCache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	selected, err := extractor.Preset(cfg.Extractors)
	if err != nil {
		return err
	}

	var parsedNodeIDs []string
	if nodeIDs != "" {
		parsedNodeIDs = figmacontext.ParseNodeIDs(nodeIDs)
	}

	cyan.Fprintln(os.Stderr, "\n🎨 Figma Context")
	cyan.Fprintln(os.Stderr, "================")

	result, err := figmacontext.Run(cmd.Context(), figmacontext.Options{
		FileURL:        fileURL,
		NodeIDs:        parsedNodeIDs,
		Depth:          cfg.Depth,
		Extractors:     selected,
		OutputFormat:   cfg.OutputFormat,
		DownloadImages: downloadImages,
		ImageDir:       imageDir,
		PNGScale:       pngScale,
		Client:         newClient(cfg, store),
		Logger:         &cliLogger{},
	})
	if err != nil {
		return err
	}

	cyan.Fprintln(os.Stderr, "\n📊 Summary:")
	fmt.Fprintf(os.Stderr, "  • Root nodes: %d\n", len(result.Design.Nodes))
	fmt.Fprintf(os.Stderr, "  • Shared styles: %d\n", result.Design.GlobalVars.Styles.Len())
	fmt.Fprintf(os.Stderr, "  • Components: %d\n", len(result.Design.Components))
	if result.Images != nil {
		fmt.Fprintf(os.Stderr, "  • Images: %d downloaded, %d failed\n", len(result.Images.Images), len(result.Images.Errors))
		for _, img := range result.Images.Images {
			if img.CSSVariables != "" {
				fmt.Fprintf(os.Stderr, "    - %s: %s\n", img.FileName, img.CSSVariables)
			}
		}
	}

	// The images command only writes the design when asked to.
	if cmd.Name() == "images" && outputFile == "" {
		return nil
	}

	if outputFile == "" {
		_, err := cmd.OutOrStdout().Write(result.Output)
		return err
	}

	green.Fprintf(os.Stderr, "\n💾 Writing to %s... ", outputFile)
	if err := os.WriteFile(outputFile, result.Output, 0644); err != nil {
		return err
	}
	green.Fprintln(os.Stderr, "✓")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// stdout carries the stdio transport, logs go to stderr.
	logger := newLogger(logLevel, logFormat, os.Stderr)
	for _, line := range cfg.Summary() {
		logger.Debug("config", "setting", line)
	}

	store, closeCache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	selected, err := extractor.Preset(cfg.Extractors)
	if err != nil {
		return err
	}

	srv, err := mcpserver.New(newClient(cfg, store), mcpserver.Options{
		Version:            version,
		OutputFormat:       cfg.OutputFormat,
		Extractors:         selected,
		SkipImageDownloads: cfg.SkipImageDownloads,
		Logger:             logger,
	})
	if err != nil {
		return err
	}

	switch transport {
	case "stdio":
		return srv.RunStdio(cmd.Context())
	case "http":
		return srv.RunHTTP(cmd.Context(), cfg.Host, cfg.Port)
	default:
		return fmt.Errorf("unknown transport %q (expected stdio or http)", transport)
	}
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("cache-dir") {
		cfg.CacheDir = cacheDir
	}
	if cmd.Flags().Changed("cache-ttl") {
		ttl, err := time.ParseDuration(cacheTTL)
		if err != nil {
			return fmt.Errorf("invalid --cache-ttl: %w", err)
		}
		cfg.CacheTTL = ttl
	}
	if cfg.CacheDir == "" {
		return fmt.Errorf("no cache directory configured (--cache-dir or FIGMA_CACHE_DIR)")
	}

	store, err := cache.Open(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Purge(cmd.Context())
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Purged %d cached response(s)\n", n)
	return nil
}
