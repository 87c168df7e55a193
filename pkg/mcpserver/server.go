// Package mcpserver exposes the design simplification pipeline as Model Context
// Protocol tools, over stdio or streamable HTTP.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kataras/figma-context/pkg/extractor"
	"github.com/kataras/figma-context/pkg/figma"
	"github.com/kataras/figma-context/pkg/imager"
)

// Tool names.
const (
	ToolGetFigmaData        = "get_figma_data"
	ToolDownloadFigmaImages = "download_figma_images"
)

// FigmaAPI is the part of the Figma REST API the tools use. *figma.Client implements it.
type FigmaAPI interface {
	GetFile(ctx context.Context, fileKey string, depth int) (*figma.FileResponse, error)
	GetFileNodes(ctx context.Context, fileKey string, nodeIDs []string, depth int) (*figma.NodesResponse, error)
	imager.Source
}

// Options configures a Server.
type Options struct {
	// Name and Version identify the server to clients.
	Name, Version string
	// OutputFormat of get_figma_data: yaml (default), json or markdown.
	OutputFormat string
	// Extractors run on every node; nil means extractor.AllExtractors.
	Extractors []extractor.Extractor
	// SkipImageDownloads leaves out the download_figma_images tool.
	SkipImageDownloads bool
	// Root bounds the directories images may be written to. Defaults to the
	// working directory.
	Root   string
	Logger *slog.Logger
}

// Server serves the Figma tools.
type Server struct {
	api    FigmaAPI
	opts   Options
	log    *slog.Logger
	server *mcp.Server
}

// New creates a Server and registers its tools.
func New(api FigmaAPI, opts Options) (*Server, error) {
	if api == nil {
		return nil, errors.New("mcpserver: a Figma API client is required")
	}
	if opts.Name == "" {
		opts.Name = "figma-context"
	}
	if opts.Version == "" {
		opts.Version = figma.Version
	}
	if opts.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("mcpserver: resolve working directory: %w", err)
		}
		opts.Root = wd
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{api: api, opts: opts, log: opts.Logger}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    opts.Name,
		Version: opts.Version,
	}, nil)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: ToolGetFigmaData,
		Description: "Get the layout, text, visual styles and component information of a Figma file, " +
			"or of specific nodes when nodeId is given. Shared styles are listed once under globalVars.styles " +
			"and referenced by id from the nodes.",
	}, s.GetFigmaData)

	if !opts.SkipImageDownloads {
		mcp.AddTool(s.server, &mcp.Tool{
			Name: ToolDownloadFigmaImages,
			Description: "Download SVG and PNG images used in a Figma file, by image fill reference or by rendering nodes. " +
				"Images that need cropping are cropped, and tiled fills report their original dimensions as CSS variables.",
		}, s.DownloadFigmaImages)
	}

	return s, nil
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// RunStdio serves a single client over stdin/stdout until ctx is done or the client
// disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	s.log.Info("serving MCP over stdio", "name", s.opts.Name, "version", s.opts.Version)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return s.server },
		nil,
	)
}

// RunHTTP serves streamable HTTP on host:port at /mcp until ctx is done.
func (s *Server) RunHTTP(ctx context.Context, host string, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", s.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.shutdownHTTP(shutdownCtx, httpServer)
	}()

	s.log.Info("serving MCP over HTTP", "addr", "http://"+addr+"/mcp")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) shutdownHTTP(ctx context.Context, httpServer *http.Server) {
	if err := httpServer.Shutdown(ctx); err != nil {
		s.log.Error("HTTP shutdown failed", "error", err)
	}
}
