package figmacontext

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kataras/figma-context/pkg/extractor"
	"github.com/kataras/figma-context/pkg/figma"
	"github.com/kataras/figma-context/pkg/formatter"
	"github.com/kataras/figma-context/pkg/imager"
)

// Options configures a run.
type Options struct {
	AccessToken string
	UseOAuth    bool                  // send AccessToken as an OAuth bearer token
	FileURL     string                // Figma file URL or bare file key
	NodeIDs     []string              // empty = node IDs from the URL, or the entire file
	Depth       int                   // 0 = unlimited
	Extractors  []extractor.Extractor // nil = all extractors
	// OutputFormat of Result.Output: yaml (default), json or markdown.
	OutputFormat string

	DownloadImages bool
	ImageDir       string  // default "figma-assets"
	PNGScale       float64 // default 2

	Cache  figma.Cache   // optional response cache
	Client *figma.Client // overrides the client built from AccessToken
	Logger Logger        // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the output of a run.
type Result struct {
	FileKey string
	Design  *extractor.Design
	Output  []byte         // Design serialized in Options.OutputFormat
	Images  *imager.Result // nil unless images were downloaded
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

var bareFileKey = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Run fetches a Figma file (or some of its nodes), simplifies it and serializes the
// result, optionally downloading the images it references.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.ImageDir == "" {
		opts.ImageDir = "figma-assets"
	}
	if opts.PNGScale <= 0 {
		opts.PNGScale = 2
	}

	fileKey, err := resolveFileKey(opts.FileURL)
	if err != nil {
		return nil, err
	}
	opts.logInfo("File key: %s", fileKey)

	targetNodeIDs := opts.NodeIDs
	if len(targetNodeIDs) == 0 && !bareFileKey.MatchString(opts.FileURL) {
		urlNodeIDs, err := figma.ExtractNodeIDs(opts.FileURL)
		if err != nil {
			return nil, fmt.Errorf("extract node IDs from URL: %w", err)
		}
		targetNodeIDs = urlNodeIDs
	}

	client := opts.Client
	if client == nil {
		if opts.AccessToken == "" {
			return nil, fmt.Errorf("an access token is required")
		}
		var clientOpts []figma.ClientOption
		if opts.UseOAuth {
			clientOpts = append(clientOpts, figma.WithOAuth())
		}
		if opts.Cache != nil {
			clientOpts = append(clientOpts, figma.WithCache(opts.Cache))
		}
		client = figma.NewClient(opts.AccessToken, clientOpts...)
	}

	traversal := extractor.TraversalOptions{MaxDepth: opts.Depth}

	var design *extractor.Design
	if len(targetNodeIDs) > 0 {
		opts.logInfo("Fetching %d node(s) from Figma...", len(targetNodeIDs))
		nodesResp, err := client.GetFileNodes(ctx, fileKey, targetNodeIDs, opts.Depth)
		if err != nil {
			return nil, fmt.Errorf("fetch nodes: %w", err)
		}
		design = extractor.SimplifyNodes(nodesResp, targetNodeIDs, opts.Extractors, traversal)
		if missing := len(targetNodeIDs) - len(design.Nodes); missing > 0 {
			opts.logWarn("%d requested node(s) were not found", missing)
		}
	} else {
		opts.logInfo("Fetching file from Figma...")
		fileResp, err := client.GetFile(ctx, fileKey, opts.Depth)
		if err != nil {
			return nil, fmt.Errorf("fetch file: %w", err)
		}
		design = extractor.SimplifyFile(fileResp, opts.Extractors, traversal)
	}
	opts.logInfo("Simplified %q: %d root node(s), %d shared style(s)", design.Name, len(design.Nodes), design.GlobalVars.Styles.Len())

	output, err := formatter.Format(design, opts.OutputFormat)
	if err != nil {
		return nil, err
	}

	result := &Result{FileKey: fileKey, Design: design, Output: output}

	if opts.DownloadImages {
		reqs := imager.CollectImageRequests(design)
		if len(reqs) == 0 {
			opts.logInfo("No images to download")
			return result, nil
		}

		opts.logInfo("Downloading %d image(s) to %s...", len(reqs), opts.ImageDir)
		images, err := imager.Download(ctx, client, fileKey, opts.ImageDir, reqs, imager.Options{PNGScale: opts.PNGScale})
		if err != nil {
			return nil, fmt.Errorf("download images: %w", err)
		}
		for _, dlErr := range images.Errors {
			opts.logWarn("%v", dlErr)
		}
		opts.logInfo("Downloaded %d image(s)", len(images.Images))
		result.Images = images
	}

	return result, nil
}

func resolveFileKey(fileURL string) (string, error) {
	if bareFileKey.MatchString(fileURL) {
		return fileURL, nil
	}
	fileKey, err := figma.ExtractFileKey(fileURL)
	if err != nil {
		return "", fmt.Errorf("extract file key: %w", err)
	}
	return fileKey, nil
}

// ParseNodeIDs parses a comma-separated string of node IDs and returns a slice.
// The dash form used in share links (1-2) is normalized to 1:2.
func ParseNodeIDs(nodeIDsStr string) []string {
	parts := strings.Split(nodeIDsStr, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, strings.ReplaceAll(trimmed, "-", ":"))
		}
	}

	return result
}
