package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kataras/figma-context/pkg/extractor"
	"github.com/kataras/figma-context/pkg/figma"
	"github.com/kataras/figma-context/pkg/formatter"
	"github.com/kataras/figma-context/pkg/imager"
)

var (
	fileKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	nodeIDPattern  = regexp.MustCompile(`^I?\d+[:-]\d+(?:;\d+[:-]\d+)*$`)
)

// GetFigmaDataInput is the input of the get_figma_data tool.
type GetFigmaDataInput struct {
	FileKey string `json:"fileKey" jsonschema:"the key of the Figma file, found in URLs like figma.com/(file|design)/<fileKey>/..."`
	NodeID  string `json:"nodeId,omitempty" jsonschema:"the node to fetch, found as the node-id URL parameter (e.g. 1-2 or 1:2); comma separated for several nodes"`
	Depth   int    `json:"depth,omitempty" jsonschema:"how many levels of the node tree to traverse; omit unless explicitly needed"`
}

// GetFigmaData fetches a file or some of its nodes and returns the simplified design
// in the configured output format.
func (s *Server) GetFigmaData(ctx context.Context, _ *mcp.CallToolRequest, input GetFigmaDataInput) (*mcp.CallToolResult, any, error) {
	if !fileKeyPattern.MatchString(input.FileKey) {
		return nil, nil, fmt.Errorf("invalid fileKey %q", input.FileKey)
	}
	if input.Depth < 0 {
		return nil, nil, fmt.Errorf("depth must not be negative")
	}

	nodeIDs, err := parseNodeIDs(input.NodeID)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	opts := extractor.TraversalOptions{MaxDepth: input.Depth}

	var design *extractor.Design
	if len(nodeIDs) > 0 {
		resp, err := s.api.GetFileNodes(ctx, input.FileKey, nodeIDs, input.Depth)
		if err != nil {
			s.log.Error("fetching nodes failed", "fileKey", input.FileKey, "nodeIds", nodeIDs, "error", err)
			return nil, nil, fmt.Errorf("failed to fetch nodes: %w", err)
		}
		design = extractor.SimplifyNodes(resp, nodeIDs, s.opts.Extractors, opts)
	} else {
		file, err := s.api.GetFile(ctx, input.FileKey, input.Depth)
		if err != nil {
			s.log.Error("fetching file failed", "fileKey", input.FileKey, "error", err)
			return nil, nil, fmt.Errorf("failed to fetch file: %w", err)
		}
		design = extractor.SimplifyFile(file, s.opts.Extractors, opts)
	}

	out, err := formatter.Format(design, s.opts.OutputFormat)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("served design",
		"fileKey", input.FileKey,
		"nodes", len(design.Nodes),
		"styles", design.GlobalVars.Styles.Len(),
		"duration", time.Since(start))

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(out)}},
	}, nil, nil
}

// parseNodeIDs splits a comma separated node id list and normalizes the URL form
// "1-2" to the API form "1:2".
func parseNodeIDs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []string
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if !nodeIDPattern.MatchString(id) {
			return nil, fmt.Errorf("invalid nodeId %q", id)
		}
		ids = append(ids, strings.ReplaceAll(id, "-", ":"))
	}
	return ids, nil
}

// ImageNode is one image to download.
type ImageNode struct {
	NodeID                  string      `json:"nodeId" jsonschema:"the id of the node, e.g. 1:2"`
	ImageRef                string      `json:"imageRef,omitempty" jsonschema:"the imageRef of an image fill; leave empty to render the node itself"`
	FileName                string      `json:"fileName" jsonschema:"the local file name, ending in .png or .svg"`
	NeedsCropping           bool        `json:"needsCropping,omitempty" jsonschema:"whether the image must be cropped with cropTransform"`
	CropTransform           [][]float64 `json:"cropTransform,omitempty" jsonschema:"the 2x3 crop transform from imageDownloadArguments"`
	RequiresImageDimensions bool        `json:"requiresImageDimensions,omitempty" jsonschema:"whether to report the image dimensions as CSS variables"`
	FilenameSuffix          string      `json:"filenameSuffix,omitempty" jsonschema:"suffix from imageDownloadArguments that keeps differently cropped images apart"`
}

// DownloadFigmaImagesInput is the input of the download_figma_images tool.
type DownloadFigmaImagesInput struct {
	FileKey   string      `json:"fileKey" jsonschema:"the key of the Figma file containing the images"`
	Nodes     []ImageNode `json:"nodes" jsonschema:"the images to download"`
	LocalPath string      `json:"localPath" jsonschema:"directory to store the images in, relative to the server's working directory"`
	PNGScale  float64     `json:"pngScale,omitempty" jsonschema:"export scale of PNG renders, defaults to 2"`
}

// DownloadedImage describes a written image.
type DownloadedImage struct {
	FileName     string `json:"fileName"`
	Path         string `json:"path"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Cropped      bool   `json:"cropped,omitempty"`
	CSSVariables string `json:"cssVariables,omitempty"`
}

// DownloadFigmaImagesOutput is the structured result of download_figma_images.
type DownloadFigmaImagesOutput struct {
	Images []DownloadedImage `json:"images"`
	Errors []string          `json:"errors,omitempty"`
}

// DownloadFigmaImages downloads the requested images into a directory under the
// server root.
func (s *Server) DownloadFigmaImages(ctx context.Context, _ *mcp.CallToolRequest, input DownloadFigmaImagesInput) (*mcp.CallToolResult, DownloadFigmaImagesOutput, error) {
	output := DownloadFigmaImagesOutput{Images: []DownloadedImage{}}

	if !fileKeyPattern.MatchString(input.FileKey) {
		return nil, output, fmt.Errorf("invalid fileKey %q", input.FileKey)
	}
	if len(input.Nodes) == 0 {
		return nil, output, fmt.Errorf("nodes is required")
	}

	dir, err := s.resolveDir(input.LocalPath)
	if err != nil {
		return nil, output, err
	}

	reqs := make([]imager.Request, 0, len(input.Nodes))
	for _, n := range input.Nodes {
		r := imager.Request{
			FileName:                withSuffix(n.FileName, n.FilenameSuffix),
			NeedsCropping:           n.NeedsCropping,
			CropTransform:           figma.Transform(n.CropTransform),
			RequiresImageDimensions: n.RequiresImageDimensions,
		}
		if n.ImageRef != "" {
			r.ImageRef = n.ImageRef
		} else {
			r.NodeID = strings.ReplaceAll(n.NodeID, "-", ":")
		}
		reqs = append(reqs, r)
	}

	res, err := imager.Download(ctx, s.api, input.FileKey, dir, reqs, imager.Options{PNGScale: input.PNGScale})
	if err != nil {
		s.log.Error("image download failed", "fileKey", input.FileKey, "error", err)
		return nil, output, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Downloaded %d image(s) to %s:\n", len(res.Images), dir)
	for _, img := range res.Images {
		output.Images = append(output.Images, DownloadedImage{
			FileName:     img.FileName,
			Path:         img.Path,
			Width:        img.Width,
			Height:       img.Height,
			Cropped:      img.Cropped,
			CSSVariables: img.CSSVariables,
		})

		fmt.Fprintf(&sb, "- %s", img.FileName)
		if img.Width > 0 {
			fmt.Fprintf(&sb, ": %dx%d", img.Width, img.Height)
		}
		if img.Cropped {
			sb.WriteString(" (cropped)")
		}
		if img.CSSVariables != "" {
			fmt.Fprintf(&sb, " | %s", img.CSSVariables)
		}
		sb.WriteString("\n")
	}
	for _, e := range res.Errors {
		output.Errors = append(output.Errors, e.Error())
		fmt.Fprintf(&sb, "! %s\n", e)
	}

	s.log.Info("downloaded images", "fileKey", input.FileKey, "images", len(res.Images), "errors", len(res.Errors))

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: sb.String()}},
		IsError: len(res.Images) == 0 && len(res.Errors) > 0,
	}, output, nil
}

// resolveDir resolves localPath against the server root and rejects paths outside it.
func (s *Server) resolveDir(localPath string) (string, error) {
	if strings.TrimSpace(localPath) == "" {
		return "", fmt.Errorf("localPath is required")
	}

	root := filepath.Clean(s.opts.Root)
	dir := localPath
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	dir = filepath.Clean(dir)

	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid localPath %q: must be inside %s", localPath, root)
	}
	return dir, nil
}

// withSuffix inserts suffix before the extension of fileName unless it is already there.
func withSuffix(fileName, suffix string) string {
	if suffix == "" || strings.Contains(fileName, suffix) {
		return fileName
	}
	ext := filepath.Ext(fileName)
	return strings.TrimSuffix(fileName, ext) + "-" + suffix + ext
}
