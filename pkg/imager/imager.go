package imager

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kataras/figma-context/pkg/extractor"
	"github.com/kataras/figma-context/pkg/figma"
)

const (
	maxNodesPerRequest   = 100
	maxParallelDownloads = 5
)

// Source resolves image URLs. *figma.Client implements it.
type Source interface {
	GetImages(ctx context.Context, fileKey string, nodeIDs []string, format string, scale float64) (*figma.ImagesResponse, error)
	GetFileImages(ctx context.Context, fileKey string) (*figma.FileImagesResponse, error)
}

// Request describes one image to materialize. Exactly one of ImageRef (an image
// fill) or NodeID (a rendered node) identifies the source.
type Request struct {
	NodeID                  string          `json:"nodeId,omitempty"`
	ImageRef                string          `json:"imageRef,omitempty"`
	FileName                string          `json:"fileName"`
	NeedsCropping           bool            `json:"needsCropping,omitempty"`
	CropTransform           figma.Transform `json:"cropTransform,omitempty"`
	RequiresImageDimensions bool            `json:"requiresImageDimensions,omitempty"`
}

// format is the render format of a node request, taken from the file extension.
func (r Request) format() string {
	if strings.EqualFold(filepath.Ext(r.FileName), ".svg") {
		return "svg"
	}
	return "png"
}

// Options configures Download.
type Options struct {
	// PNGScale is the render scale of PNG node exports. Defaults to 2.
	PNGScale float64
	// Parallel bounds concurrent downloads. Defaults to 5.
	Parallel   int
	HTTPClient *http.Client
}

// Image is a file written by Download.
type Image struct {
	NodeID   string
	ImageRef string
	FileName string
	Path     string
	Cropped  bool
	// Width and Height are set when dimensions were requested or the image was cropped.
	Width, Height int
	// CSSVariables holds --original-width/--original-height declarations for tiled fills.
	CSSVariables string
}

// Result holds the outcome of Download.
type Result struct {
	Images []Image
	Errors []error // non-fatal per-image failures
}

// CollectImageRequests walks a simplified design and lists the images it needs:
// image fills, pattern tiles (rendered as PNG) and IMAGE-SVG nodes (rendered as SVG).
// Repeated uses of the same source are requested once; file names are kebab-case
// node names made unique within the batch.
func CollectImageRequests(design *extractor.Design) []Request {
	if design == nil {
		return nil
	}

	var (
		reqs      []Request
		seen      = make(map[string]int)
		usedNames = make(map[string]int)
	)
	add := func(key string, r Request) {
		if i, ok := seen[key]; ok {
			// Later uses of the same source may still need its dimensions.
			reqs[i].RequiresImageDimensions = reqs[i].RequiresImageDimensions || r.RequiresImageDimensions
			return
		}
		seen[key] = len(reqs)
		r.FileName = uniqueName(r.FileName, usedNames)
		reqs = append(reqs, r)
	}

	design.Walk(func(n *extractor.SimplifiedNode, _ int) {
		base := baseName(n.Name, n.ID)

		if n.Type == "IMAGE-SVG" {
			add("svg:"+n.ID, Request{NodeID: n.ID, FileName: base + ".svg"})
		}

		if n.Fills == "" || design.GlobalVars.Styles == nil {
			return
		}
		v, ok := design.GlobalVars.Styles.Get(n.Fills)
		if !ok {
			return
		}
		fills, ok := v.(extractor.Fills)
		if !ok {
			return
		}

		for _, f := range fills {
			switch {
			case f.Image != nil:
				r := Request{ImageRef: f.Image.ImageRef, FileName: base + ".png"}
				key := "fill:" + f.Image.ImageRef
				if args := f.Image.ImageDownloadArguments; args != nil {
					r.NeedsCropping = args.NeedsCropping
					r.CropTransform = args.CropTransform
					r.RequiresImageDimensions = args.RequiresImageDimensions
					if args.FilenameSuffix != "" {
						r.FileName = base + "-" + args.FilenameSuffix + ".png"
						key += ":" + args.FilenameSuffix
					}
				}
				add(key, r)
			case f.Pattern != nil:
				id := f.Pattern.PatternSource.NodeID
				add("png:"+id, Request{NodeID: id, FileName: base + "-pattern.png"})
			}
		}
	})

	return reqs
}

func uniqueName(fileName string, usedNames map[string]int) string {
	count, exists := usedNames[fileName]
	usedNames[fileName] = count + 1
	if !exists {
		return fileName
	}
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)
	return fmt.Sprintf("%s-%d%s", base, count+1, ext)
}

// Download resolves the URLs of reqs through source and writes the images into dir,
// which is created if needed. Failures of single images are collected in
// Result.Errors; an error is returned only when nothing could be attempted.
func Download(ctx context.Context, source Source, fileKey, dir string, reqs []Request, opts Options) (*Result, error) {
	if opts.PNGScale <= 0 {
		opts.PNGScale = 2
	}
	if opts.Parallel <= 0 {
		opts.Parallel = maxParallelDownloads
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", dir, err)
	}

	result := &Result{}
	urls, err := resolveURLs(ctx, source, fileKey, reqs, opts.PNGScale)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)

	for _, r := range reqs {
		destPath, err := safeJoin(dir, r.FileName)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		u := urls[sourceKey(r)]
		if u == "" {
			result.Errors = append(result.Errors, fmt.Errorf("no image URL returned for %s", describe(r)))
			continue
		}

		g.Go(func() error {
			img, err := fetchImage(gctx, opts.HTTPClient, u, destPath, r)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("failed to download %s: %w", describe(r), err))
				return nil
			}
			result.Images = append(result.Images, img)
			return nil
		})
	}

	// Workers never fail the group; per-image errors are in result.Errors.
	_ = g.Wait()

	sort.Slice(result.Images, func(i, j int) bool { return result.Images[i].FileName < result.Images[j].FileName })
	return result, nil
}

func sourceKey(r Request) string {
	if r.ImageRef != "" {
		return "fill:" + r.ImageRef
	}
	return r.format() + ":" + r.NodeID
}

func describe(r Request) string {
	if r.ImageRef != "" {
		return "image fill " + r.ImageRef
	}
	return "node " + r.NodeID
}

// resolveURLs maps every request's source to a download URL. Image fills come from
// the file image-fills endpoint, node renders from the render endpoint in batches.
func resolveURLs(ctx context.Context, source Source, fileKey string, reqs []Request, scale float64) (map[string]string, error) {
	urls := make(map[string]string)
	renders := map[string][]string{} // format -> node IDs
	needFills := false

	for _, r := range reqs {
		switch {
		case r.ImageRef != "":
			needFills = true
		case r.NodeID != "":
			key := sourceKey(r)
			if _, ok := urls[key]; !ok {
				urls[key] = ""
				renders[r.format()] = append(renders[r.format()], r.NodeID)
			}
		}
	}

	if needFills {
		resp, err := source.GetFileImages(ctx, fileKey)
		if err != nil {
			return nil, fmt.Errorf("failed to get image fills from Figma API: %w", err)
		}
		for ref, u := range resp.Meta.Images {
			urls["fill:"+ref] = u
		}
	}

	formats := make([]string, 0, len(renders))
	for format := range renders {
		formats = append(formats, format)
	}
	sort.Strings(formats)

	for _, format := range formats {
		ids := renders[format]
		for i := 0; i < len(ids); i += maxNodesPerRequest {
			end := min(i+maxNodesPerRequest, len(ids))
			resp, err := source.GetImages(ctx, fileKey, ids[i:end], format, scale)
			if err != nil {
				return nil, fmt.Errorf("failed to get images from Figma API: %w", err)
			}
			for id, u := range resp.Images {
				urls[format+":"+id] = u
			}
		}
	}

	return urls, nil
}

var errUnsafeFileName = errors.New("file name escapes the output directory")

// safeJoin joins dir and fileName, rejecting names that would land outside dir.
func safeJoin(dir, fileName string) (string, error) {
	if fileName == "" || filepath.IsAbs(fileName) || strings.ContainsAny(fileName, `/\`) || fileName == "." || fileName == ".." {
		return "", fmt.Errorf("%q: %w", fileName, errUnsafeFileName)
	}
	p := filepath.Join(dir, fileName)
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", fileName, errUnsafeFileName)
	}
	return p, nil
}

// detectExtensionFromURL returns the file extension of the URL path, "png" when
// there is none.
func detectExtensionFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "png"
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	if ext == "" {
		return "png"
	}
	return ext
}

// baseName creates a sanitized kebab-case base file name from a node name,
// falling back to the node ID and then to "asset".
func baseName(nodeName, nodeID string) string {
	if name := toKebabCase(nodeName); name != "" {
		return name
	}
	if name := toKebabCase(strings.NewReplacer(":", "-", ";", "-").Replace(nodeID)); name != "" {
		return name
	}
	return "asset"
}

// toKebabCase converts a string to kebab-case format (lowercase with hyphens).
func toKebabCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, "/", "-")

	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}

	return strings.Trim(result.String(), "-")
}
