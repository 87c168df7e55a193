// Package figmacontext turns Figma design files into compact, LLM-friendly design
// context: a simplified node tree whose repeated styles (layouts, text styles, fills,
// strokes, effects) are listed once in a shared registry and referenced by id.
//
// The CLI lives in cmd/figma-context and can also serve the pipeline as Model
// Context Protocol tools; this root package exposes the same pipeline as a Go API
// so that callers can embed it in their own tools without shelling out.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named figmacontext:
//
//	import "github.com/kataras/figma-context" // package figmacontext
//
// # Quick start
//
//	result, err := figmacontext.Run(ctx, figmacontext.Options{
//	    AccessToken:  os.Getenv("FIGMA_API_KEY"),
//	    FileURL:      "https://www.figma.com/design/ABC123/My-Design?node-id=1-2",
//	    OutputFormat: "yaml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Output)
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output. [NewSlogLogger] adapts a
// *slog.Logger.
//
// # Extractors
//
// [Options.Extractors] selects which concerns are projected onto each node.
// See the presets in pkg/extractor (AllExtractors, LayoutAndText, ContentOnly,
// VisualsOnly, LayoutOnly) or compose your own.
//
// # Images
//
// When [Options.DownloadImages] is true, image fills, pattern tiles and vector
// icons referenced by the simplified design are downloaded into
// [Options.ImageDir]. Cropped fills are cropped locally.
package figmacontext
