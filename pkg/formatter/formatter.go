package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kataras/figma-context/pkg/extractor"
)

// Supported output formats.
const (
	YAML     = "yaml"
	JSON     = "json"
	Markdown = "markdown"
)

// Formats returns the names accepted by Format.
func Formats() []string {
	return []string{YAML, JSON, Markdown}
}

// Format serializes a simplified design. The style registry keeps its insertion
// order in every format. An empty format means YAML.
func Format(design *extractor.Design, format string) ([]byte, error) {
	if design == nil {
		return nil, fmt.Errorf("nothing to format: design is nil")
	}

	switch strings.ToLower(format) {
	case YAML, "yml", "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(design); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case JSON:
		b, err := json.MarshalIndent(design, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return append(b, '\n'), nil
	case Markdown, "md":
		return []byte(ToMarkdown(design)), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (expected one of: %s)", format, strings.Join(Formats(), ", "))
	}
}
