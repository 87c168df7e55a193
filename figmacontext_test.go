package figmacontext

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kataras/figma-context/pkg/extractor"
	"github.com/kataras/figma-context/pkg/figma"
)

const testFile = `{
  "name": "Icons",
  "document": {"id": "0:0", "type": "DOCUMENT", "children": [
    {"id": "0:1", "name": "Page", "type": "CANVAS", "children": [
      {"id": "1:1", "name": "Toolbar", "type": "FRAME", "layoutMode": "HORIZONTAL", "itemSpacing": 4, "children": [
        {"id": "1:2", "name": "Close Icon", "type": "VECTOR"},
        {"id": "1:3", "name": "Label", "type": "TEXT", "characters": "Close"}
      ]}
    ]}
  ]}
}`

const testNodes = `{
  "name": "Icons",
  "nodes": {"1:3": {"document": {"id": "1:3", "name": "Label", "type": "TEXT", "characters": "Close"}}}
}`

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Infof(f string, a ...any)  { l.lines = append(l.lines, "INFO "+fmt.Sprintf(f, a...)) }
func (l *recordingLogger) Warnf(f string, a ...any)  { l.lines = append(l.lines, "WARN "+fmt.Sprintf(f, a...)) }
func (l *recordingLogger) Errorf(f string, a ...any) { l.lines = append(l.lines, "ERROR "+fmt.Sprintf(f, a...)) }

func newFigmaServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/files/KEY":
			w.Write([]byte(testFile))
		case r.URL.Path == "/files/KEY/nodes":
			w.Write([]byte(testNodes))
		case r.URL.Path == "/images/KEY":
			fmt.Fprintf(w, `{"images": {"1:2": "%s/assets/close.svg"}}`, srv.URL)
		case r.URL.Path == "/assets/close.svg":
			w.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_File(t *testing.T) {
	srv := newFigmaServer(t)
	logger := &recordingLogger{}
	dir := filepath.Join(t.TempDir(), "assets")

	result, err := Run(context.Background(), Options{
		FileURL:        "https://www.figma.com/design/KEY/Icons",
		OutputFormat:   "yaml",
		DownloadImages: true,
		ImageDir:       dir,
		Client:         figma.NewClient("token", figma.WithBaseURL(srv.URL)),
		Logger:         logger,
	})
	require.NoError(t, err)

	assert.Equal(t, "KEY", result.FileKey)
	assert.Equal(t, "Icons", result.Design.Name)
	assert.True(t, bytes.HasPrefix(result.Output, []byte("name: Icons\n")))
	assert.Contains(t, string(result.Output), "type: IMAGE-SVG")

	require.NotNil(t, result.Images)
	require.Len(t, result.Images.Images, 1)
	assert.Equal(t, "close-icon.svg", result.Images.Images[0].FileName)
	assert.FileExists(t, filepath.Join(dir, "close-icon.svg"))

	assert.Contains(t, logger.lines, "INFO File key: KEY")
	assert.Contains(t, logger.lines, "INFO Downloaded 1 image(s)")
}

func TestRun_NodesFromURL(t *testing.T) {
	srv := newFigmaServer(t)
	logger := &recordingLogger{}

	result, err := Run(context.Background(), Options{
		FileURL:      "https://www.figma.com/design/KEY/Icons?node-id=1-3,9-9",
		OutputFormat: "json",
		Extractors:   extractor.ContentOnly,
		Client:       figma.NewClient("token", figma.WithBaseURL(srv.URL)),
		Logger:       logger,
	})
	require.NoError(t, err)

	require.Len(t, result.Design.Nodes, 1)
	assert.Equal(t, "Close", result.Design.Nodes[0].Text)
	assert.Contains(t, string(result.Output), `"text": "Close"`)
	assert.Nil(t, result.Images)
	assert.Contains(t, logger.lines, "WARN 1 requested node(s) were not found")
}

func TestRun_Errors(t *testing.T) {
	srv := newFigmaServer(t)
	client := figma.NewClient("token", figma.WithBaseURL(srv.URL), figma.WithRetryBackoff(0))

	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{name: "bad url", opts: Options{FileURL: "https://example.com/x", Client: client}, wantErr: "extract file key"},
		{name: "no token", opts: Options{FileURL: "KEY"}, wantErr: "access token is required"},
		{name: "unknown file", opts: Options{FileURL: "OTHER", Client: client}, wantErr: "fetch file"},
		{name: "bad format", opts: Options{FileURL: "KEY", Client: client, OutputFormat: "xml"}, wantErr: "unsupported output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), tt.opts)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseNodeIDs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"1:2", []string{"1:2"}},
		{"1-2, 3:4 ,,", []string{"1:2", "3:4"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseNodeIDs(tt.in), tt.in)
	}
}

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	l.Infof("fetched %d node(s)", 3)
	l.Warnf("skipped %s", "1:2")
	l.Errorf("boom")

	out := buf.String()
	assert.Contains(t, out, `level=INFO msg="fetched 3 node(s)"`)
	assert.Contains(t, out, `level=WARN msg="skipped 1:2"`)
	assert.Contains(t, out, "level=ERROR msg=boom")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}
