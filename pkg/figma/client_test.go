package figma

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFileKey(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "valid /file/ URL", url: "https://www.figma.com/file/ABC123XYZ/Design-Name", want: "ABC123XYZ"},
		{name: "valid /design/ URL", url: "https://www.figma.com/design/ABC123XYZ/Design-Name", want: "ABC123XYZ"},
		{name: "prototype URL", url: "https://www.figma.com/proto/ABC123XYZ/Flow", want: "ABC123XYZ"},
		{
			name: "URL with node-id parameter",
			url:  "https://www.figma.com/design/4gkABR5gEZnIvlCaXmA4KI/Makis-s-file?node-id=11933-305884",
			want: "4gkABR5gEZnIvlCaXmA4KI",
		},
		{name: "URL without www subdomain", url: "https://figma.com/file/ABC123XYZ/Design-Name", want: "ABC123XYZ"},
		{name: "URL with http protocol", url: "http://www.figma.com/file/ABC123XYZ/Design-Name", want: "ABC123XYZ"},
		{name: "URL with trailing slash", url: "https://www.figma.com/file/ABC123XYZ/", want: "ABC123XYZ"},
		{name: "key followed by query", url: "https://www.figma.com/design/ABC123XYZ?node-id=1-2", want: "ABC123XYZ"},
		{name: "invalid URL - missing file key", url: "https://www.figma.com/file/", wantErr: true},
		{name: "invalid URL - wrong domain", url: "https://www.example.com/file/ABC123XYZ", wantErr: true},
		{name: "invalid URL - lookalike domain", url: "https://figma.com.evil.io/file/ABC123XYZ", wantErr: true},
		{name: "invalid URL - wrong path", url: "https://www.figma.com/dashboard/ABC123XYZ", wantErr: true},
		{name: "empty URL", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractFileKey(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractNodeIDs(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want []string
	}{
		{name: "single node-id with colon", url: "https://www.figma.com/file/ABC123/Design?node-id=123:456", want: []string{"123:456"}},
		{
			name: "share link dash form",
			url:  "https://www.figma.com/design/4gkABR5gEZnIvlCaXmA4KI/Makis-s-file?node-id=11933-305884&t=ObvUckUHZc8tSjeT-1",
			want: []string{"11933:305884"},
		},
		{name: "mixed forms", url: "https://www.figma.com/file/ABC123/Design?node-id=123:456,789-012", want: []string{"123:456", "789:012"}},
		{name: "hash fragment", url: "https://www.figma.com/file/ABC123/Design#123:456,789:012", want: []string{"123:456", "789:012"}},
		{name: "path format", url: "https://www.figma.com/file/ABC123/Design/nodes/123:456", want: []string{"123:456"}},
		{name: "spaces are trimmed", url: "https://www.figma.com/file/ABC123/Design?node-id=123:456,%20789:012", want: []string{"123:456", "789:012"}},
		{name: "duplicates removed", url: "https://www.figma.com/file/ABC123/Design?node-id=123:456,123:456,789:012", want: []string{"123:456", "789:012"}},
		{name: "no node-ids", url: "https://www.figma.com/file/ABC123/Design", want: []string{}},
		{name: "empty node-id parameter", url: "https://www.figma.com/file/ABC123/Design?node-id=", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractNodeIDs(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeduplicateNodeIDs(t *testing.T) {
	got := deduplicateNodeIDs([]string{"789:012", "123:456", "789:012", "345:678", "123:456"})
	assert.Equal(t, []string{"789:012", "123:456", "345:678"}, got)
	assert.Empty(t, deduplicateNodeIDs(nil))
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]ClientOption{WithBaseURL(srv.URL), WithRetryBackoff(time.Millisecond)}, opts...)
	return NewClient("secret", opts...)
}

func TestGetFile_SendsTokenAndDepth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/KEY", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("depth"))
		assert.Equal(t, "secret", r.Header.Get("X-Figma-Token"))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"name":"Design","document":{"id":"0:0","type":"DOCUMENT","children":[{"id":"0:1","type":"CANVAS"}]}}`))
	})

	resp, err := c.GetFile(context.Background(), "KEY", 2)
	require.NoError(t, err)
	assert.Equal(t, "Design", resp.Name)
	require.Len(t, resp.Document.Children, 1)
	assert.Equal(t, "CANVAS", resp.Document.Children[0].Type)
}

func TestGetFileNodes_OAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/KEY/nodes", r.URL.Path)
		assert.Equal(t, "1:2,3:4", r.URL.Query().Get("ids"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("X-Figma-Token"))
		w.Write([]byte(`{"name":"Design","nodes":{"1:2":{"document":{"id":"1:2","type":"FRAME"}},"3:4":null}}`))
	}, WithOAuth())

	resp, err := c.GetFileNodes(context.Background(), "KEY", []string{"1:2", "3:4"}, 0)
	require.NoError(t, err)
	require.Contains(t, resp.Nodes, "1:2")
	assert.Equal(t, "FRAME", resp.Nodes["1:2"].Document.Type)
	assert.Nil(t, resp.Nodes["3:4"])
}

func TestGetFileNodes_RequiresIDs(t *testing.T) {
	c := NewClient("secret")
	_, err := c.GetFileNodes(context.Background(), "KEY", nil, 0)
	assert.Error(t, err)
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"name":"ok"}`))
	})

	resp, err := c.GetFile(context.Background(), "KEY", 0)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Name)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "forbidden", http.StatusForbidden)
	})

	_, err := c.GetFile(context.Background(), "KEY", 0)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	_, err := c.GetFile(context.Background(), "KEY", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attempt 3")
	assert.Equal(t, int32(maxRetries), calls.Load())
}

func TestGetImages_RenderParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/images/KEY", r.URL.Path)
		assert.Equal(t, "svg", q.Get("format"))
		assert.Empty(t, q.Get("scale"), "svg renders ignore scale")
		assert.Equal(t, "true", q.Get("svg_outline_text"))
		w.Write([]byte(`{"images":{"1:2":"https://cdn/1.svg"}}`))
	})

	resp, err := c.GetImages(context.Background(), "KEY", []string{"1:2"}, "svg", 2)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/1.svg", resp.Images["1:2"])
}

func TestGetImages_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"err":"invalid node"}`))
	})

	_, err := c.GetImages(context.Background(), "KEY", []string{"x"}, "png", 1)
	assert.ErrorContains(t, err, "invalid node")
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *memCache) Put(_ context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = body
	return nil
}

func TestGetFile_UsesCache(t *testing.T) {
	var calls atomic.Int32
	cache := &memCache{data: map[string][]byte{}}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"name":"cached"}`))
	}, WithCache(cache))

	for i := 0; i < 3; i++ {
		resp, err := c.GetFile(context.Background(), "KEY", 1)
		require.NoError(t, err)
		assert.Equal(t, "cached", resp.Name)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, cache.data, "/files/KEY?depth=1")
}
