package cache

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kataras/figma-context/pkg/figma"
)

var _ figma.Cache = (*Store)(nil)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0)

	_, ok, err := s.Get(ctx, "/v1/files/KEY")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "/v1/files/KEY", []byte(`{"name":"v1"}`)))
	require.NoError(t, s.Put(ctx, "/v1/files/KEY", []byte(`{"name":"v2"}`)))

	body, ok, err := s.Get(ctx, "/v1/files/KEY")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"name":"v2"}`, string(body))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_TTL(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, time.Hour)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	require.NoError(t, s.Put(ctx, "old", []byte("a")))

	now = now.Add(30 * time.Minute)
	require.NoError(t, s.Put(ctx, "fresh", []byte("b")))

	now = now.Add(45 * time.Minute)
	_, ok, err := s.Get(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok, "entry older than the ttl is a miss")

	_, ok, err = s.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)

	purged, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_PurgeAllWithoutTTL(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0)
	require.NoError(t, s.Put(ctx, "a", []byte("1")))
	require.NoError(t, s.Put(ctx, "b", []byte("2")))

	purged, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(dir, 0)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = Open(dir, 0)
	require.NoError(t, err)
	defer s.Close()

	body, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(body))
}

func TestOpen_DriverError(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(string, string) (*sql.DB, error) { return nil, errors.New("no driver") }

	_, err := Open(t.TempDir(), 0)
	assert.ErrorContains(t, err, "no driver")
}

func TestStore_BacksFigmaClient(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"name":"Cached","document":{"id":"0:0","type":"DOCUMENT"}}`))
	}))
	defer srv.Close()

	s := newTestStore(t, time.Hour)
	client := figma.NewClient("token", figma.WithBaseURL(srv.URL), figma.WithCache(s))

	for i := 0; i < 2; i++ {
		file, err := client.GetFile(context.Background(), "KEY", 0)
		require.NoError(t, err)
		assert.Equal(t, "Cached", file.Name)
	}
	assert.Equal(t, int32(1), hits.Load())
}
