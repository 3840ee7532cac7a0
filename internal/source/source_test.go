package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodcal/internal/schedule"
)

const rulesBody = "Payroll - 15th of every month\n"

func etagServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(rulesBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchRevalidatesWithETag(t *testing.T) {
	var hits atomic.Int32
	srv := etagServer(t, &hits)
	l := NewLoader(t.TempDir())

	first, err := l.Fetch(context.Background(), srv.URL+"/rules.txt")
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, rulesBody, string(first.Body))

	second, err := l.Fetch(context.Background(), srv.URL+"/rules.txt")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, rulesBody, string(second.Body))
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchFallsBackToCacheWhenServerFails(t *testing.T) {
	var hits atomic.Int32
	srv := etagServer(t, &hits)
	dir := t.TempDir()
	l := NewLoader(dir)

	_, err := l.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	srv.Close()

	res, err := l.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, rulesBody, string(res.Body))
}

func TestFetchNonOKWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewLoader(t.TempDir()).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestFetchNonOKUsesCache(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(rulesBody))
	}))
	defer srv.Close()
	l := NewLoader(t.TempDir())

	_, err := l.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	fail.Store(true)
	res, err := l.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
}

func TestFetchEmptyURL(t *testing.T) {
	_, err := NewLoader(t.TempDir()).Fetch(context.Background(), "")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	l := NewLoader(t.TempDir())

	path := filepath.Join(t.TempDir(), "rules.txt")
	require.NoError(t, os.WriteFile(path, []byte("Close - quarterly\n"), 0o600))

	fromFile, err := l.Load(ctx, Spec{Path: path, URL: "http://ignored.invalid"})
	require.NoError(t, err)
	assert.Equal(t, OriginFile, fromFile.Origin)
	assert.Equal(t, "Close - quarterly\n", fromFile.Text)

	defaults, err := l.Load(ctx, Spec{})
	require.NoError(t, err)
	assert.Equal(t, OriginDefaults, defaults.Origin)
	assert.Equal(t, schedule.DefaultRulesText, defaults.Text)

	_, err = l.Load(ctx, Spec{Path: filepath.Join(t.TempDir(), "missing.txt")})
	assert.Error(t, err)

	var hits atomic.Int32
	srv := etagServer(t, &hits)
	remote, err := l.Load(ctx, Spec{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, OriginURL, remote.Origin)
	cached, err := l.Load(ctx, Spec{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, OriginCache, cached.Origin)
	assert.Equal(t, remote.Text, cached.Text)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)", redactURL("https://example.com/private/rules.txt?token=abc"))
	assert.Equal(t, "rules://...(redacted)", redactURL("not a url"))
}
