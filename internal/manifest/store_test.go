package manifest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ivanphz/my-custom-caddy/internal/config"
)

func TestMain(m *testing.M) {
	// The fetch path must not leave request goroutines behind, even
	// after a timed-out fetch.
	goleak.VerifyTestMain(m,
		// Keep-alive connections parked by the shared transport.
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

// storeFor points the manifest URL template at a test server.
func storeFor(t *testing.T, srv *httptest.Server, timeout time.Duration) *Store {
	t.Helper()
	cfg := config.Default()
	cfg.Repo = "ivanphz/my-custom-caddy"
	cfg.ManifestURL = srv.URL + "/%s/releases/latest/download/%s"
	cfg.FetchTimeout = timeout
	return NewStore(cfg, nil)
}

func TestFetchPrevious_Success(t *testing.T) {
	want := map[string]Record{
		"github.com/imgk/caddy-trojan": {
			OriginalPath: "github.com/imgk/caddy-trojan",
			Version:      "v0.1.0",
			Time:         "2025-04-28T13:22:09Z",
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ivanphz/my-custom-caddy/releases/latest/download/manifest.json", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(want))
	}))
	defer srv.Close()

	got := storeFor(t, srv, 5*time.Second).FetchPrevious(context.Background())
	assert.Equal(t, want, got)
}

func TestFetchPrevious_NotFoundYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	got := storeFor(t, srv, 5*time.Second).FetchPrevious(context.Background())
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestFetchPrevious_MalformedBodyYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>rate limited</html>"))
	}))
	defer srv.Close()

	got := storeFor(t, srv, 5*time.Second).FetchPrevious(context.Background())
	assert.Empty(t, got)
}

func TestFetchPrevious_HungServerBoundedByTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	start := time.Now()
	got := storeFor(t, srv, 200*time.Millisecond).FetchPrevious(context.Background())
	assert.Empty(t, got)
	assert.Less(t, time.Since(start), 5*time.Second, "fetch must respect the client timeout")
}

func TestFetchPrevious_NoRepoConfigured(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "")
	cfg := config.Default()
	cfg.Repo = ""

	got := NewStore(cfg, nil).FetchPrevious(context.Background())
	assert.Empty(t, got)
}

func TestPersist_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.ManifestFile = filepath.Join(dir, "manifest.json")

	rep := "github.com/klzgrad/forwardproxy"
	snap := &Snapshot{
		Core: &Core{Path: "github.com/caddyserver/caddy/v2", Version: "v2.10.2"},
		Plugins: map[string]Record{
			"github.com/imgk/caddy-trojan": {
				OriginalPath: "github.com/imgk/caddy-trojan",
				Version:      "v0.1.0",
				Time:         "2025-04-28T13:22:09Z",
			},
			rep: {
				OriginalPath: "github.com/caddyserver/forwardproxy",
				Version:      "v0.0.0-20250207221404-8b569ba8f6be",
				Time:         "2025-02-07T22:14:04Z",
				IsReplaced:   true,
				ReplacePath:  &rep,
			},
		},
	}

	store := NewStore(cfg, nil)
	require.NoError(t, store.Persist(snap))

	data, err := os.ReadFile(cfg.ManifestFile)
	require.NoError(t, err)

	var back map[string]Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, snap.Plugins, back)
	assert.NotContains(t, string(data), "caddyserver/caddy/v2",
		"core record must not be persisted")
}

func TestPersist_WriteFailurePropagates(t *testing.T) {
	cfg := config.Default()
	cfg.ManifestFile = filepath.Join(t.TempDir(), "missing-dir", "manifest.json")

	err := NewStore(cfg, nil).Persist(&Snapshot{Plugins: map[string]Record{}})
	assert.Error(t, err)
}
