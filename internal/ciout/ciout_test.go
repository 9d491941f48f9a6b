package ciout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanphz/my-custom-caddy/internal/config"
)

func TestWriteNotes_Overwrites(t *testing.T) {
	cfg := config.Default()
	cfg.NotesFile = filepath.Join(t.TempDir(), "release_notes.md")
	sink := New(cfg, nil)

	require.NoError(t, sink.WriteNotes("first run"))
	require.NoError(t, sink.WriteNotes("second run"))

	data, err := os.ReadFile(cfg.NotesFile)
	require.NoError(t, err)
	assert.Equal(t, "second run", string(data), "notes file is create-or-overwrite, not append")
}

func TestWriteNotes_FailurePropagates(t *testing.T) {
	cfg := config.Default()
	cfg.NotesFile = filepath.Join(t.TempDir(), "missing-dir", "release_notes.md")

	assert.Error(t, New(cfg, nil).WriteNotes("notes"))
}

func TestAppendGitHubOutputs(t *testing.T) {
	out := filepath.Join(t.TempDir(), "github_output")
	require.NoError(t, os.WriteFile(out, []byte("EXISTING=1\n"), 0o644))
	t.Setenv("GITHUB_OUTPUT", out)

	sink := New(config.Default(), nil)
	require.NoError(t, sink.AppendGitHubOutputs("--with github.com/mholt/caddy-l4@v1.0.0", "v2.10.2"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t,
		"EXISTING=1\nXCADDY_ARGS=--with github.com/mholt/caddy-l4@v1.0.0\nCADDY_VERSION=v2.10.2\n",
		string(data), "outputs must append, never truncate")
}

func TestAppendGitHubOutputs_UnknownCore(t *testing.T) {
	out := filepath.Join(t.TempDir(), "github_output")
	t.Setenv("GITHUB_OUTPUT", out)

	sink := New(config.Default(), nil)
	require.NoError(t, sink.AppendGitHubOutputs("", UnknownCoreVersion))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CADDY_VERSION=unknown\n")
}

func TestAppendGitHubOutputs_OutsideCI(t *testing.T) {
	t.Setenv("GITHUB_OUTPUT", "")

	sink := New(config.Default(), nil)
	assert.NoError(t, sink.AppendGitHubOutputs("args", "v2.10.2"))
}
