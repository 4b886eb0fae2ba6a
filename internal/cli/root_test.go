package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxprint/oxdash/internal/config"
	"github.com/oxprint/oxdash/internal/storage"
)

// isolate points config and storage at a temp dir and returns the config
// path and storage path.
func isolate(t *testing.T, apiURL string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(config.APIURLEnv, apiURL)

	storagePath := filepath.Join(dir, "storage.toml")
	configPath := filepath.Join(dir, "config.toml")
	body := `storage_path = "` + filepath.ToSlash(storagePath) + `"` + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(body), 0o600))
	return configPath, storagePath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTokenSetAndClear(t *testing.T) {
	configPath, storagePath := isolate(t, "")

	out, err := execute(t, "--config", configPath, "token", "set", "  abc123  ")
	require.NoError(t, err)
	assert.Contains(t, out, storagePath)

	store, err := storage.Open(storagePath)
	require.NoError(t, err)
	token, ok := store.Token()
	require.True(t, ok)
	assert.Equal(t, "abc123", token)

	out, err = execute(t, "--config", configPath, "token", "clear")
	require.NoError(t, err)
	assert.Equal(t, "token cleared\n", out)
	_, ok = store.Token()
	assert.False(t, ok)
}

func TestTokenSetRejectsBlank(t *testing.T) {
	configPath, _ := isolate(t, "")
	_, err := execute(t, "--config", configPath, "token", "set", "   ")
	require.Error(t, err)
}

func TestCheckConnectedSendsStoredToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			gotAuth = r.Header.Get("Authorization")
		}
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer server.Close()

	configPath, _ := isolate(t, "")
	_, err := execute(t, "--config", configPath, "token", "set", "tok")
	require.NoError(t, err)

	out, err := execute(t, "--config", configPath, "--api-url", server.URL, "check", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"state": "connected"`)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestCheckUnhealthyFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
	}))
	defer server.Close()

	configPath, _ := isolate(t, server.URL)
	out, err := execute(t, "--config", configPath, "check")
	require.ErrorIs(t, err, errNotConnected)
	assert.Contains(t, out, "Backend: Error")
}

func TestInvalidConfigSurfacesError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`poll_interval = "soon"`), 0o600))

	_, err := execute(t, "--config", path, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
