package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30000, cfg.Timeout)
	assert.True(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetNoColor())
	assert.Equal(t, "net", cfg.Transport)
	assert.True(t, cfg.IsDefault())

	cfg.BaseURI = "http://api.test"
	assert.False(t, cfg.IsDefault())
}

func TestGetters_NilDefaults(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetNoColor())
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".hitclient.yaml", `
baseUri: http://api.test
timeout: 5000
validateSSL: false
transport: resty
rateLimit: 2.5
headers:
  Authorization: Bearer abc
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://api.test", cfg.BaseURI)
	assert.Equal(t, 5000, cfg.Timeout)
	assert.False(t, cfg.GetValidateSSL())
	assert.True(t, cfg.GetFollowRedirects())
	assert.Equal(t, "resty", cfg.Transport)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, "Bearer abc", cfg.Headers["Authorization"])
	assert.Equal(t, 10, cfg.MaxRedirects)
}

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hitclient.json", `{"baseUri":"http://json.test","followRedirects":false}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://json.test", cfg.BaseURI)
	assert.False(t, cfg.GetFollowRedirects())
}

func TestLoadConfig_TOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hitclient.toml", `
baseUri = "http://toml.test"
timeout = 1500
validateSSL = false

[headers]
X-Api-Key = "k"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://toml.test", cfg.BaseURI)
	assert.Equal(t, 1500, cfg.Timeout)
	assert.False(t, cfg.GetValidateSSL())
	assert.Equal(t, "k", cfg.Headers["X-Api-Key"])
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hitclient.json", `{"baseUri":`)

	_, err := LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestFindAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.True(t, cfg.IsDefault())

	writeFile(t, dir, "hitclient.json", `{"baseUri":"http://json.test"}`)
	writeFile(t, dir, ".hitclient.yml", `baseUri: http://yaml.test`)

	cfg, err = FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://yaml.test", cfg.BaseURI)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1"}

	other := &Config{
		BaseURI:         "http://other.test",
		Timeout:         100,
		ValidateSSL:     BoolPtr(false),
		Headers:         map[string]string{"B": "2"},
		RequestIDHeader: "X-Request-Id",
	}

	merged := base.Merge(other)

	assert.Equal(t, "http://other.test", merged.BaseURI)
	assert.Equal(t, 100, merged.Timeout)
	assert.False(t, merged.GetValidateSSL())
	assert.True(t, merged.GetFollowRedirects())
	assert.Equal(t, "net", merged.Transport)
	assert.Equal(t, "X-Request-Id", merged.RequestIDHeader)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, merged.Headers)

	// base is untouched
	assert.Equal(t, map[string]string{"A": "1"}, base.Headers)
	assert.Same(t, base, base.Merge(nil))
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.json", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := DefaultConfig()
			cfg.BaseURI = "http://api.test"
			cfg.Headers = map[string]string{"X-Key": "k"}

			require.NoError(t, cfg.SaveConfig(path))
			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("HITCLIENT_BASE_URI", "http://env.test")
	t.Setenv("HITCLIENT_TIMEOUT", "1500")
	t.Setenv("HITCLIENT_VALIDATE_SSL", "false")
	t.Setenv("HITCLIENT_RATE_LIMIT", "0.5")
	t.Setenv("HITCLIENT_HEADERS", `{"X-Env":"yes"}`)

	overlay, err := LoadEnv(filepath.Join(t.TempDir(), "none.env"))
	assert.Error(t, err, "explicit dotenv path must exist")
	assert.Nil(t, overlay)

	chdir(t, t.TempDir())
	overlay, err = LoadEnv("")
	require.NoError(t, err)

	assert.Equal(t, "http://env.test", overlay.BaseURI)
	assert.Equal(t, 1500, overlay.Timeout)
	require.NotNil(t, overlay.ValidateSSL)
	assert.False(t, *overlay.ValidateSSL)
	assert.Equal(t, 0.5, overlay.RateLimit)
	assert.Equal(t, map[string]string{"x-env": "yes"}, lowerKeys(overlay.Headers))
	assert.Nil(t, overlay.FollowRedirects)
	assert.Empty(t, overlay.Transport)
}

func TestLoadEnv_Dotenv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "test.env", "HITCLIENT_TRANSPORT=resty\nHITCLIENT_LOG_LEVEL=debug\n")
	t.Setenv("HITCLIENT_LOG_LEVEL", "warn")
	t.Setenv("HITCLIENT_TRANSPORT", "")
	os.Unsetenv("HITCLIENT_TRANSPORT")

	overlay, err := LoadEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "resty", overlay.Transport)
	assert.Equal(t, "warn", overlay.LogLevel, "existing variables win over the dotenv file")
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.yaml", "baseUri: http://file.test\ntimeout: 2000\n")
	chdir(t, dir)
	t.Setenv("HITCLIENT_TIMEOUT", "3000")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "http://file.test", cfg.BaseURI)
	assert.Equal(t, 3000, cfg.Timeout)
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir for toolchains that predate it.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
