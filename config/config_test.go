package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8000", c.Server.Addr)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, c.Server.ShutdownTimeout)
	assert.Equal(t, "/api/analytics/", c.Routes.Prefix)
	assert.Equal(t, "analytics", c.Routes.Namespace)
	assert.Equal(t, 404, c.Routes.InvalidParamStatus)
	assert.Equal(t, "info", c.Log.Level)
	assert.True(t, c.Metrics.Enabled)
	assert.Equal(t, "/metrics", c.Metrics.Path)
	assert.Empty(t, c.Remote.Provider)
}

func TestLoadFile(t *testing.T) {
	dir := writeConfig(t, `
server:
  addr: ":9090"
  write_timeout: 3s
routes:
  invalid_param_status: 400
log:
  level: debug
  format: json
`)

	l, err := NewLoader(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), l.File())

	c, err := l.Config()
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, 3*time.Second, c.Server.WriteTimeout)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, 400, c.Routes.InvalidParamStatus)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := writeConfig(t, "routes:\n  prefix: /stats/\n")

	c, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/stats/", c.Routes.Prefix)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := writeConfig(t, "server:\n  addr: \":9090\"\n")
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("ROUTES_INVALID_PARAM_STATUS", "400")

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":7070", c.Server.Addr)
	assert.Equal(t, 400, c.Routes.InvalidParamStatus)
}

func TestValidation(t *testing.T) {
	cases := map[string]string{
		"status":    "routes:\n  invalid_param_status: 500\n",
		"prefix":    "routes:\n  prefix: api/analytics\n",
		"namespace": "routes:\n  namespace: \"a:b\"\n",
		"spaces":    "routes:\n  namespace: \"a b\"\n",
		"hyphen":    "routes:\n  namespace: x-y\n",
		"level":     "log:\n  level: loud\n",
		"format":    "log:\n  format: xml\n",
		"timeout":   "server:\n  read_timeout: 0s\n",
		"remote":    "remote:\n  provider: consul\n  path: /cfg\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			l, err := NewLoader(writeConfig(t, body))
			require.NoError(t, err)
			_, err = l.Config()
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestNamespaceAcceptsIdentifiers(t *testing.T) {
	for _, ns := range []string{"analytics", "stats_v2", ""} {
		c, err := Load(writeConfig(t, "routes:\n  namespace: \""+ns+"\"\n"))
		require.NoError(t, err, ns)
		assert.Equal(t, ns, c.Routes.Namespace)
	}
}

func TestWatch(t *testing.T) {
	dir := writeConfig(t, "log:\n  level: info\n")
	file := filepath.Join(dir, "config.yaml")

	l, err := NewLoader(dir)
	require.NoError(t, err)
	_, err = l.Config()
	require.NoError(t, err)

	changed := make(chan *Config, 16)
	rejected := make(chan error, 16)
	require.True(t, l.Watch(
		func(c *Config) { changed <- c },
		func(err error) { rejected <- err },
	))

	require.NoError(t, os.WriteFile(file, []byte("log:\n  level: debug\n"), 0o600))

	// Rewriting a file can raise more than one event; wait for the final content.
	timeout := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case c := <-changed:
			done = c.Log.Level == "debug"
		case err := <-rejected:
			t.Fatalf("valid edit rejected: %v", err)
		case <-timeout:
			t.Fatal("no reload after a valid edit")
		}
	}
	assert.Equal(t, "debug", l.Current().Log.Level)

	require.NoError(t, os.WriteFile(file, []byte("log:\n  level: loud\n"), 0o600))

	timeout = time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case c := <-changed:
			assert.NotEqual(t, "loud", c.Log.Level)
		case err := <-rejected:
			assert.ErrorContains(t, err, "invalid config")
			done = true
		case <-timeout:
			t.Fatal("invalid edit was not reported")
		}
	}
	assert.NotEqual(t, "loud", l.Current().Log.Level)
}

func TestWatchWithoutFile(t *testing.T) {
	l, err := NewLoader(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, l.File())

	called := errors.New("callback ran")
	var got error
	assert.False(t, l.Watch(func(*Config) { got = called }, func(error) { got = called }))
	assert.NoError(t, got)
}
