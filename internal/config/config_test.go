package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "TODOS_PORT", "TODOS_URL", "REQUEST_TIMEOUT", "REFRESH_INTERVAL",
	"CACHE_BACKEND", "CACHE_PATH", "CACHE_KEY", "DATABASE_URL", "MONGO_URI", "MONGO_DATABASE",
	"PAGE_SIZE", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "http://localhost:3000/todos", cfg.TodosURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.PageSize)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "taskboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9090"
todos_url: http://todos.internal/todos
request_timeout: 2s
cache_backend: memory
page_size: 10
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PAGE_SIZE", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://todos.internal/todos", cfg.TodosURL)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, CacheMemory, cfg.CacheBackend)
	assert.Equal(t, 7, cfg.PageSize, "environment wins over file")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad timeout", env: map[string]string{"REQUEST_TIMEOUT": "soon"}},
		{name: "bad page size", env: map[string]string{"PAGE_SIZE": "five"}},
		{name: "zero page size", env: map[string]string{"PAGE_SIZE": "0"}},
		{name: "unknown backend", env: map[string]string{"CACHE_BACKEND": "redis"}},
		{name: "postgres without dsn", env: map[string]string{"CACHE_BACKEND": "postgres"}},
		{name: "mongo without uri", env: map[string]string{"CACHE_BACKEND": "mongo"}},
		{name: "missing config file", env: map[string]string{"CONFIG_FILE": "/nonexistent/taskboard.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
