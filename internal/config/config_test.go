package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modcar/ingreso/internal/taller"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, defaultBaseURL, cfg.BaseURL)
	assert.Equal(t, defaultDebounce, cfg.SearchDebounce)
	assert.Equal(t, taller.DefaultEndpoints(), cfg.Endpoints)

	wantLog, err := expandPath(defaultLogPath)
	require.NoError(t, err)
	assert.Equal(t, wantLog, cfg.LogPath)
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(writeConfig(t, `
base_url = "  http://taller.local:9000  "
diagnostico_id = " 42 "
log_path = "  ~/logs/ingreso.log  "
search_debounce_ms = 150
preseleccionados = ["5", " 8 ", "", "5"]

[endpoints]
acciones_template = " /taller/acciones/0/ "

[[componentes]]
id = "5"
nombre = " Motor "
codigo = "MOT"

[[componentes]]
id = "8"
nombre = "Frenos"
`))
	require.NoError(t, err)

	assert.Equal(t, "http://taller.local:9000", cfg.BaseURL)
	assert.Equal(t, "42", cfg.DiagnosticoID)
	assert.True(t, strings.HasPrefix(cfg.LogPath, home), cfg.LogPath)
	assert.Equal(t, 150*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, []string{"5", "8"}, cfg.Preselected)

	assert.Equal(t, "/taller/acciones/0/", cfg.Endpoints.ActionsTemplate)
	assert.Equal(t, taller.DefaultEndpoints().Submit, cfg.Endpoints.Submit)

	require.Len(t, cfg.Components, 2)
	assert.Equal(t, "Motor", cfg.ComponentName("5"))
	assert.Equal(t, "99", cfg.ComponentName("99"))
	comp, ok := cfg.ComponentByCode("mot")
	require.True(t, ok)
	assert.Equal(t, "5", comp.ID)
}

func TestLoad_ZeroDebounceIsAllowed(t *testing.T) {
	cfg, err := Load(writeConfig(t, `search_debounce_ms = 0`))
	require.NoError(t, err)
	assert.Zero(t, cfg.SearchDebounce)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := map[string]struct {
		body string
		want string
	}{
		"invalid toml":      {`base_url = [`, "parse config"},
		"negative debounce": {`search_debounce_ms = -1`, "search_debounce_ms"},
		"component no id":   {"[[componentes]]\nnombre = \"Motor\"", "has no id"},
		"duplicate id":      {"[[componentes]]\nid = \"5\"\n[[componentes]]\nid = \"5\"", "duplicate id"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "a/b"), got)

	_, err = expandPath("   ")
	assert.Error(t, err)
}
