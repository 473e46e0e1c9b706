package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/modcar/ingreso/internal/taller"
)

// Config holds everything the intake client reads from disk.
type Config struct {
	BaseURL        string
	DiagnosticoID  string
	LogPath        string
	SearchDebounce time.Duration
	Endpoints      taller.Endpoints
	Components     []Component
	Preselected    []string
}

// Component is an entry of the component checklist.
type Component struct {
	ID     string
	Nombre string
	Codigo string
}

const (
	defaultConfigPath = "~/.config/ingreso/config.toml"
	defaultLogPath    = "~/.local/share/ingreso/ingreso.log"
	defaultBaseURL    = "127.0.0.1:8000"
	defaultDebounce   = 300 * time.Millisecond
)

type rawEndpoints struct {
	ActionsTemplate string `toml:"acciones_template"`
	ComponentLookup string `toml:"componentes_lookup"`
	PartsPreview    string `toml:"repuestos_preview"`
	PartsWithID     string `toml:"repuestos_with_id"`
	InsumoSearch    string `toml:"buscar_insumos"`
	Submit          string `toml:"submit"`
}

type rawComponent struct {
	ID     string `toml:"id"`
	Nombre string `toml:"nombre"`
	Codigo string `toml:"codigo"`
}

type rawConfig struct {
	BaseURL          string         `toml:"base_url"`
	DiagnosticoID    string         `toml:"diagnostico_id"`
	LogPath          string         `toml:"log_path"`
	SearchDebounceMS *int           `toml:"search_debounce_ms"`
	Endpoints        rawEndpoints   `toml:"endpoints"`
	Componentes      []rawComponent `toml:"componentes"`
	Preseleccionados []string       `toml:"preseleccionados"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:        defaultBaseURL,
		LogPath:        mustExpand(defaultLogPath),
		SearchDebounce: defaultDebounce,
		Endpoints:      taller.DefaultEndpoints(),
	}
}

// Load reads the config file at path (or the default location), falling back
// to defaults when it is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return fromRaw(raw)
}

func fromRaw(raw rawConfig) (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	cfg.DiagnosticoID = strings.TrimSpace(raw.DiagnosticoID)
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		expanded, err := expandPath(v)
		if err != nil {
			return Config{}, fmt.Errorf("log_path: %w", err)
		}
		cfg.LogPath = expanded
	}
	if raw.SearchDebounceMS != nil {
		if *raw.SearchDebounceMS < 0 {
			return Config{}, fmt.Errorf("search_debounce_ms must be >= 0, got %d", *raw.SearchDebounceMS)
		}
		cfg.SearchDebounce = time.Duration(*raw.SearchDebounceMS) * time.Millisecond
	}

	overlay(&cfg.Endpoints.ActionsTemplate, raw.Endpoints.ActionsTemplate)
	overlay(&cfg.Endpoints.ComponentLookup, raw.Endpoints.ComponentLookup)
	overlay(&cfg.Endpoints.PartsPreview, raw.Endpoints.PartsPreview)
	overlay(&cfg.Endpoints.PartsWithID, raw.Endpoints.PartsWithID)
	overlay(&cfg.Endpoints.InsumoSearch, raw.Endpoints.InsumoSearch)
	overlay(&cfg.Endpoints.Submit, raw.Endpoints.Submit)

	seen := make(map[string]bool, len(raw.Componentes))
	for _, c := range raw.Componentes {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return Config{}, fmt.Errorf("componentes: entry %q has no id", c.Nombre)
		}
		if seen[id] {
			return Config{}, fmt.Errorf("componentes: duplicate id %q", id)
		}
		seen[id] = true
		cfg.Components = append(cfg.Components, Component{
			ID:     id,
			Nombre: strings.TrimSpace(c.Nombre),
			Codigo: strings.TrimSpace(c.Codigo),
		})
	}
	cfg.Preselected = NormalizeIDs(raw.Preseleccionados)
	return cfg, nil
}

// NormalizeIDs trims ids, drops blanks and duplicates, keeping first-seen
// order.
func NormalizeIDs(ids []string) []string {
	var out []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ComponentName returns the configured name for id, or id itself.
func (c Config) ComponentName(id string) string {
	for _, comp := range c.Components {
		if comp.ID == id && comp.Nombre != "" {
			return comp.Nombre
		}
	}
	return id
}

// ComponentByCode finds the checklist entry with the given diagram code.
func (c Config) ComponentByCode(code string) (Component, bool) {
	code = strings.TrimSpace(code)
	for _, comp := range c.Components {
		if comp.Codigo != "" && strings.EqualFold(comp.Codigo, code) {
			return comp, true
		}
	}
	return Component{}, false
}

func overlay(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
