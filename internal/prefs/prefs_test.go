package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := Load("")
	assert.Equal(t, defaultTheme, p.Theme)
	assert.True(t, p.Vehicle.IsZero())
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "ingreso")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte(`
theme = "Alto contraste"

[vehiculo]
marca = "Toyota"
anio = "2015"
`), 0o644))

	p := Load("")
	assert.Equal(t, "Alto contraste", p.Theme)
	assert.Equal(t, "Toyota", p.Vehicle.Marca)
	assert.Equal(t, "2015", p.Vehicle.Anio)
	assert.False(t, p.Vehicle.IsZero())
}

func TestLoad_InvalidFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = ["), 0o644))

	assert.Equal(t, defaultTheme, Load(path).Theme)
}

func TestSaveAndUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")

	require.NoError(t, Save(path, Prefs{Theme: "Noche"}))
	require.NoError(t, Update(path, func(p *Prefs) {
		p.Vehicle = Vehicle{Marca: "Kia", Modelo: "Rio"}
	}))

	p := Load(path)
	assert.Equal(t, "Noche", p.Theme)
	assert.Equal(t, Vehicle{Marca: "Kia", Modelo: "Rio"}, p.Vehicle)
}
