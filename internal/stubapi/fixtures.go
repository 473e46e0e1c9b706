package stubapi

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/modcar/ingreso/internal/money"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the data the stub server answers from.
type Fixtures struct {
	Componentes  []ComponenteFixture `yaml:"componentes"`
	Repuestos    []RepuestoFixture   `yaml:"repuestos"`
	Insumos      []InsumoFixture     `yaml:"insumos"`
	Diagnosticos map[string][]string `yaml:"diagnosticos"`
}

// ComponenteFixture is a component with its action catalog.
type ComponenteFixture struct {
	ID       string          `yaml:"id"`
	Nombre   string          `yaml:"nombre"`
	Codigo   string          `yaml:"codigo"`
	Acciones []AccionFixture `yaml:"acciones"`
}

// AccionFixture is one catalog action.
type AccionFixture struct {
	ID         string `yaml:"id"`
	Nombre     string `yaml:"nombre"`
	PrecioBase string `yaml:"precio_base"`
}

// RepuestoFixture is a suggested part and the components it fits.
type RepuestoFixture struct {
	ID             string   `yaml:"id"`
	Nombre         string   `yaml:"nombre"`
	OEM            string   `yaml:"oem"`
	SKU            string   `yaml:"sku"`
	Posicion       string   `yaml:"posicion"`
	PrecioVenta    string   `yaml:"precio_venta"`
	Disponible     int      `yaml:"disponible"`
	Compatibilidad int      `yaml:"compatibilidad"`
	StockID        string   `yaml:"repuesto_stock_id"`
	Componentes    []string `yaml:"componentes"`
}

// InsumoFixture is a supply item found by the free-text search.
type InsumoFixture struct {
	ID     string `yaml:"id"`
	Nombre string `yaml:"nombre"`
	SKU    string `yaml:"sku"`
	Marca  string `yaml:"marca"`
	Precio string `yaml:"precio"`
	Stock  int    `yaml:"stock"`
}

// DefaultFixtures returns the bundled sample workshop.
func DefaultFixtures() (Fixtures, error) {
	return ParseFixtures(defaultFixtures)
}

// LoadFixtures reads a fixture file. An empty path returns DefaultFixtures.
func LoadFixtures(path string) (Fixtures, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultFixtures()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes and validates fixture YAML.
func ParseFixtures(data []byte) (Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	if err := fx.validate(); err != nil {
		return Fixtures{}, err
	}
	return fx, nil
}

func (fx Fixtures) validate() error {
	seen := make(map[string]bool)
	for _, c := range fx.Componentes {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("fixtures: componente %q has no id", c.Nombre)
		}
		if seen[c.ID] {
			return fmt.Errorf("fixtures: duplicate componente id %q", c.ID)
		}
		seen[c.ID] = true
		for _, a := range c.Acciones {
			if err := checkPrice(a.PrecioBase); err != nil {
				return fmt.Errorf("fixtures: accion %s/%s: %w", c.ID, a.ID, err)
			}
		}
	}
	for _, r := range fx.Repuestos {
		if err := checkPrice(r.PrecioVenta); err != nil {
			return fmt.Errorf("fixtures: repuesto %s: %w", r.ID, err)
		}
	}
	for _, i := range fx.Insumos {
		if err := checkPrice(i.Precio); err != nil {
			return fmt.Errorf("fixtures: insumo %s: %w", i.ID, err)
		}
	}
	return nil
}

func checkPrice(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if _, err := money.Parse(raw); err != nil {
		return err
	}
	return nil
}

func (fx Fixtures) componente(id string) (ComponenteFixture, bool) {
	for _, c := range fx.Componentes {
		if c.ID == id {
			return c, true
		}
	}
	return ComponenteFixture{}, false
}
