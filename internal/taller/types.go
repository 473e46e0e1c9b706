package taller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/modcar/ingreso/internal/money"
)

// ID is an identifier that the workshop API emits either as a JSON number or
// as a string. It is kept in its textual form.
type ID string

// UnmarshalJSON accepts numbers, strings and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids as numbers, anything else
// ("05", "+3", "-0", "x-1") as a string and the empty id as null.
func (id ID) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// String returns the textual id.
func (id ID) String() string { return string(id) }

// Amount is a money value that tolerates the shapes the API uses for prices:
// numbers, numeric strings, empty strings and null. The last two decode to zero.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal.
func NewAmount(d decimal.Decimal) Amount { return Amount{Decimal: d} }

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	raw := string(trimmed)
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("decode amount: %w", err)
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			a.Decimal = decimal.Zero
			return nil
		}
	}
	d, err := money.Parse(raw)
	if err != nil {
		return fmt.Errorf("decode amount: %w", err)
	}
	a.Decimal = d
	return nil
}

// MarshalJSON writes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// ActionsResponse mirrors the action catalog endpoint. Older deployments
// answer with a bare array instead of the {ok, acciones} envelope.
type ActionsResponse struct {
	OK       bool     `json:"ok"`
	Mensaje  string   `json:"mensaje"`
	Acciones []Accion `json:"acciones"`
	Bare     bool     `json:"-"`
}

// UnmarshalJSON accepts both the envelope and the bare-array shape.
func (r *ActionsResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Accion
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*r = ActionsResponse{OK: true, Acciones: list, Bare: true}
		return nil
	}
	type envelope ActionsResponse
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	*r = ActionsResponse(env)
	return nil
}

// Accion is one catalog row for a component.
type Accion struct {
	AccionID     ID     `json:"accion_id"`
	AccionNombre string `json:"accion_nombre"`
	PrecioBase   Amount `json:"precio_base"`
}

// LookupResponse mirrors /componentes-lookup/.
type LookupResponse struct {
	Found  bool          `json:"found"`
	Parent LookupParent  `json:"parent"`
	Hijos  []LookupChild `json:"children"`
}

// LookupParent is the component a diagram part code resolves to.
type LookupParent struct {
	ID     ID     `json:"id"`
	Nombre string `json:"nombre"`
	Codigo string `json:"codigo"`
}

// LookupChild lists sub-components of the resolved parent.
type LookupChild struct {
	ID     ID     `json:"id"`
	Nombre string `json:"nombre"`
	Codigo string `json:"codigo"`
}

// PartsResponse mirrors the parts suggestion endpoint.
type PartsResponse struct {
	Repuestos []Repuesto `json:"repuestos"`
}

// Repuesto is a suggested replacement part.
type Repuesto struct {
	ID                  ID     `json:"id"`
	Nombre              string `json:"nombre"`
	OEM                 string `json:"oem"`
	SKU                 string `json:"sku"`
	Posicion            string `json:"posicion"`
	MarcaVeh            string `json:"marca_veh"`
	TipoMotor           string `json:"tipo_motor"`
	PrecioVenta         Amount `json:"precio_venta"`
	Disponible          int    `json:"disponible"`
	Compatibilidad      int    `json:"compatibilidad"`
	CompatibilidadTexto string `json:"compatibilidad_texto"`
	RepuestoStockID     ID     `json:"repuesto_stock_id"`
}

// CompatibilityBand groups the 0-100 compatibility score into the bands the
// shop uses when colouring suggestions.
func (r Repuesto) CompatibilityBand() string {
	switch {
	case r.Compatibilidad >= 80:
		return "alta"
	case r.Compatibilidad >= 60:
		return "media"
	case r.Compatibilidad >= 40:
		return "baja"
	case r.Compatibilidad >= 20:
		return "muy baja"
	default:
		return "sin datos"
	}
}

// InsumosResponse mirrors the free-text insumo search.
type InsumosResponse struct {
	Insumos []Insumo `json:"insumos"`
	Error   string   `json:"error"`
}

// Insumo is a supply item returned by the free-text search.
type Insumo struct {
	ID     ID     `json:"id"`
	Nombre string `json:"nombre"`
	SKU    string `json:"sku"`
	Marca  string `json:"marca"`
	OEM    string `json:"oem"`
	Precio Amount `json:"precio"`
	Stock  int    `json:"stock"`
}

// SubmitResult describes the outcome of posting the intake form.
type SubmitResult struct {
	Status   int
	Location string
	ID       string
}
