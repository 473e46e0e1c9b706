package payload

import (
	"encoding/json"
	"net/url"

	"github.com/modcar/ingreso/internal/selection"
	"github.com/modcar/ingreso/internal/taller"
)

// Form field names expected by the intake endpoint.
const (
	FieldComponents = "componentes_seleccionados"
	FieldActions    = "acciones_componentes_json"
	FieldParts      = "repuestos_json"
)

// ActionItem is one element of the acciones_componentes_json array.
type ActionItem struct {
	ComponenteID   taller.ID `json:"componente_id"`
	AccionID       taller.ID `json:"accion_id"`
	PrecioManoObra string    `json:"precio_mano_obra"`
	Cantidad       int       `json:"cantidad"`
}

// Actions lists every selected action whose component is also selected, in
// snapshot order. Deselected components contribute nothing even when their
// actions keep the selected flag.
func Actions(snap selection.Snapshot) []ActionItem {
	active := snap.ActiveActions()
	out := make([]ActionItem, 0, len(active))
	for _, a := range active {
		out = append(out, ActionItem{
			ComponenteID:   taller.ID(a.ComponentID),
			AccionID:       taller.ID(a.ActionID),
			PrecioManoObra: a.UnitPrice.String(),
			Cantidad:       a.Quantity,
		})
	}
	return out
}

// ActionsJSON serializes Actions. An empty selection yields "[]".
func ActionsJSON(snap selection.Snapshot) string {
	return encodeList(Actions(snap))
}

// Form builds the submission body. Values already present in base (vehicle
// fields, diagnostico id) are kept; the three selection fields are replaced.
func Form(snap selection.Snapshot, parts PartList, base url.Values) url.Values {
	form := url.Values{}
	for k, v := range base {
		form[k] = append([]string(nil), v...)
	}
	form.Del(FieldComponents)
	for _, id := range snap.SelectedComponentIDs() {
		form.Add(FieldComponents, id)
	}
	form.Set(FieldActions, ActionsJSON(snap))
	form.Set(FieldParts, parts.JSON())
	return form
}

// encodeList marshals a slice of wire items. Every field marshals to valid
// JSON, so a failure yields the empty list instead of a panic on the render
// path.
func encodeList(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}
