// Package payload turns the selection state and the parts list into the
// hidden fields posted with the intake form.
//
// Two fields carry JSON arrays:
//
//   - acciones_componentes_json: one object per selected action of a selected
//     component, with the labour price as a decimal string.
//   - repuestos_json: the parts list, unique by part id. Adding a part that is
//     already listed sums the quantities.
//
// Form assembles both together with one componentes_seleccionados value per
// selected component. It is meant to be called right before posting so the
// body reflects the state at that instant.
package payload
