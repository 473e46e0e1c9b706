// Package ui is the Bubble Tea front end of the intake form.
//
// The model never owns selection state. Component and action choices live in
// a selection.Store and are rendered through a reconcile.Reconciler; the UI
// reads Reconciler.Tree on every frame and turns keystrokes into store or
// reconciler calls. Catalog loads, diagram lookups, parts searches and the
// final submission run as tea.Cmd functions so the event loop never blocks
// on the network.
//
// # Views
//
//   - Componentes: the component checklist with the actions of each selected
//     component, inline price and quantity editing, and diagram lookups.
//   - Repuestos: suggested parts for the selection, a debounced supply search
//     and the list of parts attached to the intake.
//   - Resumen: labour and parts totals plus the form fields that will be
//     posted.
//   - Log: the tail of the JSON log file.
//
// # Key Bindings
//
//   - 1-4 or Tab: switch view
//   - space: toggle component or action
//   - a: add action (warns when already added)
//   - p / c: edit price / quantity
//   - d: select a component by diagram part code
//   - r: suggest parts, /: search supplies, enter: add part, x: remove
//   - S: save the intake
//   - T: cycle theme, h or ?: help, e or Ctrl+C: exit
package ui
