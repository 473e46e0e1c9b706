// Package reconcile keeps the rendered selection view consistent with the
// selection store.
//
// Three input paths change the selection: the component checkboxes, the
// vehicle diagram (which adds and removes comp-li-<id> list items) and the
// list of components already present when a session starts. All three go
// through the Reconciler, which forwards them to the store and reports which
// components still need their action catalog.
//
// Rendering is a pure diff. Render builds the Tree for a snapshot and the Ops
// that turn the previous Tree into it; rendering a snapshot twice yields no
// Ops the second time. Component rows are created once and then only shown or
// hidden, so a component deselected and selected again never shows its
// actions twice and keeps the prices typed into it.
//
// A selected component whose catalog is not installed shows LoadingText. An
// installed catalog with no actions shows EmptyText. A failed fetch installs
// an empty catalog and is not retried during the session.
package reconcile
