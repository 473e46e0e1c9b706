// Package app is the composition root of the intake client.
//
// Run wires the pieces together in this order:
//
//  1. Load ~/.config/ingreso/config.toml and apply command line overrides
//  2. Open the JSON log file through internal/logging
//  3. Optionally prompt for the vehicle and remember it in prefs.toml
//  4. Build the API client, the action catalog, the selection store and the
//     reconciler that renders the store
//  5. Select the preselected components and prefetch their catalogs with a
//     bounded errgroup
//  6. Start the Bubble Tea UI and block until the user exits
//
// Errors before the UI starts are returned to the caller. Once the UI runs,
// network failures are logged and surfaced in the status line instead.
package app
