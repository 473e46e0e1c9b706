// Package config loads the intake client's TOML configuration.
//
// # Discovery
//
// Load uses the explicit path when one is given and
// ~/.config/ingreso/config.toml otherwise. A missing file is not an error:
// Default is returned so the client runs against a local workshop install
// without any setup. Present but blank values also fall back to defaults.
//
// # Format
//
//	base_url = "http://taller.local:8000"
//	diagnostico_id = ""
//	log_path = "~/.local/share/ingreso/ingreso.log"
//	search_debounce_ms = 300
//	preseleccionados = ["5"]
//
//	[endpoints]
//	acciones_template = "/car/acciones-lookup/0/"
//	componentes_lookup = "/car/componentes-lookup/"
//	repuestos_preview = "/car/diagnostico/sugerir-repuestos/"
//	repuestos_with_id = "/car/diagnostico/0/sugerir-repuestos/"
//	buscar_insumos = "/car/repuestos/buscar-insumos/"
//	submit = "/car/ingreso/"
//
//	[[componentes]]
//	id = "5"
//	nombre = "Motor"
//	codigo = "MOT"
//
// Every endpoint is optional; unset ones keep the stock route. Paths that
// start with "~" are expanded against the home directory.
//
// # Errors
//
// Load fails on unreadable files, invalid TOML, a negative debounce and
// component entries with a missing or repeated id.
package config
