package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Submit     key.Binding

	// View switching
	ViewComponentes key.Binding
	ViewRepuestos   key.Binding
	ViewResumen     key.Binding
	ViewLog         key.Binding

	// Navigation
	Up   key.Binding
	Down key.Binding

	// Componentes
	Toggle    key.Binding
	AddAction key.Binding
	EditPrice key.Binding
	EditQty   key.Binding
	Increase  key.Binding
	Decrease  key.Binding
	Diagram   key.Binding

	// Repuestos
	Search    key.Binding
	Suggest   key.Binding
	FocusNext key.Binding
	AddPart   key.Binding
	Remove    key.Binding

	// Input
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Salir"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Ayuda"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cambiar tema"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Siguiente vista"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Vista anterior"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancelar"),
		),
		Submit: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Guardar ingreso"),
		),

		ViewComponentes: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Componentes"),
		),
		ViewRepuestos: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Repuestos"),
		),
		ViewResumen: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Resumen"),
		),
		ViewLog: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Log"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Subir"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Bajar"),
		),

		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Marcar/desmarcar"),
		),
		AddAction: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Agregar acción"),
		),
		EditPrice: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Editar precio"),
		),
		EditQty: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Editar cantidad"),
		),
		Increase: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Cantidad +1"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Cantidad -1"),
		),
		Diagram: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Pieza del diagrama"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Buscar insumos"),
		),
		Suggest: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Sugerir repuestos"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cambiar lista"),
		),
		AddPart: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Agregar repuesto"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Quitar repuesto"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirmar"),
		),
	}
}
