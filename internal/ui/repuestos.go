package ui

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/modcar/ingreso/internal/money"
	"github.com/modcar/ingreso/internal/payload"
	"github.com/modcar/ingreso/internal/taller"
)

type partsFocus int

const (
	focusSuggestions partsFocus = iota
	focusResults
	focusList
	partsFocusCount
)

type repuestosState struct {
	focus   partsFocus
	cursors [partsFocusCount]int

	suggestions []taller.Repuesto
	suggesting  bool

	search    textinput.Model
	searching bool

	// seq increments on every edit of the search box; results tagged with an
	// older seq are discarded.
	seq      int
	loading  bool
	results  []taller.Insumo
	lastTerm string

	list payload.PartList
}

func newRepuestosState() repuestosState {
	ti := textinput.New()
	ti.Placeholder = "Buscar insumos..."
	ti.CharLimit = 64
	ti.Prompt = "/ "
	return repuestosState{search: ti}
}

func (s repuestosState) focusLen(f partsFocus) int {
	switch f {
	case focusSuggestions:
		return len(s.suggestions)
	case focusResults:
		return len(s.results)
	case focusList:
		return s.list.Len()
	}
	return 0
}

// handleRepuestosKey processes keyboard input for the parts view.
func (m Model) handleRepuestosKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := &m.parts

	switch {
	case key.Matches(msg, m.keys.Search):
		p.searching = true
		p.focus = focusResults
		cmd := p.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Suggest):
		return m.requestSuggestions()

	case key.Matches(msg, m.keys.FocusNext):
		p.focus = (p.focus + 1) % partsFocusCount
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if p.cursors[p.focus] > 0 {
			p.cursors[p.focus]--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if p.cursors[p.focus] < p.focusLen(p.focus)-1 {
			p.cursors[p.focus]++
		}
		return m, nil

	case key.Matches(msg, m.keys.AddPart):
		return m.addFocusedPart(), nil

	case key.Matches(msg, m.keys.Remove):
		if p.focus != focusList || p.list.Len() == 0 {
			return m, nil
		}
		item := p.list.Items()[clampCursor(p.cursors[focusList], p.list.Len())]
		p.list.Remove(item.ID)
		p.cursors[focusList] = clampCursor(p.cursors[focusList], p.list.Len())
		m.status = infoStatus(fmt.Sprintf("%s quitado", item.Name))
		return m, nil

	case key.Matches(msg, m.keys.Increase), key.Matches(msg, m.keys.Decrease):
		if p.focus != focusList || p.list.Len() == 0 {
			return m, nil
		}
		item := p.list.Items()[clampCursor(p.cursors[focusList], p.list.Len())]
		qty := item.Quantity + 1
		if key.Matches(msg, m.keys.Decrease) {
			qty = item.Quantity - 1
		}
		if !p.list.SetQuantity(item.ID, qty) {
			m.status = warnStatus("La cantidad mínima es 1")
		}
		return m, nil
	}
	return m, nil
}

func (m Model) requestSuggestions() (tea.Model, tea.Cmd) {
	ids := m.store.Snapshot().SelectedComponentIDs()
	if len(ids) == 0 && m.cfg.DiagnosticoID == "" {
		m.status = warnStatus("Seleccione componentes para sugerir repuestos")
		return m, nil
	}
	m.parts.suggesting = true
	m.status = infoStatus("Buscando repuestos sugeridos…")
	q := taller.PartsQuery{
		DiagnosticoID: m.cfg.DiagnosticoID,
		ComponentIDs:  ids,
		Marca:         m.vehicle.Marca,
		Modelo:        m.vehicle.Modelo,
		Anio:          m.vehicle.Anio,
		Motor:         m.vehicle.Motor,
	}
	return m, suggestionsCmd(m.ctx, m.api, q)
}

func (m Model) addFocusedPart() Model {
	p := &m.parts
	var item payload.PartItem
	switch p.focus {
	case focusSuggestions:
		if len(p.suggestions) == 0 {
			return m
		}
		item = payload.FromRepuesto(p.suggestions[clampCursor(p.cursors[focusSuggestions], len(p.suggestions))], 1)
	case focusResults:
		if len(p.results) == 0 {
			return m
		}
		item = payload.FromInsumo(p.results[clampCursor(p.cursors[focusResults], len(p.results))], 1)
	default:
		return m
	}

	added, merged := p.list.Add(item)
	switch {
	case merged > 0:
		m.status = infoStatus("El repuesto ya estaba en la lista, se actualizaron las cantidades")
	case added > 0:
		m.status = successStatus(fmt.Sprintf("%s agregado", item.Name))
	default:
		m.status = warnStatus("El repuesto no tiene identificador")
	}
	return m
}

// handleSearchKey feeds keystrokes to the search box and schedules a
// debounced search whenever the text changes.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := &m.parts
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Confirm):
		p.searching = false
		p.search.Blur()
		return m, nil
	}

	before := p.search.Value()
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	after := p.search.Value()
	if after == before {
		return m, cmd
	}

	p.seq++
	seq := p.seq
	if m.cfg.SearchDebounce <= 0 {
		return m, tea.Batch(cmd, func() tea.Msg { return searchTickMsg{seq: seq, term: after} })
	}
	return m, tea.Batch(cmd, searchDebounceCmd(m.cfg.SearchDebounce, seq, after))
}

func (m Model) handleSearchTick(msg searchTickMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.parts.seq {
		return m, nil
	}
	term := strings.TrimSpace(msg.term)
	if utf8.RuneCountInString(term) < taller.MinSearchTerm {
		m.parts.results = nil
		m.parts.loading = false
		m.parts.lastTerm = ""
		return m, nil
	}
	m.parts.loading = true
	return m, searchCmd(m.ctx, m.api, msg.seq, term)
}

func (m Model) handleSearchResult(msg searchResultMsg) Model {
	if msg.seq != m.parts.seq {
		return m
	}
	m.parts.loading = false
	if msg.err != nil {
		m.parts.results = nil
		if errors.Is(msg.err, taller.ErrEndpointDisabled) {
			m.status = warnStatus("La búsqueda de insumos no está configurada")
			return m
		}
		m.log.Warn("insumo search failed", zap.String("termino", msg.term), zap.Error(msg.err))
		m.status = errorStatus("No se pudo buscar insumos")
		return m
	}
	m.parts.results = msg.items
	m.parts.lastTerm = msg.term
	m.parts.cursors[focusResults] = 0
	return m
}

func (m Model) handleSuggestions(msg suggestionsMsg) Model {
	m.parts.suggesting = false
	if errors.Is(msg.err, taller.ErrEndpointDisabled) {
		m.status = warnStatus("La sugerencia de repuestos no está configurada")
		return m
	}
	if msg.err != nil {
		m.log.Warn("parts suggestion failed", zap.Error(msg.err))
		m.status = errorStatus("No se pudieron obtener repuestos sugeridos")
		return m
	}
	m.parts.suggestions = msg.items
	m.parts.cursors[focusSuggestions] = 0
	m.parts.focus = focusSuggestions
	if len(msg.items) == 0 {
		m.status = infoStatus("No hay repuestos sugeridos para la selección")
	} else {
		m.status = infoStatus(fmt.Sprintf("%d repuestos sugeridos", len(msg.items)))
	}
	return m
}

// renderRepuestos renders suggestions, search results and the chosen parts.
func (m Model) renderRepuestos() string {
	styles := m.theme.Styles()
	p := m.parts

	rows := (m.contentHeight() - 8) / 3
	if rows < 2 {
		rows = 2
	}

	var b strings.Builder

	b.WriteString(m.sectionTitle(focusSuggestions, fmt.Sprintf("Sugeridos (%d)", len(p.suggestions))))
	b.WriteString("\n")
	switch {
	case p.suggesting:
		b.WriteString(styles.FaintText.Render("  Cargando…"))
	case len(p.suggestions) == 0:
		b.WriteString(styles.FaintText.Render("  Presione r para sugerir repuestos"))
	default:
		lines := make([]string, len(p.suggestions))
		for i, r := range p.suggestions {
			text := fmt.Sprintf("  %s  %s  %s  %s",
				padRight(r.Nombre, 28), padRight(r.OEM, 12), padRight(money.CLP(r.PrecioVenta.Decimal), 10), r.CompatibilidadTexto)
			lines[i] = m.listLine(focusSuggestions, i, text, styles.BandStyle(r.CompatibilityBand()))
		}
		b.WriteString(windowed(lines, p.cursors[focusSuggestions], rows))
	}

	b.WriteString("\n\n")
	b.WriteString(m.sectionTitle(focusResults, "Insumos"))
	b.WriteString("  ")
	b.WriteString(p.search.View())
	b.WriteString("\n")
	switch {
	case p.loading:
		b.WriteString(styles.FaintText.Render("  Buscando…"))
	case len(p.results) == 0 && p.lastTerm != "":
		b.WriteString(styles.FaintText.Render(fmt.Sprintf("  Sin resultados para %q", p.lastTerm)))
	case len(p.results) == 0:
		b.WriteString(styles.FaintText.Render(fmt.Sprintf("  Escriba al menos %d caracteres", taller.MinSearchTerm)))
	default:
		lines := make([]string, len(p.results))
		for i, it := range p.results {
			text := fmt.Sprintf("  %s  %s  %s  stock %d",
				padRight(it.Nombre, 28), padRight(it.Marca, 12), padRight(money.CLP(it.Precio.Decimal), 10), it.Stock)
			lines[i] = m.listLine(focusResults, i, text, styles.Text)
		}
		b.WriteString(windowed(lines, p.cursors[focusResults], rows))
	}

	b.WriteString("\n\n")
	b.WriteString(m.sectionTitle(focusList, fmt.Sprintf("Repuestos del ingreso (%d)", p.list.Len())))
	b.WriteString("\n")
	if p.list.Len() == 0 {
		b.WriteString(styles.FaintText.Render("  Sin repuestos"))
	} else {
		items := p.list.Items()
		lines := make([]string, len(items))
		for i, it := range items {
			text := fmt.Sprintf("  %s  %3d x %s  %s",
				padRight(it.Name, 28), it.Quantity, padRight(money.CLP(it.UnitPrice.Decimal), 10), money.CLP(it.Subtotal()))
			lines[i] = m.listLine(focusList, i, text, styles.Text)
		}
		b.WriteString(windowed(lines, p.cursors[focusList], rows))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("  Total repuestos: ") + styles.AccentText.Render(money.CLP(p.list.Total())))
	}
	return b.String()
}

func (m Model) sectionTitle(f partsFocus, title string) string {
	styles := m.theme.Styles()
	if m.parts.focus == f {
		return styles.AccentText.Bold(true).Render("▸ " + title)
	}
	return styles.MutedText.Render("  " + title)
}

func (m Model) listLine(f partsFocus, i int, text string, style lipgloss.Style) string {
	if m.parts.focus == f && m.parts.cursors[f] == i {
		return m.theme.Styles().Selected.Render(truncate(text, m.width))
	}
	return style.Render(truncate(text, m.width))
}

func windowed(lines []string, cursor, size int) string {
	start, end := window(len(lines), cursor, size)
	return strings.Join(lines[start:end], "\n")
}
