package ui

import (
	"context"
	"net/url"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/modcar/ingreso/internal/catalog"
	"github.com/modcar/ingreso/internal/logtail"
	"github.com/modcar/ingreso/internal/reconcile"
	"github.com/modcar/ingreso/internal/taller"
)

// Messages for Bubble Tea updates.
type (
	tickMsg time.Time

	catalogLoadedMsg struct {
		result  catalog.Result
		fetched bool
	}

	lookupMsg struct {
		code string
		resp taller.LookupResponse
		err  error
	}

	suggestionsMsg struct {
		items []taller.Repuesto
		err   error
	}

	// searchTickMsg fires once the debounce window of a keystroke elapses.
	// seq identifies the keystroke; older ticks are dropped.
	searchTickMsg struct {
		seq  int
		term string
	}

	searchResultMsg struct {
		seq   int
		term  string
		items []taller.Insumo
		err   error
	}

	submitMsg struct {
		result taller.SubmitResult
		err    error
	}

	logLinesMsg struct {
		entries []logtail.Entry
		err     error
	}
)

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadCatalogCmd fetches a component's catalog in the background. The
// reconciler installs the result in the store; the message only reports it.
func loadCatalogCmd(ctx context.Context, rec *reconcile.Reconciler, componentID string) tea.Cmd {
	return func() tea.Msg {
		res, fetched := rec.LoadCatalog(ctx, componentID)
		return catalogLoadedMsg{result: res, fetched: fetched}
	}
}

func loadCatalogCmds(ctx context.Context, rec *reconcile.Reconciler, ids []string) tea.Cmd {
	if len(ids) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, loadCatalogCmd(ctx, rec, id))
	}
	return tea.Batch(cmds...)
}

func lookupCmd(ctx context.Context, api taller.Fetcher, code string) tea.Cmd {
	return func() tea.Msg {
		resp, err := api.LookupComponent(ctx, code)
		return lookupMsg{code: code, resp: resp, err: err}
	}
}

func suggestionsCmd(ctx context.Context, api taller.Fetcher, q taller.PartsQuery) tea.Cmd {
	return func() tea.Msg {
		items, err := api.SuggestParts(ctx, q)
		return suggestionsMsg{items: items, err: err}
	}
}

func searchDebounceCmd(delay time.Duration, seq int, term string) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq, term: term}
	})
}

func searchCmd(ctx context.Context, api taller.Fetcher, seq int, term string) tea.Cmd {
	return func() tea.Msg {
		items, err := api.SearchInsumos(ctx, term)
		return searchResultMsg{seq: seq, term: term, items: items, err: err}
	}
}

func submitCmd(ctx context.Context, api taller.Fetcher, form url.Values) tea.Cmd {
	return func() tea.Msg {
		res, err := api.SubmitIngreso(ctx, form)
		return submitMsg{result: res, err: err}
	}
}

const maxLogLines = 500

func readLogCmd(path string, maxLines int) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, maxLines)
		if err != nil {
			return logLinesMsg{err: err}
		}
		return logLinesMsg{entries: logtail.ParseLines(lines)}
	}
}
