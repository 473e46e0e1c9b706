package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/modcar/ingreso/internal/catalog"
	"github.com/modcar/ingreso/internal/config"
	"github.com/modcar/ingreso/internal/logging"
	"github.com/modcar/ingreso/internal/payload"
	"github.com/modcar/ingreso/internal/prefs"
	"github.com/modcar/ingreso/internal/reconcile"
	"github.com/modcar/ingreso/internal/selection"
	"github.com/modcar/ingreso/internal/taller"
	"github.com/modcar/ingreso/internal/ui"
)

// Options configure an intake session.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/ingreso/prefs.toml

	// Overrides applied on top of the config file.
	BaseURL       string
	DiagnosticoID string
	Preselect     []string // component ids or diagram codes

	// PartsJSON is a previous repuestos_json value whose parts are kept.
	PartsJSON string

	PromptVehicle bool
	LogLevel      string
}

// Run boots the intake TUI until the context is cancelled or the user exits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(&cfg, opts)

	log, err := logging.New(cfg.LogPath, opts.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = log.Sync() }()

	userPrefs := prefs.Load(opts.PrefsPath)
	vehicle := userPrefs.Vehicle
	if opts.PromptVehicle {
		vehicle, err = PromptVehicle(vehicle)
		if err != nil {
			return fmt.Errorf("vehicle prompt: %w", err)
		}
		if err := prefs.Update(opts.PrefsPath, func(p *prefs.Prefs) { p.Vehicle = vehicle }); err != nil {
			log.Warn("save vehicle failed", zap.Error(err))
		}
	}

	client, err := taller.NewClient(cfg.BaseURL, cfg.Endpoints)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	sess := newSession(client, cfg, log)
	defer sess.Close()

	need := sess.rec.Bootstrap(BootstrapNodes(cfg, opts.Preselect))
	loaded := Prefetch(ctx, sess.rec, need, defaultPrefetchLimit)
	log.Info("session started",
		zap.String("base_url", cfg.BaseURL),
		zap.String("diagnostico_id", cfg.DiagnosticoID),
		zap.Int("preseleccionados", len(need)),
		zap.Int("catalogos", loaded),
	)

	parts, err := payload.ParsePartList(opts.PartsJSON)
	if err != nil {
		log.Warn("ignoring malformed parts list", zap.Error(err))
	}

	return ui.Run(ui.Options{
		Context:    ctx,
		API:        client,
		Store:      sess.store,
		Reconciler: sess.rec,
		Config:     cfg,
		Vehicle:    vehicle,
		Base:       BaseForm(cfg, vehicle),
		Parts:      parts,
		Log:        logging.Component(log, "ui"),
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
	})
}

// session bundles the objects that make up one intake.
type session struct {
	store *selection.Store
	rec   *reconcile.Reconciler
}

func newSession(fetcher catalog.ActionsFetcher, cfg config.Config, log *zap.Logger) session {
	store := selection.NewStore()
	cat := catalog.New(fetcher, cfg.Endpoints.ActionsTemplate, logging.Component(log, "catalog"))
	recLog := logging.Component(log, "reconcile")
	rec := reconcile.New(store, cat, recLog, func(ops []reconcile.Op) {
		if ce := recLog.Check(zap.DebugLevel, "render"); ce != nil {
			ce.Write(zap.Stringers("ops", ops))
		}
	})
	return session{store: store, rec: rec}
}

func (s session) Close() { s.rec.Close() }

func applyOverrides(cfg *config.Config, opts Options) {
	if v := strings.TrimSpace(opts.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(opts.DiagnosticoID); v != "" {
		cfg.DiagnosticoID = v
	}
}

// BootstrapNodes resolves the components selected before the session
// starts: the config's list followed by the command line's. Tokens matching
// a diagram code map to that component; anything else is taken as an id.
func BootstrapNodes(cfg config.Config, extra []string) []reconcile.Node {
	tokens := config.NormalizeIDs(append(append([]string(nil), cfg.Preselected...), extra...))
	seen := make(map[string]bool, len(tokens))
	nodes := make([]reconcile.Node, 0, len(tokens))
	for _, tok := range tokens {
		node := reconcile.Node{ID: tok, Name: cfg.ComponentName(reconcile.Node{ID: tok}.ComponentID())}
		if comp, ok := cfg.ComponentByCode(tok); ok {
			node = reconcile.Node{ID: comp.ID, Name: comp.Nombre}
		}
		id := node.ComponentID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		nodes = append(nodes, node)
	}
	return nodes
}

// BaseForm returns the non-selection fields posted with the intake.
func BaseForm(cfg config.Config, v prefs.Vehicle) url.Values {
	form := url.Values{}
	set := func(k, val string) {
		if val = strings.TrimSpace(val); val != "" {
			form.Set(k, val)
		}
	}
	set("marca", v.Marca)
	set("modelo", v.Modelo)
	set("anio", v.Anio)
	set("motor", v.Motor)
	set("diagnostico_id", cfg.DiagnosticoID)
	return form
}
