package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	consultinadapter "medgraph/internal/modules/consultation/adapter/in"
	consultoutadapter "medgraph/internal/modules/consultation/adapter/out"
	consultservice "medgraph/internal/modules/consultation/service"
	consultusecase "medgraph/internal/modules/consultation/usecase"
	entityinadapter "medgraph/internal/modules/entity/adapter/in"
	entityoutadapter "medgraph/internal/modules/entity/adapter/out"
	entityservice "medgraph/internal/modules/entity/service"
	entityusecase "medgraph/internal/modules/entity/usecase"
	graphinadapter "medgraph/internal/modules/graph/adapter/in"
	graphoutadapter "medgraph/internal/modules/graph/adapter/out"
	graphdomain "medgraph/internal/modules/graph/domain"
	graphservice "medgraph/internal/modules/graph/service"
	graphusecase "medgraph/internal/modules/graph/usecase"
	searchinadapter "medgraph/internal/modules/search/adapter/in"
	searchoutadapter "medgraph/internal/modules/search/adapter/out"
	searchservice "medgraph/internal/modules/search/service"
	searchusecase "medgraph/internal/modules/search/usecase"
	"medgraph/internal/platform/backend"
	"medgraph/internal/platform/backend/httpapi"
	"medgraph/internal/platform/backend/neo4jdb"
	"medgraph/internal/platform/backend/sqlitedb"
	"medgraph/internal/platform/clock"
	"medgraph/internal/platform/config"
	"medgraph/internal/platform/id"
	"medgraph/internal/platform/logging"
	"medgraph/internal/platform/metrics"
	uiapp "medgraph/internal/ui/app"
)

type App struct {
	Config  config.Config
	Log     *zap.Logger
	Metrics *metrics.Registry

	EntityCLI  entityinadapter.CLIHandler
	SearchCLI  searchinadapter.CLIHandler
	GraphCLI   graphinadapter.CLIHandler
	ConsultCLI consultinadapter.CLIHandler

	tui        uiapp.Model
	api        backend.Backend
	metricsSrv *http.Server
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	clk := clock.SystemClock{}
	reg := metrics.NewRegistry()

	raw, err := openBackend(ctx, cfg, clk, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	api := backend.Instrument(raw, reg, log)
	log.Info("backend ready", zap.String("kind", cfg.Backend.Kind), zap.String("config", cfg.Source))

	entityUC := entityusecase.NewInteractor(entityservice.NewCatalogService(
		entityoutadapter.NewBackendDirectory(api),
		entityservice.NewEntityCache(),
		log.Named("entity"),
	))

	feed := searchoutadapter.NewPanelFeed()
	searchUC := searchusecase.NewInteractor(searchservice.NewController(
		searchoutadapter.NewBackendLookup(api),
		feed,
		clk,
		searchservice.Options{MinQueryLength: cfg.Search.MinQueryLength, Debounce: cfg.Search.Debounce},
		reg,
		log.Named("search"),
	), feed)

	viewport := graphservice.NewViewport(graphoutadapter.NewCanvas(), visualOptions(cfg.Viewport), reg, log.Named("viewport"))
	graphUC := graphusecase.NewInteractor(graphservice.NewGraphService(
		graphoutadapter.NewBackendRelationships(api),
		viewport,
		reg,
		log.Named("graph"),
	))

	consultUC := consultusecase.NewInteractor(consultservice.NewAssembler(
		consultoutadapter.NewBackendRecords(api),
		consultoutadapter.NewEntityNames(entityUC),
		id.DisplayID{},
		consultservice.Options{Doctor: cfg.Doctor},
		reg,
		log.Named("consultation"),
	))

	app := &App{
		Config:     cfg,
		Log:        log,
		Metrics:    reg,
		EntityCLI:  entityinadapter.NewCLIHandler(entityUC),
		SearchCLI:  searchinadapter.NewCLIHandler(searchUC),
		GraphCLI:   graphinadapter.NewCLIHandler(graphUC),
		ConsultCLI: consultinadapter.NewCLIHandler(consultUC),
		tui: uiapp.NewModel(
			uiapp.Options{NotifyDuration: cfg.Notify.Duration},
			entityUC, searchUC, graphUC, consultUC,
		),
		api: api,
	}
	if cfg.Metrics.Addr != "" {
		app.serveMetrics(cfg.Metrics.Addr)
	}
	return app, nil
}

// Close stops the metrics listener and releases the backend.
func (a *App) Close() error {
	var errs []error
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		errs = append(errs, a.metricsSrv.Shutdown(ctx))
		cancel()
	}
	errs = append(errs, a.api.Close())
	_ = a.Log.Sync()
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	program := tea.NewProgram(app.tui, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// ─── private ─────────────────────────────────────────────────────────────────

func openBackend(ctx context.Context, cfg config.Config, clk clock.SystemClock, log *zap.Logger) (backend.Backend, error) {
	switch cfg.Backend.Kind {
	case config.BackendHTTP:
		c, err := httpapi.New(cfg.Backend, log.Named("http"))
		if err != nil {
			return nil, fmt.Errorf("new http backend: %w", err)
		}
		return c, nil
	case config.BackendNeo4j:
		s, err := neo4jdb.Open(ctx, cfg.Backend.Neo4j, clk)
		if err != nil {
			return nil, fmt.Errorf("open neo4j backend: %w", err)
		}
		return s, nil
	default:
		s, err := sqlitedb.Open(cfg.Backend.SQLitePath, clk)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		return s, nil
	}
}

func visualOptions(v config.ViewportConfig) graphdomain.VisualOptions {
	return graphdomain.VisualOptions{
		Shape:       v.NodeShape,
		Size:        v.NodeSize,
		FontSize:    v.FontSize,
		BorderWidth: v.BorderWidth,
		EdgeWidth:   v.EdgeWidth,
		ArrowScale:  v.ArrowScale,
		Physics: graphdomain.Physics{
			Enabled:               v.Physics.Enabled,
			GravitationalConstant: v.Physics.GravitationalConstant,
			SpringConstant:        v.Physics.SpringConstant,
			SpringLength:          v.Physics.SpringLength,
			Iterations:            v.Physics.Iterations,
		},
		Hover:        v.Hover,
		TooltipDelay: v.TooltipDelay,
	}
}

func (a *App) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.Metrics.Handler())
	a.metricsSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Warn("metrics listener stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	a.Log.Info("serving metrics", zap.String("addr", addr))
}
