package bootstrap

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"

	connectinadapter "hostnav/internal/modules/connect/adapter/in"
	connectoutadapter "hostnav/internal/modules/connect/adapter/out"
	connectservice "hostnav/internal/modules/connect/service"
	connectusecase "hostnav/internal/modules/connect/usecase"
	historyinadapter "hostnav/internal/modules/history/adapter/in"
	historyoutadapter "hostnav/internal/modules/history/adapter/out"
	historyservice "hostnav/internal/modules/history/service"
	historyusecase "hostnav/internal/modules/history/usecase"
	treeinadapter "hostnav/internal/modules/tree/adapter/in"
	treeoutadapter "hostnav/internal/modules/tree/adapter/out"
	treeout "hostnav/internal/modules/tree/port/out"
	treeservice "hostnav/internal/modules/tree/service"
	treeusecase "hostnav/internal/modules/tree/usecase"
	"hostnav/internal/platform/clock"
	"hostnav/internal/platform/config"
	"hostnav/internal/platform/id"
	"hostnav/internal/platform/logging"
	uiapp "hostnav/internal/ui/app"
)

type App struct {
	TreeCLI    treeinadapter.CLIHandler
	TreeTUI    treeinadapter.TUIHandler
	ConnectCLI connectinadapter.CLIHandler
	HistoryCLI historyinadapter.CLIHandler
	Logger     hclog.Logger

	closers []io.Closer
}

func New(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, logSink, err := logging.New(cfg.LogPath, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}
	app := &App{Logger: logger, closers: []io.Closer{logSink}}

	clk := clock.SystemClock{}
	ids := id.TimeOrdered{Clock: clk}

	nodeCache, err := treeoutadapter.NewSQLiteNodeCache(cfg.DBPath, clk)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("new node cache: %w", err)
	}
	app.closers = append(app.closers, nodeCache)

	var (
		source treeout.NodeSource
		cache  treeout.NodeCache = nodeCache
	)
	switch cfg.Source {
	case config.SourceFile:
		source = treeoutadapter.NewFileNodeSource(cfg.FixturePath)
	default:
		remote, err := treeoutadapter.NewHTTPNodeSource(treeoutadapter.HTTPOptions{
			BaseURL:           cfg.Server.URL,
			Token:             cfg.Server.Token,
			Timeout:           cfg.Server.Timeout,
			RequestsPerSecond: cfg.Server.RequestsPerSecond,
			Logger:            logger.Named("http"),
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("new node source: %w", err)
		}
		cached := treeoutadapter.NewCachedNodeSource(remote, nodeCache, cfg.Tree.SearchTTL, logger.Named("cache"))
		source, cache = cached, cached
	}
	treeSvc := treeservice.NewTreeService(source, cache, treeservice.Options{LoadAsync: cfg.Tree.LoadAsync}, logger.Named("tree"))
	treeUC := treeusecase.NewInteractor(treeSvc)

	connStore, err := historyoutadapter.NewSQLiteConnectionStore(cfg.DBPath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("new connection store: %w", err)
	}
	app.closers = append(app.closers, connStore)
	historyUC := historyusecase.NewInteractor(historyservice.NewHistoryService(clk, ids, connStore))

	connectUC := connectusecase.NewInteractor(connectservice.NewConnectService(
		connectoutadapter.NewFileManifestStore(cfg.PluginDir),
		connectoutadapter.NewGRPCHost(logger),
		connectoutadapter.NewOpenSSHPlanner(),
		connectoutadapter.NewHistoryRecorder(historyUC),
		clk,
		logger.Named("connect"),
	))

	app.TreeCLI = treeinadapter.NewCLIHandler(treeUC)
	app.TreeTUI = treeinadapter.NewTUIHandler(treeUC)
	app.ConnectCLI = connectinadapter.NewCLIHandler(connectUC)
	app.HistoryCLI = historyinadapter.NewCLIHandler(historyUC)
	logger.Debug("bootstrapped", "source", cfg.Source, "async", cfg.Tree.LoadAsync, "data", cfg.DataDir)
	return app, nil
}

// Close releases stores and flushes the log file, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.TreeTUI, app.ConnectCLI, app.HistoryCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
