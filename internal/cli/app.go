package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/purestream711/PureStream-sub004/internal/catalog"
	"github.com/purestream711/PureStream-sub004/internal/config"
	"github.com/purestream711/PureStream-sub004/internal/db"
	logger "github.com/purestream711/PureStream-sub004/internal/log"
)

// app holds the stores every command opens.
type app struct {
	cfg     *config.Config
	paths   config.Paths
	db      *db.DB
	catalog *catalog.Store
	logger  *log.Logger
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	paths := config.GetPaths(cfg)

	if err := logger.Init(paths.Logs, cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	database, err := db.New(db.DefaultConfig(paths.Database))
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	store, err := catalog.OpenStore(paths.Catalog, catalog.StoreOptions{
		Limits: catalog.Limits{MaxMovies: cfg.Cache.MaxMovies, MaxShows: cfg.Cache.MaxShows},
		Logger: logger.Default(),
	})
	if err != nil {
		_ = database.Close()
		_ = logger.Close()
		return nil, fmt.Errorf("open catalog cache: %w", err)
	}

	return &app{cfg: cfg, paths: paths, db: database, catalog: store, logger: logger.Default()}, nil
}

// catalogService returns a service over the cache. remote may be nil.
func (a *app) catalogService(remote catalog.RemoteCatalog) *catalog.Service {
	return catalog.NewService(a.catalog, nil, a.db, remote, a.logger)
}

func (a *app) Close() {
	_ = a.catalog.Close()
	_ = a.db.Close()
	_ = logger.Close()
}
