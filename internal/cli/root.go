// Package cli wires the planner services into cobra commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/workshop-planner/internal/application"
	"github.com/example/workshop-planner/internal/catalog"
	"github.com/example/workshop-planner/internal/config"
	"github.com/example/workshop-planner/internal/logging"
	"github.com/example/workshop-planner/internal/persistence"
	"github.com/example/workshop-planner/internal/persistence/memory"
	redisstore "github.com/example/workshop-planner/internal/persistence/redis"
	"github.com/example/workshop-planner/internal/persistence/sqlite"
	"github.com/example/workshop-planner/internal/scheduler"
	"github.com/example/workshop-planner/internal/timeline"
)

type closableStore interface {
	persistence.KeyValueStore
	io.Closer
}

// runtime holds what every command needs once configuration is loaded.
type runtime struct {
	storeFlag string
	verbose   bool

	cfg       config.Config
	logger    *slog.Logger
	store     closableStore
	catalog   *catalog.Catalog
	workshops *application.WorkshopService
	library   *application.LibraryService
}

// RootCmd returns the planner command tree.
func RootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:   "planner",
		Short: "Generate and manage facilitated workshop agendas",
		Long: `planner builds timed workshop agendas from a catalog of facilitation
activities, keeps generated agendas reproducible and manages a library of
saved workshops. Configuration is read from PLANNER_* environment variables.`,
		SilenceUsage:       true,
		PersistentPreRunE:  rt.setup,
		PersistentPostRunE: rt.teardown,
	}
	root.PersistentFlags().StringVar(&rt.storeFlag, "store", "", "storage backend: memory, sqlite or redis (overrides PLANNER_STORE)")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(serveCmd(rt))
	root.AddCommand(generateCmd(rt))
	root.AddCommand(showCmd(rt))
	root.AddCommand(replaceCmd(rt))
	root.AddCommand(editCmd(rt))
	root.AddCommand(retimeCmd(rt))
	root.AddCommand(discardCmd(rt))
	root.AddCommand(catalogCmd(rt))
	root.AddCommand(purposesCmd(rt))
	root.AddCommand(libraryCmd(rt))
	root.AddCommand(cleanupCmd(rt))

	return root
}

func (rt *runtime) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if rt.storeFlag != "" {
		switch store := config.Store(rt.storeFlag); store {
		case config.StoreMemory, config.StoreSQLite, config.StoreRedis:
			cfg.Store = store
		default:
			return fmt.Errorf("unknown store %q", rt.storeFlag)
		}
		if cfg.Store == config.StoreRedis && cfg.RedisAddr == "" {
			return fmt.Errorf("PLANNER_REDIS_ADDR is required for the redis store")
		}
	}

	level := cfg.LogLevel
	switch {
	case rt.verbose:
		level = slog.LevelDebug
	case cmd.Name() != "serve" && level < slog.LevelWarn:
		level = slog.LevelWarn
	}
	rt.cfg = cfg
	rt.logger = logging.New(cmd.ErrOrStderr(), level, cfg.LogFormat)

	rt.catalog, err = loadCatalog(cfg.CatalogFile)
	if err != nil {
		return err
	}

	rt.store, err = openStore(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}

	start, err := timeline.ParseClock(cfg.DefaultStart)
	if err != nil {
		return err
	}
	builder := scheduler.NewBuilder(rt.catalog, nil)
	rt.workshops = application.NewWorkshopServiceWithLogger(builder, persistence.NewSessionStore(rt.store), nil, time.Now, rt.logger).
		WithDefaultStart(start)
	rt.library = application.NewLibraryServiceWithLogger(persistence.NewLibraryStore(rt.store), nil, time.Now, rt.logger)
	return nil
}

func (rt *runtime) teardown(*cobra.Command, []string) error {
	if rt.store == nil {
		return nil
	}
	err := rt.store.Close()
	rt.store = nil
	return err
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func openStore(ctx context.Context, cfg config.Config) (closableStore, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StoreRedis:
		store, err := redisstore.New(ctx, redisstore.Options{
			Addr:      cfg.RedisAddr,
			DB:        cfg.RedisDB,
			Namespace: cfg.RedisNamespace,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLiteDSN))
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
