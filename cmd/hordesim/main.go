// Headless horde simulation: loads content, spawns the configured level and
// runs the AI tick loop until interrupted.
//
// Usage:
//
//	go run ./cmd/hordesim             # run the simulation
//	go run ./cmd/hordesim import      # copy YAML/CSV content into PostgreSQL
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/horde/internal/ai"
	"github.com/udisondev/horde/internal/asset"
	"github.com/udisondev/horde/internal/config"
	"github.com/udisondev/horde/internal/data"
	"github.com/udisondev/horde/internal/db"
	"github.com/udisondev/horde/internal/engine"
)

const ConfigPath = "config/sim.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	cmd := "run"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	var err error
	switch cmd {
	case "run":
		err = run(ctx)
	case "import":
		err = importContent(ctx)
	default:
		err = fmt.Errorf("unknown command %q (want run or import)", cmd)
	}
	if err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Sim, error) {
	cfgPath := ConfigPath
	if p := os.Getenv("HORDE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSim(cfgPath)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugForLevel(logLevel)

	slog.Info("config loaded",
		"path", cfgPath,
		"log_level", cfg.LogLevel,
		"level", cfg.Level,
		"content_source", cfg.ContentSource)
	return cfg, nil
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	live := data.NewLive(catalog)

	manifest, err := asset.LoadManifest(cfg.AssetManifest)
	if err != nil {
		return fmt.Errorf("loading asset manifest: %w", err)
	}

	eng := engine.New(cfg, live, manifest)
	defer eng.Close()

	if err := eng.LoadLevel(ctx, cfg.Level); err != nil {
		return fmt.Errorf("loading level: %w", err)
	}
	slog.Info("horde simulation starting",
		"session", eng.Session().String(),
		"species", len(catalog.Species()),
		"levels", strings.Join(catalog.Levels(), ","))

	// the tick loop ending (duration reached) stops the helpers too
	loopCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(loopCtx)

	g.Go(func() error {
		defer stop()
		if err := eng.Run(gctx); err != nil {
			return fmt.Errorf("tick loop: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := eng.Assets().Run(gctx); err != nil {
			return fmt.Errorf("asset loader: %w", err)
		}
		return nil
	})

	if cfg.WatchContent && cfg.ContentSource == config.SourceFile {
		watcher := data.NewWatcher(cfg.ContentPath, live, nil)
		g.Go(func() error {
			if err := watcher.Run(gctx); err != nil {
				return fmt.Errorf("content watcher: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("simulation error: %w", err)
	}

	fmt.Print(eng.StatusReport())

	if cfg.StatsCSV != "" {
		if err := writeReports(eng, cfg.StatsCSV); err != nil {
			return err
		}
	}
	return nil
}

func loadCatalog(ctx context.Context, cfg config.Sim) (*data.Catalog, error) {
	if cfg.ContentSource != config.SourcePostgres {
		catalog, err := data.LoadYAML(cfg.ContentPath)
		if err != nil {
			return nil, fmt.Errorf("loading content: %w", err)
		}
		return catalog, nil
	}

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	catalog, err := db.NewContentRepository(database.Pool()).LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	return catalog, nil
}

func importContent(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	catalog, err := data.LoadYAML(cfg.ContentPath)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.NewContentRepository(database.Pool()).ReplaceContent(ctx, catalog); err != nil {
		return fmt.Errorf("importing content: %w", err)
	}
	slog.Info("content imported",
		"path", cfg.ContentPath,
		"species", len(catalog.Species()),
		"levels", len(catalog.Levels()))
	return nil
}

func openDatabase(ctx context.Context, cfg config.Sim) (*db.DB, error) {
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("database connected")

	version, err := db.RunMigrations(ctx, cfg.Database.DSN())
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("content schema ready", "version", version)
	return database, nil
}

// writeReports writes pool stats to path and zone status next to it.
func writeReports(eng *engine.Engine, path string) error {
	if err := writeFile(path, eng.WriteStatsCSV); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	zonesPath := strings.TrimSuffix(path, ".csv") + "_zones.csv"
	if err := writeFile(zonesPath, eng.WriteZoneCSV); err != nil {
		return fmt.Errorf("writing zone status: %w", err)
	}
	slog.Info("reports written", "stats", path, "zones", zonesPath)
	return nil
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
