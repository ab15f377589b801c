package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskboard/internal/api"
	"taskboard/internal/config"
	"taskboard/internal/dsl"
	"taskboard/internal/memstore"
	"taskboard/internal/model"
	"taskboard/internal/orm"
	"taskboard/internal/pg"
	"taskboard/internal/seed"
	"taskboard/internal/sqlite"
)

func main() {
	cfg, err := config.Load("config.json", os.Args[1:], nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.LogFormat == "json" {
		log = zerolog.New(os.Stderr)
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return log.Level(level).With().Timestamp().Str("service", "taskboard").Logger()
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	// 1. Схема: встроенная или из каталога *.dsl
	var schema []*dsl.Entity
	if cfg.SchemaDir != "" {
		var err error
		if schema, err = dsl.LoadAllEntities(cfg.SchemaDir); err != nil {
			return fmt.Errorf("load schema: %w", err)
		}
	}
	reg, err := model.NewRegistry(schema, time.Now)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}
	log.Info().Strs("types", reg.Types()).Msg("schema registry ready")

	// 2. Хранилище строк
	store, closeStore, err := openStore(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer closeStore()

	// 3. Фикстуры
	if cfg.SeedFile != "" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return err
		}
		w, ok := store.(orm.Writer)
		if !ok {
			return fmt.Errorf("seed: %w", orm.ErrReadOnlyStore)
		}
		n, err := seed.Apply(ctx, f, reg, w)
		if err != nil {
			return err
		}
		log.Info().Int("rows", n).Str("file", cfg.SeedFile).Msg("fixtures loaded")
	}

	// 4. HTTP
	repo, err := model.Open(reg, store)
	if err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewServer(repo, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("driver", cfg.Driver).Msg("starting taskboard")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func openStore(ctx context.Context, cfg config.Config, reg *orm.Registry) (orm.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := pg.Open(ctx, cfg.DBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		if cfg.AutoMigrate {
			if err := pg.Migrate(ctx, db, reg); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return pg.NewRowStore(db), closer(db), nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		if cfg.AutoMigrate {
			if err := sqlite.Migrate(ctx, db, reg); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return sqlite.NewRowStore(db), closer(db), nil
	default:
		return memstore.New(), func() {}, nil
	}
}

func closer(db *sql.DB) func() {
	return func() { _ = db.Close() }
}
