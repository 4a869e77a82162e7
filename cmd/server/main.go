package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/soaringjerry/Synform/internal/api"
	"github.com/soaringjerry/Synform/internal/config"
	dbstore "github.com/soaringjerry/Synform/internal/db"
	"github.com/soaringjerry/Synform/internal/middleware"
	"github.com/soaringjerry/Synform/internal/services"
	"github.com/soaringjerry/Synform/internal/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(utils.LoggerConfig{Level: cfg.LogLevel, Filename: cfg.LogFile, MaxSizeMB: cfg.LogMaxSize, MaxBackups: 5})
	slog.SetDefault(logger)
	middleware.SetSecret(cfg.JWTSecret)
	if cfg.JWTSecret == "" {
		slog.Warn("SYNFORM_JWT_SECRET is not set, using the development secret")
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		slog.Error("open store", slog.Any("err", err))
		os.Exit(1)
	}
	defer closeStore()

	mux := http.NewServeMux()
	api.NewRouter(store, services.FormServiceOptions{
		DefaultLanguage: cfg.DefaultLanguage,
		Languages:       cfg.Languages,
		EvalCacheSize:   cfg.EvalCacheSize,
		Logger:          logger,
	}).Register(mux)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		lang := middleware.LanguageFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "Synform API",
			"language":   lang,
			"msg":        utils.T(lang, "health.ok"),
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})

	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})

	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	handler := middleware.Chain(mux,
		middleware.SecureHeaders,
		middleware.NoStore,
		middleware.CORS(cfg.CORSOrigins),
		middleware.WithAuth,
		middleware.Language(cfg.Languages, cfg.DefaultLanguage),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			slog.Error("shutdown", slog.Any("err", err))
		}
	}()

	slog.Info("Synform server listening", slog.String("addr", cfg.Addr), slog.Any("languages", cfg.Languages))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", slog.Any("err", err))
		os.Exit(1)
	}
}

// openStore returns the sqlite store when a path is configured and the
// in-memory store otherwise.
func openStore(cfg config.Config) (api.Store, func(), error) {
	if cfg.SQLitePath == "" {
		store, err := api.NewMemoryStoreFromPath(cfg.SnapshotPath)
		return store, func() {}, err
	}
	if err := MigrateIfNeeded(cfg.SnapshotPath, cfg.SQLitePath, cfg.MigrationsDir); err != nil {
		return nil, nil, fmt.Errorf("migrate snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open("sqlite3", sqliteDSN(cfg.SQLitePath))
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := dbstore.RunMigrations(db, cfg.MigrationsDir); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	store, err := dbstore.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, func() {
		if err := db.Close(); err != nil {
			slog.Warn("close sqlite", slog.Any("err", err))
		}
	}, nil
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(path))
}
