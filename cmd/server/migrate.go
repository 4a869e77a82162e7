package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/soaringjerry/Synform/internal/api"
	dbstore "github.com/soaringjerry/Synform/internal/db"
)

// MigrateIfNeeded copies a memory-store snapshot into a new sqlite database.
// It does nothing when the database file already exists or there is no
// snapshot to read.
func MigrateIfNeeded(snapshotPath, sqlitePath, migrationsDir string) error {
	if sqlitePath == "" {
		return errors.New("sqlite path is required")
	}
	if _, err := os.Stat(sqlitePath); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check sqlite file: %w", err)
	}
	if snapshotPath == "" {
		return nil
	}
	snapshot, err := api.ReadSnapshot(snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load snapshot: %w", err)
	}

	slog.Info("first run with sqlite, importing snapshot",
		slog.String("snapshot", snapshotPath), slog.Int("forms", len(snapshot.Forms)))

	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return fmt.Errorf("create sqlite dir: %w", err)
	}
	sqliteDB, err := sql.Open("sqlite3", sqliteDSN(sqlitePath))
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() {
		if cerr := sqliteDB.Close(); cerr != nil {
			slog.Warn("close sqlite after import", slog.Any("err", cerr))
		}
	}()

	if err := dbstore.RunMigrations(sqliteDB, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	dst, err := dbstore.NewSQLiteStore(sqliteDB)
	if err != nil {
		return fmt.Errorf("init sqlite store: %w", err)
	}
	copied := copySnapshotToStore(snapshot, dst)
	slog.Info("snapshot import completed", slog.Int("forms", copied))
	return nil
}

func copySnapshotToStore(snap *api.Snapshot, dst api.Store) int {
	n := 0
	for _, rec := range snap.Forms {
		if rec == nil || rec.Form == nil {
			continue
		}
		if dst.AddForm(rec) {
			n++
		}
	}
	for _, entry := range snap.Audit {
		dst.AddAudit(entry)
	}
	return n
}
