package main

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/Synform/internal/api"
	dbstore "github.com/soaringjerry/Synform/internal/db"
	"github.com/soaringjerry/Synform/internal/forms"
	"github.com/soaringjerry/Synform/internal/services"
)

func TestMigrateIfNeededImportsSnapshot(t *testing.T) {
	dir := t.TempDir()
	snapshotPath := filepath.Join(dir, "forms.json")
	sqlitePath := filepath.Join(dir, "db", "synform.db")

	mem, err := api.NewMemoryStoreFromPath(snapshotPath)
	require.NoError(t, err)
	now := time.Now().UTC()
	rec := &services.FormRecord{
		Form:      forms.SampleForm("S1", "EN", []string{"EN"}),
		TenantID:  "t1",
		Version:   3,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.True(t, mem.AddForm(rec))
	mem.AddAudit(services.AuditEntry{Time: now, Action: "create_form", Target: rec.ID()})

	require.NoError(t, MigrateIfNeeded(snapshotPath, sqlitePath, ""))

	db, err := sql.Open("sqlite3", sqliteDSN(sqlitePath))
	require.NoError(t, err)
	defer db.Close()
	store, err := dbstore.NewSQLiteStore(db)
	require.NoError(t, err)

	got := store.GetForm(rec.ID())
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Version)
	assert.Len(t, store.ListAudit(rec.ID()), 1)

	// the database exists now, so a second call leaves it alone
	require.NoError(t, MigrateIfNeeded(snapshotPath, sqlitePath, ""))
	assert.Len(t, store.ListAudit(rec.ID()), 1)
}

func TestMigrateIfNeededWithoutSnapshot(t *testing.T) {
	dir := t.TempDir()
	sqlitePath := filepath.Join(dir, "synform.db")
	assert.NoError(t, MigrateIfNeeded("", sqlitePath, ""))
	assert.NoError(t, MigrateIfNeeded(filepath.Join(dir, "missing.json"), sqlitePath, ""))
	assert.Error(t, MigrateIfNeeded("", "", ""))
	assert.NoFileExists(t, sqlitePath)
}
