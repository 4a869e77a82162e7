package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soaringjerry/Synform/internal/api"
	"github.com/soaringjerry/Synform/internal/forms"
	"github.com/soaringjerry/Synform/internal/services"
)

// SQLiteStore keeps each form as a JSON document next to the columns needed
// for lookups and the optimistic version check.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	s, err := NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		slog.Error("sqlite store: "+prefix, slog.Any("err", err))
	}
}

func contextBg() context.Context { return context.Background() }

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

type formRow struct {
	id, tenantID, body, createdAt, updatedAt string
	version                                  int64
}

const formColumns = "id, tenant_id, version, body, created_at, updated_at"

func scanForm(sc interface{ Scan(...any) error }) (formRow, error) {
	var r formRow
	err := sc.Scan(&r.id, &r.tenantID, &r.version, &r.body, &r.createdAt, &r.updatedAt)
	return r, err
}

func convertForm(r formRow) (*services.FormRecord, error) {
	f, err := forms.DecodeJSON([]byte(r.body))
	if err != nil {
		return nil, fmt.Errorf("decode form %s: %w", r.id, err)
	}
	return &services.FormRecord{
		Form:      f,
		TenantID:  r.tenantID,
		Version:   int(r.version),
		CreatedAt: parseTime(r.createdAt),
		UpdatedAt: parseTime(r.updatedAt),
	}, nil
}

func encodeForm(f *forms.Form) (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// --- Form methods ---

func (s *SQLiteStore) AddForm(rec *services.FormRecord) bool {
	if rec == nil || rec.Form == nil {
		return false
	}
	body, err := encodeForm(rec.Form)
	if err != nil {
		s.logErr("AddForm encode", err)
		return false
	}
	res, err := s.db.ExecContext(contextBg(),
		`INSERT OR IGNORE INTO forms (id, tenant_id, code, status, version, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID(), rec.TenantID, rec.Form.Code, string(rec.Form.Status), rec.Version, body,
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt))
	if err != nil {
		s.logErr("AddForm insert", err)
		return false
	}
	n, err := res.RowsAffected()
	s.logErr("AddForm rows", err)
	return n == 1
}

func (s *SQLiteStore) UpdateForm(rec *services.FormRecord) bool {
	if rec == nil || rec.Form == nil {
		return false
	}
	body, err := encodeForm(rec.Form)
	if err != nil {
		s.logErr("UpdateForm encode", err)
		return false
	}
	res, err := s.db.ExecContext(contextBg(),
		`UPDATE forms SET code = ?, status = ?, version = ?, body = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		rec.Form.Code, string(rec.Form.Status), rec.Version, body, formatTime(rec.UpdatedAt),
		rec.ID(), rec.Version-1)
	if err != nil {
		s.logErr("UpdateForm", err)
		return false
	}
	n, err := res.RowsAffected()
	s.logErr("UpdateForm rows", err)
	return n == 1
}

func (s *SQLiteStore) DeleteForm(id string) bool {
	res, err := s.db.ExecContext(contextBg(), "DELETE FROM forms WHERE id = ?", id)
	if err != nil {
		s.logErr("DeleteForm", err)
		return false
	}
	n, err := res.RowsAffected()
	s.logErr("DeleteForm rows", err)
	return n == 1
}

func (s *SQLiteStore) GetForm(id string) *services.FormRecord {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	row := s.db.QueryRowContext(contextBg(), "SELECT "+formColumns+" FROM forms WHERE id = ?", id)
	r, err := scanForm(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("GetForm", err)
		}
		return nil
	}
	rec, err := convertForm(r)
	if err != nil {
		s.logErr("GetForm", err)
		return nil
	}
	return rec
}

func (s *SQLiteStore) ListFormsByTenant(tid string) []*services.FormRecord {
	if strings.TrimSpace(tid) == "" {
		return nil
	}
	rows, err := s.db.QueryContext(contextBg(), "SELECT "+formColumns+" FROM forms WHERE tenant_id = ? ORDER BY id", tid)
	if err != nil {
		s.logErr("ListFormsByTenant", err)
		return nil
	}
	defer rows.Close()
	out := []*services.FormRecord{}
	for rows.Next() {
		r, err := scanForm(rows)
		if err != nil {
			s.logErr("ListFormsByTenant scan", err)
			continue
		}
		rec, err := convertForm(r)
		if err != nil {
			s.logErr("ListFormsByTenant", err)
			continue
		}
		out = append(out, rec)
	}
	s.logErr("ListFormsByTenant rows", rows.Err())
	return out
}

// --- Audit ---

func (s *SQLiteStore) AddAudit(e services.AuditEntry) {
	_, err := s.db.ExecContext(contextBg(),
		"INSERT INTO audit_log (time, actor, action, target, note) VALUES (?, ?, ?, ?, ?)",
		formatTime(e.Time), e.Actor, e.Action, e.Target, toNullString(e.Note))
	s.logErr("AddAudit", err)
}

func (s *SQLiteStore) ListAudit(target string) []services.AuditEntry {
	query := "SELECT time, actor, action, target, note FROM audit_log"
	var args []any
	if target != "" {
		query += " WHERE target = ?"
		args = append(args, target)
	}
	rows, err := s.db.QueryContext(contextBg(), query+" ORDER BY id", args...)
	if err != nil {
		s.logErr("ListAudit", err)
		return nil
	}
	defer rows.Close()
	out := []services.AuditEntry{}
	for rows.Next() {
		var (
			ts   string
			e    services.AuditEntry
			note sql.NullString
		)
		if err := rows.Scan(&ts, &e.Actor, &e.Action, &e.Target, &note); err != nil {
			s.logErr("ListAudit scan", err)
			continue
		}
		e.Time = parseTime(ts)
		e.Note = note.String
		out = append(out, e)
	}
	s.logErr("ListAudit rows", rows.Err())
	return out
}

var _ api.Store = (*SQLiteStore)(nil)
