package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/soaringjerry/Synform/internal/services"
)

type memoryStore struct {
	mu    sync.RWMutex
	forms map[string]*services.FormRecord
	audit []services.AuditEntry
	// path, when set, receives a JSON snapshot after every mutation.
	path string
}

// Snapshot is the on-disk layout of a persisted memory store.
type Snapshot struct {
	Forms []*services.FormRecord `json:"forms"`
	Audit []services.AuditEntry  `json:"audit"`
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		forms: map[string]*services.FormRecord{},
		audit: []services.AuditEntry{},
	}
}

// NewMemoryStore returns a process-local store.
func NewMemoryStore() Store { return newMemoryStore() }

// NewMemoryStoreFromPath loads a snapshot written by a previous run and keeps
// persisting to the same path. A missing file yields an empty store.
func NewMemoryStoreFromPath(path string) (Store, error) {
	s := newMemoryStore()
	s.path = path
	if path == "" {
		return s, nil
	}
	snap, err := ReadSnapshot(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	for _, rec := range snap.Forms {
		if rec != nil && rec.Form != nil {
			s.forms[rec.ID()] = rec
		}
	}
	s.audit = append(s.audit, snap.Audit...)
	return s, nil
}

// ReadSnapshot decodes a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// persist must be called with s.mu held.
func (s *memoryStore) persist() {
	if s.path == "" {
		return
	}
	snap := Snapshot{Forms: make([]*services.FormRecord, 0, len(s.forms)), Audit: s.audit}
	for _, rec := range s.forms {
		snap.Forms = append(snap.Forms, rec)
	}
	sort.Slice(snap.Forms, func(i, j int) bool { return snap.Forms[i].ID() < snap.Forms[j].ID() })
	b, err := json.Marshal(snap)
	if err != nil {
		slog.Error("memory store: encode snapshot", slog.Any("err", err))
		return
	}
	if dir := filepath.Dir(s.path); dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		slog.Error("memory store: write snapshot", slog.String("path", tmp), slog.Any("err", err))
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		slog.Error("memory store: replace snapshot", slog.String("path", s.path), slog.Any("err", err))
	}
}

func (s *memoryStore) AddForm(rec *services.FormRecord) bool {
	if rec == nil || rec.Form == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[rec.ID()]; ok {
		return false
	}
	s.forms[rec.ID()] = rec.Clone()
	s.persist()
	return true
}

func (s *memoryStore) UpdateForm(rec *services.FormRecord) bool {
	if rec == nil || rec.Form == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.forms[rec.ID()]
	if !ok || cur.Version != rec.Version-1 {
		return false
	}
	s.forms[rec.ID()] = rec.Clone()
	s.persist()
	return true
}

func (s *memoryStore) DeleteForm(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[id]; !ok {
		return false
	}
	delete(s.forms, id)
	s.persist()
	return true
}

func (s *memoryStore) GetForm(id string) *services.FormRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forms[id].Clone()
}

func (s *memoryStore) ListFormsByTenant(tid string) []*services.FormRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.FormRecord{}
	for _, rec := range s.forms {
		if rec.TenantID == tid {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (s *memoryStore) AddAudit(e services.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
	s.persist()
}

// ListAudit returns entries for target, or every entry when target is empty.
func (s *memoryStore) ListAudit(target string) []services.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]services.AuditEntry, 0, len(s.audit))
	for _, e := range s.audit {
		if target == "" || e.Target == target {
			out = append(out, e)
		}
	}
	return out
}
