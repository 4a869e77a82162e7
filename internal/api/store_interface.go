package api

import "github.com/soaringjerry/Synform/internal/services"

// Store is the persistence surface shared by the in-memory and sqlite
// backends. Records handed in and out are never shared with the caller.
type Store interface {
	// AddForm reports false when a form with the same ID exists.
	AddForm(rec *services.FormRecord) bool
	// UpdateForm replaces the stored record when its version is rec.Version-1.
	UpdateForm(rec *services.FormRecord) bool
	DeleteForm(id string) bool
	GetForm(id string) *services.FormRecord
	ListFormsByTenant(tid string) []*services.FormRecord

	AddAudit(e services.AuditEntry)
	ListAudit(target string) []services.AuditEntry
}

var _ Store = (*memoryStore)(nil)
