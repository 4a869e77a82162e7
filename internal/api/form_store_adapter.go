package api

import "github.com/soaringjerry/Synform/internal/services"

type formStoreAdapter struct {
	store Store
}

// NewFormStore exposes a Store through the error-returning contract the form
// service expects.
func NewFormStore(store Store) services.FormStore {
	return &formStoreAdapter{store: store}
}

func (a *formStoreAdapter) InsertForm(rec *services.FormRecord) (*services.FormRecord, error) {
	if rec == nil || rec.Form == nil {
		return nil, services.NewInvalidError("form required")
	}
	if ok := a.store.AddForm(rec); !ok {
		return nil, services.NewConflictError("form id already exists")
	}
	return a.store.GetForm(rec.ID()), nil
}

func (a *formStoreAdapter) GetForm(id string) (*services.FormRecord, error) {
	return a.store.GetForm(id), nil
}

func (a *formStoreAdapter) UpdateForm(rec *services.FormRecord) error {
	if rec == nil || rec.Form == nil {
		return services.NewInvalidError("form required")
	}
	if ok := a.store.UpdateForm(rec); !ok {
		if a.store.GetForm(rec.ID()) == nil {
			return services.NewNotFoundError("form not found")
		}
		return services.NewConflictError("form was changed by another request")
	}
	return nil
}

func (a *formStoreAdapter) DeleteForm(id string) error {
	if ok := a.store.DeleteForm(id); !ok {
		return services.NewNotFoundError("form not found")
	}
	return nil
}

func (a *formStoreAdapter) ListForms(tenantID string) ([]*services.FormRecord, error) {
	return a.store.ListFormsByTenant(tenantID), nil
}

func (a *formStoreAdapter) AddAudit(entry services.AuditEntry) {
	a.store.AddAudit(entry)
}

func (a *formStoreAdapter) ListAudit(target string) ([]services.AuditEntry, error) {
	return a.store.ListAudit(target), nil
}
