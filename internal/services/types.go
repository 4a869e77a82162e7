package services

import (
	"time"

	"github.com/soaringjerry/Synform/internal/forms"
)

// FormRecord is a stored form plus ownership and versioning metadata.
// Version starts at 1 and grows by one on every saved change.
type FormRecord struct {
	Form      *forms.Form `json:"form"`
	TenantID  string      `json:"tenant_id"`
	Version   int         `json:"version"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (r *FormRecord) ID() string {
	if r == nil || r.Form == nil {
		return ""
	}
	return r.Form.ID
}

// Clone returns a copy that shares nothing with r.
func (r *FormRecord) Clone() *FormRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Form = r.Form.Clone()
	return &out
}

// FormSummary is the list view of a form.
type FormSummary struct {
	ID        string               `json:"id"`
	Code      string               `json:"code"`
	Status    forms.FormStatus     `json:"status"`
	Name      forms.TranslatedText `json:"name"`
	Languages []string             `json:"available_languages"`
	Questions int                  `json:"questions"`
	Version   int                  `json:"version"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}
