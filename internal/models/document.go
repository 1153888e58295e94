// Package models defines the client-side document, permission, and profile
// types exchanged with the Inkwell service.
package models

import "time"

// DocumentStatus is the lifecycle state of a document.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusPublished DocumentStatus = "published"
	StatusArchived  DocumentStatus = "archived"
)

// Valid reports whether s is one of the known lifecycle states.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// DocumentSummary is the list-view projection of a document. The service owns
// the authoritative record; WordCount and UpdatedAt are computed server-side.
type DocumentSummary struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
	Title     string         `json:"title"`
	Excerpt   string         `json:"excerpt"`
	Status    DocumentStatus `json:"status"`
	WordCount int            `json:"word_count"`
	Public    bool           `json:"is_public"`
	Slug      string         `json:"slug,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// DocumentPatch is a partial update. Nil fields are left untouched by the
// service; the JSON encoding omits them entirely.
type DocumentPatch struct {
	Title   *string         `json:"title,omitempty"`
	Excerpt *string         `json:"excerpt,omitempty"`
	Content *string         `json:"content,omitempty"`
	Status  *DocumentStatus `json:"status,omitempty"`
	Public  *bool           `json:"is_public,omitempty"`
	Slug    *string         `json:"slug,omitempty"`
}

// IsEmpty reports whether the patch carries no changes.
func (p DocumentPatch) IsEmpty() bool {
	return p.Title == nil && p.Excerpt == nil && p.Content == nil &&
		p.Status == nil && p.Public == nil && p.Slug == nil
}
