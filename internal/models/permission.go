package models

import "time"

// PermissionRecord is one grant of access to a document. Records are never
// hard-deleted: revocation clears Active and stamps RevokedAt/RevokedBy, so
// the history of who had access remains queryable.
type PermissionRecord struct {
	ID         string     `json:"id"`
	DocumentID string     `json:"document_id"`
	SubjectID  string     `json:"user_id"`
	Role       Role       `json:"role"`
	GrantedBy  string     `json:"granted_by"`
	GrantedAt  time.Time  `json:"granted_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Active     bool       `json:"is_active"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	RevokedBy  string     `json:"revoked_by,omitempty"`
}

// ActiveAt reports whether the grant is in force at the given instant:
// not revoked and not past its optional expiry.
func (p PermissionRecord) ActiveAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
		return false
	}
	return true
}

// Profile is the public identity of a registered user, used to resolve
// invite emails and to render collaborator lists.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}
