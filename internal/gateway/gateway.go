// Package gateway defines the remote-access contract against the Inkwell
// service and its HTTP implementation. All persistence, authorization, and
// full-text search happen server-side; this package only shapes requests and
// maps failures onto the shared error taxonomy.
package gateway

import (
	"context"

	"github.com/dmitrijs2005/inkwell/internal/models"
)

// Client is the full remote surface consumed by the document cache and the
// permission resolver. Implementations must return errors matchable with
// errors.Is against the sentinels in internal/common.
type Client interface {
	ListDocuments(ctx context.Context, ownerID string) ([]models.DocumentSummary, error)
	GetDocument(ctx context.Context, documentID string) (models.DocumentSummary, error)
	CreateDocument(ctx context.Context, ownerID, title, content string) (models.DocumentSummary, error)
	UpdateDocument(ctx context.Context, documentID string, patch models.DocumentPatch) (models.DocumentSummary, error)
	DeleteDocument(ctx context.Context, documentID string) error
	SearchDocuments(ctx context.Context, ownerID, query string) ([]models.DocumentSummary, error)

	LookupProfileByEmail(ctx context.Context, email string) (models.Profile, error)
	GetProfile(ctx context.Context, userID string) (models.Profile, error)

	CreatePermission(ctx context.Context, documentID, subjectID string, role models.Role, granterID string) (models.PermissionRecord, error)
	RevokePermission(ctx context.Context, documentID, subjectID, revokerID string) error
	ListPermissions(ctx context.Context, documentID string) ([]models.PermissionRecord, error)
}

// TokenProvider supplies the bearer token attached to authenticated
// requests. The session manager implements it.
type TokenProvider interface {
	AccessToken() (string, error)
}
