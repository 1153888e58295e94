// Package sharing implements the collaborator workflow on top of the remote
// permission store: granting a document role to a registered user by email,
// revoking it, and listing who has access. Grants carry audit metadata and
// are never hard-deleted; revocation clears the active flag and stamps the
// revocation time and actor.
package sharing

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/dmitrijs2005/inkwell/internal/common"
	"github.com/dmitrijs2005/inkwell/internal/gateway"
	"github.com/dmitrijs2005/inkwell/internal/logging"
	"github.com/dmitrijs2005/inkwell/internal/models"
)

// timeNow is a test seam.
var timeNow = time.Now

// Resolver translates email-based collaborator invitations into durable
// permission records and supports their reversal. Every grant is checked
// against the granter's own effective role: nobody hands out more access
// than they hold themselves.
type Resolver struct {
	gw     gateway.Client
	logger logging.Logger
}

func NewResolver(gw gateway.Client, logger logging.Logger) *Resolver {
	return &Resolver{gw: gw, logger: logger}
}

// AddCollaborator grants role on the document to the user registered under
// email.
//
// Failure modes: common.ErrNotFound when the email belongs to no registered
// user (there is no pending-invite state for unregistered emails),
// common.ErrForbidden when the granter has no access or requests a role
// above their own, common.ErrConflict when an active grant for the subject
// already exists.
func (r *Resolver) AddCollaborator(ctx context.Context, documentID, granterID, email string, role models.Role) (models.PermissionRecord, error) {
	var zero models.PermissionRecord

	if err := validateShareInput(documentID, email); err != nil {
		return zero, err
	}
	if !role.Valid() {
		return zero, fmt.Errorf("unknown role %q: %w", role, common.ErrValidation)
	}

	profile, err := r.gw.LookupProfileByEmail(ctx, email)
	if err != nil {
		return zero, fmt.Errorf("resolve collaborator %s: %w", email, err)
	}

	granterRole, err := r.effectiveRole(ctx, documentID, granterID)
	if err != nil {
		return zero, err
	}
	if !granterRole.AtLeast(role) {
		return zero, fmt.Errorf("granting %s exceeds own role %s: %w", role, granterRole, common.ErrForbidden)
	}

	rec, err := r.gw.CreatePermission(ctx, documentID, profile.ID, role, granterID)
	if err != nil {
		return zero, fmt.Errorf("grant %s to %s: %w", role, email, err)
	}

	r.logger.Info(ctx, "collaborator added",
		"document_id", documentID, "subject_id", profile.ID, "role", role, "granted_by", granterID)
	return rec, nil
}

// RemoveCollaborator revokes the active grant held by the user registered
// under email. The record is soft-revoked server-side, never deleted, so
// the audit trail stays intact. Revoking the last active owner of a
// document is refused with common.ErrInvalidOperation.
//
// Removal resolves the email at revocation time, exactly like the grant
// did. Re-inviting the same email later creates a fresh record; a revoked
// record never becomes active again.
func (r *Resolver) RemoveCollaborator(ctx context.Context, documentID, email, actorID string) error {
	if err := validateShareInput(documentID, email); err != nil {
		return err
	}

	profile, err := r.gw.LookupProfileByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("resolve collaborator %s: %w", email, err)
	}

	recs, err := r.gw.ListPermissions(ctx, documentID)
	if err != nil {
		return fmt.Errorf("list permissions: %w", err)
	}

	now := timeNow()
	var target *models.PermissionRecord
	activeOwners := 0
	for i := range recs {
		if !recs[i].ActiveAt(now) {
			continue
		}
		if recs[i].Role == models.RoleOwner {
			activeOwners++
		}
		if recs[i].SubjectID == profile.ID {
			target = &recs[i]
		}
	}

	if target == nil {
		return fmt.Errorf("no active permission for %s: %w", email, common.ErrNotFound)
	}
	if target.Role == models.RoleOwner && activeOwners == 1 {
		return fmt.Errorf("cannot remove the last owner: %w", common.ErrInvalidOperation)
	}

	if err := r.gw.RevokePermission(ctx, documentID, profile.ID, actorID); err != nil {
		return fmt.Errorf("revoke permission of %s: %w", email, err)
	}

	r.logger.Info(ctx, "collaborator removed",
		"document_id", documentID, "subject_id", profile.ID, "revoked_by", actorID)
	return nil
}

// Permissions returns the document's active grants in grant order.
func (r *Resolver) Permissions(ctx context.Context, documentID string) ([]models.PermissionRecord, error) {
	recs, err := r.history(ctx, documentID)
	if err != nil {
		return nil, err
	}

	now := timeNow()
	active := make([]models.PermissionRecord, 0, len(recs))
	for _, rec := range recs {
		if rec.ActiveAt(now) {
			active = append(active, rec)
		}
	}
	return active, nil
}

// History returns every grant ever made on the document, revoked and
// expired ones included, in grant order.
func (r *Resolver) History(ctx context.Context, documentID string) ([]models.PermissionRecord, error) {
	return r.history(ctx, documentID)
}

func (r *Resolver) history(ctx context.Context, documentID string) ([]models.PermissionRecord, error) {
	if documentID == "" {
		return nil, fmt.Errorf("document id is required: %w", common.ErrValidation)
	}

	recs, err := r.gw.ListPermissions(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return recs, nil
}

// effectiveRole determines a user's own access level on the document. The
// document's owner holds owner outright; everyone else needs an active,
// unexpired permission record.
func (r *Resolver) effectiveRole(ctx context.Context, documentID, userID string) (models.Role, error) {
	doc, err := r.gw.GetDocument(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("resolve granter role: %w", err)
	}
	if doc.OwnerID == userID {
		return models.RoleOwner, nil
	}

	recs, err := r.gw.ListPermissions(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("resolve granter role: %w", err)
	}

	now := timeNow()
	for _, rec := range recs {
		if rec.SubjectID == userID && rec.ActiveAt(now) {
			return rec.Role, nil
		}
	}
	return "", fmt.Errorf("no access to document: %w", common.ErrForbidden)
}

func validateShareInput(documentID, email string) error {
	if err := validation.Validate(documentID, validation.Required); err != nil {
		return fmt.Errorf("document id: %v: %w", err, common.ErrValidation)
	}
	if err := validation.Validate(email, validation.Required, is.EmailFormat); err != nil {
		return fmt.Errorf("collaborator email %q: %v: %w", email, err, common.ErrValidation)
	}
	return nil
}
