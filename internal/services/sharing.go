package services

import (
	"context"

	"github.com/dmitrijs2005/inkwell/internal/logging"
	"github.com/dmitrijs2005/inkwell/internal/models"
)

// PermissionResolver is the sharing surface consumed by the facade.
type PermissionResolver interface {
	AddCollaborator(ctx context.Context, documentID, granterID, email string, role models.Role) (models.PermissionRecord, error)
	RemoveCollaborator(ctx context.Context, documentID, email, actorID string) error
	Permissions(ctx context.Context, documentID string) ([]models.PermissionRecord, error)
	History(ctx context.Context, documentID string) ([]models.PermissionRecord, error)
}

// ProfileDirectory resolves user ids to display profiles.
type ProfileDirectory interface {
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
}

// Collaborator is a permission record joined with the subject's profile for
// display.
type Collaborator struct {
	Record  models.PermissionRecord
	Profile models.Profile
}

// Sharing exposes the permission workflow with the current user as granter
// and revocation actor.
type Sharing struct {
	resolver PermissionResolver
	profiles ProfileDirectory
	ident    Identity
	logger   logging.Logger
}

func NewSharing(resolver PermissionResolver, profiles ProfileDirectory, ident Identity, logger logging.Logger) *Sharing {
	return &Sharing{resolver: resolver, profiles: profiles, ident: ident, logger: logger}
}

// Share grants role on the document to the user registered under email,
// with the current user as granter.
func (s *Sharing) Share(ctx context.Context, documentID, email string, role models.Role) (models.PermissionRecord, error) {
	actor, err := s.ident.UserID()
	if err != nil {
		return models.PermissionRecord{}, err
	}
	return s.resolver.AddCollaborator(ctx, documentID, actor, email, role)
}

// Unshare revokes the grant held by the user registered under email, with
// the current user as revocation actor.
func (s *Sharing) Unshare(ctx context.Context, documentID, email string) error {
	actor, err := s.ident.UserID()
	if err != nil {
		return err
	}
	return s.resolver.RemoveCollaborator(ctx, documentID, email, actor)
}

// Collaborators returns the document's active grants in grant order, each
// joined with the subject's profile.
func (s *Sharing) Collaborators(ctx context.Context, documentID string) ([]Collaborator, error) {
	if _, err := s.ident.UserID(); err != nil {
		return nil, err
	}
	recs, err := s.resolver.Permissions(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, recs), nil
}

// History returns every grant ever made on the document, revoked ones
// included, joined with profiles.
func (s *Sharing) History(ctx context.Context, documentID string) ([]Collaborator, error) {
	if _, err := s.ident.UserID(); err != nil {
		return nil, err
	}
	recs, err := s.resolver.History(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, recs), nil
}

// join attaches profiles to records. A failed profile lookup keeps the
// record in the result; display falls back to the bare subject id.
func (s *Sharing) join(ctx context.Context, recs []models.PermissionRecord) []Collaborator {
	out := make([]Collaborator, 0, len(recs))
	for _, rec := range recs {
		p, err := s.profiles.GetProfile(ctx, rec.SubjectID)
		if err != nil {
			s.logger.Warn(ctx, "collaborator profile unavailable", "subject_id", rec.SubjectID, "error", err)
		}
		out = append(out, Collaborator{Record: rec, Profile: p})
	}
	return out
}
