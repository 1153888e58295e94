// Package services binds the identity-agnostic document cache and
// permission resolver to the current session's user, so the presentation
// layer never threads a user id through every call. It also owns the
// debounced typeahead search pipeline.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dmitrijs2005/inkwell/internal/common"
	"github.com/dmitrijs2005/inkwell/internal/logging"
	"github.com/dmitrijs2005/inkwell/internal/models"
)

// Identity is the session surface the facades read: the signed-in user and
// an epoch counter that advances on every identity change. The session
// manager implements it.
type Identity interface {
	UserID() (string, error)
	Epoch() uint64
}

// DocumentStore is the cache surface consumed by the Documents facade.
type DocumentStore interface {
	Fetch(ctx context.Context, userID string, force bool) ([]models.DocumentSummary, error)
	Create(ctx context.Context, userID, title, content string) (models.DocumentSummary, error)
	Update(ctx context.Context, documentID string, patch models.DocumentPatch) (models.DocumentSummary, error)
	Delete(ctx context.Context, documentID string) error
	Search(ctx context.Context, userID, query string) ([]models.DocumentSummary, error)
	GetOne(ctx context.Context, documentID string) (models.DocumentSummary, error)
	Cached(userID string) ([]models.DocumentSummary, time.Time, bool)
	Clear()
}

const maxTitleLength = 200

// Documents exposes the document cache operations with the user id taken
// from the session. Calls made while signed out fail fast with
// common.ErrUnauthenticated. An identity change observed between calls
// drops the cache, so one account's list is never served to another.
type Documents struct {
	store  DocumentStore
	ident  Identity
	logger logging.Logger

	mu    sync.Mutex
	epoch uint64
}

func NewDocuments(store DocumentStore, ident Identity, logger logging.Logger) *Documents {
	return &Documents{store: store, ident: ident, logger: logger}
}

// bind resolves the signed-in user and handles account switches: whenever
// the session epoch moved since the last call, cached documents are dropped
// and the caller is told to fetch unconditionally.
func (s *Documents) bind(ctx context.Context) (string, bool, error) {
	id, err := s.ident.UserID()
	if err != nil {
		return "", false, err
	}
	epoch := s.ident.Epoch()

	s.mu.Lock()
	switched := epoch != s.epoch
	s.epoch = epoch
	s.mu.Unlock()

	if switched {
		s.logger.Debug(ctx, "session identity changed, dropping cached documents", "user_id", id)
		s.store.Clear()
	}
	return id, switched, nil
}

// List returns the current user's documents, refreshing the cache when it
// is stale. Right after a sign-in or account switch the fetch is
// unconditional: a prior identity's sequence is never reused.
func (s *Documents) List(ctx context.Context) ([]models.DocumentSummary, error) {
	userID, switched, err := s.bind(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Fetch(ctx, userID, switched)
}

// ForceRefresh bypasses the freshness check and fetches from the remote,
// coalescing with any fetch already in flight.
func (s *Documents) ForceRefresh(ctx context.Context) ([]models.DocumentSummary, error) {
	userID, _, err := s.bind(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Fetch(ctx, userID, true)
}

// Get returns a single document, served from the cache when possible.
func (s *Documents) Get(ctx context.Context, documentID string) (models.DocumentSummary, error) {
	if _, _, err := s.bind(ctx); err != nil {
		return models.DocumentSummary{}, err
	}
	if documentID == "" {
		return models.DocumentSummary{}, fmt.Errorf("document id is required: %w", common.ErrValidation)
	}
	return s.store.GetOne(ctx, documentID)
}

// Create makes a new document owned by the current user and returns the
// server-assigned record.
func (s *Documents) Create(ctx context.Context, title, content string) (models.DocumentSummary, error) {
	userID, _, err := s.bind(ctx)
	if err != nil {
		return models.DocumentSummary{}, err
	}
	if err := validation.Validate(title, validation.Required, validation.RuneLength(1, maxTitleLength)); err != nil {
		return models.DocumentSummary{}, fmt.Errorf("title: %v: %w", err, common.ErrValidation)
	}
	return s.store.Create(ctx, userID, title, content)
}

// Update applies a partial update and returns the full server-confirmed
// record so every open view can resynchronize with it.
func (s *Documents) Update(ctx context.Context, documentID string, patch models.DocumentPatch) (models.DocumentSummary, error) {
	if _, _, err := s.bind(ctx); err != nil {
		return models.DocumentSummary{}, err
	}
	if documentID == "" {
		return models.DocumentSummary{}, fmt.Errorf("document id is required: %w", common.ErrValidation)
	}
	if patch.IsEmpty() {
		return models.DocumentSummary{}, fmt.Errorf("patch carries no changes: %w", common.ErrValidation)
	}
	if patch.Title != nil {
		if err := validation.Validate(*patch.Title, validation.Required, validation.RuneLength(1, maxTitleLength)); err != nil {
			return models.DocumentSummary{}, fmt.Errorf("title: %v: %w", err, common.ErrValidation)
		}
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return models.DocumentSummary{}, fmt.Errorf("unknown status %q: %w", *patch.Status, common.ErrValidation)
	}
	return s.store.Update(ctx, documentID, patch)
}

// Delete removes a document after the remote confirms the deletion.
func (s *Documents) Delete(ctx context.Context, documentID string) error {
	if _, _, err := s.bind(ctx); err != nil {
		return err
	}
	if documentID == "" {
		return fmt.Errorf("document id is required: %w", common.ErrValidation)
	}
	return s.store.Delete(ctx, documentID)
}

// Search runs a remote full-text query over the current user's documents.
// Results never touch the cached list.
func (s *Documents) Search(ctx context.Context, query string) ([]models.DocumentSummary, error) {
	userID, _, err := s.bind(ctx)
	if err != nil {
		return nil, err
	}
	if err := validation.Validate(query, validation.Required); err != nil {
		return nil, fmt.Errorf("query: %v: %w", err, common.ErrValidation)
	}
	return s.store.Search(ctx, userID, query)
}

// Cached returns the current user's cached list regardless of freshness.
// Used to keep stale data on screen when a refresh fails.
func (s *Documents) Cached(ctx context.Context) ([]models.DocumentSummary, time.Time, bool) {
	userID, err := s.ident.UserID()
	if err != nil {
		return nil, time.Time{}, false
	}
	return s.store.Cached(userID)
}

// Reset drops all cached documents. Called at sign-out.
func (s *Documents) Reset() {
	s.store.Clear()
}
