// Package cache implements the client-side document cache: the single
// source of truth for "my documents" in the current session. Entries are
// keyed by owning user id and refreshed from the remote service when stale;
// mutations go through the cache so every open view observes the same
// server-confirmed state.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/inkwell/internal/common"
	"github.com/dmitrijs2005/inkwell/internal/gateway"
	"github.com/dmitrijs2005/inkwell/internal/logging"
	"github.com/dmitrijs2005/inkwell/internal/models"
)

// timeNow is a test seam.
var timeNow = time.Now

// entry is the cached state for one user id. The error of the most recent
// failed fetch is kept alongside the data: a failure never clears previously
// fetched documents.
type entry struct {
	docs      []models.DocumentSummary
	fetchedAt time.Time
	lastErr   error
}

// DocumentCache caches per-user document lists in memory.
//
// Freshness: an entry is fresh while its last successful fetch is younger
// than the TTL and the list is non-empty. Concurrent fetches for the same
// user are coalesced into a single remote call; all callers observe its
// result. Clearing the cache advances a generation counter so that results
// of calls still in flight are returned to their callers but never stored.
type DocumentCache struct {
	gw     gateway.Client
	ttl    time.Duration
	logger logging.Logger

	flights singleflight.Group

	mu      sync.Mutex
	entries map[string]*entry
	gen     uint64
}

func New(gw gateway.Client, ttl time.Duration, logger logging.Logger) *DocumentCache {
	return &DocumentCache{
		gw:      gw,
		ttl:     ttl,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Fetch returns the user's document list. Fresh cached data is served
// without a remote call unless force is set. On a remote failure the
// previous content stays intact, the error is recorded on the entry, and
// the error is returned.
//
// A caller whose context is cancelled stops waiting, but the in-flight
// remote call keeps running for the coalesced waiters and its result is
// still cached.
func (c *DocumentCache) Fetch(ctx context.Context, userID string, force bool) ([]models.DocumentSummary, error) {
	if userID == "" {
		return nil, fmt.Errorf("fetch documents: user id is required: %w", common.ErrValidation)
	}

	if !force {
		if docs, ok := c.fresh(userID); ok {
			c.logger.Debug(ctx, "serving cached documents", "user_id", userID, "count", len(docs))
			return docs, nil
		}
	}

	gen := c.generation()

	// The flight is detached from the triggering caller's context so that
	// one caller giving up does not fail the fetch for everyone waiting on
	// it. The gateway's own timeout bounds the call.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(userID, func() (any, error) {
		docs, err := c.gw.ListDocuments(flightCtx, userID)
		if err != nil {
			c.recordError(gen, userID, err)
			return nil, err
		}
		c.replaceList(flightCtx, gen, userID, docs)
		return docs, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneDocs(res.Val.([]models.DocumentSummary)), nil
	}
}

// Create issues the remote create and, on success, prepends the
// server-assigned summary to the user's cached list. No placeholder is
// inserted beforehand: navigation needs the server-assigned id.
func (c *DocumentCache) Create(ctx context.Context, userID, title, content string) (models.DocumentSummary, error) {
	if userID == "" {
		return models.DocumentSummary{}, fmt.Errorf("create document: user id is required: %w", common.ErrValidation)
	}

	gen := c.generation()

	doc, err := c.gw.CreateDocument(ctx, userID, title, content)
	if err != nil {
		return models.DocumentSummary{}, err
	}

	c.prepend(ctx, gen, userID, doc)
	return doc, nil
}

// Update issues the remote update and, on success, replaces the cached copy
// with the full server-returned record, which is also returned so dependent
// views can resynchronize with the server's state exactly. A record that is
// no longer cached (deleted meanwhile, or the cache was cleared) is not
// reinserted.
func (c *DocumentCache) Update(ctx context.Context, documentID string, patch models.DocumentPatch) (models.DocumentSummary, error) {
	if documentID == "" {
		return models.DocumentSummary{}, fmt.Errorf("update document: document id is required: %w", common.ErrValidation)
	}

	gen := c.generation()

	doc, err := c.gw.UpdateDocument(ctx, documentID, patch)
	if err != nil {
		return models.DocumentSummary{}, err
	}

	c.replaceOne(ctx, gen, doc)
	return doc, nil
}

// Delete issues the remote delete and, on success, removes exactly the
// matching entry from the cache. A failure leaves the cache unchanged.
func (c *DocumentCache) Delete(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("delete document: document id is required: %w", common.ErrValidation)
	}

	gen := c.generation()

	if err := c.gw.DeleteDocument(ctx, documentID); err != nil {
		return err
	}

	c.remove(ctx, gen, documentID)
	return nil
}

// Search runs a remote full-text query. Results are a different view than
// the "my documents" list: they are never stored and do not touch the
// freshness of cached entries.
func (c *DocumentCache) Search(ctx context.Context, userID, query string) ([]models.DocumentSummary, error) {
	if userID == "" {
		return nil, fmt.Errorf("search documents: user id is required: %w", common.ErrValidation)
	}
	return c.gw.SearchDocuments(ctx, userID, query)
}

// GetOne returns the cached summary when any user's list contains the id,
// falling back to a single-document remote fetch. The fallback result is
// not inserted into any list.
func (c *DocumentCache) GetOne(ctx context.Context, documentID string) (models.DocumentSummary, error) {
	if doc, ok := c.lookup(documentID); ok {
		return doc, nil
	}
	return c.gw.GetDocument(ctx, documentID)
}

// Clear drops every entry and advances the generation so results of fetches
// still in flight are not stored. Called at sign-out and on account switch:
// serving one account's list to another is a correctness bug.
func (c *DocumentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.gen++
}

// Cached returns the current content of the user's entry regardless of
// freshness, with the time it was fetched. Used to render stale data when a
// refresh fails.
func (c *DocumentCache) Cached(userID string) ([]models.DocumentSummary, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[userID]
	if !ok || len(e.docs) == 0 {
		return nil, time.Time{}, false
	}
	return cloneDocs(e.docs), e.fetchedAt, true
}

// LastError returns the error recorded by the most recent failed fetch for
// the user, or nil after a successful one.
func (c *DocumentCache) LastError(userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[userID]; ok {
		return e.lastErr
	}
	return nil
}

func (c *DocumentCache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// fresh returns a copy of the user's list when it qualifies as fresh: a
// successful fetch within the TTL and a non-empty sequence.
func (c *DocumentCache) fresh(userID string) ([]models.DocumentSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[userID]
	if !ok || len(e.docs) == 0 {
		return nil, false
	}
	if timeNow().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return cloneDocs(e.docs), true
}

// replaceList installs a fetched list, unless the cache was cleared while
// the fetch was in flight.
func (c *DocumentCache) replaceList(ctx context.Context, gen uint64, userID string, docs []models.DocumentSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.logger.Debug(ctx, "discarding superseded list fetch", "user_id", userID)
		return
	}
	c.entries[userID] = &entry{docs: cloneDocs(docs), fetchedAt: timeNow()}
}

func (c *DocumentCache) recordError(gen uint64, userID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}
	e, ok := c.entries[userID]
	if !ok {
		e = &entry{}
		c.entries[userID] = e
	}
	e.lastErr = err
}

func (c *DocumentCache) prepend(ctx context.Context, gen uint64, userID string, doc models.DocumentSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.logger.Debug(ctx, "discarding superseded create result", "document_id", doc.ID)
		return
	}
	e, ok := c.entries[userID]
	if !ok {
		// No list fetched yet. The zero fetch time keeps the entry stale,
		// so the next Fetch still loads the full sequence.
		e = &entry{}
		c.entries[userID] = e
	}
	e.docs = append([]models.DocumentSummary{doc}, e.docs...)
}

func (c *DocumentCache) replaceOne(ctx context.Context, gen uint64, doc models.DocumentSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.logger.Debug(ctx, "discarding superseded update result", "document_id", doc.ID)
		return
	}
	for _, e := range c.entries {
		for i := range e.docs {
			if e.docs[i].ID == doc.ID {
				e.docs[i] = doc
				return
			}
		}
	}
	// Not cached anymore; a late update must not resurrect it.
}

func (c *DocumentCache) remove(ctx context.Context, gen uint64, documentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}
	for _, e := range c.entries {
		for i := range e.docs {
			if e.docs[i].ID == documentID {
				e.docs = append(e.docs[:i], e.docs[i+1:]...)
				return
			}
		}
	}
}

func (c *DocumentCache) lookup(documentID string) (models.DocumentSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		for i := range e.docs {
			if e.docs[i].ID == documentID {
				return e.docs[i], true
			}
		}
	}
	return models.DocumentSummary{}, false
}

func cloneDocs(docs []models.DocumentSummary) []models.DocumentSummary {
	return append([]models.DocumentSummary(nil), docs...)
}
