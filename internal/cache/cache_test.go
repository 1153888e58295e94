package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/inkwell/internal/common"
	"github.com/dmitrijs2005/inkwell/internal/logging"
	"github.com/dmitrijs2005/inkwell/internal/models"
)

// fakeGateway is an in-memory gateway.Client. Per-method hooks override the
// default behavior; counters record how often the remote was hit.
type fakeGateway struct {
	mu sync.Mutex

	lists      map[string][]models.DocumentSummary
	listCalls  int
	listHook   func(ctx context.Context, ownerID string) ([]models.DocumentSummary, error)
	getCalls   int
	getHook    func(ctx context.Context, documentID string) (models.DocumentSummary, error)
	createHook func(ctx context.Context, ownerID, title, content string) (models.DocumentSummary, error)
	updateHook func(ctx context.Context, documentID string, patch models.DocumentPatch) (models.DocumentSummary, error)
	deleteErr  error
	searchHook func(ctx context.Context, ownerID, query string) ([]models.DocumentSummary, error)
}

func (f *fakeGateway) ListDocuments(ctx context.Context, ownerID string) ([]models.DocumentSummary, error) {
	f.mu.Lock()
	f.listCalls++
	hook := f.listHook
	docs := append([]models.DocumentSummary(nil), f.lists[ownerID]...)
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, ownerID)
	}
	return docs, nil
}

func (f *fakeGateway) GetDocument(ctx context.Context, documentID string) (models.DocumentSummary, error) {
	f.mu.Lock()
	f.getCalls++
	hook := f.getHook
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, documentID)
	}
	return models.DocumentSummary{}, common.ErrNotFound
}

func (f *fakeGateway) CreateDocument(ctx context.Context, ownerID, title, content string) (models.DocumentSummary, error) {
	if f.createHook != nil {
		return f.createHook(ctx, ownerID, title, content)
	}
	return models.DocumentSummary{ID: "created", OwnerID: ownerID, Title: title, Status: models.StatusDraft}, nil
}

func (f *fakeGateway) UpdateDocument(ctx context.Context, documentID string, patch models.DocumentPatch) (models.DocumentSummary, error) {
	if f.updateHook != nil {
		return f.updateHook(ctx, documentID, patch)
	}
	return models.DocumentSummary{ID: documentID}, nil
}

func (f *fakeGateway) DeleteDocument(ctx context.Context, documentID string) error {
	return f.deleteErr
}

func (f *fakeGateway) SearchDocuments(ctx context.Context, ownerID, query string) ([]models.DocumentSummary, error) {
	if f.searchHook != nil {
		return f.searchHook(ctx, ownerID, query)
	}
	return nil, nil
}

func (f *fakeGateway) LookupProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	return models.Profile{}, common.ErrNotFound
}

func (f *fakeGateway) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	return models.Profile{}, common.ErrNotFound
}

func (f *fakeGateway) CreatePermission(ctx context.Context, documentID, subjectID string, role models.Role, granterID string) (models.PermissionRecord, error) {
	return models.PermissionRecord{}, common.ErrNotFound
}

func (f *fakeGateway) RevokePermission(ctx context.Context, documentID, subjectID, revokerID string) error {
	return common.ErrNotFound
}

func (f *fakeGateway) ListPermissions(ctx context.Context, documentID string) ([]models.PermissionRecord, error) {
	return nil, nil
}

func (f *fakeGateway) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func docsFor(ids ...string) []models.DocumentSummary {
	docs := make([]models.DocumentSummary, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, models.DocumentSummary{ID: id, OwnerID: "u1", Title: "Doc " + id})
	}
	return docs
}

func newTestCache(gw *fakeGateway, ttl time.Duration) *DocumentCache {
	return New(gw, ttl, logging.NewNop())
}

func freezeClock(t *testing.T) *time.Time {
	t.Helper()
	now := time.Now()
	orig := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = orig })
	return &now
}

func TestFetch_ServesCachedWithinTTL(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{"u1": docsFor("d1", "d2")}}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	first, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, 1, gw.listCallCount())

	second, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, gw.listCallCount(), "fresh entry must not hit the remote")
}

func TestFetch_RefetchesAfterTTL(t *testing.T) {
	now := freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{"u1": docsFor("d1")}}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)
	require.Equal(t, 1, gw.listCallCount())

	*now = now.Add(2 * time.Minute)

	_, err = c.Fetch(ctx, "u1", false)
	require.NoError(t, err)
	require.Equal(t, 2, gw.listCallCount())
}

func TestFetch_EmptyListIsNotFresh(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{}}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	docs, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)
	require.Empty(t, docs)

	_, err = c.Fetch(ctx, "u1", false)
	require.NoError(t, err)
	require.Equal(t, 2, gw.listCallCount(), "an empty entry is refetched")
}

func TestFetch_ForceBypassesFreshness(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{"u1": docsFor("d1")}}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)

	_, err = c.Fetch(ctx, "u1", true)
	require.NoError(t, err)
	require.Equal(t, 2, gw.listCallCount())
}

func TestFetch_CoalescesConcurrentCallers(t *testing.T) {
	const callers = 8

	release := make(chan struct{})
	gw := &fakeGateway{}
	gw.listHook = func(ctx context.Context, ownerID string) ([]models.DocumentSummary, error) {
		<-release
		return docsFor("d1", "d2", "d3"), nil
	}
	c := newTestCache(gw, time.Minute)

	var wg sync.WaitGroup
	results := make([][]models.DocumentSummary, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Fetch(context.Background(), "u1", false)
		}(i)
	}

	// Let all callers reach the flight before releasing the remote call.
	require.Eventually(t, func() bool { return gw.listCallCount() == 1 },
		time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, 1, gw.listCallCount(), "concurrent fetches must share one remote call")
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, results[0], results[i], "all callers observe the same sequence")
	}
}

func TestFetch_FailureKeepsPreviousContent(t *testing.T) {
	now := freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{"u1": docsFor("d1", "d2")}}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)

	gw.listHook = func(ctx context.Context, ownerID string) ([]models.DocumentSummary, error) {
		return nil, common.ErrTransient
	}
	*now = now.Add(2 * time.Minute)

	_, err = c.Fetch(ctx, "u1", false)
	require.ErrorIs(t, err, common.ErrTransient)

	docs, _, ok := c.Cached("u1")
	require.True(t, ok, "stale content survives a failed refresh")
	require.Len(t, docs, 2)
	require.ErrorIs(t, c.LastError("u1"), common.ErrTransient)
}

func TestFetch_SuccessClearsRecordedError(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{}
	gw.listHook = func(ctx context.Context, ownerID string) ([]models.DocumentSummary, error) {
		return nil, common.ErrTransient
	}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.ErrorIs(t, err, common.ErrTransient)
	require.Error(t, c.LastError("u1"))

	gw.listHook = nil
	gw.lists = map[string][]models.DocumentSummary{"u1": docsFor("d1")}

	_, err = c.Fetch(ctx, "u1", false)
	require.NoError(t, err)
	require.NoError(t, c.LastError("u1"))
}

func TestFetch_AbandonedCallerDoesNotAbortFlight(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{}
	gw.listHook = func(ctx context.Context, ownerID string) ([]models.DocumentSummary, error) {
		<-release
		return docsFor("d1"), nil
	}
	c := newTestCache(gw, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx, "u1", false)
		done <- err
	}()

	require.Eventually(t, func() bool { return gw.listCallCount() == 1 },
		time.Second, time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	// The flight keeps running and its result is still cached.
	close(release)
	require.Eventually(t, func() bool {
		docs, _, ok := c.Cached("u1")
		return ok && len(docs) == 1
	}, time.Second, time.Millisecond)
}

func TestFetch_ClearDuringFlightDiscardsResult(t *testing.T) {
	release := make(chan struct{})
	gw := &fakeGateway{}
	gw.listHook = func(ctx context.Context, ownerID string) ([]models.DocumentSummary, error) {
		<-release
		return docsFor("d1"), nil
	}
	c := newTestCache(gw, time.Minute)

	type fetchResult struct {
		docs []models.DocumentSummary
		err  error
	}
	done := make(chan fetchResult, 1)
	go func() {
		docs, err := c.Fetch(context.Background(), "u1", false)
		done <- fetchResult{docs, err}
	}()

	require.Eventually(t, func() bool { return gw.listCallCount() == 1 },
		time.Second, time.Millisecond)
	c.Clear()
	close(release)

	res := <-done
	require.NoError(t, res.err)
	require.Len(t, res.docs, 1, "the caller still receives the result")

	_, _, ok := c.Cached("u1")
	require.False(t, ok, "a result from before the clear is never stored")
}

func TestFetch_KeysByUser(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{
		"u1": docsFor("d1"),
		"u2": {{ID: "d9", OwnerID: "u2", Title: "Other"}},
	}}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	docs1, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)
	docs2, err := c.Fetch(ctx, "u2", false)
	require.NoError(t, err)

	require.Equal(t, "d1", docs1[0].ID)
	require.Equal(t, "d9", docs2[0].ID)
	for _, d := range docs2 {
		require.NotEqual(t, "u1", d.OwnerID, "no cross-user leakage")
	}
}

func TestFetch_RequiresUserID(t *testing.T) {
	c := newTestCache(&fakeGateway{}, time.Minute)
	_, err := c.Fetch(context.Background(), "", false)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestCreate_PrependsServerAssignedRecord(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{"u1": docsFor("d1", "d2")}}
	gw.createHook = func(ctx context.Context, ownerID, title, content string) (models.DocumentSummary, error) {
		return models.DocumentSummary{ID: "d-new", OwnerID: ownerID, Title: title, Status: models.StatusDraft}, nil
	}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)

	doc, err := c.Create(ctx, "u1", "Fresh", "")
	require.NoError(t, err)
	require.Equal(t, "d-new", doc.ID, "id is server-assigned")

	docs, _, ok := c.Cached("u1")
	require.True(t, ok)
	require.Equal(t, []string{"d-new", "d1", "d2"}, idsOf(docs))

	seen := 0
	for _, d := range docs {
		if d.ID == "d-new" {
			seen++
		}
	}
	require.Equal(t, 1, seen, "the created id appears exactly once")
}

func TestCreate_FailureLeavesCacheUntouched(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{"u1": docsFor("d1")}}
	gw.createHook = func(ctx context.Context, ownerID, title, content string) (models.DocumentSummary, error) {
		return models.DocumentSummary{}, common.ErrTransient
	}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)

	_, err = c.Create(ctx, "u1", "Fresh", "")
	require.ErrorIs(t, err, common.ErrTransient)

	docs, _, _ := c.Cached("u1")
	require.Equal(t, []string{"d1"}, idsOf(docs), "no placeholder is ever inserted")
}

func TestCreate_WithoutPriorFetchStaysStale(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{"u1": docsFor("d1")}}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Create(ctx, "u1", "Fresh", "")
	require.NoError(t, err)

	// The created document is visible, but the entry is not considered
	// fresh: the next fetch still loads the full list.
	docs, _, ok := c.Cached("u1")
	require.True(t, ok)
	require.Len(t, docs, 1)

	_, err = c.Fetch(ctx, "u1", false)
	require.NoError(t, err)
	require.Equal(t, 1, gw.listCallCount())
}

func TestUpdate_ReplacesWithServerRecord(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{"u1": docsFor("d1", "d2")}}
	gw.updateHook = func(ctx context.Context, documentID string, patch models.DocumentPatch) (models.DocumentSummary, error) {
		// The server recomputes derived fields; the returned record is the
		// authoritative one.
		return models.DocumentSummary{
			ID: documentID, OwnerID: "u1", Title: "Doc " + documentID,
			Status: models.StatusPublished, WordCount: 123,
		}, nil
	}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)

	status := models.StatusPublished
	updated, err := c.Update(ctx, "d1", models.DocumentPatch{Status: &status})
	require.NoError(t, err)
	require.Equal(t, models.StatusPublished, updated.Status)
	require.Equal(t, 123, updated.WordCount)

	got, err := c.GetOne(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, updated, got, "every reader sees the server-confirmed record")
}

func TestUpdate_FailureLeavesPriorValueVisible(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{
		"u1": {{ID: "d1", OwnerID: "u1", Title: "Doc d1", Status: models.StatusDraft}},
	}}
	gw.updateHook = func(ctx context.Context, documentID string, patch models.DocumentPatch) (models.DocumentSummary, error) {
		return models.DocumentSummary{}, common.ErrTransient
	}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)

	status := models.StatusPublished
	_, err = c.Update(ctx, "d1", models.DocumentPatch{Status: &status})
	require.ErrorIs(t, err, common.ErrTransient)

	got, err := c.GetOne(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, models.StatusDraft, got.Status)
}

func TestUpdate_DoesNotResurrectDeletedDocument(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{"u1": docsFor("d1", "d2")}}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, "d1"))

	// A late update response for the deleted document returns data to the
	// caller but never reappears in the list.
	_, err = c.Update(ctx, "d1", models.DocumentPatch{})
	require.NoError(t, err)

	docs, _, _ := c.Cached("u1")
	require.Equal(t, []string{"d2"}, idsOf(docs))
}

func TestUpdate_AfterClearIsDiscarded(t *testing.T) {
	freezeClock(t)
	release := make(chan struct{})
	started := make(chan struct{})
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{"u1": docsFor("d1")}}
	gw.updateHook = func(ctx context.Context, documentID string, patch models.DocumentPatch) (models.DocumentSummary, error) {
		close(started)
		<-release
		return models.DocumentSummary{ID: documentID, Status: models.StatusPublished}, nil
	}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := c.Update(ctx, "d1", models.DocumentPatch{})
		done <- err
	}()

	<-started
	c.Clear()
	close(release)
	require.NoError(t, <-done)

	_, _, ok := c.Cached("u1")
	require.False(t, ok, "a late update never repopulates a cleared cache")
}

func TestDelete_RemovesExactlyTheMatchingID(t *testing.T) {
	freezeClock(t)
	// Two documents share a title; only the id decides what is removed.
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{
		"u1": {
			{ID: "d1", OwnerID: "u1", Title: "Same"},
			{ID: "d2", OwnerID: "u1", Title: "Same"},
		},
	}}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "d1"))

	docs, _, _ := c.Cached("u1")
	require.Equal(t, []string{"d2"}, idsOf(docs))
}

func TestDelete_FailureLeavesCacheUnchanged(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{
		lists:     map[string][]models.DocumentSummary{"u1": docsFor("d1")},
		deleteErr: common.ErrForbidden,
	}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)

	require.ErrorIs(t, c.Delete(ctx, "d1"), common.ErrForbidden)

	docs, _, _ := c.Cached("u1")
	require.Equal(t, []string{"d1"}, idsOf(docs))
}

func TestSearch_BypassesCache(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{"u1": docsFor("d1")}}
	gw.searchHook = func(ctx context.Context, ownerID, query string) ([]models.DocumentSummary, error) {
		return []models.DocumentSummary{{ID: "s1", Title: "Search hit"}}, nil
	}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)

	hits, err := c.Search(ctx, "u1", "hit")
	require.NoError(t, err)
	require.Equal(t, []string{"s1"}, idsOf(hits))

	// Search results neither replace the cached list nor spoil freshness.
	docs, _, _ := c.Cached("u1")
	require.Equal(t, []string{"d1"}, idsOf(docs))

	_, err = c.Fetch(ctx, "u1", false)
	require.NoError(t, err)
	require.Equal(t, 1, gw.listCallCount())
}

func TestGetOne_PrefersCachedCopy(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{"u1": docsFor("d1")}}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)

	doc, err := c.GetOne(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, "d1", doc.ID)
	require.Zero(t, gw.getCalls)
}

func TestGetOne_FallsBackToRemote(t *testing.T) {
	gw := &fakeGateway{}
	gw.getHook = func(ctx context.Context, documentID string) (models.DocumentSummary, error) {
		return models.DocumentSummary{ID: documentID, Title: "Shared with me"}, nil
	}
	c := newTestCache(gw, time.Minute)

	doc, err := c.GetOne(context.Background(), "d42")
	require.NoError(t, err)
	require.Equal(t, "d42", doc.ID)

	// The single-document fetch is not inserted into any list.
	_, _, ok := c.Cached("u1")
	require.False(t, ok)
}

func TestClear_DropsAllEntries(t *testing.T) {
	freezeClock(t)
	gw := &fakeGateway{lists: map[string][]models.DocumentSummary{
		"u1": docsFor("d1"),
		"u2": {{ID: "d9", OwnerID: "u2"}},
	}}
	c := newTestCache(gw, time.Minute)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "u1", false)
	require.NoError(t, err)
	_, err = c.Fetch(ctx, "u2", false)
	require.NoError(t, err)

	c.Clear()

	_, _, ok := c.Cached("u1")
	require.False(t, ok)
	_, _, ok = c.Cached("u2")
	require.False(t, ok)
}

func idsOf(docs []models.DocumentSummary) []string {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids
}
