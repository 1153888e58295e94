package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/inkwell/internal/common"
	"github.com/dmitrijs2005/inkwell/internal/logging"
	"github.com/dmitrijs2005/inkwell/internal/models"
)

type staticToken string

func (s staticToken) AccessToken() (string, error) { return string(s), nil }

func newTestREST(t *testing.T, handler http.Handler) *REST {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewREST(srv.URL, "test-api-key", staticToken("test-token"), 5*time.Second, logging.NewNop())
}

func TestREST_ListDocuments(t *testing.T) {
	var gotReq *http.Request
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		_ = json.NewEncoder(w).Encode([]models.DocumentSummary{
			{ID: "d1", OwnerID: "u1", Title: "First"},
			{ID: "d2", OwnerID: "u1", Title: "Second"},
		})
	})

	c := newTestREST(t, handler)
	docs, err := c.ListDocuments(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "d1", docs[0].ID)

	require.Equal(t, http.MethodGet, gotReq.Method)
	require.Equal(t, "/v1/documents", gotReq.URL.Path)
	require.Equal(t, "u1", gotReq.URL.Query().Get("owner_id"))
	require.Equal(t, "Bearer test-token", gotReq.Header.Get("Authorization"))
	require.Equal(t, "test-api-key", gotReq.Header.Get(common.ApiKeyHeaderName))
	require.NotEmpty(t, gotReq.Header.Get(common.RequestIDHeaderName))
}

func TestREST_CreateDocument(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/documents", r.URL.Path)

		var body struct {
			OwnerID string `json:"owner_id"`
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "u1", body.OwnerID)
		require.Equal(t, "Notes", body.Title)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.DocumentSummary{
			ID: "server-id", OwnerID: body.OwnerID, Title: body.Title, Status: models.StatusDraft,
		})
	})

	c := newTestREST(t, handler)
	doc, err := c.CreateDocument(context.Background(), "u1", "Notes", "hello")
	require.NoError(t, err)
	require.Equal(t, "server-id", doc.ID)
	require.Equal(t, models.StatusDraft, doc.Status)
}

func TestREST_UpdateDocument_SendsOnlySetFields(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/v1/documents/d1", r.URL.Path)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		require.Equal(t, map[string]any{"status": "published"}, raw)

		_ = json.NewEncoder(w).Encode(models.DocumentSummary{ID: "d1", Status: models.StatusPublished})
	})

	c := newTestREST(t, handler)
	status := models.StatusPublished
	doc, err := c.UpdateDocument(context.Background(), "d1", models.DocumentPatch{Status: &status})
	require.NoError(t, err)
	require.Equal(t, models.StatusPublished, doc.Status)
}

func TestREST_DeleteDocument(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/v1/documents/d1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	c := newTestREST(t, handler)
	require.NoError(t, c.DeleteDocument(context.Background(), "d1"))
}

func TestREST_SearchDocuments(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/documents/search", r.URL.Path)
		require.Equal(t, "river notes", r.URL.Query().Get("q"))
		_ = json.NewEncoder(w).Encode([]models.DocumentSummary{{ID: "d9"}})
	})

	c := newTestREST(t, handler)
	docs, err := c.SearchDocuments(context.Background(), "u1", "river notes")
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestREST_LookupProfileByEmail(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/profiles", r.URL.Path)
		require.Equal(t, "bob@example.com", r.URL.Query().Get("email"))
		_ = json.NewEncoder(w).Encode(models.Profile{ID: "u2", Email: "bob@example.com", DisplayName: "Bob"})
	})

	c := newTestREST(t, handler)
	p, err := c.LookupProfileByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, "u2", p.ID)
}

func TestREST_PermissionLifecycle(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/documents/d1/permissions":
			var body struct {
				SubjectID string      `json:"user_id"`
				Role      models.Role `json:"role"`
				GrantedBy string      `json:"granted_by"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(models.PermissionRecord{
				ID: "p1", DocumentID: "d1", SubjectID: body.SubjectID,
				Role: body.Role, GrantedBy: body.GrantedBy, Active: true,
			})

		case r.Method == http.MethodPost && r.URL.Path == "/v1/documents/d1/permissions/u2/revoke":
			var body struct {
				RevokedBy string `json:"revoked_by"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "u1", body.RevokedBy)
			w.WriteHeader(http.StatusNoContent)

		case r.Method == http.MethodGet && r.URL.Path == "/v1/documents/d1/permissions":
			_ = json.NewEncoder(w).Encode([]models.PermissionRecord{{ID: "p1", Active: true}})

		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	c := newTestREST(t, handler)
	ctx := context.Background()

	rec, err := c.CreatePermission(ctx, "d1", "u2", models.RoleEditor, "u1")
	require.NoError(t, err)
	require.Equal(t, "p1", rec.ID)
	require.Equal(t, models.RoleEditor, rec.Role)

	require.NoError(t, c.RevokePermission(ctx, "d1", "u2", "u1"))

	recs, err := c.ListPermissions(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestREST_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, common.ErrUnauthenticated},
		{http.StatusForbidden, common.ErrForbidden},
		{http.StatusNotFound, common.ErrNotFound},
		{http.StatusConflict, common.ErrConflict},
		{http.StatusBadRequest, common.ErrValidation},
		{http.StatusUnprocessableEntity, common.ErrValidation},
		{http.StatusInternalServerError, common.ErrTransient},
		{http.StatusBadGateway, common.ErrTransient},
	}

	for _, tt := range tests {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "detail from server"})
		})

		c := newTestREST(t, handler)
		_, err := c.GetDocument(context.Background(), "d1")
		require.ErrorIs(t, err, tt.want, "status %d", tt.status)
		require.ErrorContains(t, err, "detail from server")
	}
}

func TestREST_NetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := NewREST(srv.URL, "k", nil, time.Second, logging.NewNop())
	srv.Close()

	_, err := c.ListDocuments(context.Background(), "u1")
	require.ErrorIs(t, err, common.ErrTransient)
}

func TestREST_ContextCancellationIsNotTransient(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	c := newTestREST(t, handler)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := c.ListDocuments(ctx, "u1")
		done <- err
	}()

	cancel()
	err := <-done
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
	require.False(t, errors.Is(err, common.ErrTransient))
}

func TestREST_NoTokenProviderSendsNoBearer(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]models.DocumentSummary{})
	}))
	t.Cleanup(srv.Close)

	c := NewREST(srv.URL, "k", nil, time.Second, logging.NewNop())
	_, err := c.ListDocuments(context.Background(), "u1")
	require.NoError(t, err)
	require.Empty(t, auth)
}
