package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/inkwell/internal/common"
	"github.com/dmitrijs2005/inkwell/internal/logging"
	"github.com/dmitrijs2005/inkwell/internal/models"
)

// REST talks JSON over HTTP to the hosted Inkwell service. Every request
// carries the project API key; authenticated requests additionally carry the
// session bearer token supplied by the TokenProvider.
type REST struct {
	baseURL    string
	apiKey     string
	tokens     TokenProvider
	httpClient *http.Client
	logger     logging.Logger
}

func NewREST(baseURL, apiKey string, tokens TokenProvider, timeout time.Duration, logger logging.Logger) *REST {
	return &REST{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// do performs one round-trip: marshals body (when non-nil), attaches headers,
// maps non-2xx statuses onto the error taxonomy, and decodes the response
// into out (when non-nil).
func (c *REST) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.ApiKeyHeaderName, c.apiKey)
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())

	if c.tokens != nil {
		if token, err := c.tokens.AccessToken(); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Cancellation belongs to the caller; everything else on the wire
		// is retryable by re-invocation.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		err := statusError(resp)
		c.logger.Debug(ctx, "request failed", "method", method, "path", path, "status", resp.StatusCode)
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// statusError maps an HTTP failure onto the error taxonomy, keeping the
// server-provided detail as context.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	detail := payload.Error
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	var base error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		base = common.ErrUnauthenticated
	case http.StatusForbidden:
		base = common.ErrForbidden
	case http.StatusNotFound:
		base = common.ErrNotFound
	case http.StatusConflict:
		base = common.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		base = common.ErrValidation
	default:
		if resp.StatusCode >= 500 {
			base = common.ErrTransient
		} else {
			base = common.ErrInvalidOperation
		}
	}

	return fmt.Errorf("%w: %s", base, detail)
}

func (c *REST) ListDocuments(ctx context.Context, ownerID string) ([]models.DocumentSummary, error) {
	q := url.Values{"owner_id": {ownerID}}

	var docs []models.DocumentSummary
	if err := c.do(ctx, http.MethodGet, "/v1/documents?"+q.Encode(), nil, &docs); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (c *REST) GetDocument(ctx context.Context, documentID string) (models.DocumentSummary, error) {
	var doc models.DocumentSummary
	if err := c.do(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(documentID), nil, &doc); err != nil {
		return models.DocumentSummary{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (c *REST) CreateDocument(ctx context.Context, ownerID, title, content string) (models.DocumentSummary, error) {
	body := struct {
		OwnerID string `json:"owner_id"`
		Title   string `json:"title"`
		Content string `json:"content,omitempty"`
	}{OwnerID: ownerID, Title: title, Content: content}

	var doc models.DocumentSummary
	if err := c.do(ctx, http.MethodPost, "/v1/documents", body, &doc); err != nil {
		return models.DocumentSummary{}, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

func (c *REST) UpdateDocument(ctx context.Context, documentID string, patch models.DocumentPatch) (models.DocumentSummary, error) {
	var doc models.DocumentSummary
	if err := c.do(ctx, http.MethodPatch, "/v1/documents/"+url.PathEscape(documentID), patch, &doc); err != nil {
		return models.DocumentSummary{}, fmt.Errorf("update document: %w", err)
	}
	return doc, nil
}

func (c *REST) DeleteDocument(ctx context.Context, documentID string) error {
	if err := c.do(ctx, http.MethodDelete, "/v1/documents/"+url.PathEscape(documentID), nil, nil); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (c *REST) SearchDocuments(ctx context.Context, ownerID, query string) ([]models.DocumentSummary, error) {
	q := url.Values{"owner_id": {ownerID}, "q": {query}}

	var docs []models.DocumentSummary
	if err := c.do(ctx, http.MethodGet, "/v1/documents/search?"+q.Encode(), nil, &docs); err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return docs, nil
}

func (c *REST) LookupProfileByEmail(ctx context.Context, email string) (models.Profile, error) {
	q := url.Values{"email": {email}}

	var p models.Profile
	if err := c.do(ctx, http.MethodGet, "/v1/profiles?"+q.Encode(), nil, &p); err != nil {
		return models.Profile{}, fmt.Errorf("lookup profile: %w", err)
	}
	return p, nil
}

func (c *REST) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, http.MethodGet, "/v1/profiles/"+url.PathEscape(userID), nil, &p); err != nil {
		return models.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (c *REST) CreatePermission(ctx context.Context, documentID, subjectID string, role models.Role, granterID string) (models.PermissionRecord, error) {
	body := struct {
		SubjectID string      `json:"user_id"`
		Role      models.Role `json:"role"`
		GrantedBy string      `json:"granted_by"`
	}{SubjectID: subjectID, Role: role, GrantedBy: granterID}

	path := "/v1/documents/" + url.PathEscape(documentID) + "/permissions"

	var rec models.PermissionRecord
	if err := c.do(ctx, http.MethodPost, path, body, &rec); err != nil {
		return models.PermissionRecord{}, fmt.Errorf("create permission: %w", err)
	}
	return rec, nil
}

func (c *REST) RevokePermission(ctx context.Context, documentID, subjectID, revokerID string) error {
	body := struct {
		RevokedBy string `json:"revoked_by"`
	}{RevokedBy: revokerID}

	path := "/v1/documents/" + url.PathEscape(documentID) + "/permissions/" + url.PathEscape(subjectID) + "/revoke"

	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("revoke permission: %w", err)
	}
	return nil
}

func (c *REST) ListPermissions(ctx context.Context, documentID string) ([]models.PermissionRecord, error) {
	path := "/v1/documents/" + url.PathEscape(documentID) + "/permissions"

	var recs []models.PermissionRecord
	if err := c.do(ctx, http.MethodGet, path, nil, &recs); err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return recs, nil
}
