package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/inkwell/internal/cache"
	"github.com/dmitrijs2005/inkwell/internal/config"
	"github.com/dmitrijs2005/inkwell/internal/filex"
	"github.com/dmitrijs2005/inkwell/internal/gateway"
	"github.com/dmitrijs2005/inkwell/internal/logging"
	"github.com/dmitrijs2005/inkwell/internal/models"
	"github.com/dmitrijs2005/inkwell/internal/services"
	"github.com/dmitrijs2005/inkwell/internal/session"
	"github.com/dmitrijs2005/inkwell/internal/sharing"
)

// documentService is the document surface the CLI drives.
// *services.Documents satisfies it; tests provide a stub.
type documentService interface {
	List(ctx context.Context) ([]models.DocumentSummary, error)
	ForceRefresh(ctx context.Context) ([]models.DocumentSummary, error)
	Get(ctx context.Context, documentID string) (models.DocumentSummary, error)
	Create(ctx context.Context, title, content string) (models.DocumentSummary, error)
	Update(ctx context.Context, documentID string, patch models.DocumentPatch) (models.DocumentSummary, error)
	Delete(ctx context.Context, documentID string) error
	Cached(ctx context.Context) ([]models.DocumentSummary, time.Time, bool)
	Reset()
}

// sharingService is the collaborator surface the CLI drives.
// *services.Sharing satisfies it.
type sharingService interface {
	Share(ctx context.Context, documentID, email string, role models.Role) (models.PermissionRecord, error)
	Unshare(ctx context.Context, documentID, email string) error
	Collaborators(ctx context.Context, documentID string) ([]services.Collaborator, error)
	History(ctx context.Context, documentID string) ([]services.Collaborator, error)
}

// searchService is the debounced search pipeline. *services.Typeahead
// satisfies it.
type searchService interface {
	Query(ctx context.Context, text string)
	Results() <-chan services.SearchResult
}

// authGateway is the slice of the REST gateway used for sign-in/out.
type authGateway interface {
	SignInWithPassword(ctx context.Context, email string, password []byte) (session.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
}

// sessionManager is the identity surface the CLI reads and mutates.
// *session.Manager satisfies it.
type sessionManager interface {
	Restore(ctx context.Context) error
	SetSession(ctx context.Context, s session.Session) error
	Clear(ctx context.Context) error
	Current() (session.Session, bool)
}

type App struct {
	config *config.Config
	logger logging.Logger

	session sessionManager
	auth    authGateway
	docs    documentService
	sharing sharingService
	search  searchService

	reader *bufio.Reader

	// lastList keeps the most recently rendered list so commands accept
	// 1-based positions as well as document ids. Only the REPL goroutine
	// touches it.
	lastList []models.DocumentSummary
}

func NewApp(c *config.Config) (*App, error) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logging.ParseLevel(c.LogLevel)})
	logger := logging.NewSlogLogger(slog.New(handler))

	store, err := newSessionStore(c)
	if err != nil {
		return nil, err
	}

	manager := session.NewManager(store, logger)
	gw := gateway.NewREST(c.ServiceURL, c.APIKey, manager, c.RequestTimeout, logger)

	docs := services.NewDocuments(cache.New(gw, c.CacheTTL, logger), manager, logger)
	share := services.NewSharing(sharing.NewResolver(gw, logger), gw, manager, logger)
	search := services.NewTypeahead(docs, c.SearchDebounce, logger)

	return &App{
		config:  c,
		logger:  logger,
		session: manager,
		auth:    gw,
		docs:    docs,
		sharing: share,
		search:  search,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// newSessionStore picks the session backend configured in c.
func newSessionStore(c *config.Config) (session.Store, error) {
	switch c.SessionBackend {
	case "memory":
		return session.NewMemoryStore(), nil
	case "file", "":
		path := c.SessionFile
		if path == "" {
			dir, err := filex.AppConfigDir("inkwell")
			if err != nil {
				return nil, fmt.Errorf("resolve session path: %w", err)
			}
			path = filepath.Join(dir, "session.json")
		}
		return session.NewFileStore(path), nil
	case "redis":
		return session.NewRedisStore(c.RedisURL, "inkwell")
	default:
		return nil, fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}
}

func (a *App) isLoggedIn() bool {
	_, ok := a.session.Current()
	return ok
}

// getStatus renders the prompt suffix: the signed-in email, if any.
func (a *App) getStatus() string {
	s, ok := a.session.Current()
	if !ok {
		return ""
	}
	return fmt.Sprintf("(%s)", s.Email)
}

// Run restores a persisted session and hands control to the REPL. It blocks
// until the user exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	if err := a.session.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
	}
	printlnFn("Inkwell CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
