package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/inkwell/internal/logging"
	"github.com/dmitrijs2005/inkwell/internal/models"
)

// Searcher runs one full-text query. The Documents facade implements it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.DocumentSummary, error)
}

// SearchResult is one delivered outcome of a typeahead query.
type SearchResult struct {
	Query string
	Docs  []models.DocumentSummary
	Err   error
}

// Typeahead collapses rapid keystrokes into at most one remote search per
// pause in typing, and guarantees that displayed results always belong to
// the newest query: a response arriving after a newer query was issued is
// discarded by sequence comparison, never delivered.
type Typeahead struct {
	searcher Searcher
	delay    time.Duration
	logger   logging.Logger

	mu    sync.Mutex
	seq   uint64
	timer *time.Timer

	results chan SearchResult
}

func NewTypeahead(searcher Searcher, delay time.Duration, logger logging.Logger) *Typeahead {
	return &Typeahead{
		searcher: searcher,
		delay:    delay,
		logger:   logger,
		results:  make(chan SearchResult, 1),
	}
}

// Query registers a keystroke. The search fires after the debounce delay
// unless a newer query supersedes it first. A blank query cancels whatever
// is pending and immediately delivers an empty result, clearing the
// display.
func (t *Typeahead) Query(ctx context.Context, text string) {
	t.mu.Lock()
	t.seq++
	seq := t.seq
	if t.timer != nil {
		t.timer.Stop()
	}

	if strings.TrimSpace(text) == "" {
		t.timer = nil
		t.mu.Unlock()
		t.deliver(SearchResult{Query: text})
		return
	}

	t.timer = time.AfterFunc(t.delay, func() {
		t.run(ctx, seq, text)
	})
	t.mu.Unlock()
}

// Results delivers at most the latest outcome; an unread result is replaced
// when a newer one lands.
func (t *Typeahead) Results() <-chan SearchResult {
	return t.results
}

func (t *Typeahead) run(ctx context.Context, seq uint64, text string) {
	// The timer may have fired in the window before a newer Query could
	// stop it.
	if !t.isLatest(seq) {
		return
	}

	docs, err := t.searcher.Search(ctx, text)

	if !t.isLatest(seq) {
		t.logger.Debug(ctx, "discarding superseded search response", "query", text)
		return
	}
	t.deliver(SearchResult{Query: text, Docs: docs, Err: err})
}

func (t *Typeahead) isLatest(seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return seq == t.seq
}

// deliver replaces any unread result with the new one, so a slow consumer
// always sees the latest state.
func (t *Typeahead) deliver(r SearchResult) {
	for {
		select {
		case t.results <- r:
			return
		default:
			select {
			case <-t.results:
			default:
			}
		}
	}
}
