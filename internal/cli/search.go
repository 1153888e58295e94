package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/inkwell/internal/common"
)

// searchWaitSlack bounds how long the search command waits for the debounced
// result beyond the debounce delay and the request timeout.
const searchWaitSlack = 5 * time.Second

// Search runs the query through the debounced search pipeline and renders
// the matches. Results arrive on the pipeline's mailbox; an entry left over
// from an earlier, superseded query is recognized by its query text and
// skipped. Matches are numbered like the list view, so 'open <n>' works on
// them too.
func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: search <text>")
		return nil
	}
	query := strings.Join(args, " ")

	// Drop any undelivered result from a previous search.
	select {
	case <-a.search.Results():
	default:
	}

	a.search.Query(ctx, query)

	deadline := time.NewTimer(a.config.SearchDebounce + a.config.RequestTimeout + searchWaitSlack)
	defer deadline.Stop()

	for {
		select {
		case res := <-a.search.Results():
			if res.Query != query {
				continue
			}
			if res.Err != nil {
				printlnFn("Error:", friendlyError(res.Err))
				return res.Err
			}
			if len(res.Docs) == 0 {
				printlnFn("No matches.")
				return nil
			}
			a.renderList(res.Docs)
			return nil

		case <-deadline.C:
			printlnFn("Search timed out.")
			return fmt.Errorf("search %q timed out: %w", query, common.ErrTransient)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
