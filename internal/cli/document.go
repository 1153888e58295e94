package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/inkwell/internal/common"
	"github.com/dmitrijs2005/inkwell/internal/models"
)

// resolveDoc turns a command argument into a document id. Digits are read as
// 1-based positions in the most recently printed list; anything else is
// treated as a document id.
func (a *App) resolveDoc(ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(a.lastList) {
			return "", fmt.Errorf("no document at position %d, run 'list' first: %w", n, common.ErrValidation)
		}
		return a.lastList[n-1].ID, nil
	}
	return ref, nil
}

// renderList prints a numbered overview and remembers it so later commands
// can address documents by position. Public documents are marked with '*'.
func (a *App) renderList(docs []models.DocumentSummary) {
	a.lastList = docs
	if len(docs) == 0 {
		printlnFn("No documents yet. Use 'new' to create one.")
		return
	}
	for i, d := range docs {
		marker := " "
		if d.Public {
			marker = "*"
		}
		printlnFn(fmt.Sprintf("%3d.%s %-40s  %-10s %6d words  %s",
			i+1, marker, truncate(d.Title, 40), d.Status, d.WordCount,
			d.UpdatedAt.Format("2006-01-02 15:04")))
	}
}

func (a *App) renderDoc(d models.DocumentSummary) {
	printlnFn("Title:  ", d.Title)
	printlnFn("Status: ", d.Status)
	printlnFn("Words:  ", d.WordCount)
	if d.Public {
		printlnFn("Public: ", "/"+d.Slug)
	}
	printlnFn("Updated:", d.UpdatedAt.Format(time.RFC3339))
	if d.Excerpt != "" {
		printlnFn("---")
		printlnFn(d.Excerpt)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// List prints the current user's documents, served from the cache while it
// is fresh. When the refresh fails but an earlier list is still cached, the
// stale list is shown instead of an empty screen.
func (a *App) List(ctx context.Context) error {
	docs, err := a.docs.List(ctx)
	if err != nil {
		if cached, fetchedAt, ok := a.docs.Cached(ctx); ok {
			printlnFn("Refresh failed:", friendlyError(err))
			printlnFn(fmt.Sprintf("Showing cached list from %s.", fetchedAt.Format("15:04:05")))
			a.renderList(cached)
			return nil
		}
		printlnFn("Error:", friendlyError(err))
		return err
	}
	a.renderList(docs)
	return nil
}

// Refresh refetches the list unconditionally, coalescing with any fetch
// already in flight.
func (a *App) Refresh(ctx context.Context) error {
	docs, err := a.docs.ForceRefresh(ctx)
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}
	a.renderList(docs)
	return nil
}

// Open shows a single document.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: open <position|id>")
		return nil
	}
	id, err := a.resolveDoc(args[0])
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}
	doc, err := a.docs.Get(ctx, id)
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}
	a.renderDoc(doc)
	return nil
}

// New collects a title and body and creates the document. The word count
// shown is computed locally; the list view carries the server's number.
func (a *App) New(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Enter content", os.Stdout)
	if err != nil {
		return err
	}

	doc, err := a.docs.Create(ctx, title, content)
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}
	printlnFn(fmt.Sprintf("Created %q (~%d words).", doc.Title, models.CountWords(content)))
	return nil
}

// Edit replaces a document's content.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: edit <position|id>")
		return nil
	}
	id, err := a.resolveDoc(args[0])
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}

	content, err := getMultiline(a.reader, "Enter new content", os.Stdout)
	if err != nil {
		return err
	}

	doc, err := a.docs.Update(ctx, id, models.DocumentPatch{Content: &content})
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}
	printlnFn(fmt.Sprintf("Saved %q (~%d words).", doc.Title, models.CountWords(content)))
	return nil
}

// SetStatus moves a document to another lifecycle state.
func (a *App) SetStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		printlnFn("Usage: status <position|id> <draft|published|archived>")
		return nil
	}
	id, err := a.resolveDoc(args[0])
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}

	status := models.DocumentStatus(args[1])
	doc, err := a.docs.Update(ctx, id, models.DocumentPatch{Status: &status})
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}
	printlnFn(fmt.Sprintf("%q is now %s.", doc.Title, doc.Status))
	return nil
}

// Publish makes a document public under a slug. The slug derived from the
// title is offered as the default.
func (a *App) Publish(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: publish <position|id>")
		return nil
	}
	id, err := a.resolveDoc(args[0])
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}

	doc, err := a.docs.Get(ctx, id)
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}

	suggested := models.Slugify(doc.Title)
	slug, err := getSimpleText(a.reader, fmt.Sprintf("Public slug [%s]", suggested), os.Stdout)
	if err != nil {
		return err
	}
	if slug == "" {
		slug = suggested
	}

	public := true
	status := models.StatusPublished
	updated, err := a.docs.Update(ctx, id, models.DocumentPatch{Public: &public, Slug: &slug, Status: &status})
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}
	printlnFn(fmt.Sprintf("Published %q at /%s.", updated.Title, updated.Slug))
	return nil
}

// Unpublish withdraws a document from public view and returns it to draft.
func (a *App) Unpublish(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: unpublish <position|id>")
		return nil
	}
	id, err := a.resolveDoc(args[0])
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}

	public := false
	status := models.StatusDraft
	updated, err := a.docs.Update(ctx, id, models.DocumentPatch{Public: &public, Status: &status})
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}
	printlnFn(fmt.Sprintf("%q is private again.", updated.Title))
	return nil
}

// Remove deletes a document after an explicit confirmation.
func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: rm <position|id>")
		return nil
	}
	id, err := a.resolveDoc(args[0])
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}

	answer, err := getSimpleText(a.reader, "Delete this document? This cannot be undone (yes/no)", os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "yes") && !strings.EqualFold(answer, "y") {
		printlnFn("Cancelled.")
		return nil
	}

	if err := a.docs.Delete(ctx, id); err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}
	printlnFn("Deleted.")
	return nil
}
