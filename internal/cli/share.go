package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/inkwell/internal/models"
	"github.com/dmitrijs2005/inkwell/internal/services"
)

// Share grants a role on a document to a registered user by email. The
// current user is the granter and therefore may not hand out a role above
// their own.
func (a *App) Share(ctx context.Context, args []string) error {
	if len(args) != 3 {
		printlnFn("Usage: share <position|id> <email> <viewer|commenter|editor|owner>")
		return nil
	}
	id, err := a.resolveDoc(args[0])
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}
	role, err := models.ParseRole(args[2])
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}

	rec, err := a.sharing.Share(ctx, id, args[1], role)
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}
	printlnFn(fmt.Sprintf("Granted %s to %s.", rec.Role, args[1]))
	return nil
}

// Unshare revokes a collaborator's access. The record is kept for history.
func (a *App) Unshare(ctx context.Context, args []string) error {
	if len(args) != 2 {
		printlnFn("Usage: unshare <position|id> <email>")
		return nil
	}
	id, err := a.resolveDoc(args[0])
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}

	if err := a.sharing.Unshare(ctx, id, args[1]); err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}
	printlnFn(fmt.Sprintf("Revoked access for %s.", args[1]))
	return nil
}

// Collaborators lists a document's active grants in grant order; with "all"
// it lists every grant ever made, revoked ones included.
func (a *App) Collaborators(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 || (len(args) == 2 && args[1] != "all") {
		printlnFn("Usage: collabs <position|id> [all]")
		return nil
	}
	id, err := a.resolveDoc(args[0])
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}

	var collabs []services.Collaborator
	if len(args) == 2 {
		collabs, err = a.sharing.History(ctx, id)
	} else {
		collabs, err = a.sharing.Collaborators(ctx, id)
	}
	if err != nil {
		printlnFn("Error:", friendlyError(err))
		return err
	}

	if len(collabs) == 0 {
		printlnFn("No collaborators.")
		return nil
	}
	for _, c := range collabs {
		printlnFn(formatCollaborator(c))
	}
	return nil
}

// formatCollaborator renders one grant line. When the profile lookup failed
// the bare subject id is shown instead of an email.
func formatCollaborator(c services.Collaborator) string {
	label := c.Profile.Email
	if c.Profile.DisplayName != "" {
		label = fmt.Sprintf("%s <%s>", c.Profile.DisplayName, c.Profile.Email)
	}
	if label == "" {
		label = c.Record.SubjectID
	}

	line := fmt.Sprintf("%-44s %-9s granted %s", label, c.Record.Role, c.Record.GrantedAt.Format("2006-01-02"))
	switch {
	case !c.Record.Active && c.Record.RevokedAt != nil:
		line += fmt.Sprintf("  (revoked %s)", c.Record.RevokedAt.Format("2006-01-02"))
	case c.Record.ExpiresAt != nil:
		line += fmt.Sprintf("  (expires %s)", c.Record.ExpiresAt.Format("2006-01-02"))
	}
	return line
}
