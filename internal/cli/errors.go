package cli

import (
	"errors"

	"github.com/dmitrijs2005/inkwell/internal/common"
)

// friendlyError maps the client's error categories onto messages suitable
// for the terminal. Validation and invalid-operation errors already carry a
// human-readable explanation, so they pass through unchanged.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return "you are not signed in (use 'login')"
	case errors.Is(err, common.ErrForbidden):
		return "you do not have permission to do that"
	case errors.Is(err, common.ErrNotFound):
		return "nothing matches that document or collaborator"
	case errors.Is(err, common.ErrConflict):
		return "that already exists; refresh and try again"
	case errors.Is(err, common.ErrTransient):
		return "the service is unreachable right now; try again shortly"
	default:
		return err.Error()
	}
}
