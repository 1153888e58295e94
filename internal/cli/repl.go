package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context) error
	Refresh(ctx context.Context) error
	Open(ctx context.Context, args []string) error
	New(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	SetStatus(ctx context.Context, args []string) error
	Publish(ctx context.Context, args []string) error
	Unpublish(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Share(ctx context.Context, args []string) error
	Unshare(ctx context.Context, args []string) error
	Collaborators(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the Inkwell CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and the rest as arguments, and dispatches to methods on 'a'.
// Unknown commands are reported back to the user. The loop exits on scanner
// EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not signed in:
//	  - help                 — show available commands
//	  - login                — authenticate
//	  - exit | quit          — leave the program
//
//	Signed in:
//	  - help                 — show available commands
//	  - list | l             — list your documents (cached)
//	  - refresh              — refetch the list, bypassing the cache
//	  - open <n|id>          — show one document
//	  - new                  — create a document
//	  - edit <n|id>          — replace a document's content
//	  - status <n|id> <s>    — set lifecycle status
//	  - publish <n|id>       — make public under a slug
//	  - unpublish <n|id>     — make private again
//	  - rm <n|id>            — delete (asks for confirmation)
//	  - search <text>        — debounced full-text search
//	  - share <n|id> <email> <role>
//	  - unshare <n|id> <email>
//	  - collabs <n|id> [all] — collaborators; "all" includes revoked
//	  - whoami, logout, exit | quit
//
// Any errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("inkwell %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, refresh, open, new, edit, status, publish, unpublish, rm, search, share, unshare, collabs, whoami, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "open":
			_ = a.Open(ctx, args)

		case "new":
			_ = a.New(ctx)

		case "edit":
			_ = a.Edit(ctx, args)

		case "status":
			_ = a.SetStatus(ctx, args)

		case "publish":
			_ = a.Publish(ctx, args)

		case "unpublish":
			_ = a.Unpublish(ctx, args)

		case "rm":
			_ = a.Remove(ctx, args)

		case "search":
			_ = a.Search(ctx, args)

		case "share":
			_ = a.Share(ctx, args)

		case "unshare":
			_ = a.Unshare(ctx, args)

		case "collabs":
			_ = a.Collaborators(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
