// Package cli provides the interactive Inkwell command-line client.
//
// It wires configuration, session persistence, the REST gateway, the
// document cache, and the sharing workflow into an interactive REPL.
// Typical flow: restore a persisted session, then execute user commands
// against the cached document list.
//
// Key features:
//   - Login / Logout with a persisted session
//   - List / open / create / edit documents backed by a TTL cache
//   - Publish / unpublish with slug suggestions
//   - Debounced full-text search
//   - Share / unshare documents and inspect collaborator history
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
