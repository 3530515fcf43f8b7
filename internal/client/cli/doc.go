// Package cli provides the interactive command-line client for the account
// server.
//
// It wires configuration, the HTTP API client and the gRPC health probe into
// an interactive REPL. Typical flow: register or log in, then inspect and
// update the profile while a background watcher shows whether the server is
// reachable.
//
// Key features:
//   - Register (with avatar and optional cover image) / Login / Logout
//   - Refresh the session, change the password
//   - Show and update the profile, replace avatar or cover image
//   - Look up a channel and the watch history
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
