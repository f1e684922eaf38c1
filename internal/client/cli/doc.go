// Package cli provides the interactive TokenQuest command-line client.
//
// It wires configuration, the selected RemoteStore backend, the local
// cache and the application services into a REPL. Typical flow: log in
// (online with offline fallback), list missions and rewards, complete and
// redeem them, and watch the energy balance change.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
