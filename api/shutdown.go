// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown unifies orderly component teardown, for callers that
// manage several shutdownable components through one uniform registry
// instead of bespoke Close/Shutdown calls. In this library a Passer
// provides it through Passer.AsGracefulShutdown; rendezvous.Listener
// and the control types do not implement it.
type GracefulShutdown interface {
	// Shutdown performs an orderly stop and releases resources. Returns
	// an error only if teardown itself failed, not for the reason the
	// component was shut down.
	Shutdown() error
}
