// Package core is the orchestration layer. It composes transports,
// sessions, and capabilities into the two operational modes of the
// exchange and provides a builder that selects the right mode from a
// Config.
//
// Architecture layers (bottom → top):
//
//	wire → session → capability → core → cmd (CLI)
package core

import "context"

// Mode represents a complete operational mode of shout (listen or
// connect). Each mode owns its full lifecycle from connection
// establishment to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
