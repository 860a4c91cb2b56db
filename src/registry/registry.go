// Package registry defines the contract the release pipeline requires from
// the external package index, and provides an HTTP implementation of it.
// The core needs exactly two capabilities: the latest published version of a
// module, and whether a specific version already exists.
package registry

import (
	"context"

	"relmod-agent/src/version"
)

// Client is the package-index boundary consumed by the release pipeline.
// Both calls may fail due to connectivity; such failures are hard failures
// for the current invocation.
type Client interface {
	// LatestVersion returns the most recent stable published version of a
	// module. Returns ErrModuleNotFound (wrapped) when the module has never
	// been published.
	LatestVersion(ctx context.Context, module string) (version.Version, error)

	// Exists reports whether a specific version of a module has already
	// been published. Used as the publish-time guard.
	Exists(ctx context.Context, module string, ver string) (bool, error)
}
