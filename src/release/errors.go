package release

import "errors"

var (
	// ErrAlreadyPublished means the publish-time guard found the computed
	// version already present in the registry.
	ErrAlreadyPublished = errors.New("version already published")

	// ErrCIOnly means a stable release was attempted outside CI without a
	// version override.
	ErrCIOnly = errors.New("stable releases are CI-only (or pass an explicit version)")

	// ErrNoTag means a stable release ran under CI but no git tag was
	// present in the environment.
	ErrNoTag = errors.New("no git tag found in the CI environment")

	// ErrUnexpectedProcess means the command named a release process other
	// than nightly or stable.
	ErrUnexpectedProcess = errors.New("unexpected release process")
)
