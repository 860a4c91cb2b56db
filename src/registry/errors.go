package registry

import (
	"errors"
	"fmt"
)

var (
	ErrModuleNotFound = errors.New("module not found in registry")
	ErrAuthFailed     = errors.New("registry authentication failed")
	ErrRateLimited    = errors.New("registry rate limited")
	ErrConnectivity   = errors.New("registry unreachable")
)

// UserError carries an operator-facing message and a remediation hint
// alongside the underlying error. The dispatcher prints these verbatim when
// a release fails.
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// WrapError attaches a message and hint to known registry failures so the
// operator learns what to fix before retrying. Errors it does not recognize
// pass through unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrAuthFailed) {
		return &UserError{
			Message: "Registry authentication failed",
			Hint:    "Check that REGISTRY_API_TOKEN is set and has publish permissions.",
			Err:     err,
		}
	}

	if errors.Is(err, ErrModuleNotFound) {
		return &UserError{
			Message: "Module not found in the registry",
			Hint:    "First release of a module skips the compatibility check; check the module coordinate in release.yml if this is unexpected.",
			Err:     err,
		}
	}

	if errors.Is(err, ErrConnectivity) {
		return &UserError{
			Message: "Could not reach the package registry",
			Hint:    "Check network connectivity and the registryURL in release.yml, then retry the release command.",
			Err:     err,
		}
	}

	return err
}
