package release

import (
	"fmt"
)

// Command is a parsed release invocation.
type Command struct {
	Flavor          Flavor
	VersionOverride string
	SkipTests       bool
	CrossBuild      bool
}

// ParseCommand parses the textual release invocation:
//
//	release-process <nightly|stable> [version <string>] [skip-tests] [cross-build]
//
// The release-process token and flavor are mandatory; the remaining flags
// are optional and order-independent. Parsing happens before any pipeline
// is built, so a bad invocation has no side effects.
func ParseCommand(args []string) (Command, error) {
	var cmd Command

	if len(args) == 0 || args[0] != "release-process" {
		return cmd, fmt.Errorf("expected the release-process token, got %v", args)
	}
	if len(args) < 2 {
		return cmd, fmt.Errorf("%w: missing flavor after release-process", ErrUnexpectedProcess)
	}

	switch Flavor(args[1]) {
	case Nightly:
		cmd.Flavor = Nightly
	case Stable:
		cmd.Flavor = Stable
	default:
		return cmd, fmt.Errorf("%w: %q (expected nightly or stable)", ErrUnexpectedProcess, args[1])
	}

	rest := args[2:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "version":
			if i+1 >= len(rest) {
				return cmd, fmt.Errorf("version flag requires a value")
			}
			i++
			cmd.VersionOverride = rest[i]
		case "skip-tests":
			cmd.SkipTests = true
		case "cross-build":
			cmd.CrossBuild = true
		default:
			return cmd, fmt.Errorf("unknown release option %q", rest[i])
		}
	}

	return cmd, nil
}
