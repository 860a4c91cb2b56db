// Package cienv provides a read-only snapshot of the continuous-integration
// environment and registry credentials. The snapshot is taken once at process
// start and passed explicitly to the components that need it; nothing in the
// release pipeline reads environment variables after this point.
package cienv

import (
	"fmt"
	"os"
	"strings"
)

// Environment variable names consumed by LoadFromEnv.
const (
	EnvCI          = "CI"
	EnvCIName      = "CI_NAME"
	EnvRepo        = "CI_REPO_SLUG"
	EnvBranch      = "CI_BRANCH"
	EnvCommit      = "CI_COMMIT"
	EnvBuildDir    = "CI_BUILD_DIR"
	EnvBuildURL    = "CI_BUILD_URL"
	EnvBuildNumber = "CI_BUILD_NUMBER"
	EnvJobNumber   = "CI_JOB_NUMBER"
	EnvPullRequest = "CI_PULL_REQUEST"
	EnvTag         = "CI_TAG"

	EnvRegistryToken = "REGISTRY_API_TOKEN"
	EnvReleaseToken  = "RELEASE_TOKEN"
	EnvPGPPassphrase = "PGP_PASSPHRASE"

	EnvTestMode   = "RELMOD_TEST_MODE"
	EnvJournalDSN = "RELEASE_JOURNAL_DSN"
	EnvBrokers    = "KAFKA_BROKERS"
)

// Snapshot holds the CI build metadata for the current process. It is only
// populated when the process runs under CI.
type Snapshot struct {
	Name        string
	Repo        string
	Branch      string
	Commit      string
	BuildDir    string
	BuildURL    string
	BuildNumber string
	JobNumber   string
	PullRequest string
	Tag         string
}

// Credentials holds the secrets the publish and promote steps need.
type Credentials struct {
	// RegistryToken authenticates against the package registry.
	RegistryToken string
	// ReleaseToken authorizes repository-side release promotion.
	ReleaseToken string
	// PGPPassphrase unlocks the signing key used when publishing artifacts.
	PGPPassphrase string
}

// Config is the process-wide environment snapshot.
type Config struct {
	// CI is nil when the process is not running under continuous integration.
	CI          *Snapshot
	Credentials Credentials
	// TestMode makes the version decision engine append a build-unique
	// suffix so test publishes never collide with real ones.
	TestMode bool
	// JournalDSN, when set, enables the Postgres release journal.
	JournalDSN string
	// Brokers lists Kafka broker addresses for release notifications.
	// Empty means notifications stay in-process.
	Brokers []string
}

// LoadFromEnv builds the snapshot from the process environment. It never
// fails: missing credentials are detected later by the step that needs them,
// so purely local invocations (e.g. nightly dry runs) do not demand secrets
// up front.
func LoadFromEnv() *Config {
	cfg := &Config{
		Credentials: Credentials{
			RegistryToken: os.Getenv(EnvRegistryToken),
			ReleaseToken:  os.Getenv(EnvReleaseToken),
			PGPPassphrase: os.Getenv(EnvPGPPassphrase),
		},
		TestMode:   os.Getenv(EnvTestMode) != "",
		JournalDSN: os.Getenv(EnvJournalDSN),
	}

	if brokers := os.Getenv(EnvBrokers); brokers != "" {
		cfg.Brokers = splitList(brokers)
	}

	if os.Getenv(EnvCI) != "" {
		cfg.CI = &Snapshot{
			Name:        os.Getenv(EnvCIName),
			Repo:        os.Getenv(EnvRepo),
			Branch:      os.Getenv(EnvBranch),
			Commit:      os.Getenv(EnvCommit),
			BuildDir:    os.Getenv(EnvBuildDir),
			BuildURL:    os.Getenv(EnvBuildURL),
			BuildNumber: os.Getenv(EnvBuildNumber),
			JobNumber:   os.Getenv(EnvJobNumber),
			PullRequest: os.Getenv(EnvPullRequest),
			Tag:         os.Getenv(EnvTag),
		}
	}

	return cfg
}

// RequirePublishCredentials verifies the secrets needed to sign and publish
// artifacts are present.
func (c *Config) RequirePublishCredentials() error {
	if c.Credentials.RegistryToken == "" {
		return fmt.Errorf("%s environment variable is required to publish", EnvRegistryToken)
	}
	if c.Credentials.PGPPassphrase == "" {
		return fmt.Errorf("%s environment variable is required to sign artifacts", EnvPGPPassphrase)
	}
	return nil
}

// RequireReleaseToken verifies the promotion secret is present.
func (c *Config) RequireReleaseToken() error {
	if c.Credentials.ReleaseToken == "" {
		return fmt.Errorf("%s environment variable is required to promote a release", EnvReleaseToken)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
