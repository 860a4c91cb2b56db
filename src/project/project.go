// Package project loads the per-repository release configuration from a
// release.yml file: module coordinates, the registry endpoint, cross-build
// targets and the commands the host build tool runs for each pipeline step.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the conventional name of the project configuration file.
const DefaultFile = "release.yml"

// Commands maps pipeline steps onto host build-tool invocations. Each entry
// is a shell command line executed as an opaque, possibly-failing operation.
type Commands struct {
	// ListUnreleasedDeps prints unreleased (snapshot) dependencies, one per
	// line; empty output means the dependency graph is clean.
	ListUnreleasedDeps string `yaml:"listUnreleasedDeps"`
	// Test runs the test suite.
	Test string `yaml:"test"`
	// CompatCheck runs the binary-compatibility check against the version
	// given in the RELMOD_AGAINST_VERSION environment variable.
	CompatCheck string `yaml:"compatCheck"`
	// Publish signs and publishes artifacts for the version in
	// RELMOD_VERSION (and target in RELMOD_TARGET when cross-building).
	Publish string `yaml:"publish"`
	// Promote triggers repository-side release promotion.
	Promote string `yaml:"promote"`
}

// Project is the host-declared release configuration.
type Project struct {
	// Module is the coordinate the registry knows the module by.
	Module string `yaml:"module"`
	// Version is the host-declared current development version.
	Version string `yaml:"version"`
	// RegistryURL is the base URL of the package registry API.
	RegistryURL string `yaml:"registryURL"`
	// SCMURL points at the source repository; required release metadata.
	SCMURL string `yaml:"scmURL"`
	// License is the SPDX identifier of the module license; required
	// release metadata.
	License string `yaml:"license"`
	// CrossBuild enables cross-building statically for this project. The
	// command-line cross-build flag ORs with this.
	CrossBuild bool `yaml:"crossBuild"`
	// Targets lists the cross-build target identifiers.
	Targets []string `yaml:"targets"`
	// NotesDir holds per-version release notes files. Defaults to "notes".
	NotesDir string `yaml:"notesDir"`
	// NotificationTopic is the broker topic release events are published
	// to. Defaults to "module-releases".
	NotificationTopic string `yaml:"notificationTopic"`
	// Commands define the host build-tool boundary.
	Commands Commands `yaml:"commands"`
}

// Load reads and parses a release.yml file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project config: %w", err)
	}
	return Parse(data)
}

// Parse parses release.yml content.
func Parse(data []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project config: %w", err)
	}
	if p.NotesDir == "" {
		p.NotesDir = "notes"
	}
	if p.NotificationTopic == "" {
		p.NotificationTopic = "module-releases"
	}
	return &p, nil
}

// ValidateMetadata checks release metadata completeness. These are
// configuration errors and abort the pipeline before any side effect.
func (p *Project) ValidateMetadata() error {
	if p.Module == "" {
		return fmt.Errorf("project config is missing the module coordinate")
	}
	if p.Version == "" {
		return fmt.Errorf("project config declares an empty version")
	}
	if p.SCMURL == "" {
		return fmt.Errorf("project config is missing SCM information (scmURL)")
	}
	if p.License == "" {
		return fmt.Errorf("project config is missing a license")
	}
	if p.RegistryURL == "" {
		return fmt.Errorf("project config is missing the registry URL")
	}
	return nil
}

// NotesPath returns the release notes file for a version, trying
// notes/<version>.md then notes/<version>.markdown. Returns os.ErrNotExist
// wrapped when neither exists.
func (p *Project) NotesPath(version string) (string, error) {
	for _, ext := range []string{".md", ".markdown"} {
		path := filepath.Join(p.NotesDir, version+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no release notes found for version %s in %s: %w", version, p.NotesDir, os.ErrNotExist)
}
