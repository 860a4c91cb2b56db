// Package main provides the relmod CLI: automated versioning and publishing
// of a module through the ordered release pipeline.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"relmod-agent/src/cienv"
	"relmod-agent/src/logger"
	"relmod-agent/src/project"
	"relmod-agent/src/registry"
	"relmod-agent/src/release"
)

var (
	envConfig   *cienv.Config
	projectFile string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "relmod",
	Short: "relmod - automated module release pipeline",
	Long: `relmod automates versioning and publishing of a module through a
sequence of ordered, failable steps: metadata validation, dependency and
compatibility checks, tests, signed artifact publishing and release
promotion.

Two release flavors exist:
- nightly: date-stamped pre-release from the current development version
- stable:  tag-driven release, normally run from CI on a git tag`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		envConfig = cienv.LoadFromEnv()
	},
}

// releaseModuleCmd runs the textual release invocation:
// relmod release-module release-process <nightly|stable> [version <v>] [skip-tests] [cross-build]
var releaseModuleCmd = &cobra.Command{
	Use:   "release-module release-process <nightly|stable> [version <v>] [skip-tests] [cross-build]",
	Short: "Run the release pipeline for the selected flavor",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		releaseCommand, err := release.ParseCommand(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid release command: %v\n", err)
			os.Exit(1)
		}
		runRelease(releaseCommand)
	},
}

// nightlyCmd is the convenience alias for "release-module release-process nightly".
var nightlyCmd = &cobra.Command{
	Use:   "nightly [version <v>] [skip-tests] [cross-build]",
	Short: "Release a date-stamped nightly version",
	Run: func(cmd *cobra.Command, args []string) {
		runAlias(release.Nightly, args)
	},
}

// stableCmd is the convenience alias for "release-module release-process stable".
var stableCmd = &cobra.Command{
	Use:   "stable [version <v>] [skip-tests] [cross-build]",
	Short: "Release a stable version from a git tag (CI-only without a version)",
	Run: func(cmd *cobra.Command, args []string) {
		runAlias(release.Stable, args)
	},
}

// envCmd prints the detected CI environment, secrets redacted.
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show the detected CI environment",
	Run: func(cmd *cobra.Command, args []string) {
		if envConfig.CI == nil {
			fmt.Println("Not running under CI")
		} else {
			ci := envConfig.CI
			fmt.Printf("CI:            %s\n", ci.Name)
			fmt.Printf("Repository:    %s\n", ci.Repo)
			fmt.Printf("Branch:        %s\n", ci.Branch)
			fmt.Printf("Commit:        %s\n", ci.Commit)
			fmt.Printf("Build number:  %s\n", ci.BuildNumber)
			fmt.Printf("Build URL:     %s\n", ci.BuildURL)
			fmt.Printf("Job number:    %s\n", ci.JobNumber)
			fmt.Printf("Pull request:  %s\n", ci.PullRequest)
			fmt.Printf("Tag:           %s\n", ci.Tag)
		}
		fmt.Printf("Test mode:     %v\n", envConfig.TestMode)
		fmt.Printf("Registry auth: %s\n", redact(envConfig.Credentials.RegistryToken))
		fmt.Printf("Release auth:  %s\n", redact(envConfig.Credentials.ReleaseToken))
		fmt.Printf("PGP key:       %s\n", redact(envConfig.Credentials.PGPPassphrase))
	},
}

// failureReport renders a release failure for the operator. Known registry
// failures are wrapped with their remediation hints before printing.
func failureReport(err error) string {
	return fmt.Sprintf("Release failed: %v", registry.WrapError(err))
}

func redact(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	return "(set)"
}

func runAlias(flavor release.Flavor, args []string) {
	tokens := append([]string{"release-process", string(flavor)}, args...)
	releaseCommand, err := release.ParseCommand(tokens)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid release command: %v\n", err)
		os.Exit(1)
	}
	runRelease(releaseCommand)
}

func runRelease(cmd release.Command) {
	log := logger.NewConsoleLogger()

	proj, err := project.Load(projectFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	runner, cleanup, err := buildRunner(envConfig, proj, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up release pipeline: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	res := runner.Run(context.Background(), cmd)
	if res.Failed() {
		fmt.Fprintln(os.Stderr, failureReport(res.Err))
		os.Exit(1)
	}

	fmt.Printf("Released %s %s (next development version %s)\n",
		proj.Module, res.State.Current, res.State.Next)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectFile, "config", project.DefaultFile, "path to the project release configuration")
	rootCmd.AddCommand(releaseModuleCmd)
	rootCmd.AddCommand(nightlyCmd)
	rootCmd.AddCommand(stableCmd)
	rootCmd.AddCommand(envCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
