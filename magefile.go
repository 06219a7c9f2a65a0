//go:build mage
// +build mage

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/sh"
)

// Default is the default build target.
var Default = Build

const binary = "tirag"

// All cleans output, lints, builds, and runs both test suites.
func All(ctx context.Context) error {
	for _, step := range []func(context.Context) error{Clean, Lint, Build, Test, Integration} {
		if err := step(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Build builds the tirag binary
func Build(ctx context.Context) error {
	args := []string{"-o", binary, "./cmd/tirag"}

	ldflags, err := getLdflags()
	if err != nil {
		return err
	}
	args = append([]string{"-ldflags", ldflags}, args...)

	if cgo_enabled := os.Getenv("CGO_ENABLED"); cgo_enabled == "0" {
		args = append([]string{"-a"}, args...)
	}

	return sh.RunV("go", append([]string{"build"}, args...)...)
}

// Clean removes the binary and the test reports.
func Clean(ctx context.Context) error {
	for _, artifact := range []string{binary, "report.xml", "test/report.xml"} {
		if err := sh.Rm(artifact); err != nil {
			return err
		}
	}

	return nil
}

// Lint checks formatting and runs golangci-lint over the module, magefile included.
func Lint(ctx context.Context) error {
	unformatted, err := sh.Output("gofmt", "-l", "cmd", "internal", "test", "magefile.go")
	if err != nil {
		return err
	}
	if unformatted != "" {
		return fmt.Errorf("files need gofmt:\n%s", unformatted)
	}

	return sh.RunV("golangci-lint", "run", "--build-tags", "mage", "./...")
}

// LintFix rewrites what gofmt and golangci-lint can fix, then tidies go.mod.
func LintFix(ctx context.Context) error {
	if err := sh.RunV("gofmt", "-w", "cmd", "internal", "test", "magefile.go"); err != nil {
		return err
	}

	if err := sh.RunV("golangci-lint", "run", "--build-tags", "mage", "--fix", "./..."); err != nil {
		return err
	}

	return sh.RunV("go", "mod", "tidy")
}

// Test executes the unit tests. Run `mage integration` for the end-to-end suite.
func Test(ctx context.Context) error {
	// The integration suite drives the built binary, so it is kept out of here.
	return (makeTestTask("./internal/...", "./cmd/..."))(ctx)
}

// Integration builds the binary and runs the end-to-end suite against it.
func Integration(ctx context.Context) error {
	if err := Build(ctx); err != nil {
		return err
	}

	return (makeTestTask("./test/..."))(ctx)
}

func makeTestTask(args ...string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ldflags, err := getLdflags()
		if err != nil {
			return err
		}
		args = append([]string{"-ldflags", ldflags}, args...)

		if report := os.Getenv("REPORT"); report != "" {
			return sh.RunV("ginkgo", append([]string{"-p", "--junit-report=report.xml"}, args...)...)
		}

		cmd := exec.Command("command", "-v", "ginkgo")
		if err := cmd.Run(); err != nil {
			return sh.RunV("go", append([]string{"test"}, args...)...)
		}

		return sh.RunV("ginkgo", append([]string{"-p"}, args...)...)
	}
}

func getLdflags() (string, error) {
	if ldflags := os.Getenv("LDFLAGS"); ldflags != "" {
		return ldflags, nil
	}

	version := os.Getenv("VERSION")
	if version == "" {
		sha, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
		if err != nil {
			return "", err
		}
		version = "0.0.0+git." + strings.TrimSpace(string(sha))
	}

	return fmt.Sprintf("-X github.com/rwx-research/tirag/cmd/tirag/config.Version=%v", version), nil
}
