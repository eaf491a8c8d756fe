// Package install adds the integration's npm dependencies to the project.
package install

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultPackages are the runtime dependencies of the generated sources.
var DefaultPackages = []string{"@octokit/rest", "@octokit/auth-app"}

// Package managers understood by Detect and Command.
const (
	NPM  = "npm"
	Yarn = "yarn"
	PNPM = "pnpm"
)

// Runner executes a command in dir.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner runs commands with os/exec, streaming their output.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run starts name with args in dir and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	return cmd.Run()
}

// Opts configures dependency installation.
type Opts struct {
	// ProjectDir is the Strapi project root.
	ProjectDir string
	// PackageManager overrides lockfile detection when set.
	PackageManager string
	// Packages to add. Defaults to DefaultPackages.
	Packages []string
	// Runner executes the command. Defaults to an ExecRunner on stdout/stderr.
	Runner Runner
	// Logger for debug output.
	Logger *slog.Logger
}

// Detect picks the package manager from the lockfile present in dir.
func Detect(dir string) string {
	switch {
	case exists(filepath.Join(dir, "pnpm-lock.yaml")):
		return PNPM
	case exists(filepath.Join(dir, "yarn.lock")):
		return Yarn
	default:
		return NPM
	}
}

// Command returns the executable and arguments that add packages with pm.
func Command(pm string, packages []string) (string, []string, error) {
	var verb string

	switch pm {
	case NPM:
		verb = "install"
	case Yarn, PNPM:
		verb = "add"
	default:
		return "", nil, fmt.Errorf("unsupported package manager %q, must be one of: npm, yarn, pnpm", pm)
	}

	return pm, append([]string{verb}, packages...), nil
}

// Run installs the packages. A failed install is returned to the caller but
// leaves the generated files in place; the user can rerun the command by hand.
func Run(ctx context.Context, opts *Opts) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pm := opts.PackageManager
	if pm == "" {
		pm = Detect(opts.ProjectDir)
	}

	packages := opts.Packages
	if len(packages) == 0 {
		packages = DefaultPackages
	}

	name, args, err := Command(pm, packages)
	if err != nil {
		return err
	}

	runner := opts.Runner
	if runner == nil {
		runner = &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
	}

	logger.Debug("installing dependencies", "cmd", name, "args", args, "dir", opts.ProjectDir)

	if err := runner.Run(ctx, opts.ProjectDir, name, args...); err != nil {
		return fmt.Errorf("running %s %v: %w", name, args, err)
	}

	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
