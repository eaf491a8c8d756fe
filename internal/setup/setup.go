// Package setup orchestrates installing the GitHub pipeline integration into
// a Strapi project.
package setup

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/donaldgifford/strapi-github/internal/envfile"
	"github.com/donaldgifford/strapi-github/internal/errs"
	"github.com/donaldgifford/strapi-github/internal/events"
	"github.com/donaldgifford/strapi-github/internal/install"
	"github.com/donaldgifford/strapi-github/internal/manifest"
	"github.com/donaldgifford/strapi-github/internal/patch"
	"github.com/donaldgifford/strapi-github/internal/render"
)

// Opts holds the options for the setup command.
type Opts struct {
	// TargetDir is the Strapi project root.
	TargetDir string

	// TemplatesDir is a local directory holding the template set.
	// Ignored when Templates is set.
	TemplatesDir string

	// Templates is the template set. When nil, TemplatesDir is used.
	Templates fs.FS

	// Chooser collects the webhook event selection.
	Chooser events.Chooser

	// Strategy patches the entry point. Defaults to patch.TextAnchor.
	Strategy patch.Strategy

	// EnvValues are written for .env keys that are not yet defined.
	EnvValues map[string]string

	// SkipInstall skips the dependency installation step.
	SkipInstall bool

	// PackageManager overrides lockfile detection for the install step.
	PackageManager string

	// Packages overrides the dependencies added by the install step.
	Packages []string

	// Runner executes the install command. Defaults to os/exec.
	Runner install.Runner

	// Logger for debug output.
	Logger *slog.Logger
}

// Result holds the output of a successful setup.
type Result struct {
	// Files lists the project-relative files written from templates.
	Files []string
	// Events is the selection baked into the webhook module.
	Events []string
	// Decision is what the patcher found in the entry point.
	Decision patch.Decision
	// EnvAdded lists the .env keys appended by this run.
	EnvAdded []string
	// Installed is true when the dependency install ran and succeeded.
	Installed bool
}

// Setup installs the integration from the templates in templatesDir. It is
// Run with default options apart from the chooser.
func Setup(ctx context.Context, targetDir, templatesDir string, chooser events.Chooser) (*Result, error) {
	return Run(ctx, &Opts{
		TargetDir:    targetDir,
		TemplatesDir: templatesDir,
		Chooser:      chooser,
	})
}

// Run executes the setup workflow. Steps run in order and the first failure
// aborts the rest; files written by earlier steps are not rolled back.
func Run(ctx context.Context, opts *Opts) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// 1. Validate inputs.
	if err := checkTargetDir(opts.TargetDir); err != nil {
		return nil, err
	}

	fsys, err := templateFS(opts)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	// 2. Copy static templates.
	copied, err := manifest.Copy(fsys, manifest.Default(), opts.TargetDir)
	if err != nil {
		return nil, fmt.Errorf("copying templates: %w", err)
	}

	result.Files = append(result.Files, copied...)
	logger.Debug("copied templates", "count", len(copied))

	// 3. Collect the event selection.
	selected, err := events.Select(ctx, opts.Chooser)
	if err != nil {
		return nil, err
	}

	result.Events = selected
	logger.Debug("selected events", "events", selected)

	// 4. Render the webhook module.
	if err := render.RenderFile(fsys, manifest.WebhookEntry, opts.TargetDir, selected); err != nil {
		return nil, fmt.Errorf("rendering webhook module: %w", err)
	}

	result.Files = append(result.Files, manifest.WebhookEntry.Dest)

	// 5. Patch the entry point.
	entryPoint := filepath.Join(opts.TargetDir, filepath.FromSlash(manifest.EntryPoint))

	decision, err := patch.PatchFile(entryPoint, opts.Strategy)
	if err != nil {
		return nil, fmt.Errorf("patching entry point: %w", err)
	}

	result.Decision = decision
	logger.Debug("patched entry point", "path", entryPoint, "decision", decision)

	// 6. Environment file.
	added, err := envfile.Ensure(filepath.Join(opts.TargetDir, manifest.EnvFile), envfile.Keys(), opts.EnvValues)
	if err != nil {
		return nil, fmt.Errorf("writing %s: %w", manifest.EnvFile, err)
	}

	result.EnvAdded = added

	// 7. Dependencies. The sources are already in place, so a failed install
	// is reported but does not fail setup.
	if !opts.SkipInstall {
		installOpts := &install.Opts{
			ProjectDir:     opts.TargetDir,
			PackageManager: opts.PackageManager,
			Packages:       opts.Packages,
			Runner:         opts.Runner,
			Logger:         logger,
		}

		if err := install.Run(ctx, installOpts); err != nil {
			logger.Warn("dependency installation failed", "err", err)
		} else {
			result.Installed = true
		}
	}

	logger.Info("github integration installed", "dir", opts.TargetDir, "files", len(result.Files), "entry_point", decision)

	return result, nil
}

func checkTargetDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("no target directory provided")
	}

	info, err := os.Stat(dir)
	if err != nil {
		return &errs.IOError{Op: "stat", Path: dir, Err: err}
	}

	if !info.IsDir() {
		return &errs.IOError{Op: "stat", Path: dir, Err: fmt.Errorf("not a directory")}
	}

	return nil
}

func templateFS(opts *Opts) (fs.FS, error) {
	if opts.Templates != nil {
		return opts.Templates, nil
	}

	if opts.TemplatesDir == "" {
		return nil, fmt.Errorf("no templates provided")
	}

	info, err := os.Stat(opts.TemplatesDir)
	if err != nil {
		return nil, &errs.IOError{Op: "stat", Path: opts.TemplatesDir, Err: err}
	}

	if !info.IsDir() {
		return nil, &errs.IOError{Op: "stat", Path: opts.TemplatesDir, Err: fmt.Errorf("not a directory")}
	}

	return os.DirFS(opts.TemplatesDir), nil
}
