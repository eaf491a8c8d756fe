package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/strapi-github/internal/config"
	"github.com/donaldgifford/strapi-github/internal/events"
	"github.com/donaldgifford/strapi-github/internal/getter"
	"github.com/donaldgifford/strapi-github/internal/install"
	"github.com/donaldgifford/strapi-github/internal/setup"
	"github.com/donaldgifford/strapi-github/internal/ui"
	"github.com/donaldgifford/strapi-github/templates"
)

var (
	templatesSrc string
	templatesRef string
	eventFlags   []string
	envFlags     []string
	useDefaults  bool
	noInstall    bool
)

var setupCmd = &cobra.Command{
	Use:   "setup [target-dir]",
	Short: "Install the GitHub pipeline integration into a Strapi project",
	Long: `Copy the integration sources into a Strapi project, bake the selected
webhook events into src/util/set-up-github-webhook.ts, register the webhook
in the bootstrap hook of src/index.ts, add the GITHUB_* variables to .env
and install the Octokit packages.

Templates default to the set built into the binary. --templates accepts a
local directory or any go-getter source, for example
"github.com/acme/strapi-templates//github?ref=v2".

Without --event or --defaults the events are chosen interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVarP(&templatesSrc, "templates", "t", "", "template directory or go-getter URL (default: built-in templates)")
	setupCmd.Flags().StringVar(&templatesRef, "ref", "", "git ref for a remote template source")
	setupCmd.Flags().StringArrayVarP(&eventFlags, "event", "e", nil, "webhook event to subscribe to (can be repeated)")
	setupCmd.Flags().StringArrayVar(&envFlags, "env", nil, "value for a new .env entry (KEY=value, can be repeated)")
	setupCmd.Flags().BoolVar(&useDefaults, "defaults", false, "use the events from the config file without prompting")
	setupCmd.Flags().BoolVar(&noInstall, "no-install", false, "skip installing npm dependencies")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	w := ui.NewWriter(noColor)

	chooser, err := buildChooser(cfg, w, eventFlags, useDefaults, os.Stdin)
	if err != nil {
		return err
	}

	fsys, cleanup, err := resolveTemplates(cmd.Context(), firstNonEmpty(templatesSrc, cfg.Templates))
	if err != nil {
		return err
	}
	defer cleanup()

	opts := &setup.Opts{
		TargetDir:      targetDir,
		Templates:      fsys,
		Chooser:        chooser,
		EnvValues:      mergeEnv(cfg.Env, parseOverrides(envFlags)),
		SkipInstall:    noInstall || cfg.Install.Disabled,
		PackageManager: cfg.Install.PackageManager,
		Packages:       cfg.Install.Packages,
		Logger:         slog.Default(),
	}

	result, err := setup.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	printSetupResult(w, opts, result)

	return nil
}

// buildChooser picks how events are collected: explicit names, the config
// defaults, or an interactive prompt on stdin.
func buildChooser(cfg *config.Config, w *ui.Writer, names []string, defaults bool, stdin *os.File) (events.Chooser, error) {
	switch {
	case len(names) > 0:
		for _, e := range names {
			if !events.IsCandidate(e) {
				w.Warningf("%q is not a known Strapi webhook event", e)
			}
		}

		return events.StaticChooser(names), nil
	case defaults:
		if len(cfg.Events) == 0 {
			w.Warning("no default events configured; the webhook will subscribe to nothing")
		}

		return events.StaticChooser(cfg.Events), nil
	case !ui.IsTerminal(stdin):
		return nil, fmt.Errorf("stdin is not a terminal: pass --event or --defaults")
	default:
		return &events.HuhChooser{
			Preselected: cfg.Events,
			Accessible:  os.Getenv("ACCESSIBLE") != "",
		}, nil
	}
}

// resolveTemplates returns the template set for src. Local directories are
// read in place, anything else is fetched with go-getter into a temp dir.
func resolveTemplates(ctx context.Context, src string) (fs.FS, func(), error) {
	noop := func() {}

	if src == "" {
		return templates.FS, noop, nil
	}

	if getter.IsLocalDir(src) {
		slog.Debug("using local templates", "dir", src)

		return os.DirFS(src), noop, nil
	}

	pwd, err := os.Getwd()
	if err != nil {
		return nil, noop, fmt.Errorf("getting working directory: %w", err)
	}

	dir, cleanup, err := getter.New(slog.Default()).FetchTemp(ctx, src, getter.FetchOpts{
		Ref: templatesRef,
		Pwd: pwd,
	})
	if err != nil {
		return nil, noop, err
	}

	return os.DirFS(dir), cleanup, nil
}

func printSetupResult(w *ui.Writer, opts *setup.Opts, result *setup.Result) {
	total := 4

	w.Step(1, total, "Files written")

	for _, f := range result.Files {
		w.Item("+", f)
	}

	w.Step(2, total, "Webhook events")

	if len(result.Events) == 0 {
		w.Item("-", "(none)")
	}

	for _, e := range result.Events {
		w.Item("+", e)
	}

	w.Step(3, total, "Entry point: "+result.Decision.String())

	w.Step(4, total, ".env")

	if len(result.EnvAdded) == 0 {
		w.Item("=", "all variables already defined")
	}

	for _, k := range result.EnvAdded {
		w.Item("+", k)
	}

	switch {
	case opts.SkipInstall:
		w.Info("dependency installation skipped")
	case !result.Installed:
		packages := opts.Packages
		if len(packages) == 0 {
			packages = install.DefaultPackages
		}

		w.Warningf("dependency installation failed; install %s manually", strings.Join(packages, " "))
	}

	w.Successf("GitHub integration installed in %s", opts.TargetDir)
}

// parseOverrides converts KEY=value strings to a map.
func parseOverrides(flags []string) map[string]string {
	overrides := make(map[string]string, len(flags))

	for _, s := range flags {
		key, value, found := strings.Cut(s, "=")
		if found {
			overrides[key] = value
		}
	}

	return overrides
}

// mergeEnv layers overrides on top of base without modifying either.
func mergeEnv(base, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overrides))
	maps.Copy(merged, base)
	maps.Copy(merged, overrides)

	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
