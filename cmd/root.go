// Package cmd defines the CLI commands for strapi-github.
package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/strapi-github/internal/config"
	"github.com/donaldgifford/strapi-github/internal/ui"
)

var (
	verbose bool
	noColor bool
	cfgFile string
)

// rootCmd is the base command for the strapi-github CLI.
var rootCmd = &cobra.Command{
	Use:   "strapi-github",
	Short: "Wire a GitHub pipeline trigger into a Strapi project",
	Long: `strapi-github installs a webhook that triggers a GitHub Actions workflow
whenever selected Strapi content events fire. It copies the integration
sources into the project, renders the webhook subscription, and patches
src/index.ts so the webhook is registered at bootstrap. Re-running it on an
already configured project is safe.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		initLogger()
	},
}

// Execute runs the root command and reports any error on stderr.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		ui.NewWriter(noColor).Error(err.Error())
	}

	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/strapi-github/config.yaml)")
}

func initLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}

	slog.Debug("loading config", "path", path)

	return config.Load(path)
}
