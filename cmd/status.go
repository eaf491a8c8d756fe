package cmd

import (
	"github.com/spf13/cobra"

	"github.com/donaldgifford/strapi-github/internal/status"
)

var statusOutputFormat string

var statusCmd = &cobra.Command{
	Use:   "status [project-dir]",
	Short: "Show which parts of the integration are installed",
	Long: `Report whether the generated files exist, whether src/index.ts registers
the webhook at bootstrap, and which .env variables are still undefined.
Nothing is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutputFormat, "output", "o", "text", "output format (text, json)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	opts := &status.Opts{
		ProjectDir:   dir,
		OutputFormat: statusOutputFormat,
		Writer:       cmd.OutOrStdout(),
	}

	_, err := status.Run(opts)

	return err
}
