package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "none"
	versionShort bool
)

// SetVersionInfo records the values injected with -ldflags at build time.
func SetVersionInfo(version, commit string) {
	buildVersion = version
	buildCommit = commit
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the strapi-github build",
	Long: `Show the strapi-github release, the commit it was built from and the Go
toolchain used. Include this output when reporting a patching problem.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeVersion(cmd.OutOrStdout(), versionShort)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the release")
	rootCmd.AddCommand(versionCmd)
}

func writeVersion(w io.Writer, short bool) error {
	if short {
		_, err := fmt.Fprintln(w, buildVersion)

		return err
	}

	_, err := fmt.Fprintf(w, "strapi-github %s\n  commit: %s\n  go:     %s %s/%s\n",
		buildVersion, buildCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	return err
}
