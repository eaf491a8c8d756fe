package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/strapi-github/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the Strapi events a webhook can subscribe to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, e := range events.Candidates() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), e); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
