package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <fixture.yaml>",
	Short: "Apply a YAML fixture to the database",
	Long: `Apply a YAML fixture of guilds, roles, channels, overwrites, users and
members. Every record goes through the same validation as the HTTP API.

Use "-" to read the fixture from stdin.

Example:
  hata seed fixtures/guild.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		in := os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open fixture: %w", err)
			}
			defer f.Close()
			in = f
		}

		stats, err := a.svcs.Fixture.Apply(cmd.Context(), in)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "applied %d guilds, %d roles, %d channels, %d users, %d members\n",
			stats.Guilds, stats.Roles, stats.Channels, stats.Users, stats.Members)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
