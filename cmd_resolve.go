package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HuyaneMatsu/hata-sub016/models"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <channel-id> <user-id>",
	Short: "Print a user's permissions in a channel",
	Long: `Resolve the effective permissions of a user in a channel against the
persisted registry.

With --roles the user id is omitted and the permissions of a hypothetical
member holding exactly those roles are printed.

Example:
  hata resolve 1000 200
  hata resolve 1000 --roles 10,11 --json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		rawRoles, _ := cmd.Flags().GetStringSlice("roles")

		channelID, err := models.ParseSnowflake(args[0])
		if err != nil {
			return err
		}

		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		result := models.PermissionResult{ChannelID: channelID}

		if cmd.Flags().Changed("roles") {
			if len(args) != 1 {
				return fmt.Errorf("--roles cannot be combined with a user id")
			}
			req := &models.ResolveRolesRequest{RoleIDs: make([]models.Snowflake, 0, len(rawRoles))}
			for _, raw := range rawRoles {
				id, err := models.ParseSnowflake(strings.TrimSpace(raw))
				if err != nil {
					return err
				}
				req.RoleIDs = append(req.RoleIDs, id)
			}
			result.Permissions, err = a.svcs.Permission.PermissionsForRoles(channelID, req)
		} else {
			if len(args) != 2 {
				return fmt.Errorf("a user id is required unless --roles is given")
			}
			result.UserID, err = models.ParseSnowflake(args[1])
			if err != nil {
				return err
			}
			result.Permissions, err = a.svcs.Permission.PermissionsFor(channelID, result.UserID)
		}
		if err != nil {
			return err
		}
		result.Names = result.Permissions.Names()

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Fprintf(out, "%d\n", uint64(result.Permissions))
		for _, name := range result.Names {
			fmt.Fprintf(out, "  %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().Bool("json", false, "Print the result as JSON")
	resolveCmd.Flags().StringSlice("roles", nil, "Resolve for a hypothetical member with these role ids")
}
