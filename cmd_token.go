package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/HuyaneMatsu/hata-sub016/config"
	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/services"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API token",
	Long: `Issue a signed bearer token for the HTTP API and the WebSocket stream.

"read" tokens can query permissions and overwrites; "write" tokens can also
ingest entities and change overwrites.

Example:
  hata token --subject dashboard
  hata token --subject ingest-bot --scope write --ttl 24h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		scope, _ := cmd.Flags().GetString("scope")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("ttl") {
			ttl = cfg.JWT.TokenExpiry
		}

		token, err := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer).Issue(subject, scope, ttl)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringP("subject", "s", "", "Who the token is issued to")
	tokenCmd.Flags().String("scope", models.ScopeRead, `Token scope: "read" or "write"`)
	tokenCmd.Flags().Duration("ttl", 30*24*time.Hour, "Token lifetime (defaults to JWT_TOKEN_EXPIRY_HOURS)")
	_ = tokenCmd.MarkFlagRequired("subject")
}
