// Package main, hata permission servisinin giriş noktasıdır.
//
// Komutlar (cobra):
//   - serve:   HTTP + WebSocket API'sini başlatır
//   - seed:    YAML fixture'ını veritabanına ve registry'ye uygular
//   - resolve: bir kullanıcının bir kanaldaki yetkilerini yazdırır
//   - token:   inspection API için JWT üretir
//
// Global state YOK: her komut bootstrap() ile kendi dependency graph'ını kurar.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hata",
	Short: "Discord permission resolution service",
	Long: `hata keeps a registry of guilds, roles, channels, users and permission
overwrites and answers "what can this user do in this channel?" queries.

Entities are ingested through the HTTP API or from YAML fixtures and are
persisted in SQLite, so the registry is restored on restart.`,
	SilenceUsage: true,
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
