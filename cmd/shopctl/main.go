// Package main is the entry point for shopctl, the shop's admin CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"BloomStore/internal/config"
	"BloomStore/internal/storage"
)

var Version = "dev"

var (
	storageDriver string
	storageDSN    string
)

var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "shopctl - inspect the florist shop's catalog and visitor state",
	Long: `shopctl validates catalog files and reads or resets the per-session
state the cart service keeps: the cart and the last submitted order.

Storage defaults come from the same .env, CONFIG_FILE and environment
variables the cart service reads; --driver and --dsn override them.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("shopctl version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&storageDriver, "driver", "", "storage driver (memory, sqlite, postgres)")
	rootCmd.PersistentFlags().StringVar(&storageDSN, "dsn", "", "storage DSN")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openKV resolves the storage the same way the cart service does, with
// flags taking precedence.
func openKV(cmd *cobra.Command) (storage.Store, error) {
	driver, dsn := storageDriver, storageDSN

	if !cmd.Flags().Changed("driver") {
		cfg, err := config.Load(config.ServiceCart)
		if err != nil {
			return nil, err
		}
		driver = cfg.Storage.Driver
		if !cmd.Flags().Changed("dsn") {
			dsn = cfg.Storage.DSN
		}
	}

	if driver == "" || driver == storage.DriverMemory {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: memory storage is empty in a fresh process")
	}
	return storage.Open(context.Background(), driver, dsn)
}
