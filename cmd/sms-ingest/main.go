// sms-ingest turns bank SMS notifications into transaction records. It can
// run a single scan from the command line, serve the HTTP API the mobile UI
// uses, and export stored transactions to Notion.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arthmitra/sms-ingest/internal/config"
	"github.com/arthmitra/sms-ingest/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	log     zerolog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sms-ingest",
		Short:         "Import bank SMS notifications as transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
			log = logger.NewWithLevel(cfg.Log.Level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")

	rootCmd.AddCommand(
		newScanCmd(),
		newProvidersCmd(),
		newWhitelistCmd(),
		newStateCmd(),
		newServeCmd(),
		newNotionSyncCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
