package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthmitra/sms-ingest/internal/smsbox"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the distinct senders found in the SMS inbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			source := smsbox.NewSQLiteInbox(smsbox.WithDBPath(cfg.SMS.DBPath))

			messages, err := source.ListAll(cmd.Context())
			if err != nil {
				return err
			}

			for _, p := range smsbox.DistinctProviders(messages) {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}
