package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthmitra/sms-ingest/internal/domain"
)

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the persisted scan state",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := newStateStore(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			ts, err := store.LastScanTimestamp(ctx)
			if err != nil {
				return err
			}
			providers, err := store.WhitelistedProviders(ctx)
			if err != nil {
				return err
			}
			if providers == nil {
				providers = []string{}
			}

			out, err := json.MarshalIndent(domain.ScanState{
				LastScanTimestamp:    ts,
				WhitelistedProviders: providers,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
