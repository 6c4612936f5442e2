package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthmitra/sms-ingest/internal/config"
	"github.com/arthmitra/sms-ingest/internal/scanstate"
)

func newWhitelistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Manage the provider allow-list",
	}
	cmd.AddCommand(newWhitelistShowCmd(), newWhitelistSetCmd())
	return cmd
}

func newStateStore(cmd *cobra.Command, cfg *config.Config) (scanstate.Store, func() error, error) {
	if cfg.GCS.Bucket != "" {
		if cfg.User.ID == "" {
			return nil, nil, fmt.Errorf("user.id is not configured")
		}
		store, err := scanstate.NewGCSStore(cmd.Context(), cfg.GCS.Bucket, cfg.User.ID)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return scanstate.NewFileStore(cfg.SMS.StatePath), func() error { return nil }, nil
}

func newWhitelistShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current allow-list",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := newStateStore(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			providers, err := store.WhitelistedProviders(cmd.Context())
			if err != nil {
				return err
			}
			if len(providers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(empty - all senders are scanned)")
				return nil
			}
			for _, p := range providers {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func newWhitelistSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [provider]...",
		Short: "Replace the allow-list; no arguments clears it",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := newStateStore(cmd, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.SetWhitelistedProviders(cmd.Context(), args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Allow-list updated (%d providers)\n", len(args))
			return nil
		},
	}
}
