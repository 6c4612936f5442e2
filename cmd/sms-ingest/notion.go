package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arthmitra/sms-ingest/internal/logger"
	"github.com/arthmitra/sms-ingest/internal/notionsync"
	"github.com/arthmitra/sms-ingest/internal/txstore"
)

func newNotionSyncCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "notion-sync",
		Short: "Export stored transactions to a Notion database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Notion.Token == "" || cfg.Notion.DatabaseID == "" {
				return fmt.Errorf("notion.token and notion.database_id must be configured")
			}
			if cfg.BigQuery.Project == "" {
				return fmt.Errorf("bigquery.project must be configured")
			}
			if cfg.User.ID == "" {
				return fmt.Errorf("user.id is not configured")
			}

			ctx, cancel := context.WithTimeout(logger.WithContext(cmd.Context(), log), 10*time.Minute)
			defer cancel()

			store, err := txstore.NewBigQueryStore(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
			if err != nil {
				return err
			}
			defer store.Close()

			transactions, err := store.ListByUser(ctx, cfg.User.ID)
			if err != nil {
				return err
			}

			client := notionsync.NewNotionClient(cfg.Notion.Token)
			created, err := notionsync.ExportTransactions(ctx, client, cfg.Notion.DatabaseID, transactions, dryRun)
			if err != nil {
				return err
			}

			log.Info().
				Int("created", created).
				Int("total", len(transactions)).
				Bool("dry_run", dryRun).
				Msg("Notion export completed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview without creating pages")
	return cmd
}
