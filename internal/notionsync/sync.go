package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/arthmitra/sms-ingest/internal/domain"
	"github.com/arthmitra/sms-ingest/internal/logger"
)

// ExportTransactions pushes the given transactions into the Notion database,
// skipping any whose Record ID already exists there. Returns the number of
// pages created.
func ExportTransactions(ctx context.Context, client NotionService, databaseID string, transactions []domain.TransactionRecord, dryRun bool) (int, error) {
	log := logger.FromContext(ctx)

	log.Info().
		Int("transaction_count", len(transactions)).
		Bool("dry_run", dryRun).
		Msg("Starting transaction export to Notion")

	existing, err := queryExistingRecordIDs(ctx, client, databaseID)
	if err != nil {
		return 0, fmt.Errorf("query existing Notion pages: %w", err)
	}

	var created int
	for i := range transactions {
		tx := &transactions[i]
		if tx.Deleted {
			continue
		}
		if _, ok := existing[tx.ID]; ok {
			continue
		}

		if dryRun {
			log.Info().
				Str("transaction_id", tx.ID).
				Str("title", tx.Title).
				Msg("[DRY RUN] Would create Notion page")
			created++
			continue
		}

		if _, err := client.CreatePage(ctx, databaseID, TransactionToNotionProperties(tx)); err != nil {
			// One bad page should not stop the export; the next run retries it.
			log.Warn().
				Err(err).
				Str("transaction_id", tx.ID).
				Msg("Failed to create Notion page")
			continue
		}
		created++
	}

	log.Info().Int("created", created).Msg("Notion export completed")
	return created, nil
}

func queryExistingRecordIDs(ctx context.Context, client NotionService, databaseID string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	req := &notionapi.DatabaseQueryRequest{PageSize: 100}
	for {
		resp, err := client.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, err
		}

		for _, page := range resp.Results {
			if id := extractRecordID(page); id != "" {
				ids[id] = struct{}{}
			}
		}

		if !resp.HasMore {
			break
		}
		req.StartCursor = notionapi.Cursor(resp.NextCursor)
	}

	return ids, nil
}
