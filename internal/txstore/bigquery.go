package txstore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/arthmitra/sms-ingest/internal/domain"
)

const transactionsTable = "transactions"

// transactionRow is the persisted snake_case schema of the hosted store.
// Field renaming between the in-memory record and the backend lives entirely
// in this adapter.
//
// Date stays a DD/MM/YYYY display string because duplicate detection compares
// it as a string; TransactionDate carries the same day structurally so future
// queries do not have to parse the display form.
type transactionRow struct {
	TransactionID string `bigquery:"transaction_id"`
	UserID        string `bigquery:"user_id"`

	Title  string  `bigquery:"title"`
	Amount float64 `bigquery:"amount"`
	Type   string  `bigquery:"type"`

	Category string `bigquery:"category"`
	Date     string `bigquery:"date"`

	TransactionDate bigquery.NullDate `bigquery:"transaction_date"`

	Icon      string `bigquery:"icon"`
	IconColor string `bigquery:"icon_color"`
	IconBg    string `bigquery:"icon_bg"`

	Deleted   bool      `bigquery:"deleted"`
	CreatedTS time.Time `bigquery:"created_ts"`
}

func toRow(r *domain.TransactionRecord) *transactionRow {
	row := &transactionRow{
		TransactionID: r.ID,
		UserID:        r.UserID,
		Title:         r.Title,
		Amount:        r.Amount,
		Type:          string(r.Type),
		Category:      r.Category,
		Date:          r.Date,
		Icon:          r.Icon,
		IconColor:     r.IconColor,
		IconBg:        r.IconBg,
		Deleted:       r.Deleted,
		CreatedTS:     r.CreatedAt,
	}
	if d, err := time.Parse("02/01/2006", r.Date); err == nil {
		row.TransactionDate = bigquery.NullDate{Date: civil.DateOf(d), Valid: true}
	}
	return row
}

func fromRow(row *transactionRow) domain.TransactionRecord {
	return domain.TransactionRecord{
		ID:        row.TransactionID,
		UserID:    row.UserID,
		Title:     row.Title,
		Amount:    row.Amount,
		Type:      domain.Direction(row.Type),
		Category:  row.Category,
		Date:      row.Date,
		Icon:      row.Icon,
		IconColor: row.IconColor,
		IconBg:    row.IconBg,
		Deleted:   row.Deleted,
		CreatedAt: row.CreatedTS,
	}
}

// BigQueryStore is the Store implementation over the hosted BigQuery dataset.
// It holds a shared client to avoid a new connection per operation.
type BigQueryStore struct {
	client  *bigquery.Client
	dataset string
}

// NewBigQueryStore creates a store against projectID/dataset using
// Application Default Credentials.
func NewBigQueryStore(ctx context.Context, projectID, dataset string) (*BigQueryStore, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("txstore: creating bigquery client: %w", err)
	}
	return &BigQueryStore{client: client, dataset: dataset}, nil
}

// Close closes the BigQuery client connection.
func (s *BigQueryStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Create implements Store.
func (s *BigQueryStore) Create(ctx context.Context, record *domain.TransactionRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	inserter := s.client.Dataset(s.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, toRow(record)); err != nil {
		return fmt.Errorf("txstore: inserting transaction: %w", err)
	}
	return nil
}

// ListByUser implements Lister.
func (s *BigQueryStore) ListByUser(ctx context.Context, userID string) ([]domain.TransactionRecord, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			user_id,
			title,
			amount,
			type,
			category,
			date,
			transaction_date,
			icon,
			icon_color,
			icon_bg,
			deleted,
			created_ts
		FROM %s.%s
		WHERE user_id = @user_id
		  AND deleted = FALSE
		ORDER BY created_ts
	`, s.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("txstore: query user transactions: %w", err)
	}

	var records []domain.TransactionRecord
	for {
		var row transactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("txstore: iterate user transactions: %w", err)
		}
		records = append(records, fromRow(&row))
	}
	return records, nil
}

// FindMatching implements Store.
func (s *BigQueryStore) FindMatching(ctx context.Context, userID string, amount float64, direction domain.Direction, titleSubstring string) ([]domain.TransactionRecord, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT
			transaction_id,
			user_id,
			title,
			amount,
			type,
			category,
			date,
			transaction_date,
			icon,
			icon_color,
			icon_bg,
			deleted,
			created_ts
		FROM %s.%s
		WHERE user_id = @user_id
		  AND amount = @amount
		  AND type = @type
		  AND deleted = FALSE
		  AND STRPOS(LOWER(title), LOWER(@title_substring)) > 0
	`, s.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "amount", Value: amount},
		{Name: "type", Value: string(direction)},
		{Name: "title_substring", Value: titleSubstring},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("txstore: query matching transactions: %w", err)
	}

	var records []domain.TransactionRecord
	for {
		var row transactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("txstore: iterate matching transactions: %w", err)
		}
		records = append(records, fromRow(&row))
	}
	return records, nil
}
