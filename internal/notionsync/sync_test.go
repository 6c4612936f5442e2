package notionsync

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"

	"github.com/arthmitra/sms-ingest/internal/domain"
)

// mockNotion records created pages and serves one canned query response.
type mockNotion struct {
	existing []notionapi.Page
	created  []notionapi.Properties
}

func (m *mockNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.created = append(m.created, properties)
	return &notionapi.Page{}, nil
}

func (m *mockNotion) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: m.existing, HasMore: false}, nil
}

func pageWithRecordID(id string) notionapi.Page {
	return notionapi.Page{
		Properties: notionapi.Properties{
			"Record ID": &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: id}},
			},
		},
	}
}

func TestExportTransactions_SkipsExistingAndDeleted(t *testing.T) {
	client := &mockNotion{existing: []notionapi.Page{pageWithRecordID("tx-1")}}

	transactions := []domain.TransactionRecord{
		{ID: "tx-1", Title: "Already exported", Amount: 100, Type: domain.DirectionExpense},
		{ID: "tx-2", Title: "New one", Amount: 200, Type: domain.DirectionIncome, Date: "05/06/2024"},
		{ID: "tx-3", Title: "Soft deleted", Amount: 300, Type: domain.DirectionExpense, Deleted: true},
	}

	created, err := ExportTransactions(context.Background(), client, "db", transactions, false)
	if err != nil {
		t.Fatalf("ExportTransactions: %v", err)
	}
	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
	if len(client.created) != 1 {
		t.Fatalf("CreatePage called %d times, want 1", len(client.created))
	}

	title, ok := client.created[0]["Title"].(notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 || title.Title[0].Text.Content != "New one" {
		t.Errorf("created page title = %+v", client.created[0]["Title"])
	}
}

func TestExportTransactions_DryRunCreatesNothing(t *testing.T) {
	client := &mockNotion{}

	transactions := []domain.TransactionRecord{
		{ID: "tx-1", Title: "One", Amount: 100, Type: domain.DirectionExpense},
	}

	created, err := ExportTransactions(context.Background(), client, "db", transactions, true)
	if err != nil {
		t.Fatalf("ExportTransactions: %v", err)
	}
	if created != 1 {
		t.Errorf("created = %d, want 1 (counted, not executed)", created)
	}
	if len(client.created) != 0 {
		t.Errorf("CreatePage called %d times in dry run, want 0", len(client.created))
	}
}

func TestTransactionToNotionProperties(t *testing.T) {
	tx := &domain.TransactionRecord{
		ID:       "tx-9",
		Title:    "Payment to Swiggy",
		Amount:   200,
		Type:     domain.DirectionExpense,
		Category: "Via SMS",
		Date:     "05/06/2024",
	}

	props := TransactionToNotionProperties(tx)

	if _, ok := props["Title"].(notionapi.TitleProperty); !ok {
		t.Error("missing Title property")
	}
	amount, ok := props["Amount"].(notionapi.NumberProperty)
	if !ok || amount.Number != 200 {
		t.Errorf("Amount property = %+v", props["Amount"])
	}
	sel, ok := props["Type"].(notionapi.SelectProperty)
	if !ok || sel.Select.Name != "expense" {
		t.Errorf("Type property = %+v", props["Type"])
	}
}
