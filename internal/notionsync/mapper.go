package notionsync

import (
	"github.com/jomei/notionapi"

	"github.com/arthmitra/sms-ingest/internal/domain"
)

// TransactionToNotionProperties converts one imported transaction into Notion
// page properties. The Record ID property carries the store's transaction ID
// so repeat exports stay idempotent.
func TransactionToNotionProperties(tx *domain.TransactionRecord) notionapi.Properties {
	props := notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Title,
					},
				},
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: tx.Amount,
		},
	}

	if tx.Type != "" {
		props["Type"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(tx.Type),
			},
		}
	}

	if tx.Category != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Category,
			},
		}
	}

	if tx.Date != "" {
		props["Date"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Date,
					},
				},
			},
		}
	}

	if tx.ID != "" {
		props["Record ID"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.ID,
					},
				},
			},
		}
	}

	return props
}

// extractRecordID pulls the Record ID property back out of a Notion page.
func extractRecordID(page notionapi.Page) string {
	prop, ok := page.Properties["Record ID"]
	if !ok {
		return ""
	}
	rich, ok := prop.(*notionapi.RichTextProperty)
	if !ok || len(rich.RichText) == 0 {
		return ""
	}
	return rich.RichText[0].PlainText
}
