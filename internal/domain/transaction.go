package domain

import "time"

// Direction classifies the money movement of a transaction.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// ExtractedTransaction is the model's reading of one SMS. It exists only for
// the duration of a scan; on success it is mapped into a TransactionRecord.
type ExtractedTransaction struct {
	Amount      float64
	Direction   Direction
	Description string
	// Provider is the sender label as the model read it from the message
	// body, not necessarily the RawMessage address.
	Provider string
}

// TransactionRecord is the flat schema of the hosted transaction store.
// Date is a pre-formatted DD/MM/YYYY string; the store compares these as
// strings, so the format must never drift.
type TransactionRecord struct {
	ID        string
	UserID    string
	Title     string
	Amount    float64
	Type      Direction
	Category  string
	Date      string
	Icon      string
	IconColor string
	IconBg    string
	Deleted   bool
	CreatedAt time.Time
}
