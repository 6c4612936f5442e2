package extract

import (
	"strings"

	"github.com/arthmitra/sms-ingest/internal/domain"
)

// buildPrompt renders the constrained-output instruction for one message.
// The model must answer with a single JSON object and nothing else; the rules
// keep it strict so marketing texts and OTPs come back as non-transactions.
func buildPrompt(msg domain.RawMessage) string {
	var b strings.Builder

	b.WriteString("Analyze this SMS message and extract transaction information. ")
	b.WriteString("Return ONLY a JSON object with the following structure:\n")
	b.WriteString("{\n")
	b.WriteString("  \"isTransaction\": boolean,\n")
	b.WriteString("  \"amount\": number (without currency symbols),\n")
	b.WriteString("  \"type\": \"credit\" or \"debit\",\n")
	b.WriteString("  \"description\": \"brief description of the transaction\",\n")
	b.WriteString("  \"provider\": \"sender name from the message\"\n")
	b.WriteString("}\n\n")
	b.WriteString("If this is not a transaction message, return {\"isTransaction\": false}.\n\n")

	b.WriteString("SMS Message:\n")
	b.WriteString("From: " + msg.Address + "\n")
	b.WriteString("Content: " + msg.Body + "\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- Look for keywords like: credited, debited, received, paid, transferred, withdrawn, deposited\n")
	b.WriteString("- Extract the amount (numbers only, no currency symbols)\n")
	b.WriteString("- Credit/received/deposited = \"credit\"\n")
	b.WriteString("- Debit/paid/withdrawn/transferred = \"debit\"\n")
	b.WriteString("- Be very strict - only return transaction data for clear financial transactions\n")
	b.WriteString("- Provider should be the sender name (like bank name, payment service, etc.)\n")
	b.WriteString("- Return ONLY valid raw JSON, no code fences, no Markdown\n")

	return b.String()
}

// cleanModelJSON strips Markdown fences and surrounding chatter the model may
// wrap around the JSON object despite instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only the outermost object if there is still junk around it.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
