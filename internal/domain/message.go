package domain

import "strconv"

// RawMessage is one inbound SMS as read from the device inbox.
// The adapter never mutates these; timestamps stay in the string form the
// telephony database hands out (epoch milliseconds).
type RawMessage struct {
	ID            string `json:"_id"`
	ThreadID      string `json:"thread_id"`
	Address       string `json:"address"` // sender: bank name, shortcode or number
	Body          string `json:"body"`
	Date          string `json:"date"` // epoch millis
	DateSent      string `json:"date_sent"`
	Read          int    `json:"read"`
	Status        int    `json:"status"`
	Type          int    `json:"type"`
	ServiceCenter string `json:"service_center"`
}

// DateMillis returns the message timestamp as epoch milliseconds, or 0 when
// the stored value is not numeric.
func (m RawMessage) DateMillis() int64 {
	ms, err := strconv.ParseInt(m.Date, 10, 64)
	if err != nil {
		return 0
	}
	return ms
}
