package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangedMessage tells the worker that a ledger mutated. It only
// carries the ledger ID and the mutation kind; the worker reloads
// whatever it needs from the database.
type LedgerChangedMessage struct {
	LedgerID  string    `json:"ledgerId"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(ledgerID, kind string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		LedgerID:  ledgerID,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
