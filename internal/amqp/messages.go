package amqp

import (
	"encoding/json"
	"time"
)

// Transaction event actions.
const (
	ActionCreated  = "created"
	ActionImported = "imported"
	ActionDeleted  = "deleted"
)

// TransactionEvent carries only the transaction id and the action;
// consumers fetch the full record from the store if they need it.
type TransactionEvent struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(id, action string) *TransactionEvent {
	return &TransactionEvent{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var event TransactionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
