package amqp

import (
	"encoding/json"
	"time"
)

// TransactionSyncMessage asks the worker to export one transaction. It
// carries only the ID; the worker loads the full row from storage.
type TransactionSyncMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// TransactionDeleteMessage tells the worker a transaction was removed so the
// export can be reconciled.
type TransactionDeleteMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// envelope wraps both message kinds on the wire.
type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

const (
	kindSync   = "transaction.sync"
	kindDelete = "transaction.delete"
)

func NewTransactionSyncMessage(id string) *TransactionSyncMessage {
	return &TransactionSyncMessage{ID: id, Timestamp: time.Now()}
}

func NewTransactionDeleteMessage(id string) *TransactionDeleteMessage {
	return &TransactionDeleteMessage{ID: id, Timestamp: time.Now()}
}

func marshalEnvelope(kind string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Kind: kind, Payload: raw})
}

// decodeEnvelope returns exactly one non-nil message for a valid body.
func decodeEnvelope(body []byte) (*TransactionSyncMessage, *TransactionDeleteMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, err
	}
	switch env.Kind {
	case kindSync:
		var m TransactionSyncMessage
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return nil, nil, err
		}
		return &m, nil, nil
	case kindDelete:
		var m TransactionDeleteMessage
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return nil, nil, err
		}
		return nil, &m, nil
	default:
		return nil, nil, errUnknownKind(env.Kind)
	}
}

type errUnknownKind string

func (e errUnknownKind) Error() string {
	return "unknown message kind: " + string(e)
}
