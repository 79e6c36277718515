package kafka

import (
	"encoding/json"
	"time"
)

type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// NewJSONMessage marshals payload and keys the message so that all events of
// one entity land in the same partition, preserving their order.
func NewJSONMessage(key string, payload any) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Key:       key,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}, nil
}
