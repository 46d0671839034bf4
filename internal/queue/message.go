package queue

import (
	"encoding/json"
	"fmt"
)

// MessageVersion is bumped whenever Message changes incompatibly.
const MessageVersion = 1

// Message announces that a run has been stored.
type Message struct {
	RunID   string `json:"runId"`
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	Version int    `json:"version"`
}

// EncodeMessage returns the JSON body of msg, stamping the current version.
func EncodeMessage(msg Message) ([]byte, error) {
	if msg.RunID == "" {
		return nil, fmt.Errorf("queue message: run id is required")
	}
	if msg.Version == 0 {
		msg.Version = MessageVersion
	}
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON body produced by EncodeMessage.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.RunID == "" {
		return Message{}, fmt.Errorf("queue message: run id is required")
	}
	return msg, nil
}
