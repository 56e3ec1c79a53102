package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	MessageTypeMatchFormed    MessageType = "MATCH_FORMED"
	MessageTypeVoteUpdate     MessageType = "VOTE_UPDATE"
	MessageTypeMatchSettled   MessageType = "MATCH_SETTLED"
	MessageTypeMatchCancelled MessageType = "MATCH_CANCELLED"
	MessageTypeMatchUndone    MessageType = "MATCH_UNDONE"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}
