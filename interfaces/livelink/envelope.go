// Package livelink implements the client side of the live brain link:
// a duplex JSON message channel used to inspect and steer a running
// brain process and to receive its streamed thoughts.
package livelink

import (
	"time"

	"github.com/google/uuid"
)

// MessageType routes an envelope through the dispatcher
type MessageType string

const (
	TypeCommand MessageType = "command"
	TypeQuery   MessageType = "query"
	TypeStream  MessageType = "stream"
	TypeEvent   MessageType = "event"
)

// Well-known event names delivered with TypeEvent envelopes
const (
	EventConnected    = "connected"
	EventFlowChanged  = "flow-changed"
	EventNodeExecuted = "node-executed"
	EventError        = "error"
)

// StreamThought is the stream name carrying live thought updates
const StreamThought = "thought"

// Envelope is the wire shape of every live link message.
// InReplyTo correlates a reply with the request it answers; envelopes
// from older brains omit it and are dispatched purely by type.
type Envelope struct {
	ID        string                 `json:"id"`
	Type      MessageType            `json:"type"`
	BrainID   string                 `json:"brainId,omitempty"`
	InReplyTo string                 `json:"inReplyTo,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// stamp fills in the generated id and current timestamp every
// outgoing envelope carries
func stamp(msg Envelope, now time.Time) Envelope {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.Timestamp = now.UnixMilli()
	return msg
}

// payloadString reads a string field out of an envelope payload
func payloadString(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
