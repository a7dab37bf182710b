package realtime

import (
	"encoding/json"
	"fmt"
)

// FrameType discriminates the frames exchanged with the broker
type FrameType string

const (
	// FrameSubscribe asks the broker to deliver a topic to this connection
	FrameSubscribe FrameType = "SUBSCRIBE"

	// FrameUnsubscribe stops delivery for a topic
	FrameUnsubscribe FrameType = "UNSUBSCRIBE"

	// FrameSend publishes a payload to an inbound destination
	FrameSend FrameType = "SEND"

	// FrameMessage carries a broker-delivered payload for a subscribed topic
	FrameMessage FrameType = "MESSAGE"

	// FrameError carries a broker-reported protocol error
	FrameError FrameType = "ERROR"
)

// Frame is one unit on the wire, in either direction
type Frame struct {
	// Type discriminates the frame
	Type FrameType `json:"type"`

	// SubscriptionID ties SUBSCRIBE and UNSUBSCRIBE frames to one
	// client-side subscription
	SubscriptionID string `json:"id,omitempty"`

	// Destination is the topic or inbound address the frame applies to
	Destination string `json:"destination,omitempty"`

	// Body is the JSON payload, when the frame carries one
	Body json.RawMessage `json:"body,omitempty"`

	// Message is the broker's text for ERROR frames
	Message string `json:"message,omitempty"`
}

// TopicFor returns the room-scoped topic the client subscribes to
func TopicFor(roomID int64) string {
	return fmt.Sprintf("/topic/chat/%d", roomID)
}

// InboundFor returns the room-scoped destination the client publishes to
func InboundFor(roomID int64) string {
	return fmt.Sprintf("/app/chat/%d", roomID)
}
