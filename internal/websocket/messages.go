package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/satriahrh/farsisub/domain/entities"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeSubtitle MessageType = "subtitle"
	MessageTypeError    MessageType = "error"
)

// SubtitleMessage carries one subtitle to overlay clients. The document fields
// match the polling file so overlays can share a parser.
type SubtitleMessage struct {
	Type MessageType `json:"type"`
	entities.SubtitleDocument
}

// ErrorMessage is sent before the server closes a connection it rejects
type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Code    string      `json:"error_code"`
	Message string      `json:"message"`
}

// NewSubtitleMessage wraps a subtitle for the wire
func NewSubtitleMessage(subtitle *entities.Subtitle) *SubtitleMessage {
	return &SubtitleMessage{
		Type:             MessageTypeSubtitle,
		SubtitleDocument: subtitle.Document(),
	}
}

// ParseMessage decodes a server message, returning the subtitle when it is one
func ParseMessage(data []byte) (*SubtitleMessage, error) {
	var base struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch base.Type {
	case MessageTypeSubtitle:
		var msg SubtitleMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid subtitle message: %w", err)
		}
		return &msg, nil
	case MessageTypeError:
		var msg ErrorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid error message: %w", err)
		}
		return nil, fmt.Errorf("server error %s: %s", msg.Code, msg.Message)
	case "":
		return nil, fmt.Errorf("message type is required")
	default:
		return nil, fmt.Errorf("unknown message type: %s", base.Type)
	}
}
