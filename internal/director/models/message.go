package models

import (
	"encoding/json"

	"github.com/malexanderboyd/godr4ft/internal"
	"github.com/malexanderboyd/godr4ft/internal/cardlist"
)

// Message is the envelope of every socket event. Requests that set Ack get
// an Ack reply carrying the same id.
type Message struct {
	Type GameMessageType `json:"type"`
	Ack  *int            `json:"ack,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage encodes data into a message of type t.
func NewMessage(t GameMessageType, data interface{}) *Message {
	msg := &Message{Type: t}
	if data == nil {
		return msg
	}
	raw, err := json.Marshal(data)
	if err != nil {
		internal.GetLogger().Errorw("cannot encode message", "type", t, "error", err)
		return msg
	}
	msg.Data = raw
	return msg
}

// Decode unmarshals the message data into v. An empty payload leaves v as is.
func (m *Message) Decode(v interface{}) error {
	if len(m.Data) == 0 {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

type AckResponse struct {
	Code       int                  `json:"code"`
	Error      string               `json:"error,omitempty"`
	ParseError *cardlist.ParseError `json:"parseError,omitempty"`
}

type NoticePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}
