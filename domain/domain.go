package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	TypeNote        = "note"
	TypePlayerCount = "playerCount"
)

var (
	ErrMissingType = errors.New("message has no type")
	ErrMissingNote = errors.New("note message has no note")
)

// Message is the single wire shape shared by both directions. Only the
// fields relevant to Type are set.
type Message struct {
	Type  string `json:"type"`
	Note  string `json:"note,omitempty"`
	Count *int   `json:"count,omitempty"`
}

func NewNote(note string) Message {
	return Message{Type: TypeNote, Note: note}
}

func NewPlayerCount(n int) Message {
	return Message{Type: TypePlayerCount, Count: &n}
}

// Decode parses a text frame. It fails on anything that is not a JSON
// object carrying a type.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if msg.Type == "" {
		return Message{}, ErrMissingType
	}
	return msg, nil
}

func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Validate checks the fields required by known types. Unknown types pass;
// callers decide what to do with them.
func (m Message) Validate() error {
	switch m.Type {
	case "":
		return ErrMissingType
	case TypeNote:
		if m.Note == "" {
			return ErrMissingNote
		}
	case TypePlayerCount:
		if m.Count == nil {
			return fmt.Errorf("playerCount message has no count")
		}
	}
	return nil
}

// PlayerCount returns the count carried by a playerCount message.
func (m Message) PlayerCount() (int, bool) {
	if m.Count == nil {
		return 0, false
	}
	return *m.Count, true
}

type Connection interface {
	ID() string
	Send(data []byte) error
	Close() error
}

type Broadcaster interface {
	Register(conn Connection) error
	Unregister(conn Connection)
	Broadcast(sender Connection, data []byte)
	Count() int
}

type MessageHandler interface {
	Handle(conn Connection, data []byte)
}
