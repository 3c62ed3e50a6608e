package models

import (
	"fmt"
	"time"
)

// Sender identifies who authored a message
type Sender int

const (
	SenderUser Sender = iota
	SenderBot
)

// String returns the display role for the sender
func (s Sender) String() string {
	switch s {
	case SenderUser:
		return "user"
	case SenderBot:
		return "bot"
	default:
		return "unknown"
	}
}

// Minute is a wall-clock minute as shown on timestamp labels
type Minute struct {
	Hour   int
	Minute int
}

// MinuteOf extracts the label minute from t
func MinuteOf(t time.Time) Minute {
	return Minute{Hour: t.Hour(), Minute: t.Minute()}
}

// Label renders the minute the way the widget labels entries, unpadded ("9:5")
func (m Minute) Label() string {
	return fmt.Sprintf("%d:%d", m.Hour, m.Minute)
}

// Message is a single chat message. Values are never mutated after creation.
type Message struct {
	Text   string
	Sender Sender
	Time   time.Time
}

// Minute returns the minute the message was created in
func (m Message) Minute() Minute {
	return MinuteOf(m.Time)
}
