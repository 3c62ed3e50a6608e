// Package chat holds the conversation state behind the chat view: the ordered
// log of messages, the typing placeholder and minute-coalesced timestamps.
//
// A Conversation is owned by one view and is not safe for concurrent use.
package chat

import (
	"time"

	"github.com/diogo/concierge/internal/models"
)

// Clock returns the current time
type Clock func() time.Time

// State is the exchange state of a conversation
type State int

const (
	Idle State = iota
	AwaitingReply
)

func (s State) String() string {
	if s == AwaitingReply {
		return "awaiting-reply"
	}
	return "idle"
}

// Entry is one row of the conversation view: either a message or the
// "reply pending" placeholder. Stamp holds a timestamp label, if one was
// attached.
type Entry struct {
	Message     models.Message
	Placeholder bool
	Stamp       string
}

// Conversation is the append-only log shown by the chat view
type Conversation struct {
	clock   Clock
	entries []Entry

	lastMinute int
	stamped    bool

	pending int
	replies int
}

// New creates an empty conversation. A nil clock uses time.Now.
func New(clock Clock) *Conversation {
	if clock == nil {
		clock = time.Now
	}
	return &Conversation{clock: clock}
}

// AppendMessage appends a message from sender and returns it
func (c *Conversation) AppendMessage(sender models.Sender, text string) models.Message {
	msg := models.Message{Text: text, Sender: sender, Time: c.clock()}
	c.entries = append(c.entries, Entry{Message: msg})
	return msg
}

// AppendPlaceholder appends the "reply pending" marker
func (c *Conversation) AppendPlaceholder() {
	c.entries = append(c.entries, Entry{Placeholder: true})
}

// RemovePlaceholders removes every placeholder in the log and returns how
// many were removed. Placeholders are not tied to a particular request, so
// a reveal clears all of them.
func (c *Conversation) RemovePlaceholders() int {
	kept := c.entries[:0]
	removed := 0
	for _, e := range c.entries {
		if e.Placeholder {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// drop references held past the new length
	for i := len(kept); i < len(c.entries); i++ {
		c.entries[i] = Entry{}
	}
	c.entries = kept
	return removed
}

// StampTimestamp attaches the current minute's label to the last entry, but
// only when the minute-of-hour differs from the one seen on the previous
// call. The minute is recorded even when the log is empty. It reports
// whether a label was attached.
func (c *Conversation) StampTimestamp() bool {
	now := models.MinuteOf(c.clock())
	if c.stamped && now.Minute == c.lastMinute {
		return false
	}
	c.stamped = true
	c.lastMinute = now.Minute

	if len(c.entries) == 0 {
		return false
	}
	c.entries[len(c.entries)-1].Stamp = now.Label()
	return true
}

// BeginRequest records a request in flight
func (c *Conversation) BeginRequest() {
	c.pending++
}

// EndRequest records that a request resolved
func (c *Conversation) EndRequest() {
	if c.pending > 0 {
		c.pending--
	}
}

// IncrementReplies counts a revealed bot reply
func (c *Conversation) IncrementReplies() {
	c.replies++
}

// Replies returns how many bot replies were revealed
func (c *Conversation) Replies() int {
	return c.replies
}

// State reports AwaitingReply while a request is in flight or a placeholder
// is showing.
func (c *Conversation) State() State {
	if c.pending > 0 || c.Placeholders() > 0 {
		return AwaitingReply
	}
	return Idle
}

// Placeholders returns the number of placeholders in the log
func (c *Conversation) Placeholders() int {
	n := 0
	for _, e := range c.entries {
		if e.Placeholder {
			n++
		}
	}
	return n
}

// Len returns the number of entries, placeholders included
func (c *Conversation) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the log in display order
func (c *Conversation) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Messages returns the messages in display order, without placeholders
func (c *Conversation) Messages() []models.Message {
	var out []models.Message
	for _, e := range c.entries {
		if !e.Placeholder {
			out = append(out, e.Message)
		}
	}
	return out
}

// LastFrom returns the most recent message from sender
func (c *Conversation) LastFrom(sender models.Sender) (models.Message, bool) {
	for i := len(c.entries) - 1; i >= 0; i-- {
		e := c.entries[i]
		if !e.Placeholder && e.Message.Sender == sender {
			return e.Message, true
		}
	}
	return models.Message{}, false
}
