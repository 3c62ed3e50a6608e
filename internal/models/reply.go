package models

// ReplySource records where a reply's text came from
type ReplySource int

const (
	// ReplyFromBody means the text is envelope.body.message
	ReplyFromBody ReplySource = iota
	// ReplyFromMessage means the text is envelope.message
	ReplyFromMessage
	// ReplyFallback means the envelope had no usable message
	ReplyFallback
	// ReplyConnectionError means the exchange failed and was absorbed
	ReplyConnectionError
)

func (s ReplySource) String() string {
	switch s {
	case ReplyFromBody:
		return "body.message"
	case ReplyFromMessage:
		return "message"
	case ReplyFallback:
		return "fallback"
	case ReplyConnectionError:
		return "connection-error"
	default:
		return "unknown"
	}
}

// ReplyResult is the outcome of one exchange with the chatbot.
// It is always displayable: Text is either the bot's reply or a fixed fallback.
// Err keeps the absorbed cause, if any, for diagnostics.
type ReplyResult struct {
	Text   string
	Source ReplySource
	Err    error
}

// Failed reports whether the reply is the connection-error fallback
func (r ReplyResult) Failed() bool {
	return r.Source == ReplyConnectionError
}
