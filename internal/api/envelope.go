package api

import (
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/concierge/internal/errors"
	"github.com/diogo/concierge/internal/models"
)

// Envelope is the decoded top-level reply from the chatbot endpoint.
// Gateways that wrap a Lambda result return body as a JSON-encoded string;
// ParseEnvelope decodes that second layer when it can.
type Envelope struct {
	raw  gjson.Result
	body gjson.Result

	// BodyDecoded is true when body was a string that held valid JSON
	BodyDecoded bool
	// BodyErr records why a string body could not be decoded.
	// The body is then kept as the original string.
	BodyErr error
}

// ParseEnvelope decodes a response body. It fails only when the outer
// document is not JSON or is null.
func ParseEnvelope(data []byte) (*Envelope, error) {
	if !gjson.ValidBytes(data) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	raw := gjson.ParseBytes(data)
	if raw.Type == gjson.Null {
		return nil, apierrors.NewParseError("response is null", "")
	}

	env := &Envelope{raw: raw, body: raw.Get(PathBody)}

	if env.body.Type == gjson.String {
		inner := env.body.String()
		if gjson.Valid(inner) {
			env.body = gjson.Parse(inner)
			env.BodyDecoded = true
		} else {
			env.BodyErr = apierrors.NewParseError("body is a string but not valid JSON", PathBody)
		}
	}

	return env, nil
}

// Raw returns the envelope as received
func (e *Envelope) Raw() []byte {
	return []byte(e.raw.Raw)
}

// Body returns the (possibly decoded) body value
func (e *Envelope) Body() gjson.Result {
	return e.body
}

// Message returns the top-level message value
func (e *Envelope) Message() gjson.Result {
	return e.raw.Get(PathMessage)
}

// Reply picks the reply text: body.message, then message, then the fallback.
func (e *Envelope) Reply() (string, models.ReplySource) {
	if msg := e.body.Get(PathMessage); truthy(msg) {
		return msg.String(), models.ReplyFromBody
	}
	if msg := e.Message(); truthy(msg) {
		return msg.String(), models.ReplyFromMessage
	}
	return models.FallbackReply, models.ReplyFallback
}

// truthy reports whether a reply field holds a usable value: empty strings,
// zero, false and null do not count as a reply.
func truthy(r gjson.Result) bool {
	if !r.Exists() {
		return false
	}
	switch r.Type {
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}
