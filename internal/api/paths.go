// Package api provides the chatbot endpoint client (the transport adapter).
package api

// GJSON paths into the chatbot response envelope.
const (
	// PathBody is the possibly string-encoded inner payload
	PathBody = "body"
	// PathMessage is the reply text, both at the top level and inside body
	PathMessage = "message"
)
