// Package models contains data types and constants for the concierge chat client.
package models

import "time"

// DefaultEndpoint is the chatbot gateway the widget was deployed against.
const DefaultEndpoint = "https://ie8xv4u366.execute-api.us-east-1.amazonaws.com/prod/chatbot"

// Fixed reply texts
const (
	// FallbackReply is shown when the envelope carries no usable message
	FallbackReply = "Oops, something went wrong."
	// ConnectionErrorReply is shown when the exchange fails for any other reason
	ConnectionErrorReply = "Error connecting to chatbot. Please try again."
	// DefaultGreeting is displayed as the first bot message when the chat opens
	DefaultGreeting = "Hi there, I'm your personal Concierge. How can I help?"
)

// DefaultTypingDelay is how long the loading placeholder stays up before a reply is revealed
const DefaultTypingDelay = 500 * time.Millisecond

// DefaultHeaders returns the headers sent with every chatbot request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
}
