// Package gateway implements the server side of the chatbot contract: it
// validates {"message": ...} requests, asks a bot for a reply and maps
// bot failures onto the status codes the widget expects.
package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/diogo/concierge/internal/config"
)

// Bot produces a reply for one user utterance. An empty reply with a nil
// error means the bot had nothing to say.
type Bot interface {
	Reply(ctx context.Context, sessionID, text string) (string, error)
}

// EchoBot answers locally without any backend, for development.
type EchoBot struct {
	Prefix string
}

func (b EchoBot) Reply(ctx context.Context, sessionID, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prefix := b.Prefix
	if prefix == "" {
		prefix = "You said: "
	}
	return prefix + text, nil
}

// NewBot builds the bot selected by cfg.Bot
func NewBot(ctx context.Context, cfg config.GatewayConfig) (Bot, error) {
	switch strings.ToLower(cfg.Bot) {
	case config.BotEcho, "":
		return EchoBot{}, nil
	case config.BotLex:
		return NewLexBot(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown gateway bot %q", cfg.Bot)
	}
}
