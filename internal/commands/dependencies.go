package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/diogo/concierge/internal/api"
	"github.com/diogo/concierge/internal/config"
	"github.com/diogo/concierge/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient builds the chatbot client from the effective config.
	NewClient func(cfg config.Config) (api.ChatClientInterface, error)

	// RunChat runs the interactive chat window.
	RunChat func(ctx context.Context, client api.ChatClientInterface, opts tui.Options) error

	// Copy writes text to the system clipboard.
	Copy func(text string) error

	// IsTTY reports whether stdout is a terminal.
	IsTTY func() bool

	// TermWidth returns the terminal width in columns.
	TermWidth func() int

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// NewDependencies creates a Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient: newChatClient,
		RunChat:   tui.RunChat,
		Copy:      clipboard.WriteAll,
		IsTTY:     isStdoutTTY,
		TermWidth: getTerminalWidth,
		In:        os.Stdin,
		Out:       os.Stdout,
		Err:       os.Stderr,
	}
}

func newChatClient(cfg config.Config) (api.ChatClientInterface, error) {
	return api.NewClient(
		api.WithEndpoint(cfg.Endpoint),
		api.WithTimeout(cfg.RequestTimeout()),
	)
}

// closeClient releases transport resources when the client holds any
func closeClient(client api.ChatClientInterface) {
	if c, ok := client.(interface{ Close() }); ok {
		c.Close()
	}
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
