package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/concierge/internal/logger"
	"github.com/diogo/concierge/internal/render"
	"github.com/diogo/concierge/internal/tui"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Open the chat window. Type a message and press Enter to send it.

Commands inside the chat:
  /copy           Copy the latest reply to the clipboard
  /exit, /quit    Leave the chat (Esc and Ctrl+C work too)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd)
		},
	}
}

func (a *app) runChat(cmd *cobra.Command) error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if a.cfg.TUITheme != "" && !render.SetTUITheme(a.cfg.TUITheme) {
		log := logger.For("chat")
		log.Warn().Str("theme", a.cfg.TUITheme).Msg("unknown TUI theme, using default")
	}
	tui.UpdateTheme()

	client, err := a.deps.NewClient(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer closeClient(client)

	return a.deps.RunChat(cmd.Context(), client, tui.Options{
		TypingDelay: a.cfg.TypingDelay(),
		Greeting:    a.cfg.Greeting,
		Markdown:    render.FromConfig(a.cfg.Markdown),
		Copy:        a.deps.Copy,
	})
}
