package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/concierge/internal/errors"
	"github.com/diogo/concierge/internal/logger"
	"github.com/diogo/concierge/internal/models"
	"github.com/diogo/concierge/internal/render"
	"github.com/diogo/concierge/internal/tui"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"),
	lipgloss.Color("#feca57"),
	lipgloss.Color("#48dbfb"),
	lipgloss.Color("#ff9ff3"),
	lipgloss.Color("#54a0ff"),
	lipgloss.Color("#00d2d3"),
	lipgloss.Color("#1dd1a1"),
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorWarning  = lipgloss.Color("#f7768e")
	colorBot      = lipgloss.Color("#9ece6a")
)

// Styles matching the chat TUI
var (
	botLabelStyle = lipgloss.NewStyle().
			Foreground(colorBot).
			Bold(true)

	botBubbleStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBot).
			Foreground(colorText).
			Padding(0, 1).
			MarginBottom(1)
)

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// runQuery sends a single message and prints the reply. On a terminal the
// reply is rendered in a bubble; otherwise only the raw text is written.
func (a *app) runQuery(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return apierrors.ErrEmptyMessage
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.For("query")
	decorated := a.deps.IsTTY()

	client, err := a.deps.NewClient(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer closeClient(client)

	var spin *spinner
	if decorated {
		spin = newSpinner(a.deps.Err, "Asking the concierge")
		spin.start()
	}

	start := time.Now()
	result := client.SendMessage(ctx, message)
	log.Debug().
		Str("source", result.Source.String()).
		Dur("took", time.Since(start)).
		Msg("reply received")

	if decorated {
		if result.Failed() {
			spin.stopWithError()
			fmt.Fprintln(a.deps.Err, tui.FormatError(result.Err))
		} else {
			spin.stopWithSuccess("Done")
		}
	}
	if a.cfg.Verbose && result.Source == models.ReplyFallback {
		fmt.Fprintln(a.deps.Err, "[verbose] reply carried no message; showing fallback")
	}

	// the fallback reply is shown like any other; the error only sets the exit status
	if err := a.printReply(result, decorated); err != nil {
		return err
	}
	if result.Failed() {
		return fmt.Errorf("chatbot request failed: %w", result.Err)
	}
	return nil
}

// printReply writes the reply raw when stdout is not a terminal, or to the
// -o file, or as a rendered bubble.
func (a *app) printReply(result models.ReplyResult, decorated bool) error {
	text := result.Text
	if !decorated {
		if a.outputFlag != "" {
			return writeOutput(a.outputFlag, text)
		}
		fmt.Fprint(a.deps.Out, text)
		return nil
	}

	if a.cfg.CopyToClipboard && !result.Failed() {
		if err := a.deps.Copy(text); err != nil {
			fmt.Fprintln(a.deps.Err, lipgloss.NewStyle().Foreground(colorWarning).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			))
		} else {
			fmt.Fprintln(a.deps.Err, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if a.outputFlag != "" {
		if err := writeOutput(a.outputFlag, text); err != nil {
			return err
		}
		fmt.Fprintln(a.deps.Err, lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Reply saved to %s", a.outputFlag),
		))
		return nil
	}

	bubbleWidth := a.deps.TermWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}

	opts := render.FromConfig(a.cfg.Markdown).WithWidth(bubbleWidth - 4)
	fmt.Fprintln(a.deps.Out, botLabelStyle.Render("✦ Concierge"))
	fmt.Fprintln(a.deps.Out, botBubbleStyle.Width(bubbleWidth).Render(render.Reply(text, opts)))
	return nil
}

func writeOutput(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
