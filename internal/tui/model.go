package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/diogo/concierge/internal/api"
	"github.com/diogo/concierge/internal/chat"
	"github.com/diogo/concierge/internal/logger"
	"github.com/diogo/concierge/internal/models"
	"github.com/diogo/concierge/internal/render"
)

// Message types for the TUI
type (
	// greetMsg fires once when the program starts
	greetMsg struct{}

	// replyMsg carries the adapter's answer to one submission
	replyMsg struct {
		result models.ReplyResult
	}

	// revealMsg fires when the typing delay for a reply has elapsed
	revealMsg struct {
		text string
	}

	animationTickMsg time.Time
)

// Options configures the chat window
type Options struct {
	// TypingDelay is how long the typing indicator shows before a reply
	TypingDelay time.Duration

	// Greeting is shown as the first bot reply; empty disables it
	Greeting string

	Markdown render.Options

	// Clock stamps messages; nil means time.Now
	Clock chat.Clock

	// Copy writes text to the system clipboard; nil means atotto/clipboard
	Copy func(string) error
}

// DefaultOptions returns the options the widget ships with
func DefaultOptions() Options {
	return Options{
		TypingDelay: models.DefaultTypingDelay,
		Greeting:    models.DefaultGreeting,
		Markdown:    render.DefaultOptions(),
	}
}

// Model is the chat window state
type Model struct {
	ctx    context.Context
	client api.ChatClientInterface
	conv   *chat.Conversation
	log    zerolog.Logger

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	typingDelay time.Duration
	greeting    string
	markdown    render.Options
	copyFn      func(string) error

	ready          bool
	animating      bool
	animationFrame int
	notice         string
	err            error

	width  int
	height int
}

// NewChatModel creates the chat window. The conversation starts empty;
// the greeting, if any, is shown once the program starts.
func NewChatModel(ctx context.Context, client api.ChatClientInterface, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.TypingDelay < 0 {
		opts.TypingDelay = 0
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	ta := textarea.New()
	ta.Placeholder = "Type message..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		ctx:         ctx,
		client:      client,
		conv:        chat.New(opts.Clock),
		log:         logger.For("tui"),
		textarea:    ta,
		spinner:     s,
		typingDelay: opts.TypingDelay,
		greeting:    opts.Greeting,
		markdown:    opts.Markdown,
		copyFn:      opts.Copy,
	}
}

// Conversation exposes the underlying log
func (m Model) Conversation() *chat.Conversation {
	return m.conv
}

// Init starts the cursor blink and schedules the greeting
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.greeting != "" {
		cmds = append(cmds, func() tea.Msg { return greetMsg{} })
	}
	return tea.Batch(cmds...)
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*120, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 1
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.pinScrollToBottom()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			switch input {
			case "/exit", "/quit":
				return m, tea.Quit
			case "/copy":
				m.textarea.Reset()
				m.copyLastReply()
				return m, nil
			}
			cmd = m.submitUserMessage(m.textarea.Value())
			return m, cmd
		}

	case greetMsg:
		cmds = append(cmds, m.displayBotReply(m.greeting))

	case replyMsg:
		m.conv.EndRequest()
		if msg.result.Failed() {
			m.err = msg.result.Err
		}
		cmds = append(cmds, m.displayBotReply(msg.result.Text))

	case revealMsg:
		m.conv.RemovePlaceholders()
		m.conv.AppendMessage(models.SenderBot, msg.text)
		m.stampTimestamp()
		m.pinScrollToBottom()
		m.conv.IncrementReplies()

	case spinner.TickMsg:
		if m.conv.State() == chat.AwaitingReply {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.conv.Placeholders() > 0 {
			m.animationFrame++
			m.updateViewport()
			cmds = append(cmds, animationTick())
		} else {
			m.animating = false
		}
	}

	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submitUserMessage appends the trimmed input as a user message and
// returns the command that asks the chatbot. Blank input is a no-op.
// A second submission while a reply is outstanding is allowed.
func (m *Model) submitUserMessage(raw string) tea.Cmd {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	m.conv.AppendMessage(models.SenderUser, text)
	m.stampTimestamp()
	m.textarea.Reset()
	m.pinScrollToBottom()

	m.notice = ""
	m.err = nil
	m.conv.BeginRequest()
	m.log.Debug().Int("length", len(text)).Msg("message submitted")

	return tea.Batch(m.sendMessage(text), m.spinner.Tick)
}

func (m Model) sendMessage(text string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		return replyMsg{result: client.SendMessage(ctx, text)}
	}
}

// displayBotReply shows the typing indicator and schedules the reveal of text.
func (m *Model) displayBotReply(text string) tea.Cmd {
	m.conv.AppendPlaceholder()
	m.pinScrollToBottom()

	reveal := tea.Tick(m.typingDelay, func(time.Time) tea.Msg {
		return revealMsg{text: text}
	})
	if m.animating {
		return reveal
	}
	m.animating = true
	return tea.Batch(reveal, animationTick())
}

// stampTimestamp labels the newest entry when the minute has changed.
func (m *Model) stampTimestamp() {
	m.conv.StampTimestamp()
}

// pinScrollToBottom re-renders the log and scrolls to the newest entry.
func (m *Model) pinScrollToBottom() {
	if !m.ready {
		return
	}
	m.updateViewport()
	m.viewport.GotoBottom()
}

func (m *Model) copyLastReply() {
	last, ok := m.conv.LastFrom(models.SenderBot)
	if !ok {
		m.notice = "nothing to copy yet"
		return
	}
	if err := m.copyFn(last.Text); err != nil {
		m.log.Warn().Err(err).Msg("clipboard write failed")
		m.notice = fmt.Sprintf("copy failed: %v", err)
		return
	}
	m.notice = "copied last reply to clipboard"
}

func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderLog(m.viewport.Width))
}

func (m Model) renderLog(width int) string {
	bubbleMax := width * 3 / 4
	if bubbleMax < 20 {
		bubbleMax = width
	}

	var content strings.Builder
	for i, entry := range m.conv.Entries() {
		if i > 0 {
			content.WriteString("\n")
		}

		var block string
		align := lipgloss.Left
		switch {
		case entry.Placeholder:
			block = botLabelStyle.Render("✦ Concierge") + "\n" +
				typingBubbleStyle.Render(renderTypingIndicator(m.animationFrame))
		case entry.Message.Sender == models.SenderUser:
			align = lipgloss.Right
			block = userLabelStyle.Render("You") + "\n" +
				bubble(userBubbleStyle, entry.Message.Text, bubbleMax)
		default:
			opts := m.markdown.WithWidth(bubbleMax - 4)
			block = botLabelStyle.Render("✦ Concierge") + "\n" +
				bubble(botBubbleStyle, render.Reply(entry.Message.Text, opts), bubbleMax)
		}
		if entry.Stamp != "" {
			block += "\n" + stampStyle.Render(entry.Stamp)
		}

		content.WriteString(lipgloss.PlaceHorizontal(width, align, lipgloss.JoinVertical(align, block)))
		content.WriteString("\n")
	}
	return content.String()
}

// bubble sizes a message box to its content, capped at limit columns
func bubble(style lipgloss.Style, text string, limit int) string {
	w := lipgloss.Width(text) + 2
	if w > limit {
		w = limit
	}
	return style.Width(w).Render(text)
}

func renderTypingIndicator(frame int) string {
	var sb strings.Builder
	for i := 0; i < 3; i++ {
		color := gradientColors[(frame+i)%len(gradientColors)]
		dot := "○"
		if frame%3 == i {
			dot = "●"
		}
		sb.WriteString(lipgloss.NewStyle().Foreground(color).Render(dot))
		if i < 2 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	headerContent := lipgloss.JoinHorizontal(
		lipgloss.Center,
		titleStyle.Render("✦ Concierge"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.client.Endpoint()),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View()))

	inputContent := lipgloss.JoinVertical(
		lipgloss.Left,
		inputLabelStyle.Render("You"),
		m.textarea.View(),
	)
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		sections = append(sections, noticeStyle.Render("  "+m.notice))
	}
	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"/copy", "Copy reply"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	bar := strings.Join(items, "  │  ")

	if m.conv.State() == chat.AwaitingReply {
		bar = m.spinner.View() + loadingStyle.Render(" waiting for reply") + "  │  " + bar
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// RunChat runs the chat window until the user quits
func RunChat(ctx context.Context, client api.ChatClientInterface, opts Options) error {
	m := NewChatModel(ctx, client, opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
