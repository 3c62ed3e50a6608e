package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/concierge/internal/api"
	"github.com/diogo/concierge/internal/chat"
	apierrors "github.com/diogo/concierge/internal/errors"
	"github.com/diogo/concierge/internal/models"
	"github.com/diogo/concierge/internal/render"
)

var fixedNow = time.Date(2024, 5, 10, 19, 45, 0, 0, time.UTC)

type copyRecorder struct {
	copied []string
	err    error
}

func (c *copyRecorder) write(text string) error {
	if c.err != nil {
		return c.err
	}
	c.copied = append(c.copied, text)
	return nil
}

func newTestModel(client api.ChatClientInterface, greeting string) (Model, *copyRecorder) {
	rec := &copyRecorder{}
	m := NewChatModel(context.Background(), client, Options{
		Greeting: greeting,
		Markdown: render.DefaultOptions().WithStyle("notty"),
		Clock:    func() time.Time { return fixedNow },
		Copy:     rec.write,
	})
	return m, rec
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func pressEnter(t *testing.T, m Model, input string) (Model, tea.Cmd) {
	t.Helper()
	m.textarea.SetValue(input)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

// collect runs cmd and flattens batches into the messages they produce
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findReply(t *testing.T, cmd tea.Cmd) replyMsg {
	t.Helper()
	for _, msg := range collect(cmd) {
		if r, ok := msg.(replyMsg); ok {
			return r
		}
	}
	t.Fatal("no replyMsg produced")
	return replyMsg{}
}

func findReveal(t *testing.T, cmd tea.Cmd) revealMsg {
	t.Helper()
	for _, msg := range collect(cmd) {
		if r, ok := msg.(revealMsg); ok {
			return r
		}
	}
	t.Fatal("no revealMsg produced")
	return revealMsg{}
}

func TestSubmitBlankInputIsNoop(t *testing.T) {
	client := &api.MockChatClient{}
	m, _ := newTestModel(client, "")
	m = sized(t, m)

	for _, input := range []string{"", "   ", "\n\t "} {
		var cmd tea.Cmd
		m, cmd = pressEnter(t, m, input)
		if cmd != nil {
			t.Errorf("input %q: expected no command", input)
		}
	}

	if m.Conversation().Len() != 0 {
		t.Errorf("blank input appended %d entries", m.Conversation().Len())
	}
	if len(client.Sent()) != 0 {
		t.Errorf("blank input reached the client: %v", client.Sent())
	}
	if m.Conversation().State() != chat.Idle {
		t.Error("blank input should leave the conversation idle")
	}
}

func TestSubmitAppendsTrimmedUserMessage(t *testing.T) {
	client := &api.MockChatClient{Reply: models.ReplyResult{Text: "For how many?", Source: models.ReplyFromBody}}
	m, _ := newTestModel(client, "")
	m = sized(t, m)

	m, cmd := pressEnter(t, m, "  book a table  ")
	if cmd == nil {
		t.Fatal("expected send command")
	}

	entries := m.Conversation().Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message.Text != "book a table" || entries[0].Message.Sender != models.SenderUser {
		t.Errorf("unexpected entry %+v", entries[0].Message)
	}
	if entries[0].Stamp != "19:45" {
		t.Errorf("first message stamp = %q, want 19:45", entries[0].Stamp)
	}
	if m.textarea.Value() != "" {
		t.Errorf("input not cleared: %q", m.textarea.Value())
	}
	if m.Conversation().State() != chat.AwaitingReply {
		t.Error("expected awaiting-reply after submit")
	}

	reply := findReply(t, cmd)
	if reply.result.Text != "For how many?" {
		t.Errorf("reply text = %q", reply.result.Text)
	}
	if sent := client.Sent(); len(sent) != 1 || sent[0] != "book a table" {
		t.Errorf("client received %v", sent)
	}
}

func TestReplyCycle(t *testing.T) {
	client := &api.MockChatClient{Reply: models.ReplyResult{Text: "Which city?", Source: models.ReplyFromBody}}
	m, _ := newTestModel(client, "")
	m = sized(t, m)

	m, cmd := pressEnter(t, m, "dinner")
	reply := findReply(t, cmd)

	updated, cmd := m.Update(reply)
	m = updated.(Model)

	if m.Conversation().Placeholders() != 1 {
		t.Fatalf("expected typing placeholder, got %d", m.Conversation().Placeholders())
	}
	if m.Conversation().State() != chat.AwaitingReply {
		t.Error("placeholder should keep the conversation awaiting")
	}

	reveal := findReveal(t, cmd)
	updated, _ = m.Update(reveal)
	m = updated.(Model)

	conv := m.Conversation()
	if conv.Placeholders() != 0 {
		t.Error("placeholder not removed on reveal")
	}
	last, ok := conv.LastFrom(models.SenderBot)
	if !ok || last.Text != "Which city?" {
		t.Errorf("bot message = %+v, %v", last, ok)
	}
	if conv.Replies() != 1 {
		t.Errorf("Replies() = %d, want 1", conv.Replies())
	}
	if conv.State() != chat.Idle {
		t.Errorf("state = %v, want idle", conv.State())
	}

	// same minute as the user message, so no second label
	stamps := 0
	for _, e := range conv.Entries() {
		if e.Stamp != "" {
			stamps++
		}
	}
	if stamps != 1 {
		t.Errorf("got %d stamps, want 1", stamps)
	}
}

func TestDefaultTypingDelayHoldsPlaceholder(t *testing.T) {
	client := &api.MockChatClient{Reply: models.ReplyResult{Text: "Which cuisine?", Source: models.ReplyFromBody}}
	opts := DefaultOptions()
	opts.Greeting = ""
	opts.Markdown = opts.Markdown.WithStyle("notty")
	opts.Clock = func() time.Time { return fixedNow }
	m := sized(t, NewChatModel(context.Background(), client, opts))

	if m.typingDelay != 500*time.Millisecond {
		t.Fatalf("typingDelay = %v, want 500ms", m.typingDelay)
	}

	m, cmd := pressEnter(t, m, "dinner")
	updated, cmd := m.Update(findReply(t, cmd))
	m = updated.(Model)

	if m.Conversation().Placeholders() != 1 {
		t.Fatalf("placeholders = %d, want 1 before the reveal", m.Conversation().Placeholders())
	}
	if _, ok := m.Conversation().LastFrom(models.SenderBot); ok {
		t.Fatal("reply shown before the typing delay elapsed")
	}

	start := time.Now()
	reveal := findReveal(t, cmd)
	if elapsed := time.Since(start); elapsed < models.DefaultTypingDelay {
		t.Errorf("reveal fired after %v, want at least %v", elapsed, models.DefaultTypingDelay)
	}

	updated, _ = m.Update(reveal)
	m = updated.(Model)
	if m.Conversation().Placeholders() != 0 {
		t.Error("placeholder not removed on reveal")
	}
	if last, _ := m.Conversation().LastFrom(models.SenderBot); last.Text != "Which cuisine?" {
		t.Errorf("bot text = %q", last.Text)
	}
}

func TestConnectionErrorReply(t *testing.T) {
	cause := apierrors.NewTransportError(502, "http://bot.test")
	client := &api.MockChatClient{Reply: models.ReplyResult{
		Text:   models.ConnectionErrorReply,
		Source: models.ReplyConnectionError,
		Err:    cause,
	}}
	m, _ := newTestModel(client, "")
	m = sized(t, m)

	m, cmd := pressEnter(t, m, "hello")
	updated, cmd := m.Update(findReply(t, cmd))
	m = updated.(Model)
	updated, _ = m.Update(findReveal(t, cmd))
	m = updated.(Model)

	if !errors.Is(m.err, cause) {
		t.Errorf("err = %v, want transport error", m.err)
	}
	last, _ := m.Conversation().LastFrom(models.SenderBot)
	if last.Text != models.ConnectionErrorReply {
		t.Errorf("bot text = %q", last.Text)
	}
	if !strings.Contains(m.View(), "HTTP Status: 502") {
		t.Error("view should show the absorbed error status")
	}
}

func TestOverlappingRepliesRevealTogether(t *testing.T) {
	client := &api.MockChatClient{ReplyFunc: func(text string) models.ReplyResult {
		return models.ReplyResult{Text: "re: " + text, Source: models.ReplyFromMessage}
	}}
	m, _ := newTestModel(client, "")
	m = sized(t, m)

	m, first := pressEnter(t, m, "one")
	m, second := pressEnter(t, m, "two")

	updated, revealFirst := m.Update(findReply(t, first))
	m = updated.(Model)
	updated, revealSecond := m.Update(findReply(t, second))
	m = updated.(Model)

	if m.Conversation().Placeholders() != 2 {
		t.Fatalf("expected 2 placeholders, got %d", m.Conversation().Placeholders())
	}

	updated, _ = m.Update(findReveal(t, revealFirst))
	m = updated.(Model)
	if m.Conversation().Placeholders() != 0 {
		t.Error("the first reveal removes every placeholder")
	}

	updated, _ = m.Update(findReveal(t, revealSecond))
	m = updated.(Model)

	msgs := m.Conversation().Messages()
	want := []string{"one", "two", "re: one", "re: two"}
	if len(msgs) != len(want) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(want))
	}
	for i, w := range want {
		if msgs[i].Text != w {
			t.Errorf("message %d = %q, want %q", i, msgs[i].Text, w)
		}
	}
	if m.Conversation().Replies() != 2 {
		t.Errorf("Replies() = %d, want 2", m.Conversation().Replies())
	}
}

func TestGreetingOnStart(t *testing.T) {
	m, _ := newTestModel(&api.MockChatClient{}, models.DefaultGreeting)

	var greeted bool
	for _, msg := range collect(m.Init()) {
		if _, ok := msg.(greetMsg); ok {
			greeted = true
		}
	}
	if !greeted {
		t.Fatal("Init() should schedule the greeting")
	}

	updated, cmd := m.Update(greetMsg{})
	m = updated.(Model)
	if m.Conversation().Placeholders() != 1 {
		t.Error("greeting should show the typing indicator first")
	}

	updated, _ = m.Update(findReveal(t, cmd))
	m = updated.(Model)

	last, ok := m.Conversation().LastFrom(models.SenderBot)
	if !ok || last.Text != models.DefaultGreeting {
		t.Errorf("greeting = %+v", last)
	}
}

func TestNoGreetingWhenEmpty(t *testing.T) {
	m, _ := newTestModel(&api.MockChatClient{}, "")
	for _, msg := range collect(m.Init()) {
		if _, ok := msg.(greetMsg); ok {
			t.Fatal("empty greeting should not be scheduled")
		}
	}
}

func TestExitCommands(t *testing.T) {
	for _, input := range []string{"/exit", "/quit", "  /quit "} {
		t.Run(input, func(t *testing.T) {
			client := &api.MockChatClient{}
			m, _ := newTestModel(client, "")
			m = sized(t, m)

			m, cmd := pressEnter(t, m, input)
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
			if m.Conversation().Len() != 0 || len(client.Sent()) != 0 {
				t.Error("exit command should not be sent as a message")
			}
		})
	}
}

func TestBareExitWordsAreMessages(t *testing.T) {
	for _, input := range []string{"exit", "quit"} {
		t.Run(input, func(t *testing.T) {
			client := &api.MockChatClient{Reply: models.ReplyResult{Text: "ok", Source: models.ReplyFromBody}}
			m, _ := newTestModel(client, "")
			m = sized(t, m)

			m, cmd := pressEnter(t, m, input)
			if cmd == nil {
				t.Fatal("expected send command")
			}
			findReply(t, cmd)

			if sent := client.Sent(); len(sent) != 1 || sent[0] != input {
				t.Errorf("client received %v, want [%s]", sent, input)
			}
			if m.Conversation().Len() != 1 {
				t.Errorf("expected the user message in the log, got %d entries", m.Conversation().Len())
			}
		})
	}
}

func TestCopyCommand(t *testing.T) {
	client := &api.MockChatClient{}
	m, rec := newTestModel(client, "")
	m = sized(t, m)

	m, _ = pressEnter(t, m, "/copy")
	if m.notice != "nothing to copy yet" {
		t.Errorf("notice = %q", m.notice)
	}
	if len(rec.copied) != 0 {
		t.Error("nothing should be copied before a bot reply")
	}

	updated, _ := m.Update(revealMsg{text: "Your table is booked."})
	m = updated.(Model)

	m, _ = pressEnter(t, m, "/copy")
	if len(rec.copied) != 1 || rec.copied[0] != "Your table is booked." {
		t.Errorf("copied = %v", rec.copied)
	}
	if len(client.Sent()) != 0 {
		t.Error("/copy should not reach the chatbot")
	}

	rec.err = errors.New("no clipboard")
	m, _ = pressEnter(t, m, "/copy")
	if !strings.Contains(m.notice, "no clipboard") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestViewRendersConversation(t *testing.T) {
	client := &api.MockChatClient{EndpointVal: "http://bot.test/chatbot"}
	m, _ := newTestModel(client, "")

	if !strings.Contains(m.View(), "Initializing") {
		t.Error("view before sizing should show the initializing text")
	}

	m = sized(t, m)
	m, _ = pressEnter(t, m, "hello concierge")
	updated, _ := m.Update(revealMsg{text: "hi"})
	m = updated.(Model)

	view := m.View()
	for _, want := range []string{"Concierge", "http://bot.test/chatbot", "hello concierge", "19:45", "Send"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAnimationStopsWithoutPlaceholders(t *testing.T) {
	m, _ := newTestModel(&api.MockChatClient{}, "")
	m = sized(t, m)
	m.animating = true

	updated, _ := m.Update(animationTickMsg(time.Now()))
	m = updated.(Model)
	if m.animating {
		t.Error("animation should stop once no placeholder is shown")
	}
}

func TestRenderTypingIndicator(t *testing.T) {
	for frame := 0; frame < 6; frame++ {
		out := renderTypingIndicator(frame)
		if strings.Count(out, "●") != 1 || strings.Count(out, "○") != 2 {
			t.Errorf("frame %d: unexpected indicator %q", frame, out)
		}
	}
}

func TestBubbleWidth(t *testing.T) {
	short := bubble(userBubbleStyle, "hi", 40)
	long := bubble(userBubbleStyle, strings.Repeat("word ", 30), 40)

	if w := maxLineWidth(short); w >= 40 {
		t.Errorf("short bubble should shrink to content, width %d", w)
	}
	if w := maxLineWidth(long); w > 42 {
		t.Errorf("long bubble exceeded cap, width %d", w)
	}
}

func maxLineWidth(s string) int {
	widest := 0
	for _, line := range strings.Split(s, "\n") {
		if n := len([]rune(line)); n > widest {
			widest = n
		}
	}
	return widest
}

func TestFormatError(t *testing.T) {
	if FormatError(nil) != "" {
		t.Error("nil error should format to empty string")
	}

	out := FormatError(apierrors.NewTransportError(500, "http://bot.test"))
	if !strings.Contains(out, "HTTP Status: 500") || !strings.Contains(out, "--endpoint") {
		t.Errorf("transport error format = %q", out)
	}

	out = FormatError(apierrors.NewNetworkError("send message", "http://bot.test", errors.New("refused")))
	if !strings.Contains(out, "internet connection") {
		t.Errorf("network error format = %q", out)
	}
}
