package models

import (
	"errors"
	"testing"
	"time"
)

func TestSenderString(t *testing.T) {
	tests := []struct {
		sender Sender
		want   string
	}{
		{SenderUser, "user"},
		{SenderBot, "bot"},
		{Sender(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.sender.String(); got != tt.want {
			t.Errorf("Sender(%d).String() = %q, want %q", tt.sender, got, tt.want)
		}
	}
}

func TestMinuteLabel(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"unpadded", time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC), "9:5"},
		{"two digits", time.Date(2024, 1, 1, 14, 30, 59, 0, time.UTC), "14:30"},
		{"midnight", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "0:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinuteOf(tt.at).Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageMinute(t *testing.T) {
	msg := Message{Text: "hi", Sender: SenderUser, Time: time.Date(2024, 1, 1, 7, 8, 9, 0, time.UTC)}
	if got := msg.Minute(); got != (Minute{Hour: 7, Minute: 8}) {
		t.Errorf("Minute() = %+v", got)
	}
}

func TestReplySourceString(t *testing.T) {
	tests := []struct {
		source ReplySource
		want   string
	}{
		{ReplyFromBody, "body.message"},
		{ReplyFromMessage, "message"},
		{ReplyFallback, "fallback"},
		{ReplyConnectionError, "connection-error"},
		{ReplySource(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.source.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestReplyResultFailed(t *testing.T) {
	ok := ReplyResult{Text: "hello", Source: ReplyFromBody}
	if ok.Failed() {
		t.Error("body reply should not be failed")
	}

	fallback := ReplyResult{Text: FallbackReply, Source: ReplyFallback}
	if fallback.Failed() {
		t.Error("fallback reply is a successful exchange")
	}

	failed := ReplyResult{Text: ConnectionErrorReply, Source: ReplyConnectionError, Err: errors.New("boom")}
	if !failed.Failed() {
		t.Error("connection error reply should be failed")
	}
}

func TestDefaultHeaders(t *testing.T) {
	headers := DefaultHeaders()
	if headers["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q", headers["Content-Type"])
	}

	headers["Content-Type"] = "text/plain"
	if DefaultHeaders()["Content-Type"] != "application/json" {
		t.Error("DefaultHeaders() should return a fresh map")
	}
}
