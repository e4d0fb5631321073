package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"gemini-chat/chatclient"
)

func TestTerminalRendererWritesEntries(t *testing.T) {
	var buf bytes.Buffer
	r := newTerminalRenderer(&buf)

	r.AppendEntry(chatclient.Entry{Role: chatclient.RoleUser, Content: "Hello"})
	r.ShowError(chatclient.FailureText)
	r.ShowQuota(30, map[string]any{"scope": "minute"})
	r.Countdown(0)

	out := buf.String()
	for _, want := range []string{"Hello", chatclient.FailureText, "30 seconds", "scope: minute", "/retry"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestTerminalRendererConversationList(t *testing.T) {
	var buf bytes.Buffer
	r := newTerminalRenderer(&buf)

	r.ConversationList(nil)
	if !strings.Contains(buf.String(), "no conversations yet") {
		t.Fatalf("expected empty message, got %q", buf.String())
	}

	buf.Reset()
	r.ConversationList([]chatclient.Conversation{{ID: 3, Title: "Hello", CreatedAt: time.Now()}})
	if !strings.Contains(buf.String(), "#3") || !strings.Contains(buf.String(), "Hello") {
		t.Fatalf("unexpected list output %q", buf.String())
	}
}

func TestSessionTokenFile(t *testing.T) {
	t.Setenv("CHAT_SESSION_FILE", t.TempDir()+"/session")

	if tok, err := loadSessionToken(); err != nil || tok != "" {
		t.Fatalf("expected empty token, got %q (%v)", tok, err)
	}
	if err := saveSessionToken("abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if tok, _ := loadSessionToken(); tok != "abc" {
		t.Fatalf("expected abc, got %q", tok)
	}
	if err := clearSessionToken(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if tok, _ := loadSessionToken(); tok != "" {
		t.Fatalf("expected token removed, got %q", tok)
	}
}
