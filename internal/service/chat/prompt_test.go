package chat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/zhouzirui/objectchat/backend/internal/model/chat"
	"github.com/zhouzirui/objectchat/backend/internal/model/persona"
)

func TestBuildPromptWindowsHistory(t *testing.T) {
	var history []chat.Turn
	for i := 0; i < 120; i++ {
		history = append(history,
			chat.Turn{Role: chat.RoleUser, Content: fmt.Sprintf("question %d", i)},
			chat.Turn{Role: chat.RoleAssistant, Content: fmt.Sprintf("answer %d", i)},
		)
	}

	prompt := buildPrompt("SYSTEM", history, "latest")

	// Only the 5 most recent turns are resent.
	if strings.Contains(prompt, "question 116") {
		t.Fatal("prompt contains turns older than the history window")
	}
	for _, want := range []string{"Assistant: answer 117", "User: question 118", "Assistant: answer 118", "User: question 119", "Assistant: answer 119"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing windowed turn %q", want)
		}
	}
	if !strings.HasSuffix(prompt, "User: latest\n\nResponse:") {
		t.Fatalf("prompt does not end with the pending user message: %q", prompt[len(prompt)-60:])
	}
}

func TestBuildPromptCapitalizesRoles(t *testing.T) {
	history := []chat.Turn{
		{Role: chat.RoleUser, Content: "hi"},
		{Role: chat.RoleAssistant, Content: "hello"},
	}

	prompt := buildPrompt("SYSTEM", history, "how are you?")

	if !strings.Contains(prompt, "User: hi\n") || !strings.Contains(prompt, "Assistant: hello\n") {
		t.Fatalf("history not rendered as capitalized Role: content lines:\n%s", prompt)
	}
}

func TestSystemPromptEmbedsPersona(t *testing.T) {
	p := persona.Persona{Tone: "warm", Traits: []string{"bright", "helpful"}}

	prompt := systemPrompt("lamp", p)

	for _, want := range []string{"You are a lamp", "Your tone is warm", "bright, helpful", "DO NOT break character"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("system prompt missing %q", want)
		}
	}
}

func TestTruncateReply(t *testing.T) {
	long := strings.Repeat("x", 812)
	got := truncateReply(long)
	if len([]rune(got)) != maxReplyRunes+len(truncationMark) {
		t.Fatalf("truncated length = %d, want %d", len([]rune(got)), maxReplyRunes+len(truncationMark))
	}
	if !strings.HasSuffix(got, truncationMark) {
		t.Fatal("truncated reply missing marker")
	}

	exact := strings.Repeat("y", maxReplyRunes)
	if truncateReply(exact) != exact {
		t.Fatal("reply at the limit must not be truncated")
	}
	if truncateReply("short") != "short" {
		t.Fatal("short reply must not be truncated")
	}
}
