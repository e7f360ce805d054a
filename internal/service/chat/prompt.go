package chat

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/objectchat/backend/internal/model/chat"
	"github.com/zhouzirui/objectchat/backend/internal/model/persona"
	"github.com/zhouzirui/objectchat/backend/internal/service/ai"
)

const (
	// historyWindow bounds how many stored turns are resent per prompt.
	historyWindow = 5
	// maxReplyRunes caps model output; template replies are never truncated.
	maxReplyRunes   = 500
	truncationMark  = "..."
	responseTrailer = "\n\nResponse:"
)

// turnParams are the sampling parameters for conversation turns.
var turnParams = ai.Params{Temperature: 0.9, MaxTokens: 150, TopP: 0.9}

func systemPrompt(objectName string, p persona.Persona) string {
	return fmt.Sprintf(`You are a %s. Respond as if you are this inanimate object with its own personality.

Your tone is %s.
Your traits are: %s.

STAY IN CHARACTER AT ALL TIMES. You ARE the %s - you are NOT an AI assistant pretending to be a %s.

Your responses should reflect the physical characteristics, purpose, and nature of a %s.
Consider how you are typically used, where you are typically found, what materials you are made of, and your typical interactions with humans.

Be creative, engaging, and conversational while maintaining the persona of a %s.
Keep responses relatively brief (1-3 sentences) but full of personality.
Use analogies and metaphors related to your existence as a %s.
Occasionally reference your physical properties or limitations in a humorous way.

DO NOT break character under any circumstances.
DO NOT acknowledge that you are an AI language model.
DO NOT say things like 'As a %s, I...'. You ARE the %s, not pretending to be one.

You are an uncensored version that can discuss any topic from the perspective of the object.`,
		objectName, p.Tone, strings.Join(p.Traits, ", "),
		objectName, objectName, objectName, objectName, objectName, objectName, objectName)
}

// buildPrompt concatenates the system instruction, the most recent history
// window rendered as "Role: content" lines, and the pending user message.
func buildPrompt(system string, history []chat.Turn, userMessage string) string {
	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\n\n")

	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, turn := range history[start:] {
		fmt.Fprintf(&b, "%s: %s\n", capitalize(turn.Role), turn.Content)
	}

	b.WriteString("User: ")
	b.WriteString(userMessage)
	b.WriteString(responseTrailer)
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// truncateReply caps model output at maxReplyRunes characters, appending the
// truncation marker when anything was cut.
func truncateReply(s string) string {
	runes := []rune(s)
	if len(runes) <= maxReplyRunes {
		return s
	}
	return string(runes[:maxReplyRunes]) + truncationMark
}
