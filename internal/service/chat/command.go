package chat

import "strings"

// switchPrefix is the literal command phrase, matched case-insensitively.
const switchPrefix = "chat with"

// Command is the parsed form of an inbound chat message.
type Command interface {
	command()
}

// SwitchObject asks to change the active object. Name is lower-cased and has
// one leading "a "/"an " article stripped; it may be empty ("chat with" and
// nothing else).
type SwitchObject struct {
	Name string
}

// PlainMessage is any message that is not a switch command.
type PlainMessage struct {
	Text string
}

func (SwitchObject) command() {}
func (PlainMessage) command() {}

// ParseCommand classifies a user message.
func ParseCommand(message string) Command {
	trimmed := strings.TrimSpace(message)
	lower := strings.ToLower(trimmed)

	if !strings.HasPrefix(lower, switchPrefix) {
		return PlainMessage{Text: message}
	}

	name := strings.TrimSpace(strings.TrimPrefix(lower, switchPrefix))
	if strings.HasPrefix(name, "an ") {
		name = name[len("an "):]
	} else if strings.HasPrefix(name, "a ") {
		name = name[len("a "):]
	}
	name = strings.TrimSpace(name)

	return SwitchObject{Name: name}
}
