package chat

import "testing"

func TestParseCommandSwitch(t *testing.T) {
	cases := []struct {
		message string
		object  string
	}{
		{"Chat with a lamp", "lamp"},
		{"chat with an umbrella", "umbrella"},
		{"CHAT WITH A Book", "book"},
		{"chat with coffee mug", "coffee mug"},
		{"  chat with a chair  ", "chair"},
		{"chat with a", "a"}, // bare article, no object to strip it from
		{"chat with", ""},
	}

	for _, tc := range cases {
		cmd, ok := ParseCommand(tc.message).(SwitchObject)
		if !ok {
			t.Fatalf("ParseCommand(%q): expected SwitchObject", tc.message)
		}
		if cmd.Name != tc.object {
			t.Fatalf("ParseCommand(%q): got object %q, want %q", tc.message, cmd.Name, tc.object)
		}
	}
}

func TestParseCommandPlainMessage(t *testing.T) {
	cases := []string{
		"hello",
		"let's chat with each other", // prefix must be at the start
		"I want to chat",
		"",
	}

	for _, message := range cases {
		cmd, ok := ParseCommand(message).(PlainMessage)
		if !ok {
			t.Fatalf("ParseCommand(%q): expected PlainMessage", message)
		}
		if cmd.Text != message {
			t.Fatalf("ParseCommand(%q): text mangled to %q", message, cmd.Text)
		}
	}
}
