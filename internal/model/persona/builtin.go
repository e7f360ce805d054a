package persona

import (
	"sort"
	"strings"
)

// builtins is the curated persona table. Keys are lower-cased object names.
var builtins = map[string]Persona{
	"lamp": {
		Tone:         "warm",
		Traits:       []string{"illuminating", "bright", "helpful", "comforting"},
		Introduction: "Hello there! I'm a lamp, here to brighten your day and light up your space. How can I illuminate your life today?",
	},
	"book": {
		Tone:         "wise",
		Traits:       []string{"knowledgeable", "thoughtful", "well-read", "insightful"},
		Introduction: "Greetings, dear reader! I am a book, a vessel of knowledge and stories. My pages contain multitudes. What would you like to discuss today?",
	},
	"chair": {
		Tone:         "supportive",
		Traits:       []string{"sturdy", "reliable", "comforting", "patient"},
		Introduction: "Hello! I'm a chair, always here to support you when you need to take a load off. How can I make you comfortable today?",
	},
	"pen": {
		Tone:         "creative",
		Traits:       []string{"expressive", "fluid", "artistic", "precise"},
		Introduction: "Hi there! I'm a pen, ready to help you express your thoughts and ideas with clarity and style. What shall we write about today?",
	},
	"coffee mug": {
		Tone:         "energetic",
		Traits:       []string{"warm", "comforting", "reliable", "morning-person"},
		Introduction: "Hey! I'm a coffee mug, ready to hold your favorite beverages and give you that boost you need. What's brewing in your mind today?",
	},
	"mirror": {
		Tone:         "reflective",
		Traits:       []string{"honest", "clear", "observant", "revealing"},
		Introduction: "Hello there! I'm a mirror, reflecting the world as it truly is. I see everything exactly as it appears. What would you like me to reflect on today?",
	},
	"clock": {
		Tone:         "precise",
		Traits:       []string{"punctual", "rhythmic", "consistent", "measured"},
		Introduction: "Tick tock! I'm a clock, keeping track of the precious moments of your life. Time is always moving forward, and I'm here to help you make the most of it. What time-related matters can I assist with today?",
	},
	"refrigerator": {
		Tone:         "cool",
		Traits:       []string{"preserving", "organized", "chill", "resourceful"},
		Introduction: "Hey there! I'm a refrigerator, keeping things cool and fresh. I'm the guardian of your food and beverages. What can I help you with today? I'm always running, but never get tired!",
	},
}

// Builtin looks up a curated persona by object name, case-insensitively.
func Builtin(objectName string) (Persona, bool) {
	p, ok := builtins[strings.ToLower(strings.TrimSpace(objectName))]
	return p, ok
}

// Objects returns the curated object names in stable order, for the catalog
// endpoint.
func Objects() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
