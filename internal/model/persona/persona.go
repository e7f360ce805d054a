package persona

import "fmt"

// Persona captures the personality attributes assigned to an everyday object.
// Once resolved for a turn it is treated as immutable.
type Persona struct {
	Tone         string   `json:"tone"`
	Traits       []string `json:"traits"`
	Introduction string   `json:"introduction"`
}

// DefaultTone is the tone used when synthesis yields no usable value.
const DefaultTone = "friendly"

// DefaultTraits returns the trait list used when synthesis yields no usable value.
func DefaultTraits() []string {
	return []string{"helpful", "curious", "object-like", "unique"}
}

// DefaultIntroduction fills the introduction field when synthesis found the
// labeled sections but no introduction among them.
func DefaultIntroduction(objectName string) string {
	return fmt.Sprintf("Hello! I am a %s. How can I interact with you today?", objectName)
}

// Fallback is the persona handed out when the completion provider is
// unavailable or synthesis fails outright. Deterministic for a given object.
func Fallback(objectName string) Persona {
	return Persona{
		Tone:   DefaultTone,
		Traits: DefaultTraits(),
		Introduction: fmt.Sprintf(
			"Hi there! I'm a %s. It's quite an experience to be able to chat with you! What would you like to know about my life as a %s?",
			objectName, objectName,
		),
	}
}
