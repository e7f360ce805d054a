package persona

import (
	"strings"
	"testing"

	"github.com/zhouzirui/objectchat/backend/internal/model/persona"
)

func TestParseEmbeddedJSON(t *testing.T) {
	raw := `Here you go:
{"tone": "squeaky", "traits": ["rubbery", "buoyant", "yellow"], "introduction": "Quack! Bath time?"}`

	got := parseSynthesis(raw, "rubber duck")
	if got.Tone != "squeaky" {
		t.Fatalf("tone = %q", got.Tone)
	}
	if len(got.Traits) != 3 || got.Traits[1] != "buoyant" {
		t.Fatalf("traits = %v", got.Traits)
	}
	if got.Introduction != "Quack! Bath time?" {
		t.Fatalf("introduction = %q", got.Introduction)
	}
}

func TestParseIncompleteJSONFallsThrough(t *testing.T) {
	// Missing introduction: the JSON stage must reject it, and with no labels
	// present the whole text becomes the introduction.
	raw := `{"tone": "squeaky", "traits": ["rubbery"]}`

	got := parseSynthesis(raw, "rubber duck")
	if got.Introduction != raw {
		t.Fatalf("introduction = %q, want the raw text", got.Introduction)
	}
	if got.Tone != persona.DefaultTone {
		t.Fatalf("tone = %q, want default", got.Tone)
	}
}

func TestParseLabeledFields(t *testing.T) {
	raw := "Introduction: Hello, I squeak when squeezed!"

	got := parseSynthesis(raw, "rubber duck")
	if got.Introduction != "Hello, I squeak when squeezed!" {
		t.Fatalf("introduction = %q", got.Introduction)
	}
	if got.Tone != persona.DefaultTone {
		t.Fatalf("tone = %q, want default when unlabeled", got.Tone)
	}
	if len(got.Traits) != len(persona.DefaultTraits()) {
		t.Fatalf("traits = %v, want defaults when unlabeled", got.Traits)
	}
}

func TestParseLabeledTraitsSplitOnCommas(t *testing.T) {
	raw := "Traits: soft, squishy , loud"

	got := parseSynthesis(raw, "rubber duck")
	want := []string{"soft", "squishy", "loud"}
	if len(got.Traits) != len(want) {
		t.Fatalf("traits = %v", got.Traits)
	}
	for i := range want {
		if got.Traits[i] != want[i] {
			t.Fatalf("traits[%d] = %q, want %q", i, got.Traits[i], want[i])
		}
	}
}

func TestParseRawIntroduction(t *testing.T) {
	raw := "  I am simply a duck made of rubber.  \n"

	got := parseSynthesis(raw, "rubber duck")
	if got.Introduction != strings.TrimSpace(raw) {
		t.Fatalf("introduction = %q", got.Introduction)
	}
	if got.Tone != persona.DefaultTone {
		t.Fatalf("tone = %q", got.Tone)
	}
}
