package persona

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/zhouzirui/objectchat/backend/internal/model/persona"
)

// Synthesis output is free text; the parsers below are tried in order until
// one claims the response. The last stage always succeeds, so parseSynthesis
// is total.
type parseAttempt func(raw, objectName string) (persona.Persona, bool)

var parseChain = []parseAttempt{
	parseEmbeddedJSON,
	parseLabeledFields,
	parseRawIntroduction,
}

func parseSynthesis(raw, objectName string) persona.Persona {
	for _, attempt := range parseChain {
		if p, ok := attempt(raw, objectName); ok {
			return p
		}
	}
	return persona.Fallback(objectName)
}

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// parseEmbeddedJSON accepts only a complete persona object: all three fields
// present and non-empty.
func parseEmbeddedJSON(raw, _ string) (persona.Persona, bool) {
	match := jsonObjectPattern.FindString(raw)
	if match == "" {
		return persona.Persona{}, false
	}

	var p persona.Persona
	if err := json.Unmarshal([]byte(match), &p); err != nil {
		return persona.Persona{}, false
	}
	if p.Tone == "" || len(p.Traits) == 0 || p.Introduction == "" {
		return persona.Persona{}, false
	}
	return p, true
}

var (
	tonePattern  = regexp.MustCompile(`Tone:?\s*([\s\S]+)`)
	traitPattern = regexp.MustCompile(`Traits:?\s*([\s\S]+)`)
	introPattern = regexp.MustCompile(`[Ii]ntroduction:?\s*([\s\S]+)`)
)

// parseLabeledFields extracts "Tone:", "Traits:", "Introduction:" sections
// from free text. It claims the response when at least one label is present;
// missing fields take the documented defaults.
func parseLabeledFields(raw, objectName string) (persona.Persona, bool) {
	toneMatch := tonePattern.FindStringSubmatch(raw)
	traitsMatch := traitPattern.FindStringSubmatch(raw)
	introMatch := introPattern.FindStringSubmatch(raw)

	if toneMatch == nil && traitsMatch == nil && introMatch == nil {
		return persona.Persona{}, false
	}

	p := persona.Persona{
		Tone:         persona.DefaultTone,
		Traits:       persona.DefaultTraits(),
		Introduction: persona.DefaultIntroduction(objectName),
	}

	if toneMatch != nil {
		p.Tone = strings.TrimSpace(toneMatch[1])
	}
	if traitsMatch != nil {
		parts := strings.Split(traitsMatch[1], ",")
		traits := make([]string, 0, len(parts))
		for _, part := range parts {
			if trait := strings.TrimSpace(part); trait != "" {
				traits = append(traits, trait)
			}
		}
		if len(traits) > 0 {
			p.Traits = traits
		}
	}
	if introMatch != nil {
		p.Introduction = strings.TrimSpace(introMatch[1])
	}

	return p, true
}

// parseRawIntroduction treats the whole response as the introduction. Always
// succeeds.
func parseRawIntroduction(raw, _ string) (persona.Persona, bool) {
	return persona.Persona{
		Tone:         persona.DefaultTone,
		Traits:       persona.DefaultTraits(),
		Introduction: strings.TrimSpace(raw),
	}, true
}
