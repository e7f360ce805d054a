package persona

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zhouzirui/objectchat/backend/internal/model/persona"
	"github.com/zhouzirui/objectchat/backend/internal/service/ai"
)

// Completer is the completion capability the resolver needs, satisfied by
// *ai.Gateway.
type Completer interface {
	Available() bool
	Complete(ctx context.Context, prompt string, p ai.Params) (string, error)
}

// Sampling parameters for persona synthesis.
var synthesisParams = ai.Params{Temperature: 0.8, MaxTokens: 500, TopP: 0.9}

// Resolver maps an object name to a persona: curated table first, then LLM
// synthesis, then the deterministic fallback. Pure function of its inputs and
// gateway availability; callers cache per session if they need stability.
type Resolver struct {
	completer Completer
}

// NewResolver wires the resolver to a completion capability. A nil completer
// is allowed and behaves as permanently unavailable.
func NewResolver(c Completer) *Resolver {
	return &Resolver{completer: c}
}

// Resolve never fails; the worst case is the fallback persona.
func (r *Resolver) Resolve(ctx context.Context, objectName string) persona.Persona {
	if p, ok := persona.Builtin(objectName); ok {
		return p
	}

	if r.completer == nil || !r.completer.Available() {
		return persona.Fallback(objectName)
	}

	raw, err := r.completer.Complete(ctx, synthesisPrompt(objectName), synthesisParams)
	if err != nil {
		slog.Warn("persona synthesis failed", "object", objectName, "error", err)
		return persona.Fallback(objectName)
	}

	return parseSynthesis(raw, objectName)
}

func synthesisPrompt(objectName string) string {
	return fmt.Sprintf(`Create a persona for a %s that will be used in a conversational AI application.
The persona should include:
1. A tone (e.g., friendly, formal, quirky, etc.)
2. A list of 3-5 personality traits
3. A brief introduction message (1-2 sentences) that the %s would say to introduce itself

Format your response exactly like this JSON structure:
{"tone": "[tone]", "traits": ["trait1", "trait2", "trait3"], "introduction": "[introduction message]"}

Be creative and think about the physical properties, typical uses, and cultural associations of a %s.`,
		objectName, objectName, objectName)
}
