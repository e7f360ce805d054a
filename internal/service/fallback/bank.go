// Package fallback holds the canned reply bank used whenever the completion
// provider is unavailable. Lookups never fail.
package fallback

import (
	"math/rand"
	"strings"
	"sync"
)

var templates = map[string][]string{
	"lamp": {
		"I'm shining brightly just for you! What else can I illuminate today?",
		"Let me light up your world! I've been hanging around all day waiting for someone to talk to.",
		"I'm feeling particularly bright today! Must be my new bulb. What's on your mind?",
		"*flickers thoughtfully* Sometimes I wonder if I'm truly appreciated for my inner glow, not just my outer brightness.",
		"If I could move, I'd dance across the ceiling! But alas, I'm stuck in place, shining where I'm pointed.",
	},
	"book": {
		"My pages hold countless adventures! Which one would you like to explore today?",
		"I've been read by many, but each reader brings something new to my story. What do you see in my pages?",
		"Knowledge is power, and I'm full of it! What wisdom are you seeking?",
		"Sometimes I worry about becoming obsolete in the digital age, but then someone picks me up and I remember the magic of physical pages.",
		"I've spent years on this shelf, watching the world go by. Care to hear some of my observations?",
	},
	"chair": {
		"Take a load off! I'm here to support you whenever you need a rest.",
		"I've held the weight of many conversations. Care to add one more?",
		"Four legs and a back - simple design, but I've never let anyone down! Well, except that one time...",
		"People often take me for granted, but where would meetings be without me? Standing room only!",
		"I've been supporting people all day. It's nice to have someone actually talk to me for a change!",
	},
}

// generic replies carry an {object} placeholder substituted at lookup time.
var generic = []string{
	"As a {object}, I find your question intriguing! Let me think about that from my unique perspective.",
	"Interesting! From where I stand as a {object}, I see things a bit differently.",
	"If only more people would ask a {object} for their opinion! We have such unique insights.",
	"Being a {object} gives me a special perspective on that. Let me share my thoughts...",
	"You know, we {object}s don't get asked about this often. Here's my take...",
}

// Bank selects canned replies. Safe for concurrent use.
type Bank struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a bank with its own random source.
func New(seed int64) *Bank {
	return &Bank{rng: rand.New(rand.NewSource(seed))}
}

// Response picks a uniformly random reply for the object, case-insensitively.
// Unknown objects get a generic reply with the object name substituted in.
func (b *Bank) Response(objectName string) string {
	if replies, ok := templates[strings.ToLower(objectName)]; ok {
		return replies[b.pick(len(replies))]
	}

	reply := generic[b.pick(len(generic))]
	return strings.ReplaceAll(reply, "{object}", objectName)
}

// Candidates returns every reply the bank could produce for the object, for
// tests and diagnostics.
func Candidates(objectName string) []string {
	if replies, ok := templates[strings.ToLower(objectName)]; ok {
		return append([]string(nil), replies...)
	}

	out := make([]string, len(generic))
	for i, reply := range generic {
		out[i] = strings.ReplaceAll(reply, "{object}", objectName)
	}
	return out
}

func (b *Bank) pick(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.Intn(n)
}
