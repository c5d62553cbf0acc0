package session

import (
	"strings"

	"github.com/ticolabs/papibot/internal/detector"
)

// Resolver pins down the monitored conversation. It starts either resolved
// (the group id came from config or a previous run) or unresolved, in which
// case the first group message that matches by name or by content captures
// the group. Capture happens at most once per process; the resolver never
// re-opens.
//
// Not safe for concurrent use: only the controller's processing loop touches
// it.
type Resolver struct {
	fragments  []string
	classifier *detector.Classifier

	resolved bool
	chatID   string
}

// NewResolver creates an unresolved Resolver matching on the given group
// display-name fragments. Fragments are compared in normalized form.
func NewResolver(fragments []string, classifier *detector.Classifier) *Resolver {
	normalized := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if n := detector.Normalize(f); n != "" {
			normalized = append(normalized, n)
		}
	}
	return &Resolver{
		fragments:  normalized,
		classifier: classifier,
	}
}

// Resolve pins the target conversation up front, skipping the bootstrap.
func (r *Resolver) Resolve(chatID string) {
	if chatID == "" {
		return
	}
	r.resolved = true
	r.chatID = chatID
}

// Resolved reports whether the target conversation is known.
func (r *Resolver) Resolved() bool {
	return r.resolved
}

// ChatID returns the captured conversation id, empty while unresolved.
func (r *Resolver) ChatID() string {
	return r.chatID
}

// IsTarget reports whether a group with the given display name, carrying a
// message with the given normalized text, looks like the monitored market
// group. A name-fragment hit is enough on its own; otherwise the content must
// show a crypto term together with either sell intent or an amount.
func (r *Resolver) IsTarget(displayName, normalizedText string) bool {
	if name := detector.Normalize(displayName); name != "" {
		for _, f := range r.fragments {
			if strings.Contains(name, f) {
				return true
			}
		}
	}

	m := r.classifier.Classify(normalizedText).Matches
	return m.CurrencyTerm && (m.SellKeyword || m.AmountPattern)
}

// Capture records the conversation id. No-op once resolved.
func (r *Resolver) Capture(chatID string) {
	if r.resolved {
		return
	}
	r.resolved = true
	r.chatID = chatID
}
