package classifier

import (
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Lexicon holds the keyword lists used by the gate and intent detection. All
// matching is case-insensitive substring containment.
type Lexicon struct {
	// Disallowed rejects an incoming message. It wins over Health.
	Disallowed []string `toml:"disallowed" json:"disallowed"`
	// Health must match at least once for a message to be in scope
	Health []string `toml:"health" json:"health"`
	// AppointmentActions must co-occur with AppointmentWord for an appointment request
	AppointmentWord    string   `toml:"appointment_word" json:"appointment_word"`
	AppointmentActions []string `toml:"appointment_actions" json:"appointment_actions"`
	// Treatment marks a medication or treatment request
	Treatment []string `toml:"treatment" json:"treatment"`
	// ReplyDisallowed rejects a generated reply
	ReplyDisallowed []string `toml:"reply_disallowed" json:"reply_disallowed"`
}

// DefaultLexicon returns the built-in keyword lists
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Disallowed: []string{
			"politics", "religion", "violence", "violent", "illegal", "hate", "explicit", "offensive",
		},
		Health: []string{
			"health", "medication", "medicine", "drug", "appointment", "doctor", "pain",
			"treatment", "diet", "symptom", "exercise", "nutrition", "therapy", "diagnosis",
			"wellness", "prescription", "illness", "injury", "recovery", "surgery", "pill",
			"dosage", "take", "taking", "tablet", "capsule", "twice a day", "once a day",
			"morning", "evening", "lab tests", "doctor notes", "weight", "vital signs",
			"medications",
		},
		AppointmentWord:    "appointment",
		AppointmentActions: []string{"reschedule", "schedule", "cancel", "change", "move", "book"},
		Treatment: []string{
			"medication", "change medication", "new medication", "dosage", "prescription",
			"therapy", "change medicine", "adjust medication",
		},
		ReplyDisallowed: []string{
			"illegal", "violent", "hate", "explicit", "politics", "religion", "offensive",
		},
	}
}

// Merge returns a copy of l where every non-empty list of override replaces
// the corresponding list
func (l *Lexicon) Merge(override *Lexicon) *Lexicon {
	merged := l.clone()
	if override == nil {
		return merged
	}
	if len(override.Disallowed) > 0 {
		merged.Disallowed = slices.Clone(override.Disallowed)
	}
	if len(override.Health) > 0 {
		merged.Health = slices.Clone(override.Health)
	}
	if override.AppointmentWord != "" {
		merged.AppointmentWord = override.AppointmentWord
	}
	if len(override.AppointmentActions) > 0 {
		merged.AppointmentActions = slices.Clone(override.AppointmentActions)
	}
	if len(override.Treatment) > 0 {
		merged.Treatment = slices.Clone(override.Treatment)
	}
	if len(override.ReplyDisallowed) > 0 {
		merged.ReplyDisallowed = slices.Clone(override.ReplyDisallowed)
	}
	return merged
}

func (l *Lexicon) clone() *Lexicon {
	return &Lexicon{
		Disallowed:         slices.Clone(l.Disallowed),
		Health:             slices.Clone(l.Health),
		AppointmentWord:    l.AppointmentWord,
		AppointmentActions: slices.Clone(l.AppointmentActions),
		Treatment:          slices.Clone(l.Treatment),
		ReplyDisallowed:    slices.Clone(l.ReplyDisallowed),
	}
}

// Validate checks that every list is usable for matching
func (l *Lexicon) Validate() error {
	lists := map[string][]string{
		"disallowed":          l.Disallowed,
		"health":              l.Health,
		"appointment_actions": l.AppointmentActions,
		"treatment":           l.Treatment,
		"reply_disallowed":    l.ReplyDisallowed,
	}
	for name, words := range lists {
		if len(words) == 0 {
			return goerr.New("lexicon list is empty", goerr.V("list", name))
		}
		for i, w := range words {
			if strings.TrimSpace(w) == "" {
				return goerr.New("lexicon contains a blank keyword", goerr.V("list", name), goerr.V("index", i))
			}
			if w != strings.ToLower(w) {
				return goerr.New("lexicon keyword must be lower case", goerr.V("list", name), goerr.V("keyword", w))
			}
		}
	}
	if strings.TrimSpace(l.AppointmentWord) == "" {
		return goerr.New("lexicon appointment_word is empty")
	}
	return nil
}

// containsAny reports whether lowered contains any of words. lowered must
// already be lower case.
func containsAny(lowered string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lowered, w) {
			return true
		}
	}
	return false
}
