package extractor

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

// Lexicon extracts entities with keyword lists and patterns. It needs no
// external service and is used when no LLM is configured.
type Lexicon struct {
	vocabulary map[types.EntityKind][]string
	patterns   map[types.EntityKind][]*regexp.Regexp
}

var _ interfaces.EntityExtractor = &Lexicon{}

var defaultVocabulary = map[types.EntityKind][]string{
	types.EntityMedication: {
		"metformin", "insulin", "lisinopril", "ibuprofen", "aspirin", "acetaminophen",
		"paracetamol", "atorvastatin", "simvastatin", "amoxicillin", "omeprazole",
		"levothyroxine", "amlodipine", "metoprolol", "losartan", "gabapentin",
		"prednisone", "albuterol", "warfarin", "sertraline",
	},
	types.EntityFrequency: {
		"once a day", "twice a day", "three times a day", "every morning",
		"every evening", "every night", "daily", "weekly", "as needed",
	},
	types.EntitySymptom: {
		"headache", "fever", "cough", "nausea", "dizziness", "fatigue", "rash",
		"chest pain", "back pain", "stomach ache", "shortness of breath",
		"insomnia", "vomiting", "diarrhea", "sore throat", "swelling",
	},
	types.EntityDiet: {
		"low sugar", "low salt", "low sodium", "low carb", "low fat", "vegetarian",
		"vegan", "gluten free", "keto", "diabetic diet", "high protein",
	},
	types.EntityLabTest: {
		"hba1c", "a1c", "blood test", "cholesterol test", "lipid panel", "cbc",
		"glucose test", "urine test", "x-ray", "mri", "ct scan", "ecg",
	},
	types.EntityVitalSign: {
		"blood pressure", "heart rate", "pulse", "temperature",
		"oxygen saturation", "respiratory rate", "blood sugar",
	},
}

var defaultPatterns = map[types.EntityKind][]string{
	types.EntityMedication: {`\b(?:medication|medicine|prescription|meds)\s+to\s+([a-z][a-z0-9\-]+)`},
	types.EntityFrequency:  {`\bevery\s+\d+\s+hours\b`, `\b\d+\s+times\s+a\s+(?:day|week)\b`},
	types.EntityDate: {
		`\b(?:next\s+|this\s+)?(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`,
		`\b(?:today|tomorrow|yesterday)\b`,
		`\b\d{4}-\d{2}-\d{2}\b`,
		`\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}\b`,
	},
	types.EntityTime: {
		`\b\d{1,2}(?::\d{2})?\s*(?:am|pm)\b`,
		`\b(?:noon|midnight)\b`,
	},
}

// medicationStopwords are words that follow "medication to" without naming a drug
var medicationStopwords = []string{"the", "a", "an", "my", "something", "another", "different", "new", "be", "take"}

// Option is a functional option for Lexicon
type Option func(*Lexicon)

// WithVocabulary adds keywords for kind
func WithVocabulary(kind types.EntityKind, words ...string) Option {
	return func(l *Lexicon) {
		for _, w := range words {
			l.vocabulary[kind] = append(l.vocabulary[kind], strings.ToLower(w))
		}
	}
}

// NewLexicon creates a keyword based extractor
func NewLexicon(opts ...Option) *Lexicon {
	l := &Lexicon{
		vocabulary: make(map[types.EntityKind][]string, len(defaultVocabulary)),
		patterns:   make(map[types.EntityKind][]*regexp.Regexp, len(defaultPatterns)),
	}
	for kind, words := range defaultVocabulary {
		l.vocabulary[kind] = slices.Clone(words)
	}
	for kind, exprs := range defaultPatterns {
		for _, expr := range exprs {
			l.patterns[kind] = append(l.patterns[kind], regexp.MustCompile(expr))
		}
	}

	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Extract returns the entities found in text. It never fails.
func (l *Lexicon) Extract(ctx context.Context, text string) (model.Entities, error) {
	lowered := strings.ToLower(text)
	entities := model.Entities{}

	for _, kind := range types.KnownEntityKinds() {
		for _, re := range l.patterns[kind] {
			for _, m := range re.FindAllStringSubmatch(lowered, -1) {
				value := m[0]
				if len(m) > 1 {
					value = m[1]
				}
				if kind == types.EntityMedication && slices.Contains(medicationStopwords, value) {
					continue
				}
				entities.Add(kind, value)
			}
		}

		for _, word := range l.vocabulary[kind] {
			if containsWord(lowered, word) {
				entities.Add(kind, word)
			}
		}
	}

	return entities, nil
}

// containsWord reports whether word appears in s on word boundaries
func containsWord(s, word string) bool {
	for i := 0; ; {
		idx := strings.Index(s[i:], word)
		if idx < 0 {
			return false
		}
		start := i + idx
		end := start + len(word)
		if isBoundary(s, start-1) && isBoundary(s, end) {
			return true
		}
		i = start + 1
	}
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}
