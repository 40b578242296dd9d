package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
	"github.com/secmon-lab/healthbot/pkg/utils/logging"
)

// RefusalReply is returned to the patient when a message does not pass the gate
const RefusalReply = "I'm sorry, but I can only assist with health-related questions."

// Input is a single patient message with its context
type Input struct {
	Message     string
	Patient     *model.Patient
	RecentTurns []*model.Turn // most recent first
}

// Result is the outcome of classifying a message
type Result struct {
	Allowed       bool                  `json:"allowed"`
	Request       *model.PatientRequest `json:"request,omitempty"`
	Entities      model.Entities        `json:"entities"`
	Summary       string                `json:"summary,omitempty"`
	RequestedTime model.RequestedTime   `json:"requested_time"`
}

// Classifier decides whether a message is in scope and which patient request
// it carries. It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	extractor interfaces.EntityExtractor
	lexicon   *Lexicon
	now       func() time.Time
}

// Option is a functional option for Classifier
type Option func(*Classifier)

// WithClock replaces the clock used for time resolution
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		c.now = now
	}
}

// WithLexicon replaces the keyword lists
func WithLexicon(lex *Lexicon) Option {
	return func(c *Classifier) {
		c.lexicon = lex
	}
}

// New creates a Classifier. extractor may be nil, in which case no entities
// are extracted.
func New(extractor interfaces.EntityExtractor, opts ...Option) *Classifier {
	c := &Classifier{
		extractor: extractor,
		lexicon:   DefaultLexicon(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lexicon returns the keyword lists in use
func (c *Classifier) Lexicon() *Lexicon {
	return c.lexicon
}

// Gate reports whether message passes the topic gate
func (c *Classifier) Gate(message string) bool {
	return c.lexicon.Gate(message)
}

// Classify runs the gate, entity extraction, intent detection and time
// resolution on a message. It never fails: extraction errors are logged and
// yield empty entities.
func (c *Classifier) Classify(ctx context.Context, input Input) *Result {
	if !c.lexicon.Gate(input.Message) {
		return &Result{
			Allowed:  false,
			Entities: model.Entities{},
		}
	}

	patient := input.Patient
	if patient == nil {
		patient = &model.Patient{}
	}

	normalized := Normalize(input.Message)
	result := &Result{
		Allowed:  true,
		Entities: c.extract(ctx, normalized),
	}

	switch {
	case c.lexicon.IsAppointmentRequest(normalized):
		result.RequestedTime = ResolveTime(normalized, c.now())
		c.materializeAppointment(result, patient, input.Message)

	case c.lexicon.IsTreatmentRequest(normalized):
		c.materializeTreatment(result, patient, input.Message)
	}

	return result
}

func (c *Classifier) extract(ctx context.Context, message string) model.Entities {
	entities := model.Entities{}
	if c.extractor == nil {
		return entities
	}

	extracted, err := c.extractor.Extract(ctx, message)
	if err != nil {
		logging.From(ctx).Warn("entity extraction failed, continuing without entities", "error", err)
		return entities
	}
	entities.Merge(extracted)
	return entities
}

func (c *Classifier) materializeAppointment(result *Result, patient *model.Patient, message string) {
	name := patient.FullName()

	if !result.RequestedTime.IsSpecified() {
		result.Request = newRequest(patient, types.RequestKindAppointment, message)
		result.Summary = fmt.Sprintf("Patient %s has made an appointment request: %s", name, message)
		return
	}

	from := formatAppointment(patient.NextAppointment)
	to := result.RequestedTime.String()
	result.Request = newRequest(patient, types.RequestKindAppointment, fmt.Sprintf("change from %s to %s", from, to))
	result.Summary = fmt.Sprintf("Patient %s is requesting an appointment change from %s to %s.", name, from, to)
}

func (c *Classifier) materializeTreatment(result *Result, patient *model.Patient, message string) {
	name := patient.FullName()

	if !result.Entities.Has(types.EntityMedication) {
		result.Request = newRequest(patient, types.RequestKindMedication, message)
		result.Summary = fmt.Sprintf("Patient %s has made a treatment request: %s", name, message)
		return
	}

	medication := strings.Join(result.Entities.Values(types.EntityMedication), ", ")
	result.Request = newRequest(patient, types.RequestKindMedication, "change medication to "+medication)
	result.Summary = fmt.Sprintf("Patient %s is requesting a change in medication: %s.", name, medication)
}

// newRequest builds an unsaved request. ID and CreatedAt are assigned by the repository.
func newRequest(patient *model.Patient, kind types.RequestKind, details string) *model.PatientRequest {
	return &model.PatientRequest{
		PatientID: patient.ID,
		Kind:      kind,
		Details:   details,
	}
}

func formatAppointment(t time.Time) string {
	if t.IsZero() {
		return "no scheduled appointment"
	}
	return t.Format("2006-01-02 15:04")
}
