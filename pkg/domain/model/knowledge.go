package model

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

// Knowledge is what the knowledge graph holds about one patient
type Knowledge struct {
	PatientName string `json:"patient_name"`
	// Profile holds patient node properties such as doctor_name, in insertion order
	Profile  []KnowledgeProperty `json:"profile"`
	Entities Entities            `json:"entities"`
}

// KnowledgeProperty is a single key/value pair of the patient node
type KnowledgeProperty struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewKnowledge returns an empty Knowledge for the patient
func NewKnowledge(patientName string) *Knowledge {
	return &Knowledge{
		PatientName: patientName,
		Entities:    Entities{},
	}
}

// SetProperty adds or replaces a profile property
func (k *Knowledge) SetProperty(key, value string) {
	for i := range k.Profile {
		if k.Profile[i].Key == key {
			k.Profile[i].Value = value
			return
		}
	}
	k.Profile = append(k.Profile, KnowledgeProperty{Key: key, Value: value})
}

// ProfileProperties returns the patient facts mirrored onto the graph node.
// Contact details and birth date are left out.
func ProfileProperties(p *Patient) []KnowledgeProperty {
	props := []KnowledgeProperty{
		{Key: "medical_condition", Value: p.MedicalCondition},
		{Key: "medication_regimen", Value: p.MedicationRegimen},
		{Key: "doctor_name", Value: p.DoctorName},
		{Key: "last_appointment", Value: formatTimestamp(p.LastAppointment)},
		{Key: "next_appointment", Value: formatTimestamp(p.NextAppointment)},
		{Key: "lab_tests", Value: p.LabTests},
		{Key: "vital_signs", Value: p.VitalSigns},
	}
	if p.Weight != nil {
		props = append(props, KnowledgeProperty{Key: "weight", Value: strconv.FormatFloat(*p.Weight, 'f', -1, 64)})
	}
	return props
}

// ProfileKeys returns the keys written by ProfileProperties in display order
func ProfileKeys() []string {
	return []string{
		"medical_condition", "medication_regimen", "doctor_name", "last_appointment",
		"next_appointment", "lab_tests", "vital_signs", "weight",
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// Format renders the knowledge as "Key Title: value; ..." for the reply
// prompt. Profile properties come first, then entity kinds by name. Empty
// values are skipped.
func (k *Knowledge) Format() string {
	if k == nil {
		return ""
	}

	var items []string
	for _, p := range k.Profile {
		if v := strings.TrimSpace(p.Value); v != "" {
			items = append(items, titleKey(p.Key)+": "+v)
		}
	}
	for _, kind := range k.Entities.Kinds() {
		items = append(items, titleKey(kind.String())+": "+strings.Join(k.Entities.Values(kind), ", "))
	}
	return strings.Join(items, "; ")
}

// titleKey turns "lab_test" into "Lab Test"
func titleKey(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// relationshipPrefix is prepended to an entity kind to name its graph relationship
const relationshipPrefix = "HAS_"

// RelationshipType returns the graph relationship name for kind, e.g. HAS_LAB_TEST
func RelationshipType(kind types.EntityKind) string {
	return relationshipPrefix + strings.ToUpper(kind.String())
}

// EntityKindFromRelationship reverses RelationshipType
func EntityKindFromRelationship(rel string) types.EntityKind {
	return types.EntityKind(strings.ToLower(strings.TrimPrefix(rel, relationshipPrefix)))
}
