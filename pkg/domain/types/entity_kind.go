package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// EntityKind is the category of a fact extracted from a patient message
type EntityKind string

const (
	EntityMedication EntityKind = "medication"
	EntityFrequency  EntityKind = "frequency"
	EntityDate       EntityKind = "date"
	EntityTime       EntityKind = "time"
	EntitySymptom    EntityKind = "symptom"
	EntityDiet       EntityKind = "diet"
	EntityLabTest    EntityKind = "lab_test"
	EntityVitalSign  EntityKind = "vital_sign"
)

// KnownEntityKinds returns the entity kinds requested from extractors
func KnownEntityKinds() []EntityKind {
	return []EntityKind{
		EntityMedication,
		EntityFrequency,
		EntityDate,
		EntityTime,
		EntitySymptom,
		EntityDiet,
		EntityLabTest,
		EntityVitalSign,
	}
}

var entityKindPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// Validate checks that the kind is lower_snake_case. Kinds are used as graph
// relationship names, so anything else is rejected.
func (k EntityKind) Validate() error {
	if k == "" {
		return goerr.New("entity kind cannot be empty")
	}
	if !entityKindPattern.MatchString(string(k)) {
		return goerr.New("entity kind must be lower_snake_case", goerr.V("kind", k))
	}
	return nil
}

// String returns the string representation of EntityKind
func (k EntityKind) String() string {
	return string(k)
}
