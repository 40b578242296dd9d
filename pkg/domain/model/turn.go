package model

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

// TurnID is a ULID. IDs issued by one process sort in creation order.
type TurnID string

var (
	turnEntropy   = ulid.Monotonic(rand.Reader, 0)
	turnEntropyMu sync.Mutex
)

// NewTurnID generates a new TurnID for the given time
func NewTurnID(t time.Time) TurnID {
	turnEntropyMu.Lock()
	defer turnEntropyMu.Unlock()
	return TurnID(ulid.MustNew(ulid.Timestamp(t), turnEntropy).String())
}

// String returns the string representation of TurnID
func (id TurnID) String() string {
	return string(id)
}

// Turn is a single chat message from the patient or the bot
type Turn struct {
	ID        TurnID       `json:"id"`
	PatientID PatientID    `json:"patient_id"`
	Sender    types.Sender `json:"sender"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"created_at"`
}

// Conversation is the input of reply generation
type Conversation struct {
	Patient   *Patient
	Knowledge *Knowledge
	// History is ordered oldest first
	History []*Turn
	Message string
}

// Summary is the conversation summary shown next to the chat
type Summary struct {
	Summary         string `json:"summary"`
	MedicalInsights string `json:"medical_insights"`
}
