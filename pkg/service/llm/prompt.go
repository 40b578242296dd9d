package llm

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
)

// Role of a prompt message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a provider independent chat message
type Message struct {
	Role    Role
	Content string
}

// DefaultWordBudget caps the words of system prompt plus history in a reply prompt
const DefaultWordBudget = 500

// DefaultTemperature is the sampling temperature used when none is configured
const DefaultTemperature = 0.6

// SystemPrompt builds the persona instruction for a patient
func SystemPrompt(patient *model.Patient, knowledge *model.Knowledge) string {
	var sb strings.Builder
	sb.WriteString("You are HealthBot, a friendly and empathetic health assistant chatbot. ")
	fmt.Fprintf(&sb, "You are assisting %s %s. ", patient.FirstName, patient.LastName)
	fmt.Fprintf(&sb, "Patient information: %s. ", knowledge.Format())
	sb.WriteString("Provide clear, supportive responses to their questions. ")
	sb.WriteString("If the patient requests to change an appointment or treatment, respond with ")
	fmt.Fprintf(&sb, "'I will convey your request to Dr. %s.' ", patient.DoctorName)
	sb.WriteString("Do not mention any limitations or inability to assist. ")
	sb.WriteString("Use simple language and a conversational tone.")
	return sb.String()
}

// BuildMessages returns the system prompt, as much history as fits in
// wordBudget (oldest first, stopping at the first turn that does not fit) and
// the current message. The current message is always included.
func BuildMessages(conv *model.Conversation, wordBudget int) []Message {
	patient := conv.Patient
	if patient == nil {
		patient = &model.Patient{}
	}

	system := SystemPrompt(patient, conv.Knowledge)
	messages := []Message{{Role: RoleSystem, Content: system}}
	used := countWords(system)

	for _, turn := range conv.History {
		words := countWords(turn.Text)
		if used+words > wordBudget {
			break
		}
		messages = append(messages, Message{Role: roleOf(turn.Sender), Content: turn.Text})
		used += words
	}

	return append(messages, Message{Role: RoleUser, Content: conv.Message})
}

func roleOf(sender types.Sender) Role {
	if sender == types.SenderPatient {
		return RoleUser
	}
	return RoleAssistant
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

// renderTranscript flattens non-system messages into a single text input for
// providers that take one prompt per call
func renderTranscript(messages []Message) string {
	var sb strings.Builder
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			continue
		case RoleUser:
			sb.WriteString("Patient: ")
		case RoleAssistant:
			sb.WriteString("HealthBot: ")
		}
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("HealthBot:")
	return sb.String()
}

// renderConversation formats turns as "Patient: ..." / "Bot: ..." lines for summarization
func renderConversation(turns []*model.Turn) string {
	var sb strings.Builder
	for _, t := range turns {
		if t.Sender == types.SenderPatient {
			sb.WriteString("Patient: ")
		} else {
			sb.WriteString("Bot: ")
		}
		sb.WriteString(t.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

const extractionPrompt = "You are an assistant that extracts relevant health-related information from patient messages. " +
	"Only extract information related to medications, symptoms, dates, times, and present it in the specified JSON format. " +
	"Give every field as a list of strings, even when only one value is mentioned. Omit fields that are not mentioned."

const summaryPrompt = "You are a medical assistant helping to summarize a conversation and extract medical insights. " +
	"Respond in JSON with the fields summary (a brief summary of the conversation) and medical_insights " +
	"(any medical insights or important information mentioned)."

var entityDescriptions = map[types.EntityKind]string{
	types.EntityMedication: "Name of the medication mentioned by the patient",
	types.EntityFrequency:  "Frequency of medication intake",
	types.EntityDate:       "Date mentioned in the message",
	types.EntityTime:       "Time mentioned in the message",
	types.EntitySymptom:    "Symptom mentioned by the patient",
	types.EntityDiet:       "Diet mentioned by the patient",
	types.EntityLabTest:    "Lab test mentioned by the patient",
	types.EntityVitalSign:  "Vital sign mentioned by the patient",
}
