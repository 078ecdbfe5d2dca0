package models

import (
	"regexp"
	"strings"
	"time"
)

// Role represents the role of a message participant.
type Role string

// Feedback represents the satisfaction verdict a user attached to an assistant reply.
// The zero value means no feedback has been recorded yet.
type Feedback string

// SurveyTrigger represents the reason a satisfaction survey was shown.
type SurveyTrigger string

const (
	// RoleUser represents a message typed by the visitor.
	RoleUser Role = "user"
	// RoleAssistant represents a reply from the assistant, including the synthesized
	// welcome and fallback messages that never touched the backend.
	RoleAssistant Role = "assistant"

	// FeedbackNone means the message has no feedback recorded.
	FeedbackNone Feedback = ""
	// FeedbackLike marks the reply as helpful.
	FeedbackLike Feedback = "like"
	// FeedbackDislike marks the reply as unhelpful and requires a reason.
	FeedbackDislike Feedback = "dislike"

	// SurveyTriggerThanks means the backend flagged a qualifying reply.
	SurveyTriggerThanks SurveyTrigger = "thanks"
	// SurveyTriggerInactivity means the user went quiet past the inactivity threshold.
	SurveyTriggerInactivity SurveyTrigger = "inactivity"
	// SurveyTriggerManual means the survey was opened explicitly.
	SurveyTriggerManual SurveyTrigger = "manual"
)

// SourceDocument is a citation target attached to an assistant reply. It is immutable
// once attached.
type SourceDocument struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Citation is a character-offset span of a reply that references one of its sources.
type Citation struct {
	StartIndex  int `json:"start_index"`
	EndIndex    int `json:"end_index"`
	SourceIndex int `json:"source_index"`
}

// Message represents an individual entry in a chat session. A message is created on send
// or receive, mutated only to attach feedback once, and never deleted within a session.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time

	// Sources and Citations are only present on assistant replies that cite documents.
	Sources   []SourceDocument
	Citations []Citation

	// InteractionID is the backend-assigned identifier correlating this reply with
	// later feedback submissions. Zero means the backend assigned none, and feedback
	// cannot be sent for this message.
	InteractionID int64

	Feedback Feedback

	// ShowSurvey is set when the backend requested the satisfaction survey be shown
	// after this reply.
	ShowSurvey bool
}

// AssistantReply is the decoded result of one chat round-trip with the backend.
type AssistantReply struct {
	Content       string
	Sources       []SourceDocument
	Citations     []Citation
	InteractionID int64
	ShowSurvey    bool
}

// FallbackReply is appended in place of an assistant reply when the chat round-trip
// fails for any reason.
const FallbackReply = "Lo siento, no pude procesar tu solicitud. Por favor, intenta nuevamente."

// WelcomeText is the greeting seeded as the first assistant message of every session.
const WelcomeText = `¡Hola! Soy **Tano**, tu asistente virtual de OAMRA. Estoy aquí para ayudarte con tus consultas sobre matrícula y trámites académicos de la Universidad Peruana Cayetano Heredia.

**Te puedo ayudar con:**
- 📋 Procesos de matrícula
- 💳 Información de pagos
- 📄 Trámites académicos
- 🏫 Servicios universitarios

¿En qué puedo asistirte hoy?`

var (
	sourceVersionPattern = regexp.MustCompile(`V\.\d+\.\d+`)
	sourcePDFPattern     = regexp.MustCompile(`(?i)\.pdf$`)
)

// FormatSourceTitle turns a stored document filename into a display title by replacing
// underscores with spaces and stripping the ".pdf" suffix and version markers.
func FormatSourceTitle(title string) string {
	s := strings.ReplaceAll(title, "_", " ")
	s = sourcePDFPattern.ReplaceAllString(s, "")
	s = sourceVersionPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
