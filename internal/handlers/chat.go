package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/oamra/tano-web-ui/internal/chat"
	"github.com/oamra/tano-web-ui/internal/models"
)

// HandleChat processes one chat turn through an HTTP POST request. It expects a
// "message" form field and the "session_id" field embedded in the widget page, runs the
// round-trip synchronously, and renders the updated message list. Backend failures
// never surface here: the session converts them into the localized fallback reply.
func (m *Main) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	msg := r.FormValue("message")
	if msg == "" {
		m.logger.Error("Message is required")
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	sess := m.session(r.FormValue("session_id"))
	if sess == nil {
		http.Error(w, "Unknown session", http.StatusNotFound)
		return
	}

	sess.SendMessage(r.Context(), msg)

	if err := m.templates.ExecuteTemplate(w, "message_list", newMessageViews(sess.Messages())); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleFeedback records a like or dislike for one assistant reply. Validation
// failures map to 400 and backend failures to 502, leaving the widget's controls
// enabled for a retry.
func (m *Main) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess := m.session(r.FormValue("session_id"))
	if sess == nil {
		http.Error(w, "Unknown session", http.StatusNotFound)
		return
	}

	messageID := r.FormValue("message_id")
	feedback := models.Feedback(r.FormValue("feedback"))
	reason := r.FormValue("reason")

	if err := sess.SendFeedback(r.Context(), messageID, feedback, reason); err != nil {
		m.logger.Error("Failed to send feedback",
			slog.String("messageID", messageID),
			slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), feedbackStatus(err))
		return
	}

	if err := m.templates.ExecuteTemplate(w, "message_list", newMessageViews(sess.Messages())); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func feedbackStatus(err error) int {
	switch {
	case errors.Is(err, chat.ErrUnknownMessage):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrNoInteraction),
		errors.Is(err, chat.ErrInvalidFeedback),
		errors.Is(err, chat.ErrReasonRequired),
		errors.Is(err, chat.ErrFeedbackRecorded):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// HandleSurvey submits the satisfaction rating for a session. On success the rendered
// overlay shows its thank-you state; on backend failure the overlay stays open for a
// retry.
func (m *Main) HandleSurvey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess := m.session(r.FormValue("session_id"))
	if sess == nil {
		http.Error(w, "Unknown session", http.StatusNotFound)
		return
	}

	rating, err := strconv.Atoi(r.FormValue("rating"))
	if err != nil {
		http.Error(w, "Rating must be a number", http.StatusBadRequest)
		return
	}

	if err := sess.SendSurvey(r.Context(), rating, r.FormValue("comment")); err != nil {
		m.logger.Error("Failed to send survey", slog.String(errLoggerKey, err.Error()))
		status := http.StatusBadGateway
		if errors.Is(err, chat.ErrInvalidRating) || errors.Is(err, chat.ErrSurveySubmitted) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	if err := m.templates.ExecuteTemplate(w, "survey", newSurveyView(sess.Survey())); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleSurveyClose hides the overlay without submitting it.
func (m *Main) HandleSurveyClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess := m.session(r.FormValue("session_id"))
	if sess == nil {
		http.Error(w, "Unknown session", http.StatusNotFound)
		return
	}

	sess.CloseSurvey()
	w.WriteHeader(http.StatusNoContent)
}
