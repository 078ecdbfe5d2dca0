package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oamra/tano-web-ui/internal/chat"
	"github.com/oamra/tano-web-ui/internal/markdown"
	"github.com/oamra/tano-web-ui/internal/models"
	"github.com/tmaxmax/go-sse"
)

func newSSEMessage(typ sse.EventType, data string) *sse.Message {
	e := &sse.Message{Type: typ}
	e.AppendData(data)
	return e
}

type messageView struct {
	ID        string
	Role      string
	Content   string
	HTML      template.HTML
	Timestamp time.Time
	Sources   []sourceView

	Feedback    string
	CanFeedback bool
}

type sourceView struct {
	Title string
	URI   string
}

type surveyView struct {
	Visible   bool
	Trigger   string
	Submitted bool
	Thanked   bool
}

type widgetPageData struct {
	SessionID string
	FAQ       []models.FAQCategory
	Messages  []messageView
	Survey    surveyView
}

func newMessageView(msg models.Message) messageView {
	v := messageView{
		ID:        msg.ID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
		Feedback:  string(msg.Feedback),
	}

	if msg.Role == models.RoleAssistant {
		// User text stays plain; only assistant replies carry the markdown subset.
		v.HTML = markdown.RenderHTML(msg.Content)
		v.CanFeedback = msg.InteractionID != 0 && msg.Feedback == models.FeedbackNone
	}

	for _, src := range msg.Sources {
		v.Sources = append(v.Sources, sourceView{
			Title: models.FormatSourceTitle(src.Title),
			URI:   src.URI,
		})
	}

	return v
}

func newMessageViews(msgs []models.Message) []messageView {
	views := make([]messageView, len(msgs))
	for i, msg := range msgs {
		views[i] = newMessageView(msg)
	}
	return views
}

func newSurveyView(st chat.SurveyState) surveyView {
	return surveyView{
		Visible:   st.Visible,
		Trigger:   string(st.Trigger),
		Submitted: st.Submitted,
		Thanked:   st.Thanked,
	}
}

// HandleWidget renders the widget page and registers a fresh chat session for it. One
// session is created per page load and its identifier is embedded in the page for every
// subsequent request.
func (m *Main) HandleWidget(w http.ResponseWriter, r *http.Request) {
	sess := m.newSession()

	data := widgetPageData{
		SessionID: sess.SessionID(),
		FAQ:       m.faq,
		Messages:  newMessageViews(sess.Messages()),
		Survey:    newSurveyView(sess.Survey()),
	}
	if err := m.templates.ExecuteTemplate(w, "widget.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// newSession constructs a session whose state changes are pushed to the owning browser
// over its SSE topic.
func (m *Main) newSession() *chat.Session {
	opts := m.sessionOpts
	opts.Logger = m.logger

	var sess *chat.Session
	opts.OnUpdate = func() {
		m.publishMessages(sess)
	}
	opts.OnSurvey = func(st chat.SurveyState) {
		m.publishSurvey(sess, st)
	}
	sess = chat.NewSession(m.backend, opts)

	// TODO: evict sessions when their SSE subscriber disconnects instead of holding
	// them until shutdown.
	m.mu.Lock()
	m.sessions[sess.SessionID()] = sess
	m.mu.Unlock()

	return sess
}

func (m *Main) publishMessages(sess *chat.Session) {
	var sb strings.Builder
	if err := m.templates.ExecuteTemplate(&sb, "message_list", newMessageViews(sess.Messages())); err != nil {
		m.logger.Error("Failed to render message list", slog.String(errLoggerKey, err.Error()))
		return
	}

	e := newSSEMessage(messagesSSEType, sb.String())
	if err := m.sseSrv.Publish(e, sessionTopic(sess.SessionID())); err != nil {
		m.logger.Error("Failed to publish messages", slog.String(errLoggerKey, err.Error()))
	}
}

func (m *Main) publishSurvey(sess *chat.Session, st chat.SurveyState) {
	var sb strings.Builder
	if err := m.templates.ExecuteTemplate(&sb, "survey", newSurveyView(st)); err != nil {
		m.logger.Error("Failed to render survey", slog.String(errLoggerKey, err.Error()))
		return
	}

	e := newSSEMessage(surveySSEType, sb.String())
	if err := m.sseSrv.Publish(e, sessionTopic(sess.SessionID())); err != nil {
		m.logger.Error("Failed to publish survey", slog.String(errLoggerKey, err.Error()))
	}
}
