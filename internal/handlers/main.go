package handlers

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tanowebui "github.com/oamra/tano-web-ui"
	"github.com/oamra/tano-web-ui/internal/chat"
	"github.com/oamra/tano-web-ui/internal/models"
	"github.com/tmaxmax/go-sse"
)

const errLoggerKey = "err"

// SSE event types for real-time updates.
var (
	messagesSSEType = sse.Type("messages")
	surveySSEType   = sse.Type("survey")
)

// Main handles the chat widget: it renders the page shell, owns one chat session per
// page load, and pushes message-list and survey updates to the browser through
// Server-Sent Events.
type Main struct {
	sseSrv    *sse.Server
	templates *template.Template

	backend     chat.Backend
	sessionOpts chat.Options
	faq         []models.FAQCategory

	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*chat.Session
}

// NewMain creates a new Main instance with the provided backend client. It parses the
// required HTML templates from the embedded filesystem and configures the SSE server so
// each browser subscribes to its own session topic.
func NewMain(backend chat.Backend, sessionOpts chat.Options, faq []models.FAQCategory, logger *slog.Logger) (*Main, error) {
	// We parse templates from three distinct directories to separate layout, pages, and partial views
	tmpl, err := template.ParseFS(
		tanowebui.TemplateFS,
		"templates/layout/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	if len(faq) == 0 {
		faq = models.DefaultFAQ()
	}

	m := &Main{
		templates:   tmpl,
		backend:     backend,
		sessionOpts: sessionOpts,
		faq:         faq,
		logger:      logger.With(slog.String("module", "handlers")),
		sessions:    make(map[string]*chat.Session),
	}

	m.sseSrv = &sse.Server{
		OnSession: func(s *sse.Session) (sse.Subscription, bool) {
			// We start with the default topic all clients subscribe to
			topics := []string{sse.DefaultTopic}

			// We create a session-specific topic so inactivity-triggered surveys reach
			// only the browser that owns the session
			sessionID := s.Req.URL.Query().Get("session_id")
			if sessionID != "" {
				topics = append(topics, sessionTopic(sessionID))
			}

			return sse.Subscription{
				Client:      s,
				LastEventID: s.LastEventID,
				Topics:      topics,
			}, true
		},
	}

	return m, nil
}

func sessionTopic(sessionID string) string {
	return fmt.Sprintf("session-%s", sessionID)
}

// HandleSSE serves the event stream each widget page subscribes to.
func (m *Main) HandleSSE(w http.ResponseWriter, r *http.Request) {
	m.sseSrv.ServeHTTP(w, r)
}

// session returns the registered session for id, or nil.
func (m *Main) session(id string) *chat.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Shutdown closes every live session, broadcasts a close message to all connected
// clients, and waits up to 5 seconds for connections to terminate.
func (m *Main) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	for id, sess := range m.sessions {
		sess.Close()
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	e := &sse.Message{Type: sse.Type("closeChat")}
	// We create a close event that complies with SSE spec requiring data
	e.AppendData("bye")

	// We ignore the error here since we're shutting down anyway
	_ = m.sseSrv.Publish(e)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	return m.sseSrv.Shutdown(ctx)
}
