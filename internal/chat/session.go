// Package chat owns the state of one widget session: the ordered message list, the
// in-flight send tracking, and the feedback and survey sub-states. All mutation is
// serialized through a single mutex, and every network call goes through the Backend
// interface so the state machine can be tested without HTTP.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oamra/tano-web-ui/internal/models"
)

// Backend defines the three backend operations a session needs. It is satisfied by
// api.Client.
type Backend interface {
	Chat(ctx context.Context, sessionID, message string) (models.AssistantReply, error)
	SendFeedback(ctx context.Context, interactionID int64, feedback models.Feedback, reason string) error
	SendSurvey(ctx context.Context, sessionID string, rating int, comment string, trigger models.SurveyTrigger) error
}

// Validation errors returned before any request is dispatched.
var (
	ErrUnknownMessage   = errors.New("no message with that id")
	ErrNoInteraction    = errors.New("message has no interaction id")
	ErrInvalidFeedback  = errors.New("feedback must be like or dislike")
	ErrReasonRequired   = errors.New("dislike feedback requires a reason")
	ErrFeedbackRecorded = errors.New("feedback already recorded for this message")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrSurveySubmitted  = errors.New("survey already submitted this session")
)

const (
	defaultInactivityTimeout  = 90 * time.Second
	defaultSurveyShowDelay    = time.Second
	defaultSurveyDismissDelay = 2 * time.Second
)

// SurveyState is a snapshot of the survey overlay. Once Submitted is set it never
// clears for the remainder of the session, and the overlay never becomes visible again
// after the thank-you state is dismissed.
type SurveyState struct {
	Visible   bool
	Trigger   models.SurveyTrigger
	Submitted bool

	// Thanked is set between a successful submission and the delayed dismissal, while
	// the overlay shows its thank-you state.
	Thanked bool
}

// Options configures a Session. The zero value is usable; every field has a default.
type Options struct {
	// SessionID is the opaque identifier threading every chat, feedback, and survey
	// request. When empty a fresh one is generated; it is never regenerated for the
	// lifetime of the session.
	SessionID string

	// Welcome overrides the seeded greeting message.
	Welcome string

	// InactivityTimeout is how long the conversation must stay quiet before the survey
	// is shown with the inactivity trigger. Defaults to 90 seconds.
	InactivityTimeout time.Duration
	// SurveyShowDelay is the pause between a reply that requests the survey and the
	// overlay appearing, so the reply renders first. Defaults to 1 second.
	SurveyShowDelay time.Duration
	// SurveyDismissDelay is how long the thank-you state stays visible after a
	// successful submission. Defaults to 2 seconds.
	SurveyDismissDelay time.Duration

	Logger *slog.Logger

	// OnUpdate is called after every change to the message list.
	OnUpdate func()
	// OnSurvey is called after every change to the survey overlay state.
	OnSurvey func(SurveyState)
}

// Session is the chat state machine for one page load.
type Session struct {
	backend   Backend
	sessionID string
	logger    *slog.Logger

	inactivityTimeout  time.Duration
	surveyShowDelay    time.Duration
	surveyDismissDelay time.Duration

	onUpdate func()
	onSurvey func(SurveyState)

	mu       sync.Mutex
	messages []models.Message
	sendSeq  uint64
	inflight int
	survey   SurveyState
	closed   bool

	inactivityTimer *time.Timer
	timerArmed      bool
	pendingTimers   []*time.Timer
}

// NewSession creates a session seeded with exactly one welcome message and an unarmed
// inactivity timer.
func NewSession(backend Backend, opts Options) *Session {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	welcome := opts.Welcome
	if welcome == "" {
		welcome = models.WelcomeText
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		backend:            backend,
		sessionID:          sessionID,
		logger:             logger.With(slog.String("module", "chat"), slog.String("sessionID", sessionID)),
		inactivityTimeout:  opts.InactivityTimeout,
		surveyShowDelay:    opts.SurveyShowDelay,
		surveyDismissDelay: opts.SurveyDismissDelay,
		onUpdate:           opts.OnUpdate,
		onSurvey:           opts.OnSurvey,
	}
	if s.inactivityTimeout <= 0 {
		s.inactivityTimeout = defaultInactivityTimeout
	}
	if s.surveyShowDelay <= 0 {
		s.surveyShowDelay = defaultSurveyShowDelay
	}
	if s.surveyDismissDelay <= 0 {
		s.surveyDismissDelay = defaultSurveyDismissDelay
	}

	s.messages = []models.Message{{
		ID:        uuid.New().String(),
		Role:      models.RoleAssistant,
		Content:   welcome,
		Timestamp: time.Now(),
	}}

	return s
}

// SessionID returns the identifier threading every request of this session.
func (s *Session) SessionID() string {
	return s.sessionID
}

// Messages returns a snapshot copy of the ordered message list.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]models.Message, len(s.messages))
	copy(msgs, s.messages)
	return msgs
}

// Awaiting reports whether at least one chat round-trip is still in flight.
func (s *Session) Awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Survey returns a snapshot of the survey overlay state.
func (s *Session) Survey() SurveyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.survey
}

// SendMessage appends the user message, performs one chat round-trip, and appends
// exactly one assistant message: the decoded reply, or the localized fallback on any
// failure. Blank input is a no-op and never touches the network. When a newer send has
// started while this one was in flight, its reply is stale and is discarded.
func (s *Session) SendMessage(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.sendSeq++
	token := s.sendSeq
	s.inflight++
	s.appendLocked(models.Message{
		ID:        uuid.New().String(),
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})
	s.mu.Unlock()
	s.notifyUpdate()

	reply, err := s.backend.Chat(ctx, s.sessionID, text)

	s.mu.Lock()
	s.inflight--
	if s.closed {
		s.mu.Unlock()
		return
	}
	if token != s.sendSeq {
		s.mu.Unlock()
		s.logger.Debug("Discarding stale reply", slog.Uint64("token", token))
		return
	}

	msg := models.Message{
		ID:        uuid.New().String(),
		Role:      models.RoleAssistant,
		Timestamp: time.Now(),
	}
	if err != nil {
		s.logger.Error("Chat request failed", slog.String("err", err.Error()))
		msg.Content = models.FallbackReply
	} else {
		msg.Content = reply.Content
		msg.Sources = reply.Sources
		msg.Citations = reply.Citations
		msg.InteractionID = reply.InteractionID
		msg.ShowSurvey = reply.ShowSurvey
	}
	s.appendLocked(msg)

	if err == nil && reply.ShowSurvey && !s.survey.Submitted {
		// Let the reply render before the overlay appears.
		t := time.AfterFunc(s.surveyShowDelay, func() {
			s.openSurvey(models.SurveyTriggerThanks)
		})
		s.pendingTimers = append(s.pendingTimers, t)
	}
	s.mu.Unlock()
	s.notifyUpdate()
}

// SendFeedback records a like or dislike for the assistant message identified by
// messageID. Validation failures are returned before anything is dispatched, a repeat
// call with the already-recorded value succeeds idempotently without a second request,
// and a backend failure is returned so the caller can retry.
func (s *Session) SendFeedback(ctx context.Context, messageID string, feedback models.Feedback, reason string) error {
	if feedback != models.FeedbackLike && feedback != models.FeedbackDislike {
		return ErrInvalidFeedback
	}
	reason = strings.TrimSpace(reason)
	if feedback == models.FeedbackDislike && reason == "" {
		return ErrReasonRequired
	}

	s.mu.Lock()
	idx := s.indexLocked(messageID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrUnknownMessage
	}
	msg := s.messages[idx]
	if msg.Role != models.RoleAssistant || msg.InteractionID == 0 {
		s.mu.Unlock()
		return ErrNoInteraction
	}
	if msg.Feedback == feedback {
		// Re-confirming the same verdict; nothing to send.
		s.mu.Unlock()
		return nil
	}
	if msg.Feedback != models.FeedbackNone {
		s.mu.Unlock()
		return ErrFeedbackRecorded
	}
	interactionID := msg.InteractionID
	s.mu.Unlock()

	if err := s.backend.SendFeedback(ctx, interactionID, feedback, reason); err != nil {
		return err
	}

	s.mu.Lock()
	if idx := s.indexLocked(messageID); idx >= 0 && s.messages[idx].Feedback == models.FeedbackNone {
		s.messages[idx].Feedback = feedback
	}
	s.mu.Unlock()
	s.notifyUpdate()
	return nil
}

// SendSurvey submits the satisfaction rating tagged with the trigger that opened the
// overlay. On success the survey is marked submitted for the rest of the session and
// the overlay shows its thank-you state before dismissing itself; on failure the
// overlay stays open so the caller can retry.
func (s *Session) SendSurvey(ctx context.Context, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	s.mu.Lock()
	if s.survey.Submitted {
		s.mu.Unlock()
		return ErrSurveySubmitted
	}
	trigger := s.survey.Trigger
	if trigger == "" {
		trigger = models.SurveyTriggerManual
	}
	s.mu.Unlock()

	if err := s.backend.SendSurvey(ctx, s.sessionID, rating, strings.TrimSpace(comment), trigger); err != nil {
		return err
	}

	s.mu.Lock()
	s.survey.Submitted = true
	s.survey.Visible = true
	s.survey.Thanked = true
	s.rearmLocked()
	t := time.AfterFunc(s.surveyDismissDelay, s.dismissSurvey)
	s.pendingTimers = append(s.pendingTimers, t)
	st := s.survey
	s.mu.Unlock()
	s.notifySurvey(st)
	return nil
}

// CloseSurvey hides the overlay without marking it submitted. The inactivity timer is
// re-armed, so a fresh quiet period may re-trigger the survey later.
func (s *Session) CloseSurvey() {
	s.mu.Lock()
	if !s.survey.Visible {
		s.mu.Unlock()
		return
	}
	s.survey.Visible = false
	s.survey.Thanked = false
	s.rearmLocked()
	st := s.survey
	s.mu.Unlock()
	s.notifySurvey(st)
}

// ShowSurvey opens the overlay with the given trigger. It reports false when the
// overlay is already visible or the survey was already submitted this session.
func (s *Session) ShowSurvey(trigger models.SurveyTrigger) bool {
	return s.openSurvey(trigger)
}

// Close cancels all timers and detaches the session from further mutation. In-flight
// sends are not aborted; their late replies are simply dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.inactivityTimer != nil {
		s.inactivityTimer.Stop()
		s.timerArmed = false
	}
	for _, t := range s.pendingTimers {
		t.Stop()
	}
	s.pendingTimers = nil
}

func (s *Session) openSurvey(trigger models.SurveyTrigger) bool {
	s.mu.Lock()
	if s.closed || s.survey.Submitted || s.survey.Visible {
		s.mu.Unlock()
		return false
	}
	s.survey.Visible = true
	s.survey.Trigger = trigger
	st := s.survey
	s.mu.Unlock()
	s.notifySurvey(st)
	return true
}

func (s *Session) indexLocked(messageID string) int {
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			return i
		}
	}
	return -1
}

func (s *Session) appendLocked(msg models.Message) {
	s.messages = append(s.messages, msg)
	s.rearmLocked()
}

// rearmLocked implements the cancel-then-schedule inactivity primitive. At most one
// timer is armed at a time, and the timer only runs while the conversation has moved
// past the welcome message and the survey is still unsubmitted.
func (s *Session) rearmLocked() {
	if s.inactivityTimer != nil {
		s.inactivityTimer.Stop()
		s.timerArmed = false
	}
	if s.closed || s.survey.Submitted || len(s.messages) <= 1 {
		return
	}
	s.inactivityTimer = time.AfterFunc(s.inactivityTimeout, s.inactivityElapsed)
	s.timerArmed = true
}

func (s *Session) inactivityElapsed() {
	s.mu.Lock()
	s.timerArmed = false
	if s.closed || s.survey.Submitted || s.survey.Visible {
		s.mu.Unlock()
		return
	}
	s.survey.Visible = true
	s.survey.Trigger = models.SurveyTriggerInactivity
	st := s.survey
	s.mu.Unlock()
	s.notifySurvey(st)
}

func (s *Session) dismissSurvey() {
	s.mu.Lock()
	if !s.survey.Visible {
		s.mu.Unlock()
		return
	}
	s.survey.Visible = false
	s.survey.Thanked = false
	st := s.survey
	s.mu.Unlock()
	s.notifySurvey(st)
}

func (s *Session) notifyUpdate() {
	if s.onUpdate != nil {
		s.onUpdate()
	}
}

func (s *Session) notifySurvey(st SurveyState) {
	if s.onSurvey != nil {
		s.onSurvey(st)
	}
}
