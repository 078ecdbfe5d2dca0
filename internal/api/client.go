// Package api implements the anonymous HTTP client for the assistant backend. Every
// request and response body is an explicit tagged schema decoded at this boundary, so
// the rest of the application never sees raw JSON.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/oamra/tano-web-ui/internal/models"
)

const defaultTimeout = 30 * time.Second

// Client talks to the assistant backend. The zero value is not usable; construct it
// with NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client

	logger *slog.Logger
}

// NewClient creates a new Client for the backend at baseURL. A nil httpClient falls
// back to a client with a 30 second timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger.With(slog.String("module", "api")),
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response      string                  `json:"response"`
	Sources       []models.SourceDocument `json:"sources,omitempty"`
	Citations     []models.Citation       `json:"citations,omitempty"`
	InteractionID int64                   `json:"interaccion_id,omitempty"`
	ShowSurvey    bool                    `json:"show_survey,omitempty"`
}

type feedbackRequest struct {
	InteractionID int64  `json:"interaccion_id"`
	Type          string `json:"tipo_feedback"`
	Reason        string `json:"motivo,omitempty"`
}

type surveyRequest struct {
	SessionID string `json:"session_id"`
	Rating    int    `json:"calificacion"`
	Comment   string `json:"comentario,omitempty"`
	Trigger   string `json:"trigger"`
}

type ackResponse struct {
	Success bool `json:"success"`
}

// Chat sends one user message and returns the decoded assistant reply. Transport
// failures, non-2xx statuses, and undecodable bodies all surface as errors of the same
// class; the caller decides how to recover.
func (c Client) Chat(ctx context.Context, sessionID, message string) (models.AssistantReply, error) {
	var res chatResponse
	err := c.post(ctx, "/chat", chatRequest{Message: message, SessionID: sessionID}, &res)
	if err != nil {
		return models.AssistantReply{}, err
	}

	return models.AssistantReply{
		Content:       res.Response,
		Sources:       res.Sources,
		Citations:     res.Citations,
		InteractionID: res.InteractionID,
		ShowSurvey:    res.ShowSurvey,
	}, nil
}

// SendFeedback records a like or dislike for the reply identified by interactionID.
// A response with success=false counts as a failure.
func (c Client) SendFeedback(ctx context.Context, interactionID int64, feedback models.Feedback, reason string) error {
	var res ackResponse
	req := feedbackRequest{
		InteractionID: interactionID,
		Type:          string(feedback),
		Reason:        reason,
	}
	if err := c.post(ctx, "/feedback", req, &res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("backend rejected feedback for interaction %d", interactionID)
	}
	return nil
}

// SendSurvey submits a 1-5 satisfaction rating for the session, tagged with the reason
// the survey was shown.
func (c Client) SendSurvey(
	ctx context.Context,
	sessionID string,
	rating int,
	comment string,
	trigger models.SurveyTrigger,
) error {
	var res ackResponse
	req := surveyRequest{
		SessionID: sessionID,
		Rating:    rating,
		Comment:   comment,
		Trigger:   wireTrigger(trigger),
	}
	if err := c.post(ctx, "/survey", req, &res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("backend rejected survey for session %s", sessionID)
	}
	return nil
}

// wireTrigger maps a trigger to the Spanish token the backend expects.
func wireTrigger(trigger models.SurveyTrigger) string {
	switch trigger {
	case models.SurveyTriggerThanks:
		return "gracias"
	case models.SurveyTriggerInactivity:
		return "inactividad"
	default:
		return "manual"
	}
}

func (c Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Sending request", slog.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a little of the body for the log; the caller only sees the status.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("Backend returned error status",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(snippet)))
		return fmt.Errorf("backend returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
