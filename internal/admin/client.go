// Package admin implements the bearer-token client for the administrative API. It
// covers every endpoint the dashboard consumes: authentication, aggregate statistics,
// filtered conversation logs, unanswered questions, user management, and system
// configuration. The client holds its token in memory only; storing it is the
// caller's concern.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrUnauthorized is returned on a 401 response so a caller can discard its token and
// re-authenticate.
var ErrUnauthorized = errors.New("unauthorized")

const defaultTimeout = 30 * time.Second

// Client talks to the admin API. Construct it with NewClient; attach a token with
// WithToken after login.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	logger *slog.Logger
}

// NewClient creates a new unauthenticated Client for the admin API at baseURL. A nil
// httpClient falls back to a client with a 30 second timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger.With(slog.String("module", "admin")),
	}
}

// WithToken returns a copy of the client that authenticates every request with the
// given bearer token.
func (c Client) WithToken(token string) Client {
	c.token = token
	return c
}

// Login authenticates with email and password. The returned token is not retained by
// the client; pass it to WithToken.
func (c Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var res LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &res); err != nil {
		return LoginResponse{}, err
	}
	return res, nil
}

// Me returns the profile behind the client's token.
func (c Client) Me(ctx context.Context) (AuthUser, error) {
	var res AuthUser
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &res)
	return res, err
}

// Stats returns the basic dashboard aggregates.
func (c Client) Stats(ctx context.Context) (Stats, error) {
	var res Stats
	err := c.do(ctx, http.MethodGet, "/admin/stats", nil, nil, &res)
	return res, err
}

// ExtendedStats returns the aggregates with day-over-day trends.
func (c Client) ExtendedStats(ctx context.Context) (ExtendedStats, error) {
	var res ExtendedStats
	err := c.do(ctx, http.MethodGet, "/admin/stats/extended", nil, nil, &res)
	return res, err
}

// DailyStats returns the consultations-per-day series for the last days.
func (c Client) DailyStats(ctx context.Context, days int) ([]DailyStats, error) {
	q := url.Values{"days": {strconv.Itoa(days)}}
	var res []DailyStats
	err := c.do(ctx, http.MethodGet, "/admin/stats/daily", q, nil, &res)
	return res, err
}

// HourlyStats returns the consultations-per-hour distribution.
func (c Client) HourlyStats(ctx context.Context) ([]HourlyStats, error) {
	var res []HourlyStats
	err := c.do(ctx, http.MethodGet, "/admin/stats/hourly", nil, nil, &res)
	return res, err
}

// TopQuestions returns the most asked questions, at most limit entries.
func (c Client) TopQuestions(ctx context.Context, limit int) ([]TopQuestion, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var res []TopQuestion
	err := c.do(ctx, http.MethodGet, "/admin/stats/top-questions", q, nil, &res)
	return res, err
}

// Keywords returns the keyword frequency ranking, at most limit entries.
func (c Client) Keywords(ctx context.Context, limit int) ([]KeywordCount, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var res []KeywordCount
	err := c.do(ctx, http.MethodGet, "/admin/stats/keywords", q, nil, &res)
	return res, err
}

// SimilarUnanswered returns clusters of similar unanswered questions.
func (c Client) SimilarUnanswered(ctx context.Context, limit int) ([]SimilarQuestionGroup, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var res []SimilarQuestionGroup
	err := c.do(ctx, http.MethodGet, "/admin/stats/similar-unanswered", q, nil, &res)
	return res, err
}

// Unanswered returns the latest unanswered questions, at most limit entries.
func (c Client) Unanswered(ctx context.Context, limit int) ([]UnansweredQuestion, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var res []UnansweredQuestion
	err := c.do(ctx, http.MethodGet, "/admin/unanswered", q, nil, &res)
	return res, err
}

// Status filter values accepted by ConversationFilter.
const (
	StatusAll        = "all"
	StatusAnswered   = "answered"
	StatusUnanswered = "unanswered"
)

// ConversationFilter narrows, sorts, and paginates the conversation log listing. Zero
// fields are omitted from the query string.
type ConversationFilter struct {
	Search    string
	Status    string
	DateFrom  string
	DateTo    string
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

func (f ConversationFilter) query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.DateFrom != "" {
		q.Set("date_from", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("date_to", f.DateTo)
	}
	if f.SortBy != "" {
		q.Set("sort_by", f.SortBy)
	}
	if f.SortOrder != "" {
		q.Set("sort_order", f.SortOrder)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(f.PerPage))
	}
	return q
}

// Conversations returns one page of conversation logs matching the filter.
func (c Client) Conversations(ctx context.Context, filter ConversationFilter) (PaginatedConversations, error) {
	var res PaginatedConversations
	err := c.do(ctx, http.MethodGet, "/admin/conversations/filtered", filter.query(), nil, &res)
	return res, err
}

// ExportConversations returns the CSV export of the logs matching the filter.
func (c Client) ExportConversations(ctx context.Context, filter ConversationFilter) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, "/admin/conversations/export", filter.query(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// Users lists all administrative accounts.
func (c Client) Users(ctx context.Context) ([]User, error) {
	var res []User
	err := c.do(ctx, http.MethodGet, "/admin/users", nil, nil, &res)
	return res, err
}

// CreateUser creates an administrative account and returns it as stored.
func (c Client) CreateUser(ctx context.Context, user NewUser) (User, error) {
	var res User
	err := c.do(ctx, http.MethodPost, "/admin/users", nil, user, &res)
	return res, err
}

// UpdateUser applies the non-nil fields of update to the account with the given id.
func (c Client) UpdateUser(ctx context.Context, id int64, update UserUpdate) (User, error) {
	var res User
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/users/%d", id), nil, update, &res)
	return res, err
}

// DeleteUser removes the account with the given id.
func (c Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil, nil, nil)
}

// Config returns the current system configuration.
func (c Client) Config(ctx context.Context) (SystemConfig, error) {
	var res SystemConfig
	err := c.do(ctx, http.MethodGet, "/admin/config", nil, nil, &res)
	return res, err
}

// UpdateConfig replaces the system configuration and returns it as stored.
func (c Client) UpdateConfig(ctx context.Context, cfg SystemConfig) (SystemConfig, error) {
	var res SystemConfig
	err := c.do(ctx, http.MethodPut, "/admin/config", nil, cfg, &res)
	return res, err
}

func (c Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func (c Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		c.logger.Error("Admin API returned error status",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(snippet)))
		return nil, fmt.Errorf("admin API returned status %d for %s", resp.StatusCode, path)
	}

	return resp, nil
}
