package admin

import "github.com/oamra/tano-web-ui/internal/models"

// User is an administrative account as stored by the backend.
type User struct {
	ID           int64   `json:"id"`
	Name         string  `json:"nombre"`
	Email        string  `json:"email"`
	Role         string  `json:"rol"`
	Active       bool    `json:"activo"`
	CreatedAt    string  `json:"fecha_creacion"`
	LastLogin    *string `json:"ultimo_login"`
}

// AuthUser is the profile embedded in a login response and returned by /auth/me.
type AuthUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"email"`
	Role  string `json:"rol"`
}

// Admin role values.
const (
	RoleAdmin   = "admin"
	RoleReports = "reportes"
)

// LoginResponse carries the bearer token and the authenticated profile.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        AuthUser `json:"user"`
}

// Stats is the basic aggregate block shown on the dashboard.
type Stats struct {
	TotalQueries      int64    `json:"total_consultas"`
	AnsweredQueries   int64    `json:"consultas_contestadas"`
	UnansweredQueries int64    `json:"consultas_no_contestadas"`
	SuccessRate       float64  `json:"tasa_exito"`
	AvgResponseMs     *float64 `json:"tiempo_respuesta_promedio_ms"`
	QueriesToday      int64    `json:"consultas_hoy"`
	QueriesWeek       int64    `json:"consultas_semana"`
}

// ExtendedStats adds day-over-day trend figures to the basic aggregates.
type ExtendedStats struct {
	TotalQueries      int64    `json:"total_consultas"`
	AnsweredQueries   int64    `json:"consultas_contestadas"`
	UnansweredQueries int64    `json:"consultas_no_contestadas"`
	SuccessRate       float64  `json:"tasa_exito"`
	AvgResponseMs     *float64 `json:"tiempo_respuesta_promedio_ms"`
	QueriesToday      int64    `json:"consultas_hoy"`
	QueriesYesterday  int64    `json:"consultas_ayer"`
	TodayVsYesterday  float64  `json:"tendencia_hoy_vs_ayer"`
	ResolutionRate    float64  `json:"tasa_resolucion"`
}

// DailyStats is one point of the consultations-per-day series.
type DailyStats struct {
	Date    string `json:"fecha"`
	Queries int64  `json:"consultas"`
}

// HourlyStats is one point of the consultations-per-hour series.
type HourlyStats struct {
	Hour    int   `json:"hora"`
	Queries int64 `json:"consultas"`
}

// TopQuestion is an entry of the most-asked-questions ranking.
type TopQuestion struct {
	Question   string `json:"pregunta"`
	Count      int64  `json:"conteo"`
	Unanswered bool   `json:"es_no_contestada"`
}

// KeywordCount is one entry of the keyword frequency ranking.
type KeywordCount struct {
	Word      string `json:"palabra"`
	Frequency int64  `json:"frecuencia"`
}

// SimilarQuestionGroup clusters unanswered questions around a representative phrasing.
type SimilarQuestionGroup struct {
	Representative string   `json:"pregunta_representativa"`
	Questions      []string `json:"preguntas"`
	Count          int64    `json:"conteo"`
}

// UnansweredQuestion is a query the assistant could not resolve.
type UnansweredQuestion struct {
	ID        int64   `json:"id"`
	Question  string  `json:"pregunta"`
	Date      string  `json:"fecha"`
	SessionID *string `json:"session_id"`
}

// ConversationLog is one logged question/answer pair.
type ConversationLog struct {
	ID           int64                   `json:"id"`
	SessionID    *string                 `json:"session_id"`
	UserQuestion string                  `json:"pregunta_usuario"`
	Answer       string                  `json:"respuesta_tano"`
	Unanswered   bool                    `json:"es_no_contestada"`
	ResponseMs   *float64                `json:"tiempo_respuesta_ms"`
	Date         string                  `json:"fecha"`
	Sources      []models.SourceDocument `json:"fuentes"`
}

// PaginatedConversations is one page of filtered conversation logs.
type PaginatedConversations struct {
	Items   []ConversationLog `json:"items"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Pages   int               `json:"pages"`
	PerPage int               `json:"per_page"`
}

// SystemConfig is the editable assistant configuration.
type SystemConfig struct {
	WelcomeMessage     string  `json:"mensaje_bienvenida"`
	Temperature        string  `json:"temperatura"`
	MaxTokens          int     `json:"max_tokens"`
	AutoReindex        bool    `json:"auto_reindexacion"`
	EmailNotifications bool    `json:"notificaciones_email"`
	SlackNotifications bool    `json:"notificaciones_slack"`
	AlertThreshold     float64 `json:"umbral_alertas"`
	UpdatedAt          *string `json:"fecha_actualizacion"`
}

// NewUser is the payload for creating an administrative account.
type NewUser struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"rol"`
}

// UserUpdate is the payload for modifying an administrative account. Nil fields are
// omitted and left unchanged by the backend.
type UserUpdate struct {
	Name     *string `json:"nombre,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"rol,omitempty"`
	Active   *bool   `json:"activo,omitempty"`
}
