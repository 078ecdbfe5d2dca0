package admin_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oamra/tano-web-ui/internal/admin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana@oamra.example", body.Email)
		assert.Equal(t, "secreto", body.Password)

		_, _ = w.Write([]byte(`{
			"access_token": "tok-1",
			"token_type": "bearer",
			"user": {"id": 1, "nombre": "Ana", "email": "ana@oamra.example", "rol": "admin"}
		}`))
	}))
	defer srv.Close()

	client := admin.NewClient(srv.URL, srv.Client(), testLogger())

	res, err := client.Login(context.Background(), "ana@oamra.example", "secreto")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.AccessToken)
	assert.Equal(t, admin.RoleAdmin, res.User.Role)
}

func TestMeSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id": 1, "nombre": "Ana", "email": "ana@oamra.example", "rol": "admin"}`))
	}))
	defer srv.Close()

	client := admin.NewClient(srv.URL, srv.Client(), testLogger()).WithToken("tok-1")

	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.Name)
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := admin.NewClient(srv.URL, srv.Client(), testLogger()).WithToken("stale")

	_, err := client.Stats(context.Background())
	assert.ErrorIs(t, err, admin.ErrUnauthorized)
}

func TestStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/stats", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"total_consultas": 120,
			"consultas_contestadas": 100,
			"consultas_no_contestadas": 20,
			"tasa_exito": 83.3,
			"tiempo_respuesta_promedio_ms": 450.5,
			"consultas_hoy": 12,
			"consultas_semana": 70
		}`))
	}))
	defer srv.Close()

	client := admin.NewClient(srv.URL, srv.Client(), testLogger()).WithToken("tok-1")

	stats, err := client.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(120), stats.TotalQueries)
	assert.Equal(t, 83.3, stats.SuccessRate)
	require.NotNil(t, stats.AvgResponseMs)
	assert.Equal(t, 450.5, *stats.AvgResponseMs)
}

func TestDailyStatsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/stats/daily", r.URL.Path)
		assert.Equal(t, "14", r.URL.Query().Get("days"))
		_, _ = w.Write([]byte(`[{"fecha": "2026-08-27", "consultas": 31}]`))
	}))
	defer srv.Close()

	client := admin.NewClient(srv.URL, srv.Client(), testLogger()).WithToken("tok-1")

	series, err := client.DailyStats(context.Background(), 14)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "2026-08-27", series[0].Date)
	assert.Equal(t, int64(31), series[0].Queries)
}

func TestConversationsFilterQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/conversations/filtered", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "matricula", q.Get("search"))
		assert.Equal(t, admin.StatusUnanswered, q.Get("status"))
		assert.Equal(t, "2026-08-01", q.Get("date_from"))
		assert.Equal(t, "2026-08-28", q.Get("date_to"))
		assert.Equal(t, "fecha", q.Get("sort_by"))
		assert.Equal(t, "desc", q.Get("sort_order"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "25", q.Get("per_page"))

		_, _ = w.Write([]byte(`{
			"items": [{
				"id": 9,
				"session_id": "s-1",
				"pregunta_usuario": "¿costos de matrícula?",
				"respuesta_tano": "",
				"es_no_contestada": true,
				"fecha": "2026-08-27T10:00:00Z",
				"fuentes": []
			}],
			"total": 26, "page": 2, "pages": 2, "per_page": 25
		}`))
	}))
	defer srv.Close()

	client := admin.NewClient(srv.URL, srv.Client(), testLogger()).WithToken("tok-1")

	page, err := client.Conversations(context.Background(), admin.ConversationFilter{
		Search:    "matricula",
		Status:    admin.StatusUnanswered,
		DateFrom:  "2026-08-01",
		DateTo:    "2026-08-28",
		SortBy:    "fecha",
		SortOrder: "desc",
		Page:      2,
		PerPage:   25,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(26), page.Total)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Unanswered)
}

func TestConversationsZeroFilterOmitsParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"items": [], "total": 0, "page": 1, "pages": 0, "per_page": 20}`))
	}))
	defer srv.Close()

	client := admin.NewClient(srv.URL, srv.Client(), testLogger()).WithToken("tok-1")

	_, err := client.Conversations(context.Background(), admin.ConversationFilter{})
	require.NoError(t, err)
}

func TestExportConversations(t *testing.T) {
	csv := "id,pregunta,respuesta\n9,hola,mundo\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/conversations/export", r.URL.Path)
		assert.Equal(t, admin.StatusAnswered, r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(csv))
	}))
	defer srv.Close()

	client := admin.NewClient(srv.URL, srv.Client(), testLogger()).WithToken("tok-1")

	data, err := client.ExportConversations(context.Background(), admin.ConversationFilter{Status: admin.StatusAnswered})
	require.NoError(t, err)
	assert.Equal(t, csv, string(data))
}

func TestUserManagement(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"id": 3, "nombre": "Luis", "email": "luis@oamra.example", "rol": "reportes", "activo": true, "fecha_creacion": "2026-08-28"}`))
	}))
	defer srv.Close()

	client := admin.NewClient(srv.URL, srv.Client(), testLogger()).WithToken("tok-1")
	ctx := context.Background()

	created, err := client.CreateUser(ctx, admin.NewUser{
		Name: "Luis", Email: "luis@oamra.example", Password: "clave", Role: admin.RoleReports,
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/admin/users", gotPath)
	assert.Contains(t, string(gotBody), `"rol":"reportes"`)
	assert.Equal(t, int64(3), created.ID)

	active := false
	_, err = client.UpdateUser(ctx, 3, admin.UserUpdate{Active: &active})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/admin/users/3", gotPath)
	// Only the set field travels; nil fields stay out of the payload.
	assert.JSONEq(t, `{"activo": false}`, string(gotBody))

	require.NoError(t, client.DeleteUser(ctx, 3))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/admin/users/3", gotPath)
}

func TestConfigRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/config", r.URL.Path)
		if r.Method == http.MethodPut {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "0.2", body["temperatura"])
		}
		_, _ = w.Write([]byte(`{
			"mensaje_bienvenida": "¡Hola!",
			"temperatura": "0.2",
			"max_tokens": 1024,
			"auto_reindexacion": true,
			"notificaciones_email": false,
			"notificaciones_slack": false,
			"umbral_alertas": 0.4,
			"fecha_actualizacion": "2026-08-28T09:00:00Z"
		}`))
	}))
	defer srv.Close()

	client := admin.NewClient(srv.URL, srv.Client(), testLogger()).WithToken("tok-1")
	ctx := context.Background()

	cfg, err := client.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.MaxTokens)

	updated, err := client.UpdateConfig(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, updated.AutoReindex)
}
