package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SVPraveen1/health-ai-sub000/internal/analytics"
	"github.com/SVPraveen1/health-ai-sub000/internal/assess"
	"github.com/SVPraveen1/health-ai-sub000/internal/config"
	"github.com/SVPraveen1/health-ai-sub000/internal/health"
	"github.com/SVPraveen1/health-ai-sub000/internal/metrics"
)

const testSecret = "test-secret"

type echoCompleter struct {
	reply string
	err   error
}

func (e *echoCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return e.reply, e.err
}

func (e *echoCompleter) CompleteStream(ctx context.Context, system, user string, onChunk func(string)) error {
	if e.err != nil {
		return e.err
	}
	onChunk(e.reply)
	return nil
}

func setupServer(t *testing.T) (*Server, *health.Store) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.ReadTimeout = 5
	cfg.Server.WriteTimeout = 5
	cfg.Security.JWTSecret = testSecret
	cfg.Security.AllowOrigins = []string{"*"}

	store, err := health.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	cache, err := analytics.OpenReportCache(t.TempDir(), time.Hour, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	completer := &echoCompleter{reply: "hello"}
	assessor := assess.New(completer, nil)

	srv := New(cfg, store, analytics.NewEngine(nil), cache, assessor, completer, metrics.New(), zap.NewNop())
	return srv, store
}

func authToken(t *testing.T, uid string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uid,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, srv *Server, method, path, uid string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+authToken(t, uid))
	}

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestAuthRequired(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, srv, "GET", "/api/metrics", "", nil)
	assert.Equal(t, 401, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "no authorization header", body["error"])
}

func TestAuthRejectsBadToken(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/api/metrics", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "invalid token", body["error"])
}

func TestLoginIssuesToken(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, srv, "POST", "/api/auth/login", "", map[string]string{"user_id": "u1"})
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	require.NotEmpty(t, body["token"])

	req := httptest.NewRequest("GET", "/api/metrics", nil)
	req.Header.Set("Authorization", "Bearer "+body["token"])
	authed, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, authed.StatusCode)
}

func TestLoginChecksPassword(t *testing.T) {
	srv, _ := setupServer(t)
	srv.config.Security.AdminPassword = "hunter2"

	resp := doJSON(t, srv, "POST", "/api/auth/login", "", map[string]string{"password": "wrong"})
	assert.Equal(t, 401, resp.StatusCode)

	resp = doJSON(t, srv, "POST", "/api/auth/login", "", map[string]string{"password": "hunter2"})
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMetricCRUD(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, srv, "POST", "/api/metrics", "u1", map[string]interface{}{
		"heart_rate":    72,
		"sleep_quality": "good",
	})
	require.Equal(t, 201, resp.StatusCode)

	var created health.HealthMetric
	decode(t, resp, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "u1", created.UserID)

	resp = doJSON(t, srv, "GET", "/api/metrics/"+created.ID, "u1", nil)
	assert.Equal(t, 200, resp.StatusCode)

	// Another user cannot see it.
	resp = doJSON(t, srv, "GET", "/api/metrics/"+created.ID, "u2", nil)
	assert.Equal(t, 404, resp.StatusCode)

	resp = doJSON(t, srv, "DELETE", "/api/metrics/"+created.ID, "u1", nil)
	assert.Equal(t, 204, resp.StatusCode)

	resp = doJSON(t, srv, "GET", "/api/metrics/"+created.ID, "u1", nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestCreateMetricRejectsBadEnums(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, srv, "POST", "/api/metrics", "u1", map[string]interface{}{
		"sleep_quality": "amazing",
	})
	require.Equal(t, 400, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "invalid metrics data", body["error"])
}

func TestGoalValidationAndProgress(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, srv, "POST", "/api/goals", "u1", map[string]interface{}{
		"title": "lose weight", "type": "weight", "target": 0,
	})
	assert.Equal(t, 400, resp.StatusCode)

	resp = doJSON(t, srv, "POST", "/api/goals", "u1", map[string]interface{}{
		"title": "lose weight", "type": "weight", "target": 75,
	})
	require.Equal(t, 201, resp.StatusCode)

	var goal health.HealthGoal
	decode(t, resp, &goal)

	resp = doJSON(t, srv, "PUT", "/api/goals/"+goal.ID+"/progress", "u1", map[string]float64{"progress": 150})
	require.Equal(t, 200, resp.StatusCode)

	var updated health.HealthGoal
	decode(t, resp, &updated)
	assert.Equal(t, 100.0, updated.Progress)
	assert.True(t, updated.Completed)
}

func TestWeeklyReportEndpoint(t *testing.T) {
	srv, store := setupServer(t)

	weekStart := WeekStart(time.Now())
	hr := 72.0
	activity := 30.0
	for day := 0; day < 3; day++ {
		require.NoError(t, store.CreateMetric(&health.HealthMetric{
			UserID:          "u1",
			HeartRate:       &hr,
			ActivityMinutes: &activity,
			CreatedAt:       weekStart.Add(time.Duration(day)*24*time.Hour + 8*time.Hour),
		}))
	}

	resp := doJSON(t, srv, "GET", "/api/reports/weekly", "u1", nil)
	require.Equal(t, 200, resp.StatusCode)

	var report analytics.WeeklyReport
	decode(t, resp, &report)
	assert.Equal(t, "u1", report.UserID)
	assert.Equal(t, 3, report.ReadingCount)
	assert.Equal(t, 72.0, report.Metrics.AverageHeartRate)

	// Second fetch is served from cache and identical.
	resp = doJSON(t, srv, "GET", "/api/reports/weekly", "u1", nil)
	require.Equal(t, 200, resp.StatusCode)
	var cached analytics.WeeklyReport
	decode(t, resp, &cached)
	assert.Equal(t, report, cached)
}

func TestWeeklyReportBadWeekStart(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, srv, "GET", "/api/reports/weekly?week_start=tomorrow", "u1", nil)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestRiskEndpointProfiles(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, srv, "POST", "/api/risk", "u1", map[string]interface{}{
		"heart_rate": 50,
	})
	require.Equal(t, 200, resp.StatusCode)

	var dash analytics.RiskAssessment
	decode(t, resp, &dash)
	assert.Equal(t, 15, dash.Score)

	resp = doJSON(t, srv, "POST", "/api/risk", "u1", map[string]interface{}{
		"heart_rate": 50, "profile": "prediction",
	})
	require.Equal(t, 200, resp.StatusCode)

	var pred analytics.RiskAssessment
	decode(t, resp, &pred)
	assert.Equal(t, 20, pred.Score)

	resp = doJSON(t, srv, "POST", "/api/risk", "u1", map[string]interface{}{
		"heart_rate": 50, "profile": "bogus",
	})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestAssessEndpoint(t *testing.T) {
	srv, _ := setupServer(t)
	srv.assessor = assess.New(&echoCompleter{reply: "CONDITIONS:\n1. Common cold (70%)\nRISK: 10%"}, nil)

	resp := doJSON(t, srv, "POST", "/api/assess", "u1", map[string]interface{}{
		"symptoms": []string{"runny nose"},
	})
	require.Equal(t, 200, resp.StatusCode)

	var result assess.Assessment
	decode(t, resp, &result)
	require.Len(t, result.Conditions, 1)
	assert.Equal(t, 10, result.RiskPercent)

	resp = doJSON(t, srv, "POST", "/api/assess", "u1", map[string]interface{}{})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestChatEndpoint(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, srv, "POST", "/api/chat", "u1", map[string]string{"message": "hi"})
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "hello", body["content"])

	resp = doJSON(t, srv, "POST", "/api/chat", "u1", map[string]string{})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestChatUnavailableWithoutCompleter(t *testing.T) {
	srv, _ := setupServer(t)
	srv.completer = nil

	resp := doJSON(t, srv, "POST", "/api/chat", "u1", map[string]string{"message": "hi"})
	assert.Equal(t, 503, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, srv, "GET", "/api/health", "", nil)
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestMetricsEndpointExposed(t *testing.T) {
	srv, _ := setupServer(t)

	// Generate one request so counters are non-empty.
	doJSON(t, srv, "GET", "/api/health", "", nil)

	resp := doJSON(t, srv, "GET", "/metrics", "", nil)
	require.Equal(t, 200, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "healthai_http_requests_total")
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-03-05", "2025-03-03"}, // Wednesday -> Monday
		{"2025-03-03", "2025-03-03"}, // Monday is its own week start
		{"2025-03-09", "2025-03-03"}, // Sunday belongs to the prior Monday
	}

	for _, tt := range tests {
		in, err := time.Parse("2006-01-02", tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, WeekStart(in).Format("2006-01-02"), fmt.Sprintf("WeekStart(%s)", tt.in))
	}
}
