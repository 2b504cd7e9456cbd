package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getMetricsBody(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_New(t *testing.T) {
	m := New()
	assert.NotNil(t, m.GatewayCalls)
	assert.NotNil(t, m.GatewayDuration)
	assert.NotNil(t, m.HTTPRequests)
	assert.NotNil(t, m.Projects)
}

func TestMetrics_RecordGatewayCall(t *testing.T) {
	m := New()
	m.RecordGatewayCall("generate_plan", "ok", 2*time.Second)
	m.RecordGatewayCall("generate_plan", "ok", time.Second)
	m.RecordGatewayCall("step_advice", "schema", time.Second)

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `architect_gateway_calls_total{op="generate_plan",status="ok"} 2`)
	assert.Contains(t, body, `architect_gateway_calls_total{op="step_advice",status="schema"} 1`)
	assert.Contains(t, body, `architect_gateway_call_duration_seconds_count{op="generate_plan"} 2`)
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m := New()
	m.RecordHTTPRequest("GET /projects", 200, time.Millisecond)

	body := getMetricsBody(t, m)
	assert.Contains(t, body, `architect_http_requests_total{route="GET /projects",status="200"} 1`)
}

func TestMetrics_GaugeAndNotifications(t *testing.T) {
	m := New()
	m.SetProjects(3)
	m.RecordNotification("undo")

	body := getMetricsBody(t, m)
	assert.Contains(t, body, "architect_projects 3")
	assert.Contains(t, body, `architect_notifications_total{type="undo"} 1`)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordGatewayCall("x", "ok", time.Second)
		m.RecordHTTPRequest("x", 200, time.Second)
		m.SetProjects(1)
		m.RecordNotification("info")
	})
}
