package routers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"codesync/internal/api"
	"codesync/internal/hub"
	"codesync/internal/models"
	"codesync/internal/session"
)

func newTestRouter(t *testing.T) (http.Handler, *session.Registry) {
	t.Helper()
	log := zaptest.NewLogger(t)
	registry := session.NewRegistry(log)
	handlers := api.NewHandlers(log, hub.New(log, registry, nil), registry)
	return New(handlers, nil), registry
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := get(router, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Server is running!", rec.Body.String())

	rec = get(router, "/keep-alive")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Server is alive", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	// Generate one observed request before scraping.
	get(router, "/")

	rec := get(router, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "codesync_http_in_flight_requests")
	assert.Contains(t, rec.Body.String(), "codesync_http_requests_total")
}

func TestRoomStatusEndpoint(t *testing.T) {
	router, registry := newTestRouter(t)

	rec := get(router, "/api/v1/room/missing/status")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	room := registry.Create("host-session")
	rec = get(router, "/api/v1/room/"+room.ID+"/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.RoomStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, room.ID, status.ID)
	assert.Equal(t, "host-session", status.HostSessionID)
	assert.Equal(t, 0, status.MemberCount)
}

func TestWebRTCConfigEndpoint(t *testing.T) {
	t.Setenv("STUN_SERVERS", "")
	t.Setenv("TURN_URL", "")
	router, _ := newTestRouter(t)

	rec := get(router, "/api/v1/webrtc/config")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.ICEServers)
}

func TestGenieNotMountedWithoutProvider(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/genie", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
