package ice

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	t.Setenv("STUN_SERVERS", "")
	t.Setenv("TURN_URL", "")

	cfg := Config()
	require.Len(t, cfg.ICEServers, 2)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.ICEServers[0].URLs)
}

func TestConfigCustomSTUNAndTURN(t *testing.T) {
	t.Setenv("STUN_SERVERS", "stun:stun.example.com:3478")
	t.Setenv("TURN_URL", "turn:turn.example.com:3478")
	t.Setenv("TURN_USERNAME", "user")
	t.Setenv("TURN_PASSWORD", "pass")

	cfg := Config()
	require.Len(t, cfg.ICEServers, 2)
	assert.Equal(t, []string{"stun:stun.example.com:3478"}, cfg.ICEServers[0].URLs)
	assert.Equal(t, []string{"turn:turn.example.com:3478"}, cfg.ICEServers[1].URLs)
	assert.Equal(t, "user", cfg.ICEServers[1].Username)
	assert.Equal(t, "pass", cfg.ICEServers[1].Credential)
}

func TestHandlerServesJSON(t *testing.T) {
	t.Setenv("STUN_SERVERS", "")
	t.Setenv("TURN_URL", "")

	rec := httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/webrtc/config", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ServerConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.ICEServers, 2)
}
