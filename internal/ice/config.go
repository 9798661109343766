package ice

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/pion/webrtc/v3"
)

// ServerConfig is the ICE server list handed to clients before they start
// their peer-to-peer handshakes.
type ServerConfig struct {
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

// Config assembles the WebRTC configuration from the environment: Google STUN
// defaults, overridable via STUN_SERVERS, plus an optional TURN server.
func Config() webrtc.Configuration {
	stunServers := []string{
		"stun:stun.l.google.com:19302",
		"stun:stun1.l.google.com:19302",
	}
	if customSTUN := os.Getenv("STUN_SERVERS"); customSTUN != "" {
		stunServers = []string{customSTUN}
	}

	var iceServers []webrtc.ICEServer
	for _, stun := range stunServers {
		iceServers = append(iceServers, webrtc.ICEServer{
			URLs: []string{stun},
		})
	}

	if turnURL := os.Getenv("TURN_URL"); turnURL != "" {
		iceServers = append(iceServers, webrtc.ICEServer{
			URLs:       []string{turnURL},
			Username:   os.Getenv("TURN_USERNAME"),
			Credential: os.Getenv("TURN_PASSWORD"),
		})
	}

	return webrtc.Configuration{
		ICEServers:         iceServers,
		ICETransportPolicy: webrtc.ICETransportPolicyAll,
		BundlePolicy:       webrtc.BundlePolicyMaxBundle,
		RTCPMuxPolicy:      webrtc.RTCPMuxPolicyRequire,
	}
}

// Handler serves the ICE server list as JSON.
func Handler(w http.ResponseWriter, _ *http.Request) {
	cfg := Config()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ServerConfig{ICEServers: cfg.ICEServers})
}
