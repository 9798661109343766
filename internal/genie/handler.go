package genie

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// systemPrompt frames the assistant as a coding helper; prepended to every
// user query.
const systemPrompt = `You are an advanced AI assistant specializing in generating and explaining high-quality code.
You can write and analyze code in Python, C, JavaScript, Java, TypeScript, and C++.
Rules:
- Always include comments and explanations.
- Format the code neatly.
- Ignore irrelevant (non-coding) queries politely.
- Respond only in English.

User query:
`

type request struct {
	Query         string `json:"query"`
	Authorization string `json:"authorization"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler is the stateless assistant proxy: shared-secret auth, forward the
// prompt to the provider, stream the response back verbatim. No room or
// session state is involved.
type Handler struct {
	provider   Provider
	authSecret string
	log        *zap.Logger
}

func NewHandler(provider Provider, authSecret string, log *zap.Logger) *Handler {
	return &Handler{provider: provider, authSecret: authSecret, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The original clients send the secret either as a header or in the body.
	secret := r.Header.Get("Authorization")
	if secret == "" {
		secret = req.Authorization
	}
	if secret == "" {
		writeError(w, http.StatusUnauthorized, "Authorization header is required.")
		return
	}
	if h.authSecret == "" || secret != h.authSecret {
		writeError(w, http.StatusUnauthorized, "Invalid authorization secret.")
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter is required.")
		return
	}

	h.log.Info("processing genie query", zap.Int("queryLen", len(req.Query)))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	flusher, _ := w.(http.Flusher)

	err := h.provider.Stream(r.Context(), systemPrompt+req.Query, func(chunk string) error {
		if _, err := w.Write([]byte(chunk)); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		h.log.Error("genie stream failed", zap.Error(err))
		// Headers are already out; the truncated body is all we can signal.
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
