// Package server exposes the tutor over HTTP: /ask-text, /ask-voice, plus
// token minting and liveness. Handlers never leak internal error detail; hard
// failures are logged here and surfaced as an opaque message.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/jacky-htg/ai-tutor/internal/tutor"
	"github.com/jacky-htg/ai-tutor/libs/auth"
	"github.com/jacky-htg/ai-tutor/libs/config"
)

// Tutor is the orchestrator surface the server depends on.
type Tutor interface {
	Ask(ctx context.Context, q tutor.Query) (*tutor.Response, error)
	AskVoice(ctx context.Context, audio io.Reader, q tutor.Query) (*tutor.Response, error)
}

// Server holds the HTTP handlers.
type Server struct {
	tutor Tutor
	cfg   *config.Config
}

func New(t Tutor, cfg *config.Config) *Server {
	return &Server{tutor: t, cfg: cfg}
}

// Routes builds the request mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ask-text", s.handleAskText)
	mux.HandleFunc("/ask-voice", s.handleAskVoice)
	mux.HandleFunc("/auth/token", s.handleToken)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// askResponse is the success payload. AudioBase64 is always present and null
// when no audio could be synthesized, so clients never have to distinguish
// "absent" from "null".
type askResponse struct {
	SessionID       string  `json:"session_id"`
	InputLanguage   string  `json:"input_language"`
	OutputLanguage  string  `json:"output_language"`
	ResponseText    string  `json:"response_text"`
	AudioBase64     *string `json:"audio_base64"`
	TranscribedText *string `json:"transcribed_text,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// voiceRejectResponse is the payload for declined voice input. The fixed
// field set keeps clients from guessing at absent keys.
type voiceRejectResponse struct {
	Error           string  `json:"error"`
	TranscribedText string  `json:"transcribed_text"`
	ResponseText    string  `json:"response_text"`
	AudioBase64     *string `json:"audio_base64"`
}

func (s *Server) handleAskText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(w, r) {
		return
	}

	q := tutor.Query{
		Question:   r.FormValue("question"),
		SessionID:  normalizeParam(r.FormValue("session_id")),
		InputLang:  normalizeParam(r.FormValue("input_lang")),
		OutputLang: normalizeParam(r.FormValue("output_lang")),
	}

	resp, err := s.tutor.Ask(r.Context(), q)
	if err != nil {
		log.Printf("ask-text failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "processing failed"})
		return
	}
	if resp.Rejected != "" {
		writeJSON(w, http.StatusOK, errorResponse{Error: resp.Rejected})
		return
	}
	writeJSON(w, http.StatusOK, successPayload(resp, false))
}

func (s *Server) handleAskVoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(w, r) {
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file field is required"})
		return
	}
	defer file.Close()

	q := tutor.Query{
		SessionID:  normalizeParam(r.FormValue("session_id")),
		InputLang:  normalizeParam(r.FormValue("input_lang")),
		OutputLang: normalizeParam(r.FormValue("output_lang")),
	}

	resp, err := s.tutor.AskVoice(r.Context(), file, q)
	if err != nil {
		log.Printf("ask-voice failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "processing failed"})
		return
	}
	if resp.Rejected != "" {
		writeJSON(w, http.StatusOK, voiceRejectResponse{Error: resp.Rejected})
		return
	}
	writeJSON(w, http.StatusOK, successPayload(resp, true))
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.cfg.AuthSecret == "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "auth disabled"})
		return
	}
	subject := normalizeParam(r.FormValue("client_id"))
	if subject == "" {
		subject = "anonymous"
	}
	token, err := auth.GenerateToken(s.cfg.AuthSecret, subject, 3600)
	if err != nil {
		log.Printf("mint token failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "processing failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// authorized enforces bearer auth when AUTH_SECRET is configured. An unset
// secret disables auth entirely.
func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if s.cfg.AuthSecret == "" {
		return true
	}
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return false
	}
	if _, err := auth.VerifyToken(s.cfg.AuthSecret, strings.TrimPrefix(header, "Bearer ")); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return false
	}
	return true
}

func successPayload(resp *tutor.Response, voice bool) askResponse {
	out := askResponse{
		SessionID:      resp.SessionID,
		InputLanguage:  string(resp.InputLanguage),
		OutputLanguage: string(resp.OutputLanguage),
		ResponseText:   resp.Text,
	}
	if len(resp.Audio) > 0 {
		encoded := base64.StdEncoding.EncodeToString(resp.Audio)
		out.AudioBase64 = &encoded
	}
	if voice {
		transcript := resp.Transcript
		out.TranscribedText = &transcript
	}
	return out
}

// normalizeParam maps placeholder strings some clients send for "absent"
// optional parameters back to the empty string.
func normalizeParam(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "none", "null", "undefined", "string":
		return ""
	}
	return strings.TrimSpace(v)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}
