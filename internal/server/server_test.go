package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jacky-htg/ai-tutor/internal/lang"
	"github.com/jacky-htg/ai-tutor/internal/tutor"
	"github.com/jacky-htg/ai-tutor/libs/auth"
	"github.com/jacky-htg/ai-tutor/libs/config"
)

type stubTutor struct {
	lastQuery tutor.Query
	resp      *tutor.Response
	err       error
}

func (s *stubTutor) Ask(ctx context.Context, q tutor.Query) (*tutor.Response, error) {
	s.lastQuery = q
	return s.resp, s.err
}

func (s *stubTutor) AskVoice(ctx context.Context, audio io.Reader, q tutor.Query) (*tutor.Response, error) {
	s.lastQuery = q
	io.Copy(io.Discard, audio)
	return s.resp, s.err
}

func okResponse() *tutor.Response {
	return &tutor.Response{
		SessionID:      "sess-42",
		InputLanguage:  lang.English,
		OutputLanguage: lang.English,
		Text:           "an answer",
		Audio:          []byte("wav-bytes"),
	}
}

func postForm(t *testing.T, srv *Server, path string, form url.Values, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestAskTextSuccessShape(t *testing.T) {
	st := &stubTutor{resp: okResponse()}
	srv := New(st, &config.Config{})

	rec := postForm(t, srv, "/ask-text", url.Values{"question": {"what is gravity"}}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["session_id"] != "sess-42" || body["response_text"] != "an answer" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["input_language"] != "en" || body["output_language"] != "en" {
		t.Fatalf("language fields: %v", body)
	}
	want := base64.StdEncoding.EncodeToString([]byte("wav-bytes"))
	if body["audio_base64"] != want {
		t.Fatalf("audio_base64 = %v, want %q", body["audio_base64"], want)
	}
	if _, present := body["transcribed_text"]; present {
		t.Fatalf("text endpoint must not carry transcribed_text")
	}
}

func TestAskTextNullAudioWhenSynthesisSkipped(t *testing.T) {
	resp := okResponse()
	resp.Audio = nil
	srv := New(&stubTutor{resp: resp}, &config.Config{})

	rec := postForm(t, srv, "/ask-text", url.Values{"question": {"q q q"}}, nil)
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, present := body["audio_base64"]
	if !present || v != nil {
		t.Fatalf("audio_base64 must be an explicit null, got %v (present=%v)", v, present)
	}
}

func TestAskTextRejectionIsHTTP200(t *testing.T) {
	srv := New(&stubTutor{resp: &tutor.Response{Rejected: tutor.RejectedEmptyQuestion}}, &config.Config{})

	rec := postForm(t, srv, "/ask-text", url.Values{"question": {""}}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("rejections are not server errors, got status %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != tutor.RejectedEmptyQuestion {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestAskTextFailureIsOpaque(t *testing.T) {
	srv := New(&stubTutor{err: errors.New("qdrant connection refused at 10.0.0.3")}, &config.Config{})

	rec := postForm(t, srv, "/ask-text", url.Values{"question": {"q"}}, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.3") {
		t.Fatalf("internal detail leaked to client: %s", rec.Body.String())
	}
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "processing failed" {
		t.Fatalf("error = %q, want the opaque message", body["error"])
	}
}

func TestAskTextNormalizesPlaceholderParams(t *testing.T) {
	st := &stubTutor{resp: okResponse()}
	srv := New(st, &config.Config{})

	postForm(t, srv, "/ask-text", url.Values{
		"question":    {"a real question"},
		"session_id":  {"None"},
		"input_lang":  {"null"},
		"output_lang": {"string"},
	}, nil)

	if st.lastQuery.SessionID != "" || st.lastQuery.InputLang != "" || st.lastQuery.OutputLang != "" {
		t.Fatalf("placeholder params must normalize to empty, got %+v", st.lastQuery)
	}
}

func TestAskTextMethodNotAllowed(t *testing.T) {
	srv := New(&stubTutor{resp: okResponse()}, &config.Config{})
	req := httptest.NewRequest(http.MethodGet, "/ask-text", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rec.Code)
	}
}

func postVoice(t *testing.T, srv *Server, fields map[string]string, audio []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "question.wav")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write(audio)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/ask-voice", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestAskVoiceSuccessCarriesTranscript(t *testing.T) {
	resp := okResponse()
	resp.Transcript = "what is gravity"
	srv := New(&stubTutor{resp: resp}, &config.Config{})

	rec := postVoice(t, srv, map[string]string{"session_id": "sess-42"}, []byte("RIFFdata"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["transcribed_text"] != "what is gravity" {
		t.Fatalf("transcribed_text = %v", body["transcribed_text"])
	}
}

func TestAskVoiceRejectionShape(t *testing.T) {
	srv := New(&stubTutor{resp: &tutor.Response{Rejected: tutor.RejectedNoSpeech}}, &config.Config{})

	rec := postVoice(t, srv, nil, []byte("RIFFdata"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != tutor.RejectedNoSpeech {
		t.Fatalf("error = %v", body["error"])
	}
	// The reject payload always carries the full field set.
	for _, key := range []string{"transcribed_text", "response_text", "audio_base64"} {
		if _, present := body[key]; !present {
			t.Errorf("missing %q in reject payload: %v", key, body)
		}
	}
}

func TestAskVoiceMissingFile(t *testing.T) {
	srv := New(&stubTutor{resp: okResponse()}, &config.Config{})
	rec := postForm(t, srv, "/ask-voice", url.Values{"session_id": {"x"}}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestAuthEnforcedWhenSecretSet(t *testing.T) {
	cfg := &config.Config{AuthSecret: "topsecret"}
	srv := New(&stubTutor{resp: okResponse()}, cfg)
	form := url.Values{"question": {"hello there world"}}

	if rec := postForm(t, srv, "/ask-text", form, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", rec.Code)
	}
	if rec := postForm(t, srv, "/ask-text", form, http.Header{"Authorization": {"Bearer not-a-jwt"}}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d", rec.Code)
	}

	token, err := auth.GenerateToken(cfg.AuthSecret, "tester", 60)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if rec := postForm(t, srv, "/ask-text", form, http.Header{"Authorization": {"Bearer " + token}}); rec.Code != http.StatusOK {
		t.Fatalf("valid token: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestTokenEndpoint(t *testing.T) {
	cfg := &config.Config{AuthSecret: "topsecret"}
	srv := New(&stubTutor{resp: okResponse()}, cfg)

	rec := postForm(t, srv, "/auth/token", url.Values{"client_id": {"classroom-7"}}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	sub, err := auth.VerifyToken(cfg.AuthSecret, body["token"])
	if err != nil {
		t.Fatalf("minted token does not verify: %v", err)
	}
	if sub != "classroom-7" {
		t.Fatalf("subject = %q", sub)
	}
}

func TestTokenEndpointDisabledWithoutSecret(t *testing.T) {
	srv := New(&stubTutor{resp: okResponse()}, &config.Config{})
	if rec := postForm(t, srv, "/auth/token", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := New(&stubTutor{}, &config.Config{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}
