// Package elevenlabs adapts the ElevenLabs speech API: multilingual
// text-to-speech and the scribe speech-to-text model.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://api.elevenlabs.io"
	defaultTTSModel = "eleven_multilingual_v2"
	defaultSTTModel = "scribe_v1"
	defaultVoiceID  = "JBFqnCBsd6RMkjVDRZzb" // George
)

// Client is an ElevenLabs TTS/STT adapter.
type Client struct {
	apiKey  string
	baseURL string
	voiceID string
	client  *http.Client
}

// New builds an ElevenLabs client. Empty baseURL and voiceID use the hosted
// API and the default multilingual voice.
func New(apiKey, baseURL, voiceID string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if voiceID == "" {
		voiceID = defaultVoiceID
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		voiceID: voiceID,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Speak implements interfaces.TTS. The multilingual model infers the language
// from the text itself.
func (c *Client) Speak(ctx context.Context, text, language string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{Text: text, ModelID: defaultTTSModel})
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post to elevenlabs tts: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs tts returned status %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Recognize implements interfaces.STT using the scribe model.
func (c *Client) Recognize(ctx context.Context, audio []byte) (string, error) {
	var b bytes.Buffer
	mw := multipart.NewWriter(&b)
	if err := mw.WriteField("model_id", defaultSTTModel); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return "", fmt.Errorf("write audio to form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/speech-to-text", &b)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post to elevenlabs stt: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read stt response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("elevenlabs stt returned status %d: %s", resp.StatusCode, string(data))
	}

	var out transcriptionResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("unmarshal stt response: %w", err)
	}
	return out.Text, nil
}
