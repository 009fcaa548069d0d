package piper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultEndpoint = "http://localhost:7071/tts"

// Client posts text to a local Piper TTS server and returns the streamed
// audio bytes.
type Client struct {
	endpoint string
	client   *http.Client
}

// New constructs a Piper TTS adapter. The timeout is generous because the
// Piper binary may take time to start and stream audio.
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{endpoint: endpoint, client: &http.Client{Timeout: 120 * time.Second}}
}

// Speak implements interfaces.TTS. Piper voices are selected server-side, so
// the language tag is passed along as a form field for servers that route on
// it and otherwise ignored.
func (c *Client) Speak(ctx context.Context, text, language string) ([]byte, error) {
	form := url.Values{}
	form.Set("text", text)
	if language != "" {
		form.Set("language", language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post form to piper tts: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("piper tts returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
