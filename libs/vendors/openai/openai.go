// Package openai adapts the hosted OpenAI-compatible API surface (OpenAI
// itself, or Groq and friends via a custom base URL) to the tutor's
// capability interfaces: generation, embeddings, transcription and speech.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

const (
	defaultModel      = "gpt-4o-mini"
	defaultEmbedModel = "text-embedding-3-small"
	maxAnswerTokens   = 1024
)

// Config selects the endpoint and models.
type Config struct {
	APIKey     string
	BaseURL    string // empty for api.openai.com; set for Groq-compatible endpoints
	Model      string
	EmbedModel string
}

// Client implements LLM, Embedder, STT and TTS over one hosted API client.
type Client struct {
	api        oai.Client
	model      string
	embedModel string
}

// New builds a hosted-API client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	embedModel := cfg.EmbedModel
	if embedModel == "" {
		embedModel = defaultEmbedModel
	}
	return &Client{api: oai.NewClient(opts...), model: model, embedModel: embedModel}, nil
}

// Generate implements interfaces.LLM. Temperature is pinned to zero; answers
// must be reproducible for a fixed prompt and history.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model:               c.model,
		Messages:            []oai.ChatCompletionMessageParamUnion{oai.UserMessage(prompt)},
		Temperature:         param.NewOpt(0.0),
		MaxCompletionTokens: param.NewOpt(int64(maxAnswerTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed implements interfaces.Embedder.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Model:          c.embedModel,
		Input:          oai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
		EncodingFormat: oai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embedding response is empty")
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// Recognize implements interfaces.STT using the hosted transcription model.
func (c *Client) Recognize(ctx context.Context, audio []byte) (string, error) {
	resp, err := c.api.Audio.Transcriptions.New(ctx, oai.AudioTranscriptionNewParams{
		Model: oai.AudioModelWhisper1,
		File:  oai.File(bytes.NewReader(audio), "audio.wav", "audio/wav"),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return resp.Text, nil
}

// Speak implements interfaces.TTS using the hosted speech model. The model is
// multilingual; the language tag is implicit in the text.
func (c *Client) Speak(ctx context.Context, text, language string) ([]byte, error) {
	resp, err := c.api.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Model: oai.SpeechModelTTS1,
		Voice: oai.AudioSpeechNewParamsVoiceAlloy,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	defer resp.Body.Close()
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	return audio, nil
}
