package factory

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/jacky-htg/ai-tutor/libs/config"
	"github.com/jacky-htg/ai-tutor/libs/interfaces"
	"github.com/jacky-htg/ai-tutor/libs/store"
	"github.com/jacky-htg/ai-tutor/libs/vectorstore"
	qdrantstore "github.com/jacky-htg/ai-tutor/libs/vectorstore/qdrant"
	"github.com/jacky-htg/ai-tutor/libs/vendors/elevenlabs"
	"github.com/jacky-htg/ai-tutor/libs/vendors/ollama"
	openaivendor "github.com/jacky-htg/ai-tutor/libs/vendors/openai"
	"github.com/jacky-htg/ai-tutor/libs/vendors/piper"
	"github.com/jacky-htg/ai-tutor/libs/vendors/whisper"
)

func newOpenAI(cfg *config.Config) (*openaivendor.Client, error) {
	return openaivendor.New(openaivendor.Config{
		APIKey:     cfg.Vendor("openai", "api_key"),
		BaseURL:    cfg.Vendor("openai", "base_url"),
		Model:      cfg.Vendor("openai", "model"),
		EmbedModel: cfg.Vendor("openai", "embed_model"),
	})
}

func NewLLM(cfg *config.Config) (interfaces.LLM, error) {
	switch cfg.LLMVendor {
	case "ollama":
		return ollama.New(cfg.Vendor("ollama", "endpoint"), cfg.Vendor("ollama", "model")), nil
	case "openai":
		return newOpenAI(cfg)
	default:
		return nil, errors.New("unknown llm vendor: " + cfg.LLMVendor)
	}
}

func NewEmbedder(cfg *config.Config) (interfaces.Embedder, error) {
	switch cfg.EmbedVendor {
	case "ollama":
		// A dedicated embedding model may be paired with a different chat
		// model; ingest and query must agree on it.
		model := cfg.Vendor("ollama", "embed_model")
		if model == "" {
			model = cfg.Vendor("ollama", "model")
		}
		return ollama.New(cfg.Vendor("ollama", "endpoint"), model), nil
	case "openai":
		return newOpenAI(cfg)
	default:
		return nil, errors.New("unknown embed vendor: " + cfg.EmbedVendor)
	}
}

func NewSTT(cfg *config.Config) (interfaces.STT, error) {
	switch cfg.STTVendor {
	case "whisper":
		return whisper.New(cfg.Vendor("whisper", "endpoint")), nil
	case "openai":
		return newOpenAI(cfg)
	case "elevenlabs":
		return elevenlabs.New(cfg.Vendor("elevenlabs", "api_key"), "", cfg.Vendor("elevenlabs", "voice_id")), nil
	default:
		return nil, errors.New("unknown stt vendor: " + cfg.STTVendor)
	}
}

func NewTTS(cfg *config.Config) (interfaces.TTS, error) {
	switch cfg.TTSVendor {
	case "piper":
		return piper.New(cfg.Vendor("piper", "endpoint")), nil
	case "openai":
		return newOpenAI(cfg)
	case "elevenlabs":
		return elevenlabs.New(cfg.Vendor("elevenlabs", "api_key"), "", cfg.Vendor("elevenlabs", "voice_id")), nil
	default:
		return nil, errors.New("unknown tts vendor: " + cfg.TTSVendor)
	}
}

// NewHistory opens the configured conversation-history driver.
func NewHistory(cfg *config.Config) (store.History, error) {
	switch cfg.HistoryDriver {
	case "sqlite":
		return store.Open(cfg.DatabasePath)
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return store.NewRedis(client, cfg.RedisTTL), nil
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, errors.New("unknown history driver: " + cfg.HistoryDriver)
	}
}

// NewRetriever builds the embedding retriever over the configured qdrant
// collection. The returned store should be closed on shutdown.
func NewRetriever(cfg *config.Config, embedder interfaces.Embedder) (interfaces.Retriever, *qdrantstore.Client, error) {
	qc, err := qdrantstore.New(qdrantstore.Config{
		URL:            cfg.QdrantURL,
		CollectionName: cfg.QdrantCollection,
		APIKey:         cfg.QdrantAPIKey,
	})
	if err != nil {
		return nil, nil, err
	}
	return &vectorstore.Retriever{Embedder: embedder, Store: qc}, qc, nil
}
