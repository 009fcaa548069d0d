package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config contains runtime configuration and vendor selection.
type Config struct {
	// Vendor keys: e.g., "ollama", "openai", "whisper", "piper", "elevenlabs"
	LLMVendor   string `json:"llm_vendor"`
	EmbedVendor string `json:"embed_vendor"`
	STTVendor   string `json:"stt_vendor"`
	TTSVendor   string `json:"tts_vendor"`

	// Conversation history driver: "sqlite", "redis" or "memory".
	HistoryDriver string        `json:"history_driver"`
	DatabasePath  string        `json:"database_path"`
	RedisAddr     string        `json:"redis_addr"`
	RedisTTL      time.Duration `json:"redis_ttl"`

	// Vector store.
	QdrantURL        string `json:"qdrant_url"`
	QdrantAPIKey     string `json:"qdrant_api_key"`
	QdrantCollection string `json:"qdrant_collection"`
	RetrieveK        int    `json:"retrieve_k"`

	// HTTP surface.
	HTTPPort   string `json:"http_port"`
	AuthSecret string `json:"auth_secret"`

	// Generic map for vendor-specific settings.
	VendorSettings map[string]map[string]string `json:"vendor_settings"`
}

// LoadFromEnv constructs a Config reading from environment variables, with a
// .env file in the working directory as fallback. Supported variables:
//
//	LLM_VENDOR, EMBED_VENDOR, STT_VENDOR, TTS_VENDOR
//	HISTORY_DRIVER, DATABASE_PATH, REDIS_ADDR, REDIS_TTL_HOURS
//	QDRANT_URL, QDRANT_API_KEY, QDRANT_COLLECTION, RETRIEVE_K
//	HTTP_PORT, AUTH_SECRET
//	OLLAMA_ENDPOINT, OLLAMA_MODEL, OLLAMA_EMBED_MODEL
//	OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL, OPENAI_EMBED_MODEL
//	WHISPER_ENDPOINT, PIPER_ENDPOINT
//	ELEVENLABS_API_KEY, ELEVENLABS_VOICE_ID
func LoadFromEnv() *Config {
	cfg := &Config{
		LLMVendor:        getEnv("LLM_VENDOR", "ollama"),
		EmbedVendor:      getEnv("EMBED_VENDOR", "ollama"),
		STTVendor:        getEnv("STT_VENDOR", "whisper"),
		TTSVendor:        getEnv("TTS_VENDOR", "piper"),
		HistoryDriver:    getEnv("HISTORY_DRIVER", "sqlite"),
		DatabasePath:     getEnv("DATABASE_PATH", "data/ai.tutor.db"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6334"),
		QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "ai_tutor_docs"),
		HTTPPort:         getEnv("HTTP_PORT", "8000"),
		AuthSecret:       getEnv("AUTH_SECRET", ""),
		RetrieveK:        3,
		RedisTTL:         24 * time.Hour,
		VendorSettings:   make(map[string]map[string]string),
	}

	if k := getEnv("RETRIEVE_K", ""); k != "" {
		if n, err := strconv.Atoi(k); err == nil && n > 0 {
			cfg.RetrieveK = n
		}
	}
	if h := getEnv("REDIS_TTL_HOURS", ""); h != "" {
		if n, err := strconv.Atoi(h); err == nil && n > 0 {
			cfg.RedisTTL = time.Duration(n) * time.Hour
		}
	}

	cfg.setVendor("ollama", "endpoint", getEnv("OLLAMA_ENDPOINT", ""))
	cfg.setVendor("ollama", "model", getEnv("OLLAMA_MODEL", ""))
	cfg.setVendor("ollama", "embed_model", getEnv("OLLAMA_EMBED_MODEL", ""))
	cfg.setVendor("openai", "api_key", getEnv("OPENAI_API_KEY", ""))
	cfg.setVendor("openai", "base_url", getEnv("OPENAI_BASE_URL", ""))
	cfg.setVendor("openai", "model", getEnv("OPENAI_MODEL", ""))
	cfg.setVendor("openai", "embed_model", getEnv("OPENAI_EMBED_MODEL", ""))
	cfg.setVendor("whisper", "endpoint", getEnv("WHISPER_ENDPOINT", ""))
	cfg.setVendor("piper", "endpoint", getEnv("PIPER_ENDPOINT", ""))
	cfg.setVendor("elevenlabs", "api_key", getEnv("ELEVENLABS_API_KEY", ""))
	cfg.setVendor("elevenlabs", "voice_id", getEnv("ELEVENLABS_VOICE_ID", ""))

	return cfg
}

func (c *Config) setVendor(vendor, key, value string) {
	if value == "" {
		return
	}
	if _, ok := c.VendorSettings[vendor]; !ok {
		c.VendorSettings[vendor] = make(map[string]string)
	}
	c.VendorSettings[vendor][key] = value
}

// Vendor returns the setting for key under vendor, or "" when unset.
func (c *Config) Vendor(vendor, key string) string {
	if c.VendorSettings == nil {
		return ""
	}
	return c.VendorSettings[vendor][key]
}

func getEnv(key, def string) string {
	v := ""
	if val, ok := lookupEnv(key); ok {
		v = val
	} else {
		// fallback to .env file if present
		loadDotEnvOnce.Do(loadDotEnv)
		if dotEnv != nil {
			if val2, ok := dotEnv[key]; ok && val2 != "" {
				v = val2
			}
		}
	}
	if v == "" {
		return def
	}
	return v
}

// lookupEnv is a thin wrapper over os.LookupEnv so tests can replace it if needed.
var lookupEnv = func(key string) (string, bool) { return os.LookupEnv(key) }

var (
	dotEnv         map[string]string
	loadDotEnvOnce sync.Once
)

// loadDotEnv loads a .env file from the current working directory and
// populates the dotEnv map. It ignores lines starting with '#' and empty lines.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	data, err := os.ReadFile(filepath.Join(cwd, ".env"))
	if err != nil {
		// no .env present - nothing to do
		return
	}

	m := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		k := strings.TrimSpace(line[:idx])
		v := strings.TrimSpace(line[idx+1:])
		if len(v) >= 2 {
			if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
				v = v[1 : len(v)-1]
			}
		}
		m[k] = v
	}
	dotEnv = m
}
