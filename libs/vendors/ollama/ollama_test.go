package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Model == "" || req.Prompt == "" {
			http.Error(w, "missing model or prompt", http.StatusBadRequest)
			return
		}
		if req.Stream {
			http.Error(w, "streaming not expected", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "the answer", Done: true})
	})
	mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	})
	return httptest.NewServer(mux)
}

func TestGenerate(t *testing.T) {
	ts := fakeOllama(t)
	defer ts.Close()

	c := New(ts.URL, "tinyllama")
	out, err := c.Generate(context.Background(), "why is the sky blue")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "the answer" {
		t.Fatalf("got %q", out)
	}
}

func TestEmbed(t *testing.T) {
	ts := fakeOllama(t)
	defer ts.Close()

	c := New(ts.URL, "tinyllama")
	vec, err := c.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("got %d dims", len(vec))
	}
}

func TestGenerateSurfacesServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer ts.Close()

	if _, err := New(ts.URL, "missing").Generate(context.Background(), "hi"); err == nil {
		t.Fatalf("expected error from non-2xx status")
	}
}

func TestDefaults(t *testing.T) {
	c := New("", "")
	if c.endpoint != defaultEndpoint || c.model != defaultModel {
		t.Fatalf("defaults not applied: %q %q", c.endpoint, c.model)
	}
}
