package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jacky-htg/ai-tutor/internal/factory"
	"github.com/jacky-htg/ai-tutor/internal/lang"
	"github.com/jacky-htg/ai-tutor/internal/server"
	"github.com/jacky-htg/ai-tutor/internal/speech"
	"github.com/jacky-htg/ai-tutor/internal/tutor"
	"github.com/jacky-htg/ai-tutor/libs/config"
)

func main() {
	log.Println("ai-tutor server starting")

	cfg := config.LoadFromEnv()

	llm, err := factory.NewLLM(cfg)
	if err != nil {
		log.Fatalf("new llm: %v", err)
	}
	embedder, err := factory.NewEmbedder(cfg)
	if err != nil {
		log.Fatalf("new embedder: %v", err)
	}
	stt, err := factory.NewSTT(cfg)
	if err != nil {
		log.Fatalf("new stt: %v", err)
	}
	tts, err := factory.NewTTS(cfg)
	if err != nil {
		log.Fatalf("new tts: %v", err)
	}

	if cfg.HistoryDriver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
			log.Fatalf("create data dir: %v", err)
		}
	}
	history, err := factory.NewHistory(cfg)
	if err != nil {
		log.Fatalf("open history store: %v", err)
	}
	defer history.Close()

	retriever, vectors, err := factory.NewRetriever(cfg, embedder)
	if err != nil {
		log.Fatalf("new retriever: %v", err)
	}
	defer vectors.Close()

	// The lingua model is loaded once here and shared across requests.
	classifier := lang.NewClassifier(lang.NewLinguaDetector())

	t := tutor.New(llm, retriever, history, classifier,
		speech.NewTranscriber(stt), speech.NewSynthesizer(tts), cfg.RetrieveK)

	srv := server.New(t, cfg)

	addr := ":" + cfg.HTTPPort
	log.Printf("ai-tutor listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Routes()); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
