// Command ingest loads plain-text documents into the tutor's vector
// collection: it chunks each file, embeds every chunk with the configured
// embedder, and upserts the vectors into Qdrant. The same EMBED_VENDOR must
// be used for ingest and for serving.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jacky-htg/ai-tutor/internal/factory"
	"github.com/jacky-htg/ai-tutor/libs/config"
	"github.com/jacky-htg/ai-tutor/libs/vectorstore"
	qdrantstore "github.com/jacky-htg/ai-tutor/libs/vectorstore/qdrant"
)

const (
	chunkSize    = 500
	chunkOverlap = 100
	batchSize    = 64
)

func main() {
	dir := flag.String("dir", "data/docs", "directory of .txt/.md documents to ingest")
	flag.Parse()

	cfg := config.LoadFromEnv()

	embedder, err := factory.NewEmbedder(cfg)
	if err != nil {
		log.Fatalf("new embedder: %v", err)
	}

	qc, err := qdrantstore.New(qdrantstore.Config{
		URL:            cfg.QdrantURL,
		CollectionName: cfg.QdrantCollection,
		APIKey:         cfg.QdrantAPIKey,
	})
	if err != nil {
		log.Fatalf("new qdrant client: %v", err)
	}
	defer qc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	var files []string
	err = filepath.WalkDir(*dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("walk %s: %v", *dir, err)
	}
	if len(files) == 0 {
		log.Fatalf("no .txt or .md documents found under %s", *dir)
	}

	total := 0
	collectionReady := false
	var batch []qdrantstore.Point

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := qc.Upsert(ctx, batch); err != nil {
			log.Fatalf("upsert batch: %v", err)
		}
		total += len(batch)
		batch = batch[:0]
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		source := filepath.Base(path)

		for _, chunk := range vectorstore.Chunk(string(data), chunkSize, chunkOverlap) {
			vec, err := embedder.Embed(ctx, chunk)
			if err != nil {
				log.Fatalf("embed chunk from %s: %v", source, err)
			}
			if !collectionReady {
				if err := qc.EnsureCollection(ctx, len(vec)); err != nil {
					log.Fatalf("ensure collection: %v", err)
				}
				collectionReady = true
			}
			batch = append(batch, qdrantstore.Point{
				ID:      uuid.NewString(),
				Vector:  vec,
				Content: chunk,
				Source:  source,
			})
			if len(batch) >= batchSize {
				flush()
			}
		}
		log.Printf("ingested %s", source)
	}
	flush()

	log.Printf("ingested %d chunks from %d documents into %s", total, len(files), cfg.QdrantCollection)
}
