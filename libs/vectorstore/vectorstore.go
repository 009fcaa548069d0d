package vectorstore

import (
	"context"
	"fmt"

	"github.com/jacky-htg/ai-tutor/libs/interfaces"
)

// Store is the similarity-search half of retrieval. Implementations own the
// collection schema; this package only sees passages.
type Store interface {
	Search(ctx context.Context, vector []float32, limit int) ([]interfaces.Passage, error)
	Close() error
}

// Retriever embeds a question and searches the vector store for the top-k
// passages. It is the only composition of Embedder and Store in the pipeline.
type Retriever struct {
	Embedder interfaces.Embedder
	Store    Store
}

var _ interfaces.Retriever = (*Retriever)(nil)

func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]interfaces.Passage, error) {
	vec, err := r.Embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	passages, err := r.Store.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return passages, nil
}
