package interfaces

import "context"

// LLM is the language model interface. Implementations should be swappable.
type LLM interface {
	// Generate takes a prompt and returns a generated text response.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder converts text into a vector suitable for similarity search.
// Ingest and query must use the same embedder; different models produce
// incompatible vector dimensions.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// STT is the speech-to-text interface.
type STT interface {
	// Recognize converts audio bytes into a raw transcript. An empty
	// transcript is a valid result; filtering noise is the caller's job.
	Recognize(ctx context.Context, audio []byte) (string, error)
}

// TTS is the text-to-speech interface.
type TTS interface {
	// Speak converts text into audio bytes. The language tag selects a
	// voice where the vendor supports it.
	Speak(ctx context.Context, text, language string) ([]byte, error)
}

// Detector is a statistical language detector. It may fail on short or
// ambiguous input; callers decide the fallback.
type Detector interface {
	// Detect returns a lowercase ISO 639-1 code for the given text.
	Detect(text string) (string, error)
}

// Passage is one retrieved context snippet, ranked by relevance.
type Passage struct {
	Content string
	Source  string
	Score   float32
}

// Retriever returns the top-k passages relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, k int) ([]Passage, error)
}
