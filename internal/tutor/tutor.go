// Package tutor implements the query orchestrator: the one component that
// sequences language classification, retrieval, history, generation,
// translation and speech synthesis for a single question.
package tutor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/jacky-htg/ai-tutor/internal/lang"
	"github.com/jacky-htg/ai-tutor/internal/speech"
	"github.com/jacky-htg/ai-tutor/libs/interfaces"
	"github.com/jacky-htg/ai-tutor/libs/store"
)

// Rejection reasons for inputs the pipeline declines without failing.
const (
	RejectedEmptyQuestion = "Question is empty"
	RejectedNoAudio       = "No audio detected"
	RejectedNoSpeech      = "No speech detected"
)

// Query carries the caller-supplied request fields. Optional fields are empty
// strings when absent.
type Query struct {
	Question   string
	SessionID  string
	InputLang  string // explicit input-language override
	OutputLang string // requested answer language
}

// Response is the outcome of one tutor turn. Rejected marks inputs the
// pipeline declined (empty question, no speech); it is not a failure.
// Audio is nil when synthesis was unavailable — audio is best effort,
// text is not.
type Response struct {
	SessionID      string
	InputLanguage  lang.Tag
	OutputLanguage lang.Tag
	Text           string
	Audio          []byte
	Transcript     string // voice path only
	Rejected       string
}

// Tutor wires the capability providers together. All durable state lives
// behind the injected collaborators; a Tutor itself holds no per-request
// state and is safe for concurrent use.
type Tutor struct {
	llm         interfaces.LLM
	retriever   interfaces.Retriever
	history     store.History
	classifier  *lang.Classifier
	transcriber *speech.Transcriber
	synthesizer *speech.Synthesizer
	topK        int
}

// New constructs a Tutor. topK bounds the retrieved context passages; values
// below 1 default to 3.
func New(llm interfaces.LLM, retriever interfaces.Retriever, history store.History,
	classifier *lang.Classifier, transcriber *speech.Transcriber, synthesizer *speech.Synthesizer,
	topK int) *Tutor {
	if topK < 1 {
		topK = 3
	}
	return &Tutor{
		llm:         llm,
		retriever:   retriever,
		history:     history,
		classifier:  classifier,
		transcriber: transcriber,
		synthesizer: synthesizer,
		topK:        topK,
	}
}

// Ask answers a text question. Validation problems come back as a Response
// with Rejected set; infrastructure failures come back as errors carrying
// full detail for the caller to log (and hide).
func (t *Tutor) Ask(ctx context.Context, q Query) (*Response, error) {
	question := strings.TrimSpace(q.Question)
	if question == "" {
		return &Response{Rejected: RejectedEmptyQuestion}, nil
	}

	sessionID := q.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	inLang := lang.Parse(q.InputLang)
	if inLang == "" {
		inLang = t.classifier.Classify(question)
	}
	outLang := lang.Parse(q.OutputLang)
	if outLang == "" {
		outLang = inLang
	}

	passages, err := t.retriever.Retrieve(ctx, question, t.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	turns, err := t.history.Read(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	answer, err := t.llm.Generate(ctx, buildPrompt(passages, turns, question, inLang))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	answer = strings.TrimSpace(answer)

	if err := t.history.Append(ctx, sessionID,
		store.Turn{Role: store.RoleUser, Content: question},
		store.Turn{Role: store.RoleTutor, Content: answer},
	); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}

	if outLang != inLang {
		answer, err = t.Translate(ctx, answer, outLang)
		if err != nil {
			return nil, fmt.Errorf("translate answer: %w", err)
		}
	}

	// Audio is best effort; Synthesize returns nil on any engine failure.
	audio := t.synthesizer.Synthesize(ctx, answer, outLang)

	return &Response{
		SessionID:      sessionID,
		InputLanguage:  inLang,
		OutputLanguage: outLang,
		Text:           answer,
		Audio:          audio,
	}, nil
}

// AskVoice answers a spoken question. The upload is buffered to a uniquely
// named temp file that is removed unconditionally once transcription has run.
// A transcript rejected by the noise policy short-circuits before the
// generator is ever consulted.
func (t *Tutor) AskVoice(ctx context.Context, audio io.Reader, q Query) (*Response, error) {
	f, err := os.CreateTemp("", "tutor-voice-*.wav")
	if err != nil {
		return nil, fmt.Errorf("buffer upload: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := io.Copy(f, audio); err != nil {
		f.Close()
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close upload buffer: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read upload buffer: %w", err)
	}
	if len(data) == 0 {
		return &Response{Rejected: RejectedNoAudio}, nil
	}

	tr := t.transcriber.Transcribe(ctx, data)
	if tr.NoSpeech {
		return &Response{Rejected: RejectedNoSpeech}, nil
	}

	q.Question = tr.Text
	resp, err := t.Ask(ctx, q)
	if err != nil {
		return nil, err
	}
	resp.Transcript = tr.Text
	return resp, nil
}

// buildPrompt flattens retrieved passages and conversation history into the
// generation prompt. Passages stay in relevance order.
func buildPrompt(passages []interfaces.Passage, turns []store.Turn, question string, tag lang.Tag) string {
	var b strings.Builder
	b.WriteString("You are a helpful AI tutor. Answer the question based only on the context below.\n")
	fmt.Fprintf(&b, "Answer in %s.\n\n", tag.Name())

	b.WriteString("Context:\n")
	if len(passages) == 0 {
		b.WriteString("(no relevant material found)\n")
	}
	for _, p := range passages {
		b.WriteString(p.Content)
		b.WriteString("\n\n")
	}

	if len(turns) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range turns {
			if turn.Role == store.RoleUser {
				b.WriteString("Student: ")
			} else {
				b.WriteString("Tutor: ")
			}
			b.WriteString(turn.Content)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	b.WriteString("Question:\n")
	b.WriteString(question)
	return b.String()
}
