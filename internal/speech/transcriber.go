package speech

import (
	"context"
	"log"
	"strings"

	"github.com/jacky-htg/ai-tutor/libs/interfaces"
)

// Transcript is the outcome of one transcription: either usable text or an
// explicit no-speech marker. Engine failures never escape as errors; they
// collapse into NoSpeech so the orchestrator's branching stays exhaustive.
type Transcript struct {
	Text     string
	NoSpeech bool
}

// noiseLabels are transcription outputs that mean the engine heard something
// but no speech. Compared after trimming and case-folding.
var noiseLabels = map[string]struct{}{
	"":                       {},
	"(background noise)":     {},
	"(traffic noise)":        {},
	"(overlapping dialogue)": {},
	"(music)":                {},
	"(noise)":                {},
	"(silence)":              {},
	"(inaudible)":            {},
}

// Transcriber wraps an STT vendor with the local accept/reject policy.
type Transcriber struct {
	stt interfaces.STT
}

func NewTranscriber(stt interfaces.STT) *Transcriber {
	return &Transcriber{stt: stt}
}

// Transcribe converts audio to a Transcript. Known noise labels and
// transcripts shorter than two words are rejected as no-speech.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) Transcript {
	raw, err := t.stt.Recognize(ctx, audio)
	if err != nil {
		log.Printf("stt recognize: %v", err)
		return Transcript{NoSpeech: true}
	}
	text := strings.TrimSpace(raw)
	if _, ok := noiseLabels[strings.ToLower(text)]; ok {
		return Transcript{NoSpeech: true}
	}
	if len(strings.Fields(text)) < 2 {
		return Transcript{NoSpeech: true}
	}
	return Transcript{Text: text}
}
