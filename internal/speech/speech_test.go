package speech

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jacky-htg/ai-tutor/internal/lang"
)

type stubSTT struct {
	text string
	err  error
}

func (s *stubSTT) Recognize(ctx context.Context, audio []byte) (string, error) {
	return s.text, s.err
}

// fakeTTS echoes the text back as audio bytes and records every call.
type fakeTTS struct {
	calls []string
	err   error
}

func (f *fakeTTS) Speak(ctx context.Context, text, language string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, text)
	return []byte(text), nil
}

func TestTranscribeRejectsNoiseLabels(t *testing.T) {
	labels := []string{
		"", "(background noise)", "(traffic noise)", "(overlapping dialogue)",
		"(music)", "(noise)", "(silence)", "(inaudible)",
		"  (Background Noise)  ", // trims and case-folds
	}
	for _, label := range labels {
		tr := NewTranscriber(&stubSTT{text: label}).Transcribe(context.Background(), []byte("audio"))
		if !tr.NoSpeech {
			t.Errorf("transcript %q: expected no-speech", label)
		}
	}
}

func TestTranscribeRejectsSingleWord(t *testing.T) {
	tr := NewTranscriber(&stubSTT{text: "hello"}).Transcribe(context.Background(), []byte("audio"))
	if !tr.NoSpeech {
		t.Fatalf("single-word transcript should be rejected as noise")
	}
}

func TestTranscribeAcceptsSpeech(t *testing.T) {
	tr := NewTranscriber(&stubSTT{text: "  hello there  "}).Transcribe(context.Background(), []byte("audio"))
	if tr.NoSpeech {
		t.Fatalf("expected usable transcript")
	}
	if tr.Text != "hello there" {
		t.Fatalf("got %q, want trimmed transcript", tr.Text)
	}
}

func TestTranscribeMapsEngineFailureToNoSpeech(t *testing.T) {
	tr := NewTranscriber(&stubSTT{err: errors.New("engine down")}).Transcribe(context.Background(), []byte("audio"))
	if !tr.NoSpeech {
		t.Fatalf("engine failure should map to no-speech, not an error")
	}
}

func TestSplitAtWords(t *testing.T) {
	text := strings.Repeat("word ", 100) + "final"
	chunks := SplitAtWords(text, 40)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len([]rune(c)) > 40 {
			t.Errorf("chunk %q exceeds budget", c)
		}
		for _, w := range strings.Fields(c) {
			if w != "word" && w != "final" {
				t.Errorf("chunk split mid-word: %q", w)
			}
		}
	}
	// No content is lost or reordered.
	joined := strings.Join(chunks, " ")
	if joined != strings.Join(strings.Fields(text), " ") {
		t.Fatalf("rejoined chunks differ from input")
	}
}

func TestSplitAtWordsOversizedWord(t *testing.T) {
	chunks := SplitAtWords("short "+strings.Repeat("x", 50)+" tail", 10)
	found := false
	for _, c := range chunks {
		if c == strings.Repeat("x", 50) {
			found = true
		}
	}
	if !found {
		t.Fatalf("oversized word must become its own chunk, got %q", chunks)
	}
}

func TestSynthesizeChunksForTamil(t *testing.T) {
	tts := &fakeTTS{}
	s := NewSynthesizer(tts)
	long := strings.Repeat("romba nandri ", 40)

	chunked := s.Synthesize(context.Background(), long, lang.Tamil)
	if len(tts.calls) < 2 {
		t.Fatalf("expected chunked synthesis, got %d calls", len(tts.calls))
	}

	full := s.Synthesize(context.Background(), long, lang.English)
	// Content-wise the concatenated chunks equal one full synthesis.
	strip := func(b []byte) string { return strings.ReplaceAll(string(b), " ", "") }
	if strip(chunked) != strip(full) {
		t.Fatalf("chunked output differs from full synthesis")
	}
}

func TestSynthesizeSingleCallForEnglish(t *testing.T) {
	tts := &fakeTTS{}
	s := NewSynthesizer(tts)
	long := strings.Repeat("thank you very much ", 40)
	if out := s.Synthesize(context.Background(), long, lang.English); out == nil {
		t.Fatalf("expected audio")
	}
	if len(tts.calls) != 1 {
		t.Fatalf("english text must synthesize in one call, got %d", len(tts.calls))
	}
}

func TestSynthesizeBlankAndFailure(t *testing.T) {
	if out := NewSynthesizer(&fakeTTS{}).Synthesize(context.Background(), "   ", lang.English); out != nil {
		t.Fatalf("blank input must synthesize to nil")
	}
	failing := &fakeTTS{err: errors.New("timeout")}
	if out := NewSynthesizer(failing).Synthesize(context.Background(), "hello there", lang.English); out != nil {
		t.Fatalf("engine failure must downgrade to nil audio")
	}
}
