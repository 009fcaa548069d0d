package speech

import (
	"context"
	"log"
	"strings"

	"github.com/jacky-htg/ai-tutor/internal/lang"
	"github.com/jacky-htg/ai-tutor/libs/interfaces"
)

// maxChunkRunes bounds the text sent to the engine in one call for languages
// in the chunking set. Long Tamil/Hindi inputs are known to hit engine-side
// timeouts.
const maxChunkRunes = 180

var chunkedLanguages = map[lang.Tag]bool{
	lang.Tamil: true,
	lang.Hindi: true,
}

// Synthesizer wraps a TTS vendor with the local chunking policy. Synthesis is
// best effort: every failure path returns nil audio, never an error.
type Synthesizer struct {
	tts      interfaces.TTS
	maxRunes int
}

func NewSynthesizer(tts interfaces.TTS) *Synthesizer {
	return &Synthesizer{tts: tts, maxRunes: maxChunkRunes}
}

// Synthesize converts text to audio bytes, or nil when the text is blank or
// the engine fails. For languages in the chunking set the text is split at
// word boundaries and the per-chunk audio is concatenated in order.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, tag lang.Tag) []byte {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if !chunkedLanguages[tag] {
		audio, err := s.tts.Speak(ctx, text, string(tag))
		if err != nil {
			log.Printf("tts speak (%s): %v", tag, err)
			return nil
		}
		return audio
	}

	var out []byte
	for _, part := range SplitAtWords(text, s.maxRunes) {
		audio, err := s.tts.Speak(ctx, part, string(tag))
		if err != nil {
			log.Printf("tts speak chunk (%s): %v", tag, err)
			return nil
		}
		out = append(out, audio...)
	}
	return out
}

// SplitAtWords splits text into chunks of at most max runes, breaking only at
// word boundaries. A single word longer than max becomes its own chunk rather
// than being split mid-word.
func SplitAtWords(text string, max int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var cur strings.Builder
	curRunes := 0
	for _, w := range words {
		wRunes := len([]rune(w))
		if curRunes > 0 && curRunes+1+wRunes > max {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curRunes = 0
		}
		if curRunes > 0 {
			cur.WriteByte(' ')
			curRunes++
		}
		cur.WriteString(w)
		curRunes += wRunes
	}
	if curRunes > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
