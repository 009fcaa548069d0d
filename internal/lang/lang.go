package lang

import (
	"strings"
	"unicode"

	"github.com/jacky-htg/ai-tutor/libs/interfaces"
)

// Tag is a supported language tag. The pipeline never carries text without
// one; anything unrecognized resolves to Fallback.
type Tag string

const (
	English Tag = "en"
	Tamil   Tag = "ta"
	Hindi   Tag = "hi"
	Spanish Tag = "es"

	// Fallback is the tag used when nothing else can be resolved.
	Fallback = English
)

// Parse returns the Tag for a caller-supplied language string, or "" when
// the value is empty or not a supported tag.
func Parse(s string) Tag {
	switch Tag(strings.ToLower(strings.TrimSpace(s))) {
	case English:
		return English
	case Tamil:
		return Tamil
	case Hindi:
		return Hindi
	case Spanish:
		return Spanish
	}
	return ""
}

// Name returns the English display name, used in generation and translation
// prompts.
func (t Tag) Name() string {
	switch t {
	case Tamil:
		return "Tamil"
	case Hindi:
		return "Hindi"
	case Spanish:
		return "Spanish"
	default:
		return "English"
	}
}

// minWords is the threshold below which statistical detection is skipped;
// short strings are biased toward mis-classification.
const minWords = 3

// scriptOrder fixes the evaluation order of script and keyword rules so
// classification is deterministic when rules for several languages match.
var scriptOrder = []Tag{Tamil, Hindi, Spanish}

var scripts = map[Tag]*unicode.RangeTable{
	Tamil: unicode.Tamil,
	Hindi: unicode.Devanagari,
}

// keywords are romanized words characteristic enough to short-circuit
// detection. Matched whole-word, case-folded.
var keywords = map[Tag][]string{
	Tamil:   {"vanakkam", "epdi", "enna", "illa", "romba", "seri"},
	Hindi:   {"namaste", "kaise", "kya", "nahi", "acha", "shukriya"},
	Spanish: {"hola", "gracias", "cómo", "qué", "señor", "usted"},
}

// Classifier maps raw text to a supported language tag. It is deterministic,
// side-effect free, and never fails: cheap script and keyword heuristics run
// first, then a statistical detector, then the fallback tag.
type Classifier struct {
	detector interfaces.Detector
}

// NewClassifier builds a Classifier. detector may be nil, in which case the
// statistical step is skipped and ambiguous text resolves to Fallback.
func NewClassifier(detector interfaces.Detector) *Classifier {
	return &Classifier{detector: detector}
}

// Classify returns the language tag for text. It always returns a valid tag.
func (c *Classifier) Classify(text string) Tag {
	for _, tag := range scriptOrder {
		rt, ok := scripts[tag]
		if !ok {
			continue
		}
		for _, r := range text {
			if unicode.Is(rt, r) {
				return tag
			}
		}
	}

	words := strings.Fields(strings.ToLower(text))
	for i, w := range words {
		words[i] = strings.Trim(w, ".,!?;:\"'()")
	}
	for _, tag := range scriptOrder {
		for _, kw := range keywords[tag] {
			for _, w := range words {
				if w == kw {
					return tag
				}
			}
		}
	}

	if len(words) < minWords {
		return Fallback
	}

	if c.detector == nil {
		return Fallback
	}
	code, err := c.detector.Detect(text)
	if err != nil {
		return Fallback
	}
	if tag := Parse(code); tag != "" {
		return tag
	}
	return Fallback
}
