package lang

import (
	"errors"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/jacky-htg/ai-tutor/libs/interfaces"
)

type linguaDetector struct {
	det lingua.LanguageDetector
}

// NewLinguaDetector builds a statistical detector restricted to the supported
// languages. Restricting the candidate set keeps the detector from answering
// with tags the rest of the pipeline cannot act on. The model is loaded once
// at process start and shared; detection itself is read-only.
func NewLinguaDetector() interfaces.Detector {
	det := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Tamil, lingua.Hindi, lingua.Spanish).
		Build()
	return &linguaDetector{det: det}
}

func (d *linguaDetector) Detect(text string) (string, error) {
	language, ok := d.det.DetectLanguageOf(text)
	if !ok {
		return "", errors.New("language not recognized")
	}
	return strings.ToLower(language.IsoCode639_1().String()), nil
}
