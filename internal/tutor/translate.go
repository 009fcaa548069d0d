package tutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/jacky-htg/ai-tutor/internal/lang"
)

// Translate renders text into the target language using the same generation
// model that answers questions. Unlike synthesis, translation failure is a
// hard failure of the enclosing request.
func (t *Tutor) Translate(ctx context.Context, text string, target lang.Tag) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following text to %s. Return only the translated text, with no commentary.\n\n%s",
		target.Name(), text)
	out, err := t.llm.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
