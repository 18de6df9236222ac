package generate

import (
	"strings"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
)

// Trimmer shortens overlong list items on sentence boundaries. Cutting at a
// rune count mid-sentence reads badly on a slide, so whole trailing
// sentences are dropped instead.
type Trimmer struct {
	tokenizer *sentences.DefaultSentenceTokenizer
	maxRunes  int
	log       *zap.Logger
}

func NewTrimmer(maxRunes int, log *zap.Logger) (*Trimmer, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return &Trimmer{tokenizer: tokenizer, maxRunes: maxRunes, log: log}, nil
}

// TrimItem returns the item shortened to fit the rune limit. When even the
// first sentence is too long the item is returned unchanged, dropping it
// entirely would lose content.
func (t *Trimmer) TrimItem(item string) string {
	if t.maxRunes <= 0 || utf8.RuneCountInString(item) <= t.maxRunes {
		return item
	}

	var b strings.Builder
	for _, s := range t.tokenizer.Tokenize(item) {
		if b.Len() > 0 && utf8.RuneCountInString(b.String()+s.Text) > t.maxRunes {
			break
		}
		b.WriteString(s.Text)
	}

	trimmed := strings.TrimSpace(b.String())
	if trimmed == "" {
		return item
	}
	if trimmed != item {
		t.log.Debug("Trimmed overlong item",
			zap.Int("was", utf8.RuneCountInString(item)), zap.Int("now", utf8.RuneCountInString(trimmed)))
	}
	return trimmed
}
