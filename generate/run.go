package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"slidec/common"
	"slidec/deck"
	"slidec/state"
)

// Run is the entry point of the generate command. It asks the model for a
// deck on the requested topic, validates every draft with the compiler's own
// checks and retries with feedback until the draft passes or attempts run
// out. The accepted deck is written as YAML ready for the build command.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("generate")
	cfg := &env.Cfg.Generator

	topic := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if topic == "" {
		return errors.New("no topic has been specified")
	}

	out := cmd.String("output")
	if out == "" {
		out = "deck.yaml"
	}
	if _, err := os.Stat(out); err == nil && !cmd.Bool("overwrite") {
		return fmt.Errorf("output file already exists: %s", out)
	}

	theme := cmd.String("theme")
	if theme != "" && !common.StyleTheme(theme).IsValid() {
		return fmt.Errorf("unknown theme %q, must be one of %v", theme, common.StyleThemeNames())
	}

	apiKey := string(cfg.APIKey)
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	modelName := cmd.String("model")
	if modelName == "" {
		modelName = cfg.Model
	}
	model, err := NewGeminiModel(ctx, apiKey, modelName)
	if err != nil {
		return err
	}

	req := request{topic: topic, slides: int(cmd.Int("slides")), theme: theme}
	text, attempts, err := draft(ctx, model, req, cfg.Attempts, cfg.BackoffSeconds, log)
	if err != nil {
		return err
	}

	if cfg.MaxItemRunes > 0 {
		text, err = trimDeck(text, cfg.MaxItemRunes, log)
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		return fmt.Errorf("unable to write deck: %w", err)
	}
	log.Info("Deck generated", zap.String("topic", topic), zap.String("file", out), zap.Int("attempts", attempts))

	if cfg.HistoryPath != "" {
		if err := record(ctx, cfg.HistoryPath, topic, model.Name(), attempts, text); err != nil {
			log.Warn("Unable to store generation history", zap.Error(err))
		}
	}
	return nil
}

// draft runs the generate/validate/retry loop. Every rejected attempt feeds
// its validation problems into the next prompt, backing off linearly between
// attempts.
func draft(ctx context.Context, model Model, req request, attempts, backoffSeconds int, log *zap.Logger) (string, int, error) {
	if attempts < 1 {
		attempts = 1
	}

	validator := deck.NewValidator(deck.NewContract(), log)

	var problems []string
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", attempt, err
		}

		log.Info("Requesting draft", zap.String("model", model.Name()), zap.Int("attempt", attempt))

		raw, err := model.Generate(ctx, buildPrompt(req, problems))
		if err != nil {
			return "", attempt, err
		}

		text := extractYAML(raw)
		problems = validate(validator, text)
		if len(problems) == 0 {
			return text, attempt, nil
		}

		log.Warn("Draft rejected", zap.Int("attempt", attempt), zap.Strings("problems", problems))

		if attempt < attempts && backoffSeconds > 0 {
			select {
			case <-ctx.Done():
				return "", attempt, ctx.Err()
			case <-time.After(time.Duration(backoffSeconds*attempt) * time.Second):
			}
		}
	}
	return "", attempts, fmt.Errorf("model did not produce a valid deck in %d attempt(s)", attempts)
}

// validate parses and checks a draft, returning problems in prompt-ready form.
func validate(validator *deck.Validator, text string) []string {
	p, err := deck.Parse(strings.NewReader(text), "draft")
	if err != nil {
		return []string{err.Error()}
	}

	violations := validator.Validate(p)
	problems := make([]string, 0, len(violations))
	for _, v := range violations {
		problems = append(problems, v.Error())
	}
	return problems
}

// trimDeck shortens overlong list items of an already validated draft and
// re-serializes it. Trimming never invalidates a deck, it only drops
// trailing sentences.
func trimDeck(text string, maxRunes int, log *zap.Logger) (string, error) {
	trimmer, err := NewTrimmer(maxRunes, log)
	if err != nil {
		return "", fmt.Errorf("unable to prepare trimmer: %w", err)
	}

	p, err := deck.Parse(strings.NewReader(text), "draft")
	if err != nil {
		return "", err
	}

	changed := false
	for i := range p.Slides {
		items := p.Slides[i].Content.Items
		for j, item := range items {
			if trimmed := trimmer.TrimItem(item); trimmed != item {
				items[j] = trimmed
				changed = true
			}
		}
	}
	if !changed {
		return text, nil
	}
	return p.EncodeYAML()
}

func record(ctx context.Context, path, topic, model string, attempts int, text string) error {
	h, err := OpenHistory(path)
	if err != nil {
		return err
	}
	defer h.Close()

	return h.Store(ctx, &Record{
		ID:       uuid.NewString(),
		Topic:    topic,
		Model:    model,
		Attempts: attempts,
		Deck:     text,
	})
}
