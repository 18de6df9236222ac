package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

const validDraft = `title: Stub Deck
slides:
  - layoutType: title-slide
    style: black
`

const invalidDraft = `title: Bad Deck
slides:
  - layoutType: spiral
    style: black
`

type stubReply struct {
	text string
	err  error
}

// stubModel replays canned replies and records every prompt it was given.
// The last reply repeats when the loop asks for more.
type stubModel struct {
	replies []stubReply
	prompts []string
}

func (m *stubModel) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	i := len(m.prompts) - 1
	if i >= len(m.replies) {
		i = len(m.replies) - 1
	}
	return m.replies[i].text, m.replies[i].err
}

func (m *stubModel) Name() string { return "stub" }

func TestDraftFirstAttemptAccepted(t *testing.T) {
	model := &stubModel{replies: []stubReply{{text: validDraft}}}

	text, attempts, err := draft(context.Background(), model, request{topic: "testing", slides: 5}, 3, 0, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if !strings.Contains(text, "Stub Deck") {
		t.Errorf("unexpected draft text:\n%s", text)
	}
	if len(model.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(model.prompts))
	}
	if !strings.Contains(model.prompts[0], "testing") || !strings.Contains(model.prompts[0], "about 5 slides") {
		t.Errorf("prompt is missing topic or slide count:\n%s", model.prompts[0])
	}
}

func TestDraftRetriesWithFeedback(t *testing.T) {
	model := &stubModel{replies: []stubReply{{text: invalidDraft}, {text: validDraft}}}

	text, attempts, err := draft(context.Background(), model, request{topic: "testing"}, 3, 0, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if !strings.Contains(text, "Stub Deck") {
		t.Errorf("unexpected accepted draft:\n%s", text)
	}

	if len(model.prompts) != 2 {
		t.Fatalf("expected 2 prompts, got %d", len(model.prompts))
	}
	if strings.Contains(model.prompts[0], "rejected") {
		t.Error("first prompt must not carry rejection feedback")
	}
	second := model.prompts[1]
	if !strings.Contains(second, "rejected") || !strings.Contains(second, "spiral") {
		t.Errorf("second prompt is missing the validation feedback:\n%s", second)
	}
}

func TestDraftExhaustsAttempts(t *testing.T) {
	model := &stubModel{replies: []stubReply{{text: invalidDraft}}}

	_, attempts, err := draft(context.Background(), model, request{topic: "testing"}, 3, 0, zaptest.NewLogger(t))
	if err == nil {
		t.Fatal("expected an error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if len(model.prompts) != 3 {
		t.Errorf("expected 3 model calls, got %d", len(model.prompts))
	}
}

func TestDraftModelFailure(t *testing.T) {
	want := errors.New("quota exceeded")
	model := &stubModel{replies: []stubReply{{err: want}}}

	_, _, err := draft(context.Background(), model, request{topic: "testing"}, 3, 0, zaptest.NewLogger(t))
	if !errors.Is(err, want) {
		t.Errorf("expected model error to propagate, got %v", err)
	}
}

func TestDraftCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	model := &stubModel{replies: []stubReply{{text: validDraft}}}
	_, _, err := draft(ctx, model, request{topic: "testing"}, 3, 0, zaptest.NewLogger(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(model.prompts) != 0 {
		t.Errorf("model must not be called after cancellation, got %d calls", len(model.prompts))
	}
}

func TestExtractYAML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "title: Deck\n", "title: Deck"},
		{"fenced", "```yaml\ntitle: Deck\n```", "title: Deck"},
		{"bare fence", "```\ntitle: Deck\n```", "title: Deck"},
		{"chatter around fence", "Here you go:\n```yaml\ntitle: Deck\n```\nHope that helps!", "title: Deck"},
		{"unclosed fence", "```yaml\ntitle: Deck", "title: Deck"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := extractYAML(c.in); got != c.want {
				t.Errorf("extractYAML(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt(request{topic: "the history of tea", slides: 8}, nil)
	if !strings.Contains(p, "the history of tea") {
		t.Error("prompt is missing the topic")
	}
	if !strings.Contains(p, "about 8 slides") {
		t.Error("prompt is missing the slide count")
	}
	if !strings.Contains(p, "layoutType") || !strings.Contains(p, "card-2") {
		t.Error("prompt is missing the format contract")
	}
	if strings.Contains(p, "rejected") {
		t.Error("prompt without problems must not mention rejection")
	}

	p = buildPrompt(request{topic: "tea"}, []string{"slide 2 is broken"})
	if strings.Contains(p, "about 0 slides") {
		t.Error("zero slide count must not be mentioned")
	}
	if !strings.Contains(p, "slide 2 is broken") {
		t.Error("prompt is missing the feedback problem")
	}

	p = buildPrompt(request{topic: "tea", theme: "white"}, nil)
	if !strings.Contains(p, `style "white"`) {
		t.Error("prompt is missing the theme constraint")
	}
}

func TestTrimItem(t *testing.T) {
	trimmer, err := NewTrimmer(40, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unable to create trimmer: %v", err)
	}

	short := "Fits the slide just fine."
	if got := trimmer.TrimItem(short); got != short {
		t.Errorf("short item changed: %q", got)
	}

	long := "Alpha beats beta. Gamma beats delta. Epsilon beats zeta."
	got := trimmer.TrimItem(long)
	if !strings.HasPrefix(got, "Alpha beats beta.") {
		t.Errorf("first sentence lost: %q", got)
	}
	if strings.Contains(got, "Epsilon") {
		t.Errorf("trailing sentence survived the trim: %q", got)
	}
	if got == long {
		t.Error("overlong item was not trimmed")
	}

	oneLongSentence := "This single sentence runs well past the limit without any boundary to cut at."
	if got := trimmer.TrimItem(oneLongSentence); got != oneLongSentence {
		t.Errorf("single overlong sentence must survive intact, got %q", got)
	}

	unlimited, err := NewTrimmer(0, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unable to create trimmer: %v", err)
	}
	if got := unlimited.TrimItem(long); got != long {
		t.Errorf("zero limit must disable trimming, got %q", got)
	}
}
