package generate

import (
	"fmt"
	"strings"
)

// promptContract describes the deck format to the model in the same terms
// the validator enforces. Kept as one literal so prompt drift is reviewable
// in a single place.
const promptContract = `Produce a slide deck as a single YAML document, nothing else.

Top level fields: title, author, date and slides (a sequence).
Every slide has layoutType, style and content. Optional title and subtitle
blocks have fields visible (boolean) and text.

style is one of: black, white.

layoutType and the required content fields:
- title-slide, section-break: no content required
- text-left, text-center: content.text (paragraphs separated by blank lines)
- image-full: content.image, optional content.caption
- image-1: content.image
- image-horizontal-2: content.image1, content.image2
- image-2x2: content.image1 .. content.image4
- image-text-horizontal, image-text-vertical: content.image and content.text
- list, num-list: content.items (sequence of strings)
- card-2: content.cards with exactly 2 entries, card-3 with exactly 3,
  each card needs title and description, image is optional
- timeline: content.events, each event needs title and description,
  time is optional

Image fields are file paths relative to the deck, use plausible names like
assets/diagram.png. Keep list items short and factual.`

// request carries everything the user asked for on the command line.
type request struct {
	topic  string
	slides int
	theme  string
}

// buildPrompt assembles the generation request. Problems from a previous
// rejected attempt are appended so the model can correct them.
func buildPrompt(req request, problems []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a presentation about: %s\n", req.topic)
	if req.slides > 0 {
		fmt.Fprintf(&b, "The deck must contain about %d slides.\n", req.slides)
	}
	if req.theme != "" {
		fmt.Fprintf(&b, "Use style %q on every slide.\n", req.theme)
	}
	b.WriteString("Start with a title-slide, vary the layouts, end with a section-break.\n\n")
	b.WriteString(promptContract)

	if len(problems) > 0 {
		b.WriteString("\n\nYour previous attempt was rejected with these problems, fix all of them:\n")
		for _, p := range problems {
			b.WriteString("- ")
			b.WriteString(p)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// extractYAML strips markdown code fences the model tends to wrap its
// answer in.
func extractYAML(text string) string {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		// drop the language tag on the fence line
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		}
		if end := strings.LastIndex(text, "```"); end >= 0 {
			text = text[:end]
		}
	}
	return strings.TrimSpace(text)
}
