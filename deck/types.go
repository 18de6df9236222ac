// Package deck defines the presentation input model and its schema
// validation. A deck is a YAML document with top-level metadata and an ordered
// sequence of slides, each tagged with a layout variant from the closed set in
// slidec/common. The model is read-only after Parse - the compiler never
// mutates it.
package deck

import (
	"strings"

	"gopkg.in/yaml.v3"

	"slidec/common"
)

// TextBlock is a title or subtitle line which can be present in the document
// but hidden on the slide.
type TextBlock struct {
	Visible bool   `yaml:"visible"`
	Text    string `yaml:"text"`
}

// Card is one tile of the card-2/card-3 layouts.
type Card struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image,omitempty"`
}

// Event is one entry of the timeline layout.
type Event struct {
	Time        string `yaml:"time,omitempty"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Content is the variant-specific payload of a slide. Which fields are
// required is decided by the slide layout - see Contract.
type Content struct {
	Text    string   `yaml:"text,omitempty"`
	Items   []string `yaml:"items,omitempty"`
	Image   string   `yaml:"image,omitempty"`
	Image1  string   `yaml:"image1,omitempty"`
	Image2  string   `yaml:"image2,omitempty"`
	Image3  string   `yaml:"image3,omitempty"`
	Image4  string   `yaml:"image4,omitempty"`
	Caption string   `yaml:"caption,omitempty"`
	Cards   []Card   `yaml:"cards,omitempty"`
	Events  []Event  `yaml:"events,omitempty"`
}

// NumberedImage returns content of the image1..image4 field, 1-based.
func (c *Content) NumberedImage(n int) string {
	switch n {
	case 1:
		return c.Image1
	case 2:
		return c.Image2
	case 3:
		return c.Image3
	case 4:
		return c.Image4
	default:
		return ""
	}
}

// Slide is one content unit of a presentation.
type Slide struct {
	Layout   common.LayoutType `yaml:"layoutType"`
	Style    common.StyleTheme `yaml:"style"`
	Title    *TextBlock        `yaml:"title,omitempty"`
	Subtitle *TextBlock        `yaml:"subtitle,omitempty"`
	Content  Content           `yaml:"content,omitempty"`
}

// HasTitle reports whether the slide reserves space for a visible title. Used
// by the density scaler to pick the available content band.
func (s *Slide) HasTitle() bool {
	return s.Title != nil && s.Title.Visible && len(s.Title.Text) > 0
}

// ImageRefs returns every image reference the slide carries, in field order.
// The compiler only emits these references, resolving and copying the files is
// the asset collaborator's job.
func (s *Slide) ImageRefs() []string {
	var refs []string
	add := func(r string) {
		if len(r) > 0 {
			refs = append(refs, r)
		}
	}
	add(s.Content.Image)
	for n := 1; n <= 4; n++ {
		add(s.Content.NumberedImage(n))
	}
	for i := range s.Content.Cards {
		add(s.Content.Cards[i].Image)
	}
	return refs
}

// Presentation is a parsed deck. Immutable once parsed - created once per
// build invocation from one input document.
type Presentation struct {
	Title  string  `yaml:"title"`
	Author string  `yaml:"author,omitempty"`
	Date   string  `yaml:"date,omitempty"`
	Slides []Slide `yaml:"slides"`
}

// EncodeYAML serializes the presentation back to its source form.
func (p *Presentation) EncodeYAML() (string, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ImageRefs returns image references of all slides in document order, without
// duplicates.
func (p *Presentation) ImageRefs() []string {
	seen := make(map[string]struct{})
	var refs []string
	for i := range p.Slides {
		for _, r := range p.Slides[i].ImageRefs() {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			refs = append(refs, r)
		}
	}
	return refs
}
