package compile

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"slidec/common"
	"slidec/deck"
)

// Entrance animation of every slide is staggered per item: first item starts
// at the base delay, every following one a fixed step later, in source order
// regardless of visual arrangement.
const (
	animationBaseDelay = 0.3
	animationStepDelay = 0.1
)

// Fragment is the rendered markup of one slide plus the per-slide density
// overrides, when the scaler produced any. Fragments are owned by the
// document assembler for the duration of one build.
type Fragment struct {
	Index   int // 0-based position in the deck
	Layout  common.LayoutType
	Style   common.StyleTheme
	Markup  string
	Density *Metrics
}

// ElementID returns the document id of the slide element, 1-based like
// diagnostics.
func (f *Fragment) ElementID() string {
	return fmt.Sprintf("slide-%d", f.Index+1)
}

// AssetResolver maps a slide image reference to the src attribute emitted
// into the document.
type AssetResolver func(ref string) string

// DefaultAssetResolver places every reference under the sibling assets
// directory by base name.
func DefaultAssetResolver(ref string) string {
	return path.Join("assets", filepath.Base(filepath.ToSlash(ref)))
}

// Renderer turns validated slides into markup fragments. Dispatch is a fixed
// switch over the closed layout enum - an unrecognized tag can only reach it
// when validation was bypassed and renders as a visible placeholder instead
// of failing the build.
type Renderer struct {
	resolve AssetResolver
	log     *zap.Logger
}

func NewRenderer(resolve AssetResolver, log *zap.Logger) *Renderer {
	if resolve == nil {
		resolve = DefaultAssetResolver
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{resolve: resolve, log: log.Named("render")}
}

// Render produces the fragment for one slide.
func (r *Renderer) Render(idx int, s *deck.Slide) (*Fragment, error) {
	doc := etree.NewDocument()

	sec := doc.CreateElement("section")
	sec.CreateAttr("id", fmt.Sprintf("slide-%d", idx+1))
	sec.CreateAttr("class", slideClass(s))
	sec.CreateAttr("data-layout", string(s.Layout))

	frag := &Fragment{Index: idx, Layout: s.Layout, Style: s.Style}

	switch s.Layout {
	case common.LayoutTypeTitleSlide:
		r.renderTitleSlide(sec, s, "h1")
	case common.LayoutTypeSectionBreak:
		r.renderTitleSlide(sec, s, "h2")
	case common.LayoutTypeTextLeft, common.LayoutTypeTextCenter:
		r.renderHeadings(sec, s)
		r.renderText(sec, s)
	case common.LayoutTypeImageFull:
		r.renderImageFull(sec, s)
	case common.LayoutTypeImage1:
		r.renderHeadings(sec, s)
		r.renderImageGrid(sec, s, 1)
	case common.LayoutTypeImageHorizontal2:
		r.renderHeadings(sec, s)
		r.renderImageGrid(sec, s, 2)
	case common.LayoutTypeImage2x2:
		r.renderHeadings(sec, s)
		r.renderImageGrid(sec, s, 4)
	case common.LayoutTypeImageTextHorizontal, common.LayoutTypeImageTextVertical:
		r.renderHeadings(sec, s)
		r.renderImageText(sec, s)
	case common.LayoutTypeList, common.LayoutTypeNumList:
		r.renderHeadings(sec, s)
		m := r.renderItems(sec, s)
		if m.RequiresScaling {
			frag.Density = &m
		}
	case common.LayoutTypeCard2, common.LayoutTypeCard3:
		r.renderHeadings(sec, s)
		r.renderCards(sec, s)
	case common.LayoutTypeTimeline:
		r.renderHeadings(sec, s)
		r.renderTimeline(sec, s)
	default:
		// graceful degradation for unvalidated input
		r.log.Warn("Rendering placeholder for unknown layout", zap.String("layout", string(s.Layout)), zap.Int("slide", idx+1))
		r.renderPlaceholder(sec, s)
	}

	doc.WriteSettings = etree.WriteSettings{CanonicalText: true, CanonicalAttrVal: true}
	doc.Indent(2)
	markup, err := doc.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("unable to serialize slide %d: %w", idx+1, err)
	}
	frag.Markup = markup
	return frag, nil
}

func slideClass(s *deck.Slide) string {
	classes := []string{"slide", "layout-" + string(s.Layout), "theme-" + string(s.Style)}
	if !s.Layout.IsValid() {
		classes = []string{"slide", "layout-unknown", "theme-" + string(s.Style)}
	}
	return strings.Join(classes, " ")
}

func itemDelay(i int) string {
	return fmt.Sprintf("animation-delay: %.2fs", animationBaseDelay+float64(i)*animationStepDelay)
}

// renderHeadings emits the shared title/subtitle block. Hidden blocks are
// dropped from the markup entirely, not just visually.
func (r *Renderer) renderHeadings(sec *etree.Element, s *deck.Slide) {
	if !s.HasTitle() && (s.Subtitle == nil || !s.Subtitle.Visible || len(s.Subtitle.Text) == 0) {
		return
	}
	head := sec.CreateElement("header")
	head.CreateAttr("class", "slide-head")
	if s.HasTitle() {
		h := head.CreateElement("h2")
		h.CreateAttr("class", "slide-title")
		h.SetText(s.Title.Text)
	}
	if s.Subtitle != nil && s.Subtitle.Visible && len(s.Subtitle.Text) > 0 {
		h := head.CreateElement("h3")
		h.CreateAttr("class", "slide-subtitle")
		h.SetText(s.Subtitle.Text)
	}
}

func (r *Renderer) renderTitleSlide(sec *etree.Element, s *deck.Slide, tag string) {
	wrap := sec.CreateElement("div")
	wrap.CreateAttr("class", "title-block")
	if s.Title != nil && s.Title.Visible && len(s.Title.Text) > 0 {
		h := wrap.CreateElement(tag)
		h.CreateAttr("class", "slide-title")
		h.SetText(s.Title.Text)
	}
	if s.Subtitle != nil && s.Subtitle.Visible && len(s.Subtitle.Text) > 0 {
		h := wrap.CreateElement("p")
		h.CreateAttr("class", "slide-subtitle")
		h.SetText(s.Subtitle.Text)
	}
}

func (r *Renderer) renderText(sec *etree.Element, s *deck.Slide) {
	body := sec.CreateElement("div")
	body.CreateAttr("class", "text-body")
	for i, para := range strings.Split(s.Content.Text, "\n\n") {
		if para = strings.TrimSpace(para); len(para) == 0 {
			continue
		}
		p := body.CreateElement("p")
		p.CreateAttr("style", itemDelay(i))
		p.SetText(para)
	}
}

func (r *Renderer) addImage(parent *etree.Element, ref, class string, delay int) {
	fig := parent.CreateElement("figure")
	fig.CreateAttr("class", class)
	if delay >= 0 {
		fig.CreateAttr("style", itemDelay(delay))
	}
	img := fig.CreateElement("img")
	img.CreateAttr("src", r.resolve(ref))
	img.CreateAttr("alt", "")
	img.CreateAttr("loading", "lazy")
}

func (r *Renderer) renderImageFull(sec *etree.Element, s *deck.Slide) {
	r.addImage(sec, s.Content.Image, "image-backdrop", -1)
	// headings overlay the image on this layout
	r.renderHeadings(sec, s)
	if len(s.Content.Caption) > 0 {
		cap := sec.CreateElement("p")
		cap.CreateAttr("class", "image-caption")
		cap.SetText(s.Content.Caption)
	}
}

func (r *Renderer) renderImageGrid(sec *etree.Element, s *deck.Slide, n int) {
	grid := sec.CreateElement("div")
	grid.CreateAttr("class", fmt.Sprintf("image-grid image-grid-%d", n))
	if n == 1 {
		r.addImage(grid, s.Content.Image, "image-slot", 0)
		return
	}
	for i := 0; i < n; i++ {
		r.addImage(grid, s.Content.NumberedImage(i+1), "image-slot", i)
	}
}

func (r *Renderer) renderImageText(sec *etree.Element, s *deck.Slide) {
	split := sec.CreateElement("div")
	split.CreateAttr("class", "image-text")
	// image side is static, only the text part animates
	r.addImage(split, s.Content.Image, "image-side", -1)
	text := split.CreateElement("div")
	text.CreateAttr("class", "text-side")
	for i, para := range strings.Split(s.Content.Text, "\n\n") {
		if para = strings.TrimSpace(para); len(para) == 0 {
			continue
		}
		p := text.CreateElement("p")
		p.CreateAttr("style", itemDelay(i))
		p.SetText(para)
	}
}

// renderItems emits the list/num-list body and runs the density scaler
// against the build-time band. Items switch to a two column arrangement at
// MultiColumnThreshold; CSS columns preserve DOM order, so sequential delays
// keep items appearing in source order.
func (r *Renderer) renderItems(sec *etree.Element, s *deck.Slide) Metrics {
	m := Measure(s.Content.Items, BandFor(s.HasTitle()))

	tag := "ul"
	if s.Layout == common.LayoutTypeNumList {
		tag = "ol"
	}
	list := sec.CreateElement(tag)
	class := "items"
	if m.MultiColumn {
		class += " two-column"
	}
	list.CreateAttr("class", class)

	for i, item := range s.Content.Items {
		li := list.CreateElement("li")
		li.CreateAttr("class", "item")
		li.CreateAttr("style", itemDelay(i))
		li.SetText(item)
	}
	return m
}

// renderCards emits exactly the cardinality fixed by the layout name,
// silently substituting an empty card for a missing slot - wrong cardinality
// is expected to have been rejected by validation already.
func (r *Renderer) renderCards(sec *etree.Element, s *deck.Slide) {
	n := s.Layout.CardCount()
	wrap := sec.CreateElement("div")
	wrap.CreateAttr("class", fmt.Sprintf("cards cards-%d", n))

	for i := 0; i < n; i++ {
		var card deck.Card
		if i < len(s.Content.Cards) {
			card = s.Content.Cards[i]
		}
		div := wrap.CreateElement("div")
		div.CreateAttr("class", "card")
		div.CreateAttr("style", itemDelay(i))
		if len(card.Image) > 0 {
			r.addImage(div, card.Image, "card-image", -1)
		}
		h := div.CreateElement("h3")
		h.CreateAttr("class", "card-title")
		h.SetText(card.Title)
		p := div.CreateElement("p")
		p.CreateAttr("class", "card-description")
		p.SetText(card.Description)
	}
}

func (r *Renderer) renderTimeline(sec *etree.Element, s *deck.Slide) {
	strip := sec.CreateElement("div")
	strip.CreateAttr("class", "timeline-strip")
	track := strip.CreateElement("div")
	track.CreateAttr("class", "timeline-track")

	for i := range s.Content.Events {
		e := &s.Content.Events[i]
		div := track.CreateElement("div")
		div.CreateAttr("class", "timeline-event")
		div.CreateAttr("style", itemDelay(i))
		if len(e.Time) > 0 {
			t := div.CreateElement("span")
			t.CreateAttr("class", "event-time")
			t.SetText(e.Time)
		}
		h := div.CreateElement("h3")
		h.CreateAttr("class", "event-title")
		h.SetText(e.Title)
		p := div.CreateElement("p")
		p.CreateAttr("class", "event-description")
		p.SetText(e.Description)
	}
}

func (r *Renderer) renderPlaceholder(sec *etree.Element, s *deck.Slide) {
	div := sec.CreateElement("div")
	div.CreateAttr("class", "placeholder")
	h := div.CreateElement("h2")
	h.SetText("Unsupported layout")
	p := div.CreateElement("p")
	p.SetText(fmt.Sprintf("This slide uses layout %q which this viewer cannot display.", string(s.Layout)))
}
