package deck

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"slidec/common"
)

// ViolationKind classifies schema violations, matching the per-file error
// taxonomy: structural failures cover the document shape, slide type failures
// cover unknown layout/style tags, content shape failures cover a known
// variant with the wrong payload.
type ViolationKind int

const (
	ViolationStructural ViolationKind = iota
	ViolationSlideType
	ViolationContentShape
)

func (k ViolationKind) String() string {
	switch k {
	case ViolationStructural:
		return "structural"
	case ViolationSlideType:
		return "slide-type"
	case ViolationContentShape:
		return "content-shape"
	default:
		return fmt.Sprintf("ViolationKind(%d)", int(k))
	}
}

// Violation is a single schema check failure. Slide is 1-based for
// diagnostics, 0 when the whole document is at fault.
type Violation struct {
	Kind    ViolationKind
	Slide   int
	Field   string
	Message string
}

func (v *Violation) Error() string {
	switch {
	case v.Slide == 0:
		return fmt.Sprintf("%s: %s", v.Kind, v.Message)
	case len(v.Field) > 0:
		return fmt.Sprintf("%s: slide %d, %s: %s", v.Kind, v.Slide, v.Field, v.Message)
	default:
		return fmt.Sprintf("%s: slide %d: %s", v.Kind, v.Slide, v.Message)
	}
}

// Violations is an ordered list of schema check failures. Empty list means
// the deck validated.
type Violations []*Violation

// Err folds violations into a single error, nil when there are none. There is
// no partial success - any violation fails the whole file.
func (vs Violations) Err() error {
	if len(vs) == 0 {
		return nil
	}
	errs := make([]error, 0, len(vs))
	for _, v := range vs {
		errs = append(errs, v)
	}
	return multierr.Combine(errs...)
}

// contentCheck verifies variant-specific payload of one slide.
type contentCheck func(idx int, s *Slide) Violations

// Contract is the fixed required-content table for all layout variants. It is
// built once and passed by reference wherever checks are needed, never
// mutated.
type Contract struct {
	checks map[common.LayoutType]contentCheck
}

// NewContract returns the variant contract table.
func NewContract() *Contract {
	return &Contract{checks: map[common.LayoutType]contentCheck{
		common.LayoutTypeTitleSlide:          checkNothing,
		common.LayoutTypeSectionBreak:        checkNothing,
		common.LayoutTypeTextLeft:            checkText,
		common.LayoutTypeTextCenter:          checkText,
		common.LayoutTypeImageFull:           checkImage,
		common.LayoutTypeImage1:              checkImage,
		common.LayoutTypeImageHorizontal2:    checkNumberedImages(2),
		common.LayoutTypeImage2x2:            checkNumberedImages(4),
		common.LayoutTypeImageTextHorizontal: checkImageText,
		common.LayoutTypeImageTextVertical:   checkImageText,
		common.LayoutTypeList:                checkItems,
		common.LayoutTypeNumList:             checkItems,
		common.LayoutTypeCard2:               checkCards(2),
		common.LayoutTypeCard3:               checkCards(3),
		common.LayoutTypeTimeline:            checkEvents,
	}}
}

// Validator checks a parsed presentation against the variant contract. Pure -
// no side effects, the input is never modified.
type Validator struct {
	contract *Contract
	log      *zap.Logger
}

func NewValidator(contract *Contract, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{contract: contract, log: log.Named("validator")}
}

// Validate runs all schema checks in order: document shape, per-slide layout
// tag, per-slide style tag, per-slide content contract. It always walks the
// whole deck so diagnostics name every broken slide at once.
func (v *Validator) Validate(p *Presentation) Violations {
	if p == nil {
		return Violations{{Kind: ViolationStructural, Message: "no document"}}
	}
	if len(p.Slides) == 0 {
		// fails atomically for the whole presentation
		return Violations{{Kind: ViolationStructural, Field: "slides", Message: "deck must contain at least one slide"}}
	}

	var out Violations
	for i := range p.Slides {
		s := &p.Slides[i]
		idx := i + 1

		if !s.Layout.IsValid() {
			out = append(out, &Violation{
				Kind: ViolationSlideType, Slide: idx, Field: "layoutType",
				Message: fmt.Sprintf("unknown layout %q", string(s.Layout)),
			})
			// content contract is unknowable without the layout
			continue
		}
		if !s.Style.IsValid() {
			out = append(out, &Violation{
				Kind: ViolationSlideType, Slide: idx, Field: "style",
				Message: fmt.Sprintf("unknown style %q, must be one of %v", string(s.Style), common.StyleThemeNames()),
			})
		}
		if check, ok := v.contract.checks[s.Layout]; ok {
			out = append(out, check(idx, s)...)
		}
	}

	if len(out) > 0 {
		v.log.Debug("Deck failed validation", zap.Int("violations", len(out)))
	}
	return out
}

func checkNothing(int, *Slide) Violations { return nil }

func checkText(idx int, s *Slide) Violations {
	if len(s.Content.Text) == 0 {
		return Violations{{Kind: ViolationContentShape, Slide: idx, Field: "content.text", Message: "text is required"}}
	}
	return nil
}

func checkImage(idx int, s *Slide) Violations {
	if len(s.Content.Image) == 0 {
		return Violations{{Kind: ViolationContentShape, Slide: idx, Field: "content.image", Message: "image reference is required"}}
	}
	return nil
}

func checkNumberedImages(n int) contentCheck {
	return func(idx int, s *Slide) Violations {
		var out Violations
		for i := 1; i <= n; i++ {
			if len(s.Content.NumberedImage(i)) == 0 {
				out = append(out, &Violation{
					Kind: ViolationContentShape, Slide: idx,
					Field:   fmt.Sprintf("content.image%d", i),
					Message: "image reference is required",
				})
			}
		}
		return out
	}
}

func checkImageText(idx int, s *Slide) Violations {
	out := checkImage(idx, s)
	if len(s.Content.Text) == 0 {
		out = append(out, &Violation{Kind: ViolationContentShape, Slide: idx, Field: "content.text", Message: "text is required"})
	}
	return out
}

func checkItems(idx int, s *Slide) Violations {
	if len(s.Content.Items) == 0 {
		return Violations{{Kind: ViolationContentShape, Slide: idx, Field: "content.items", Message: "non-empty items sequence is required"}}
	}
	var out Violations
	for i, item := range s.Content.Items {
		if len(item) == 0 {
			out = append(out, &Violation{
				Kind: ViolationContentShape, Slide: idx,
				Field:   fmt.Sprintf("content.items[%d]", i),
				Message: "item must not be empty",
			})
		}
	}
	return out
}

func checkCards(n int) contentCheck {
	return func(idx int, s *Slide) Violations {
		if len(s.Content.Cards) != n {
			return Violations{{
				Kind: ViolationContentShape, Slide: idx, Field: "content.cards",
				Message: fmt.Sprintf("exactly %d cards required, got %d", n, len(s.Content.Cards)),
			}}
		}
		var out Violations
		for i := range s.Content.Cards {
			c := &s.Content.Cards[i]
			if len(c.Title) == 0 {
				out = append(out, &Violation{
					Kind: ViolationContentShape, Slide: idx,
					Field: fmt.Sprintf("content.cards[%d].title", i), Message: "card title is required",
				})
			}
			if len(c.Description) == 0 {
				out = append(out, &Violation{
					Kind: ViolationContentShape, Slide: idx,
					Field: fmt.Sprintf("content.cards[%d].description", i), Message: "card description is required",
				})
			}
		}
		return out
	}
}

func checkEvents(idx int, s *Slide) Violations {
	if len(s.Content.Events) == 0 {
		return Violations{{Kind: ViolationContentShape, Slide: idx, Field: "content.events", Message: "non-empty events sequence is required"}}
	}
	var out Violations
	for i := range s.Content.Events {
		e := &s.Content.Events[i]
		if len(e.Title) == 0 {
			out = append(out, &Violation{
				Kind: ViolationContentShape, Slide: idx,
				Field: fmt.Sprintf("content.events[%d].title", i), Message: "event title is required",
			})
		}
		if len(e.Description) == 0 {
			out = append(out, &Violation{
				Kind: ViolationContentShape, Slide: idx,
				Field: fmt.Sprintf("content.events[%d].description", i), Message: "event description is required",
			})
		}
	}
	return out
}
