// Package common keeps enumerations shared between the deck model, the
// compiler and the generator. They live separately so that cmd and serve can
// use them without importing the whole compilation pipeline.
package common

// Layout variant of a single slide. The set is closed - validation rejects
// anything else, renderer dispatches over it.
// ENUM(title-slide, section-break, text-left, text-center, image-full, image-1, image-horizontal-2, image-2x2, image-text-horizontal, image-text-vertical, list, num-list, card-2, card-3, timeline)
type LayoutType string

// Slide color theme.
// ENUM(black, white)
type StyleTheme string

// Dense reports whether layout is subject to density scaling (text lists that
// can overflow the content band).
func (l LayoutType) Dense() bool {
	return l == LayoutTypeList || l == LayoutTypeNumList
}

// CardCount returns fixed card cardinality for card layouts and 0 for
// everything else.
func (l LayoutType) CardCount() int {
	switch l {
	case LayoutTypeCard2:
		return 2
	case LayoutTypeCard3:
		return 3
	default:
		return 0
	}
}

// ImageCount returns how many image references the layout carries in its
// numbered image fields.
func (l LayoutType) ImageCount() int {
	switch l {
	case LayoutTypeImageFull, LayoutTypeImage1:
		return 1
	case LayoutTypeImageHorizontal2:
		return 2
	case LayoutTypeImage2x2:
		return 4
	default:
		return 0
	}
}
