package compile

import (
	"unicode/utf8"
)

// Content density heuristic for text-dense layouts (list, num-list). It
// estimates how much vertical space the items need against the band the
// layout reserves for them and, when the estimate crosses the threshold,
// produces typography scale factors with hard legibility floors.
//
// The same formula runs in two places: here at build time (percentage-of-band
// units) and inside the emitted controller script on window resize (pixel
// units). The unit system is carried entirely by Band, the formula itself is
// unit-free; the controller receives these constants as part of its injected
// configuration so the two sides cannot drift apart.

const (
	// items switch to a two column arrangement at this count
	MultiColumnThreshold = 6

	// item length around which the height estimate is calibrated; every
	// lengthSlope runes beyond it add one full item height
	baselineItemLength  = 30
	lengthSlope         = 80
	maxLengthMultiplier = 3.0

	// scaling triggers strictly above this density
	densityThreshold = 0.85
	// and targets this density after shrinking
	targetDensity = 0.95

	// legibility floors
	minFontScale      = 0.65
	minLineHeight     = 0.75
	lineHeightBlend   = 0.8
	minMarginScale    = 0.4
	minColumnGapScale = 0.5
)

// Band describes vertical space available to the content block, in whatever
// units the caller works with.
type Band struct {
	// AvailableHeight is the room reserved for the item block.
	AvailableHeight float64
	// ItemHeight is the estimated height of one short item.
	ItemHeight float64
}

// Build-time bands in percentage-of-viewport units: the title row, when
// present, eats 10 points of the content band.
var (
	bandWithTitle = Band{AvailableHeight: 45, ItemHeight: 10}
	bandNoTitle   = Band{AvailableHeight: 55, ItemHeight: 10}
)

// BandFor returns the build-time percentage band for a slide with or without
// a visible title.
func BandFor(hasTitle bool) Band {
	if hasTitle {
		return bandWithTitle
	}
	return bandNoTitle
}

// Metrics is everything the density heuristic computed for one item list.
// Scale factors are meaningful only when RequiresScaling is set.
type Metrics struct {
	ItemCount         int
	MultiColumn       bool
	MaxItemsPerColumn int
	AverageLength     float64
	DensityFactor     float64
	RequiresScaling   bool

	FontScale       float64
	LineHeightScale float64
	MarginScale     float64
	ColumnGapScale  float64
}

// Measure runs the density heuristic for the given items within the given
// band. Pure - same inputs always produce the same metrics.
func Measure(items []string, band Band) Metrics {
	m := Metrics{
		ItemCount:       len(items),
		FontScale:       1,
		LineHeightScale: 1,
		MarginScale:     1,
		ColumnGapScale:  1,
	}
	if m.ItemCount == 0 || band.AvailableHeight <= 0 {
		return m
	}

	m.MultiColumn = m.ItemCount >= MultiColumnThreshold
	m.MaxItemsPerColumn = m.ItemCount
	if m.MultiColumn {
		m.MaxItemsPerColumn = (m.ItemCount + 1) / 2
	}

	var total int
	for _, item := range items {
		total += utf8.RuneCountInString(item)
	}
	m.AverageLength = float64(total) / float64(m.ItemCount)

	lengthMultiplier := 1 + (m.AverageLength-baselineItemLength)/lengthSlope
	if lengthMultiplier > maxLengthMultiplier {
		lengthMultiplier = maxLengthMultiplier
	}

	requiredHeight := float64(m.MaxItemsPerColumn) * band.ItemHeight * lengthMultiplier
	m.DensityFactor = requiredHeight / band.AvailableHeight
	m.RequiresScaling = m.DensityFactor > densityThreshold
	if !m.RequiresScaling {
		return m
	}

	scale := targetDensity / m.DensityFactor
	if scale > 1 {
		scale = 1
	}

	m.FontScale = max(scale, minFontScale)
	// line height shrinks slower than the font - blend the factor toward 1
	m.LineHeightScale = max((1-lineHeightBlend)+lineHeightBlend*scale, minLineHeight)
	// margins shrink faster, they are the cheapest space to reclaim
	m.MarginScale = max(scale*scale, minMarginScale)
	if m.MultiColumn {
		m.ColumnGapScale = max(scale, minColumnGapScale)
	}
	return m
}
