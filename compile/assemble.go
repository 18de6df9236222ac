package compile

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"slidec/deck"
	"slidec/misc"
)

//go:embed assets/document.html.tmpl
var documentTmplText string

//go:embed assets/controller.js
var controllerJS string

var documentTmpl = template.Must(template.New("document").Parse(documentTmplText))

// controllerConfig is the injected view-time configuration: slide inventory
// for the navigation/animation controller plus the density constants so the
// resize handler evaluates exactly the formula the compiler used.
type controllerConfig struct {
	SlideCount int            `json:"slideCount"`
	Slides     []slideSummary `json:"slides"`
	Density    densityConfig  `json:"density"`
}

type slideSummary struct {
	Layout string `json:"layout"`
	Style  string `json:"style"`
}

type densityConfig struct {
	Threshold            float64 `json:"threshold"`
	Target               float64 `json:"target"`
	MultiColumnThreshold int     `json:"multiColumnThreshold"`
	BaselineItemLength   float64 `json:"baselineItemLength"`
	LengthSlope          float64 `json:"lengthSlope"`
	MaxLengthMultiplier  float64 `json:"maxLengthMultiplier"`
	MinFontScale         float64 `json:"minFontScale"`
	MinLineHeight        float64 `json:"minLineHeight"`
	LineHeightBlend      float64 `json:"lineHeightBlend"`
	MinMarginScale       float64 `json:"minMarginScale"`
	MinColumnGapScale    float64 `json:"minColumnGapScale"`

	// pixel-mode bands: fraction of the viewport height the content block
	// may use, with and without a visible title, and the estimated height
	// of one short item
	TitleBandRatio  float64 `json:"titleBandRatio"`
	BareBandRatio   float64 `json:"bareBandRatio"`
	ItemHeightRatio float64 `json:"itemHeightRatio"`

	BaseFontRem    float64 `json:"baseFontRem"`
	BaseLineHeight float64 `json:"baseLineHeight"`
	BaseMarginEm   float64 `json:"baseMarginEm"`
	BaseGapRem     float64 `json:"baseGapRem"`
}

func newControllerConfig(frags []*Fragment) controllerConfig {
	slides := make([]slideSummary, 0, len(frags))
	for _, f := range frags {
		slides = append(slides, slideSummary{Layout: string(f.Layout), Style: string(f.Style)})
	}
	return controllerConfig{
		SlideCount: len(frags),
		Slides:     slides,
		Density: densityConfig{
			Threshold:            densityThreshold,
			Target:               targetDensity,
			MultiColumnThreshold: MultiColumnThreshold,
			BaselineItemLength:   baselineItemLength,
			LengthSlope:          lengthSlope,
			MaxLengthMultiplier:  maxLengthMultiplier,
			MinFontScale:         minFontScale,
			MinLineHeight:        minLineHeight,
			LineHeightBlend:      lineHeightBlend,
			MinMarginScale:       minMarginScale,
			MinColumnGapScale:    minColumnGapScale,
			TitleBandRatio:       bandWithTitle.AvailableHeight / 100,
			BareBandRatio:        bandNoTitle.AvailableHeight / 100,
			ItemHeightRatio:      bandNoTitle.ItemHeight / 100,
			BaseFontRem:          baseItemFontRem,
			BaseLineHeight:       baseItemLineHeight,
			BaseMarginEm:         baseItemMarginEm,
			BaseGapRem:           baseColumnGapRem,
		},
	}
}

type documentData struct {
	Title     string
	Author    string
	Date      string
	Generator string
	BuildID   string
	Style     template.CSS
	Config    template.JS
	Script    template.JS
	Slides    template.HTML
}

// Assemble joins rendered fragments, the stylesheet and the controller script
// into one self-contained document string. Pure glue - all decisions were
// made upstream.
func Assemble(p *deck.Presentation, frags []*Fragment, custom []byte, buildID string, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cfg, err := json.Marshal(newControllerConfig(frags))
	if err != nil {
		return "", fmt.Errorf("unable to marshal controller configuration: %w", err)
	}

	var slides strings.Builder
	for _, f := range frags {
		slides.WriteString(f.Markup)
	}

	data := documentData{
		Title:     p.Title,
		Author:    p.Author,
		Date:      p.Date,
		Generator: misc.GetAppName() + " " + misc.GetVersion(),
		BuildID:   buildID,
		Style:     template.CSS(buildStylesheet(frags, custom, log)),
		Config:    template.JS(cfg),
		Script:    template.JS(controllerJS),
		Slides:    template.HTML(slides.String()),
	}

	var out strings.Builder
	if err := documentTmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("unable to assemble document: %w", err)
	}
	return out.String(), nil
}
