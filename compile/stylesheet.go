package compile

import (
	_ "embed"
	"fmt"

	"go.uber.org/zap"

	"slidec/css"
)

//go:embed assets/theme.css
var themeCSS []byte

// Base typography values of the list item block in the embedded theme.
// Density override rules and the controller's resize handler both scale these
// same numbers, so they are defined once here and travel to the controller
// inside its configuration.
const (
	baseItemFontRem    = 1.4
	baseItemLineHeight = 1.6
	baseItemMarginEm   = 0.6
	baseColumnGapRem   = 3.0
)

// buildStylesheet assembles the inline stylesheet: the embedded theme, the
// optional user stylesheet folded over it, and per-slide density overrides
// appended last so they win the cascade. Each override targets exactly one
// slide element and never leaks to the others.
func buildStylesheet(frags []*Fragment, custom []byte, log *zap.Logger) string {
	p := css.NewParser(log)

	sheet := p.Parse(themeCSS, "theme")
	if len(custom) > 0 {
		sheet.Merge(p.Parse(custom, "custom stylesheet"))
	}

	for _, f := range frags {
		if f.Density == nil {
			continue
		}
		appendDensityRules(sheet, f)
	}
	return sheet.String()
}

func appendDensityRules(sheet *css.Stylesheet, f *Fragment) {
	m := f.Density
	id := "#" + f.ElementID()

	rule := css.Rule{Selectors: []string{id + " .item"}}
	rule.Set("font-size", fmt.Sprintf("%.3frem", m.FontScale*baseItemFontRem))
	rule.Set("line-height", fmt.Sprintf("%.3f", m.LineHeightScale*baseItemLineHeight))
	rule.Set("margin-bottom", fmt.Sprintf("%.3fem", m.MarginScale*baseItemMarginEm))
	sheet.Append(rule)

	if m.MultiColumn && m.ColumnGapScale < 1 {
		gap := css.Rule{Selectors: []string{id + " .two-column"}}
		gap.Set("column-gap", fmt.Sprintf("%.3frem", m.ColumnGapScale*baseColumnGapRem))
		sheet.Append(gap)
	}
}
