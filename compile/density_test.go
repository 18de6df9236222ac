package compile

import (
	"strings"
	"testing"
)

func repeatItems(n int, item string) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = item
	}
	return items
}

func TestMeasureEmpty(t *testing.T) {
	m := Measure(nil, bandNoTitle)
	if m.RequiresScaling {
		t.Error("empty list must not require scaling")
	}
	if m.FontScale != 1 || m.LineHeightScale != 1 || m.MarginScale != 1 || m.ColumnGapScale != 1 {
		t.Errorf("empty list must keep neutral scales: %+v", m)
	}
}

func TestMeasureColumnSplit(t *testing.T) {
	short := strings.Repeat("x", 10)

	m := Measure(repeatItems(5, short), bandNoTitle)
	if m.MultiColumn {
		t.Error("5 items must stay single column")
	}
	if m.MaxItemsPerColumn != 5 {
		t.Errorf("single column must hold all items, got %d", m.MaxItemsPerColumn)
	}

	m = Measure(repeatItems(6, short), bandNoTitle)
	if !m.MultiColumn {
		t.Error("6 items must split into two columns")
	}
	if m.MaxItemsPerColumn != 3 {
		t.Errorf("6 items over two columns must give 3 per column, got %d", m.MaxItemsPerColumn)
	}

	m = Measure(repeatItems(7, short), bandNoTitle)
	if m.MaxItemsPerColumn != 4 {
		t.Errorf("odd counts round the longer column up, got %d", m.MaxItemsPerColumn)
	}
}

func TestMeasureShortListNoScaling(t *testing.T) {
	m := Measure(repeatItems(5, strings.Repeat("x", 10)), bandNoTitle)
	if m.RequiresScaling {
		t.Errorf("5 short items must not trigger scaling, density %.3f", m.DensityFactor)
	}
	if m.FontScale != 1 {
		t.Errorf("unscaled list must keep font scale 1, got %f", m.FontScale)
	}
}

func TestMeasureThresholdIsStrict(t *testing.T) {
	// 8 items of 120 runes in a 100/10 band hit the threshold exactly:
	// multiplier 1+(120-30)/80 = 2.125, 4 per column, 4*10*2.125 = 85,
	// density 85/100 = 0.85. All values are exact in binary floating point.
	band := Band{AvailableHeight: 100, ItemHeight: 10}
	m := Measure(repeatItems(8, strings.Repeat("x", 120)), band)

	if m.DensityFactor != 0.85 {
		t.Fatalf("expected exact boundary density 0.85, got %v", m.DensityFactor)
	}
	if m.RequiresScaling {
		t.Error("density equal to the threshold must not trigger scaling")
	}

	// one more rune per item pushes it over
	m = Measure(repeatItems(8, strings.Repeat("x", 121)), band)
	if !m.RequiresScaling {
		t.Errorf("density above the threshold must trigger scaling, got %.4f", m.DensityFactor)
	}
}

func TestMeasureDenseListWithTitle(t *testing.T) {
	m := Measure(repeatItems(8, strings.Repeat("x", 60)), BandFor(true))

	if !m.MultiColumn {
		t.Error("8 items must be multi-column")
	}
	if !m.RequiresScaling {
		t.Fatalf("8 long items in the title band must require scaling, density %.3f", m.DensityFactor)
	}
	if m.FontScale < minFontScale || m.FontScale >= 1 {
		t.Errorf("font scale out of range: %f", m.FontScale)
	}
	if m.LineHeightScale < minLineHeight || m.LineHeightScale > 1 {
		t.Errorf("line height scale out of range: %f", m.LineHeightScale)
	}
	if m.MarginScale < minMarginScale || m.MarginScale > 1 {
		t.Errorf("margin scale out of range: %f", m.MarginScale)
	}
	if m.ColumnGapScale < minColumnGapScale || m.ColumnGapScale > 1 {
		t.Errorf("column gap scale out of range: %f", m.ColumnGapScale)
	}
}

func TestMeasureScalesHaveFloors(t *testing.T) {
	// absurdly dense input must bottom out at the legibility floors
	m := Measure(repeatItems(40, strings.Repeat("x", 500)), BandFor(true))

	if !m.RequiresScaling {
		t.Fatal("expected scaling")
	}
	if m.FontScale != minFontScale {
		t.Errorf("font scale must bottom out at %f, got %f", minFontScale, m.FontScale)
	}
	if m.LineHeightScale != minLineHeight {
		t.Errorf("line height scale must bottom out at %f, got %f", minLineHeight, m.LineHeightScale)
	}
	if m.MarginScale != minMarginScale {
		t.Errorf("margin scale must bottom out at %f, got %f", minMarginScale, m.MarginScale)
	}
	if m.ColumnGapScale != minColumnGapScale {
		t.Errorf("column gap scale must bottom out at %f, got %f", minColumnGapScale, m.ColumnGapScale)
	}
}

func TestMeasureGapScaleOnlyMultiColumn(t *testing.T) {
	// dense but single column: gap scale must stay neutral
	m := Measure(repeatItems(5, strings.Repeat("x", 300)), BandFor(true))
	if !m.RequiresScaling {
		t.Fatal("expected scaling")
	}
	if m.MultiColumn {
		t.Fatal("5 items must stay single column")
	}
	if m.ColumnGapScale != 1 {
		t.Errorf("single column list must not scale column gap, got %f", m.ColumnGapScale)
	}
}

func TestMeasureMonotonicInLength(t *testing.T) {
	// within one column regime, longer items never reduce density
	prev := 0.0
	for length := 10; length <= 200; length += 10 {
		m := Measure(repeatItems(4, strings.Repeat("x", length)), bandNoTitle)
		if m.DensityFactor < prev {
			t.Fatalf("density dropped from %.4f to %.4f at length %d", prev, m.DensityFactor, length)
		}
		prev = m.DensityFactor
	}
}

func TestMeasureMonotonicInCount(t *testing.T) {
	item := strings.Repeat("x", 40)

	// single column regime
	prev := 0.0
	for n := 1; n < MultiColumnThreshold; n++ {
		m := Measure(repeatItems(n, item), bandNoTitle)
		if m.DensityFactor < prev {
			t.Fatalf("density dropped at %d items", n)
		}
		prev = m.DensityFactor
	}

	// two column regime
	prev = 0.0
	for n := MultiColumnThreshold; n <= 20; n++ {
		m := Measure(repeatItems(n, item), bandNoTitle)
		if m.DensityFactor < prev {
			t.Fatalf("density dropped at %d items", n)
		}
		prev = m.DensityFactor
	}
}

func TestMeasureLengthMultiplierClamp(t *testing.T) {
	// beyond the multiplier clamp extra length changes nothing
	a := Measure(repeatItems(4, strings.Repeat("x", 1000)), bandNoTitle)
	b := Measure(repeatItems(4, strings.Repeat("x", 5000)), bandNoTitle)
	if a.DensityFactor != b.DensityFactor {
		t.Errorf("length multiplier must clamp: %.4f != %.4f", a.DensityFactor, b.DensityFactor)
	}
}

func TestMeasureCountsRunesNotBytes(t *testing.T) {
	ascii := Measure(repeatItems(4, strings.Repeat("x", 80)), bandNoTitle)
	cyrillic := Measure(repeatItems(4, strings.Repeat("ф", 80)), bandNoTitle)
	if ascii.DensityFactor != cyrillic.DensityFactor {
		t.Errorf("density must depend on rune count, not bytes: %.4f != %.4f",
			ascii.DensityFactor, cyrillic.DensityFactor)
	}
}

func TestBandFor(t *testing.T) {
	if BandFor(true).AvailableHeight >= BandFor(false).AvailableHeight {
		t.Error("title band must reserve less room for content")
	}
	if BandFor(true).ItemHeight != BandFor(false).ItemHeight {
		t.Error("item height does not depend on the title")
	}
}
