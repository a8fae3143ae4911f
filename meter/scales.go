package meter

// Canonical scale colors.
var (
	ColorGreen  = Color{R: 0x00, G: 0x80, B: 0x00}
	ColorYellow = Color{R: 0xff, G: 0xff, B: 0x00}
	ColorRed    = Color{R: 0xff, G: 0x00, B: 0x00}
)

// DefaultScale returns the general-purpose scale: 3 segments spanning
// -60 dB to 0 dB, with the top 3 dB compressed into the last tenth of
// the display.
func DefaultScale() []SegmentSpec {
	return []SegmentSpec{
		{
			LevelRange:   Range{Start: -60, End: -18},
			DisplayRange: Range{Start: 0, End: 0.5},
			Color:        ColorGreen,
			NextColor:    ColorGreen,
		},
		{
			LevelRange:   Range{Start: -18, End: -3},
			DisplayRange: Range{Start: 0.5, End: 0.90},
			Color:        ColorGreen,
			NextColor:    ColorYellow,
		},
		{
			LevelRange:   Range{Start: -3, End: 0},
			DisplayRange: Range{Start: 0.90, End: 1},
			Color:        ColorYellow,
			NextColor:    ColorRed,
		},
	}
}

// SMPTEScale returns a broadcast-style scale: 3 segments spanning
// -44 dB to 0 dB.
func SMPTEScale() []SegmentSpec {
	return []SegmentSpec{
		{
			LevelRange:   Range{Start: -44, End: -12},
			DisplayRange: Range{Start: 0, End: 0.7273},
			Color:        ColorGreen,
			NextColor:    ColorYellow,
		},
		{
			LevelRange:   Range{Start: -12, End: -3},
			DisplayRange: Range{Start: 0.7273, End: 0.9318},
			Color:        ColorYellow,
			NextColor:    ColorRed,
		},
		{
			LevelRange:   Range{Start: -3, End: 0},
			DisplayRange: Range{Start: 0.9318, End: 1},
			Color:        ColorRed,
			NextColor:    ColorRed,
		},
	}
}

// YamahaScale returns a console-style scale: 3 segments spanning
// -60 dB to 0 dB with the mixer-desk band split.
func YamahaScale() []SegmentSpec {
	return []SegmentSpec{
		{
			LevelRange:   Range{Start: -60, End: -30},
			DisplayRange: Range{Start: 0, End: 0.2751},
			Color:        ColorYellow,
			NextColor:    ColorYellow,
		},
		{
			LevelRange:   Range{Start: -30, End: -18},
			DisplayRange: Range{Start: 0.2751, End: 0.4521},
			Color:        ColorYellow,
			NextColor:    ColorYellow,
		},
		{
			LevelRange:   Range{Start: -18, End: 0},
			DisplayRange: Range{Start: 0.4521, End: 1},
			Color:        ColorRed,
			NextColor:    ColorRed,
		},
	}
}
