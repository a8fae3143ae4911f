package meter

import "github.com/cwbudde/algo-meter/core"

// Range is a half-open interval [Start, End) of dB values, or a closed
// sub-interval of [0, 1] when used as a display range.
type Range struct {
	Start float64
	End   float64
}

// Length returns End - Start.
func (r Range) Length() float64 {
	return r.End - r.Start
}

// containsUpTo reports whether v lies in (Start, End]. A value sitting
// exactly on the lower bound belongs to the segment below.
func (r Range) containsUpTo(v float64) bool {
	return v > r.Start && v <= r.End
}

// ratio maps v into [0, 1] relative to the range, clamped.
func (r Range) ratio(v float64) float64 {
	return core.Clamp((v-r.Start)/r.Length(), 0, 1)
}

// Color is an RGB triple. The engine passes colors through untouched;
// only a renderer interprets them.
type Color struct {
	R, G, B uint8
}

// SegmentSpec describes one colored band of a meter: the dB range it
// covers, the fraction of the overall display it occupies, and its
// colors (Color at the bottom of the band, NextColor at the top, for
// renderers that draw gradients).
type SegmentSpec struct {
	LevelRange   Range
	DisplayRange Range
	Color        Color
	NextColor    Color
}

// Validate reports whether the spec is usable. The level range must
// have positive length (it is later divided by) and the display range
// must be an ordered sub-interval of [0, 1].
func (s SegmentSpec) Validate() error {
	if s.LevelRange.Length() <= 0 {
		return ErrInvalidLevelRange
	}

	if s.DisplayRange.Start < 0 || s.DisplayRange.End > 1 || s.DisplayRange.Start > s.DisplayRange.End {
		return ErrInvalidDisplayRange
	}

	return nil
}

// TickMark is one label-strip tick: its dB value and its normalized
// position in overall meter coordinates (0 = bottom, 1 = top).
type TickMark struct {
	ValueDB float64
	Y       float64
}

// Segment maps a dB level onto one band of the meter. It tracks the
// fraction of its display range that is filled, the position of the
// peak-hold marker within the band, and a dirty flag for redraw
// signaling. Segments are driven by values from a Tracker and are
// consumer-side only.
type Segment struct {
	spec SegmentSpec

	levelDB      float64
	peakDB       float64
	fillFraction float64
	peakFraction float64
	dirty        bool
}

// NewSegment creates a segment for the given spec.
func NewSegment(spec SegmentSpec) (*Segment, error) {
	s := &Segment{
		levelDB: MinLevelDB,
		peakDB:  MinLevelDB,
	}
	if err := s.SetRange(spec); err != nil {
		return nil, err
	}

	return s, nil
}

// SetRange replaces the segment's spec. On error the segment is left
// unchanged.
func (s *Segment) SetRange(spec SegmentSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	s.spec = spec
	s.fillFraction = s.fillFor(s.levelDB)
	s.peakFraction = s.markerFor(s.peakDB)
	s.dirty = true

	return nil
}

// Spec returns the segment's current spec.
func (s *Segment) Spec() SegmentSpec {
	return s.spec
}

// SetLevel updates the fill fraction for the given level. The segment
// is marked dirty only when the fill actually changes.
func (s *Segment) SetLevel(levelDB float64) {
	s.levelDB = levelDB

	fill := s.fillFor(levelDB)
	if fill == s.fillFraction {
		return
	}

	s.fillFraction = fill
	s.dirty = true
}

// SetPeakHold updates the peak-hold marker for the given peak level.
// A peak outside the segment's level range clears the marker rather
// than clamping it, so only the segment containing the peak shows one.
func (s *Segment) SetPeakHold(peakDB float64) {
	s.peakDB = peakDB

	marker := s.markerFor(peakDB)
	if marker == s.peakFraction {
		return
	}

	s.peakFraction = marker
	s.dirty = true
}

// ResetPeakHold clears the peak-hold marker.
func (s *Segment) ResetPeakHold() {
	s.peakDB = MinLevelDB

	if s.peakFraction != 0 {
		s.peakFraction = 0
		s.dirty = true
	}
}

// FillFraction returns the filled extent in overall meter coordinates,
// between DisplayRange.Start (empty) and DisplayRange.End (full).
func (s *Segment) FillFraction() float64 {
	return s.fillFraction
}

// PeakFraction returns the peak-hold marker position in overall meter
// coordinates, or 0 when no marker is shown in this segment.
func (s *Segment) PeakFraction() float64 {
	return s.peakFraction
}

// IsDirty reports whether the fill or marker changed since ClearDirty.
func (s *Segment) IsDirty() bool {
	return s.dirty
}

// ClearDirty marks the segment as consumed by the renderer.
func (s *Segment) ClearDirty() {
	s.dirty = false
}

// TickMarkPositions filters tickMarks to those falling in this
// segment's level range and returns their positions in overall meter
// coordinates. Pure; no state is touched.
func (s *Segment) TickMarkPositions(tickMarks []float64) []TickMark {
	var out []TickMark

	for _, tick := range tickMarks {
		if !s.spec.LevelRange.containsUpTo(tick) {
			continue
		}

		out = append(out, TickMark{
			ValueDB: tick,
			Y:       s.project(s.spec.LevelRange.ratio(tick)),
		})
	}

	return out
}

// project maps a level ratio within the band to overall meter
// coordinates.
func (s *Segment) project(ratio float64) float64 {
	return s.spec.DisplayRange.Start + ratio*s.spec.DisplayRange.Length()
}

func (s *Segment) fillFor(levelDB float64) float64 {
	return s.project(s.spec.LevelRange.ratio(levelDB))
}

func (s *Segment) markerFor(peakDB float64) float64 {
	if !s.spec.LevelRange.containsUpTo(peakDB) {
		return 0
	}

	ratio := s.spec.LevelRange.ratio(peakDB)
	if ratio == 0 {
		return 0
	}

	return s.project(ratio)
}
