package meter

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-meter/internal/testutil"
)

func newTestSegment(t *testing.T, spec SegmentSpec) *Segment {
	t.Helper()

	seg, err := NewSegment(spec)
	if err != nil {
		t.Fatalf("NewSegment() error: %v", err)
	}

	return seg
}

func TestSegment_FillMapping(t *testing.T) {
	tests := []struct {
		name     string
		spec     SegmentSpec
		levelDB  float64
		expected float64
	}{
		{
			name:     "midpoint full display",
			spec:     SegmentSpec{LevelRange: Range{-60, 0}, DisplayRange: Range{0, 1}},
			levelDB:  -30,
			expected: 0.5,
		},
		{
			name:     "above range saturates",
			spec:     SegmentSpec{LevelRange: Range{-60, -18}, DisplayRange: Range{0, 0.5}},
			levelDB:  6,
			expected: 0.5,
		},
		{
			name:     "below range empties",
			spec:     SegmentSpec{LevelRange: Range{-18, -3}, DisplayRange: Range{0.5, 0.9}},
			levelDB:  -40,
			expected: 0.5,
		},
		{
			name:     "sub-interval display band",
			spec:     SegmentSpec{LevelRange: Range{-18, -3}, DisplayRange: Range{0.5, 0.9}},
			levelDB:  -10.5,
			expected: 0.7,
		},
		{
			name:     "top of band",
			spec:     SegmentSpec{LevelRange: Range{-18, -3}, DisplayRange: Range{0.5, 0.9}},
			levelDB:  -3,
			expected: 0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := newTestSegment(t, tt.spec)
			seg.SetLevel(tt.levelDB)
			testutil.RequireNearlyEqual(t, seg.FillFraction(), tt.expected, 1e-9)
		})
	}
}

func TestSegment_DirtyOnlyOnChange(t *testing.T) {
	seg := newTestSegment(t, SegmentSpec{LevelRange: Range{-60, 0}, DisplayRange: Range{0, 1}})
	seg.ClearDirty()

	seg.SetLevel(-30)
	if !seg.IsDirty() {
		t.Fatal("expected dirty after fill change")
	}
	seg.ClearDirty()

	// Same level again: the fill is a pure function of the level, so
	// nothing changed and nothing must be signaled.
	seg.SetLevel(-30)
	if seg.IsDirty() {
		t.Fatal("dirty re-set by an identical level")
	}
	testutil.RequireNearlyEqual(t, seg.FillFraction(), 0.5, 1e-9)
}

func TestSegment_InvalidRange(t *testing.T) {
	tests := []struct {
		name    string
		spec    SegmentSpec
		wantErr error
	}{
		{
			name:    "degenerate level range",
			spec:    SegmentSpec{LevelRange: Range{-10, -10}, DisplayRange: Range{0, 1}},
			wantErr: ErrInvalidLevelRange,
		},
		{
			name:    "inverted level range",
			spec:    SegmentSpec{LevelRange: Range{0, -60}, DisplayRange: Range{0, 1}},
			wantErr: ErrInvalidLevelRange,
		},
		{
			name:    "inverted display range",
			spec:    SegmentSpec{LevelRange: Range{-60, 0}, DisplayRange: Range{0.9, 0.5}},
			wantErr: ErrInvalidDisplayRange,
		},
		{
			name:    "display below zero",
			spec:    SegmentSpec{LevelRange: Range{-60, 0}, DisplayRange: Range{-0.1, 0.5}},
			wantErr: ErrInvalidDisplayRange,
		},
		{
			name:    "display above one",
			spec:    SegmentSpec{LevelRange: Range{-60, 0}, DisplayRange: Range{0.5, 1.1}},
			wantErr: ErrInvalidDisplayRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSegment(tt.spec); !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewSegment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSegment_SetRangeFailureKeepsState(t *testing.T) {
	spec := SegmentSpec{LevelRange: Range{-60, 0}, DisplayRange: Range{0, 1}}
	seg := newTestSegment(t, spec)
	seg.SetLevel(-30)

	bad := SegmentSpec{LevelRange: Range{-10, -10}, DisplayRange: Range{0, 1}}
	if err := seg.SetRange(bad); !errors.Is(err, ErrInvalidLevelRange) {
		t.Fatalf("SetRange() error = %v, want %v", err, ErrInvalidLevelRange)
	}

	if seg.Spec() != spec {
		t.Fatalf("spec mutated by failed SetRange: %+v", seg.Spec())
	}
	testutil.RequireNearlyEqual(t, seg.FillFraction(), 0.5, 1e-9)
}

func TestSegment_PeakMarker(t *testing.T) {
	spec := SegmentSpec{LevelRange: Range{-18, -3}, DisplayRange: Range{0.5, 0.9}}

	tests := []struct {
		name     string
		peakDB   float64
		expected float64
	}{
		{name: "inside band", peakDB: -6, expected: 0.82},
		{name: "top of band", peakDB: -3, expected: 0.9},
		{name: "below band cleared", peakDB: -30, expected: 0},
		{name: "on lower bound cleared", peakDB: -18, expected: 0},
		{name: "above band cleared", peakDB: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := newTestSegment(t, spec)
			seg.SetPeakHold(tt.peakDB)
			testutil.RequireNearlyEqual(t, seg.PeakFraction(), tt.expected, 1e-9)
		})
	}
}

func TestSegment_ResetPeakHold(t *testing.T) {
	seg := newTestSegment(t, SegmentSpec{LevelRange: Range{-60, 0}, DisplayRange: Range{0, 1}})

	seg.SetPeakHold(-6)
	seg.ClearDirty()

	seg.ResetPeakHold()
	if seg.PeakFraction() != 0 {
		t.Fatalf("peak marker not cleared: %v", seg.PeakFraction())
	}
	if !seg.IsDirty() {
		t.Fatal("expected dirty after marker clear")
	}
}

func TestSegment_TickMarkPositions(t *testing.T) {
	seg := newTestSegment(t, SegmentSpec{LevelRange: Range{-60, -18}, DisplayRange: Range{0, 0.5}})
	seg.ClearDirty()

	marks := seg.TickMarkPositions(DefaultTickMarks())

	want := map[float64]float64{
		-18: 0.5,
		-30: 0.5 * (30.0 / 42.0),
		-40: 0.5 * (20.0 / 42.0),
		-50: 0.5 * (10.0 / 42.0),
	}

	if len(marks) != len(want) {
		t.Fatalf("got %d marks, want %d", len(marks), len(want))
	}

	for _, mark := range marks {
		expected, ok := want[mark.ValueDB]
		if !ok {
			t.Fatalf("unexpected tick mark at %v dB", mark.ValueDB)
		}
		testutil.RequireNearlyEqual(t, mark.Y, expected, 1e-9)
	}

	// Pure query: no state change.
	if seg.IsDirty() {
		t.Fatal("TickMarkPositions mutated segment state")
	}
}
