package meter

import (
	"testing"

	"github.com/cwbudde/algo-meter/internal/testutil"
)

func TestScales_Presets(t *testing.T) {
	tests := []struct {
		name    string
		scale   []SegmentSpec
		startDB float64
		endDB   float64
	}{
		{name: "default", scale: DefaultScale(), startDB: -60, endDB: 0},
		{name: "smpte", scale: SMPTEScale(), startDB: -44, endDB: 0},
		{name: "yamaha", scale: YamahaScale(), startDB: -60, endDB: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.scale) != 3 {
				t.Fatalf("got %d segments, want 3", len(tt.scale))
			}

			for i, spec := range tt.scale {
				if err := spec.Validate(); err != nil {
					t.Fatalf("segment %d invalid: %v", i, err)
				}

				// Level ranges contiguous ascending, display ranges
				// partitioning [0,1].
				if i > 0 {
					prev := tt.scale[i-1]
					testutil.RequireNearlyEqual(t, spec.LevelRange.Start, prev.LevelRange.End, 1e-9)
					testutil.RequireNearlyEqual(t, spec.DisplayRange.Start, prev.DisplayRange.End, 1e-9)
				}
			}

			first, last := tt.scale[0], tt.scale[len(tt.scale)-1]
			testutil.RequireNearlyEqual(t, first.LevelRange.Start, tt.startDB, 1e-9)
			testutil.RequireNearlyEqual(t, last.LevelRange.End, tt.endDB, 1e-9)
			testutil.RequireNearlyEqual(t, first.DisplayRange.Start, 0, 1e-9)
			testutil.RequireNearlyEqual(t, last.DisplayRange.End, 1, 1e-9)
		})
	}
}

func TestScales_WorkAsTrackerLayouts(t *testing.T) {
	for name, scale := range map[string][]SegmentSpec{
		"default": DefaultScale(),
		"smpte":   SMPTEScale(),
		"yamaha":  YamahaScale(),
	} {
		if _, err := NewTracker(DefaultConfig(), scale); err != nil {
			t.Fatalf("%s scale rejected: %v", name, err)
		}
	}
}
