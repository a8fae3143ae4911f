package meter

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-meter/core"
)

// inputCell is the single-slot lock-free bridge between the audio-rate
// producer and the UI-rate consumer. The newest unread amplitude wins,
// except that an unread previous value is max-held so a transient
// between two consumer ticks is never dropped.
type inputCell struct {
	bits atomic.Uint64
	read atomic.Bool
}

// set stores a new amplitude from the producer. Lock-free and
// allocation-free; safe for exactly one producer.
func (c *inputCell) set(amplitude float64) {
	for {
		old := c.bits.Load()

		v := amplitude
		if !c.read.Load() {
			if prev := math.Float64frombits(old); prev > v {
				v = prev
			}
		}

		if c.bits.CompareAndSwap(old, math.Float64bits(v)) {
			c.read.Store(false)
			return
		}
	}
}

// take reads the stored amplitude and marks the cell consumed.
// Consumer side only.
func (c *inputCell) take() float64 {
	c.read.Store(true)
	return math.Float64frombits(c.bits.Load())
}

// reset zeroes the cell and marks it unread so the next tick observes
// silence.
func (c *inputCell) reset() {
	c.bits.Store(0)
	c.read.Store(false)
}

// SegmentState is one segment's normalized extents as of a tick.
type SegmentState struct {
	// Spec is the segment's layout and colors, passed through untouched
	// for the renderer.
	Spec SegmentSpec

	// Fill is the filled extent in overall meter coordinates.
	Fill float64

	// Peak is the peak-hold marker position, 0 when this segment does
	// not contain the peak.
	Peak float64

	// Dirty reports whether this segment changed since the last tick.
	Dirty bool
}

// TickResult is what a consumer tick returns to the renderer.
type TickResult struct {
	// LevelDB is the decayed display level.
	LevelDB float64

	// PeakHoldDB is the sticky peak level.
	PeakHoldDB float64

	// Clipped reports the sticky clip latch.
	Clipped bool

	// Dirty aggregates all segment, peak-hold and clip changes: true
	// means the renderer has something to redraw.
	Dirty bool

	// Segments holds per-segment extents. The slice is reused between
	// ticks; copy it if it must outlive the next Tick call.
	Segments []SegmentState
}

// Tracker owns the level ballistics of one meter channel: the
// producer/consumer bridge, dB conversion, linear decay, peak-hold
// expiry and the clip latch. It drives a set of Segments with the
// decayed level each tick.
//
// SetInputLevel is the only method callable from the producer side.
// Everything else belongs to a single consumer goroutine; see the
// package documentation for the threading contract.
type Tracker struct {
	cell inputCell

	cfg        Config
	segments   []*Segment
	meterRange Range

	// decayRatePerMS is meterRange.Length() / DecayTimeMS, the linear
	// fall rate in dB per millisecond.
	decayRatePerMS float64

	levelDB           float64
	peakHoldDB        float64
	peakHoldElapsedMS float64
	clipped           bool
	lastTick          time.Time

	scratch []SegmentState
}

// NewTracker creates a tracker with the given config and segment
// layout.
func NewTracker(cfg Config, specs []SegmentSpec) (*Tracker, error) {
	t := &Tracker{
		levelDB:    MinLevelDB,
		peakHoldDB: MinLevelDB,
	}

	if err := t.SetSegments(specs); err != nil {
		return nil, err
	}

	if err := t.SetConfig(cfg); err != nil {
		return nil, err
	}

	return t, nil
}

// SetInputLevel stores a raw amplitude from the audio producer. It
// never blocks, never allocates, and may be called any number of times
// between consumer ticks; the loudest unread amplitude survives.
func (t *Tracker) SetInputLevel(amplitude float64) {
	t.cell.set(amplitude)
}

// SetConfig applies a new config. The config is validated, then copied
// with the decay time clamped into [MinDecayMS, MaxDecayMS] and the
// refresh rate clamped to >= 1 Hz. Consumer side only.
func (t *Tracker) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	t.cfg = cfg.normalized()
	t.decayRatePerMS = t.meterRange.Length() / t.cfg.DecayTimeMS

	return nil
}

// Config returns a copy of the active (normalized) config.
func (t *Tracker) Config() Config {
	return t.cfg
}

// SetSegments replaces the segment layout. The meter's full-scale
// range becomes the union of the segment level ranges, and the decay
// rate is recomputed from it. On error the tracker is left unchanged.
func (t *Tracker) SetSegments(specs []SegmentSpec) error {
	if len(specs) == 0 {
		return ErrNoSegments
	}

	segments := make([]*Segment, 0, len(specs))
	meterRange := Range{Start: math.Inf(1), End: math.Inf(-1)}

	for _, spec := range specs {
		seg, err := NewSegment(spec)
		if err != nil {
			return err
		}

		segments = append(segments, seg)
		meterRange.Start = math.Min(meterRange.Start, spec.LevelRange.Start)
		meterRange.End = math.Max(meterRange.End, spec.LevelRange.End)
	}

	t.segments = segments
	t.meterRange = meterRange
	t.scratch = make([]SegmentState, len(segments))

	if t.cfg.DecayTimeMS > 0 {
		t.decayRatePerMS = t.meterRange.Length() / t.cfg.DecayTimeMS
	}

	return nil
}

// Segments returns the owned segments. Consumer side only; mutating
// them between ticks is allowed, sharing them across goroutines is not.
func (t *Tracker) Segments() []*Segment {
	return t.segments
}

// MeterRange returns the union of the segment level ranges.
func (t *Tracker) MeterRange() Range {
	return t.meterRange
}

// Tick advances the meter to now: it consumes the input cell, converts
// to dB, applies decay and peak-hold ballistics, arms the clip latch,
// forwards the level to every segment and aggregates dirtiness.
//
// now must come from a monotonic clock. Two ticks at the same
// timestamp leave the level unmoved. The per-segment dirty flags are
// consumed into the result.
func (t *Tracker) Tick(now time.Time) TickResult {
	newLevel := core.AmplitudeToDB(t.cell.take(), t.meterRange.Start, t.meterRange.End)

	elapsedMS := 0.0
	if !t.lastTick.IsZero() {
		if d := now.Sub(t.lastTick); d > 0 {
			elapsedMS = d.Seconds() * 1000
		}
	}

	t.lastTick = now

	// Attack is instantaneous; only the fall is ballistic.
	if newLevel >= t.levelDB {
		t.levelDB = newLevel
	} else {
		t.levelDB = math.Max(newLevel, t.levelDB-elapsedMS*t.decayRatePerMS)
	}

	peakChanged := t.updatePeakHold(elapsedMS)
	clipChanged := t.updateClip()

	dirty := peakChanged || clipChanged

	for i, seg := range t.segments {
		seg.SetLevel(t.levelDB)
		seg.SetPeakHold(t.peakHoldDB)

		segDirty := seg.IsDirty()
		if segDirty {
			dirty = true
			seg.ClearDirty()
		}

		t.scratch[i] = SegmentState{
			Spec:  seg.Spec(),
			Fill:  seg.FillFraction(),
			Peak:  seg.PeakFraction(),
			Dirty: segDirty,
		}
	}

	return TickResult{
		LevelDB:    t.levelDB,
		PeakHoldDB: t.peakHoldDB,
		Clipped:    t.clipped,
		Dirty:      dirty,
		Segments:   t.scratch,
	}
}

// updatePeakHold advances the hold timer and refreshes or expires the
// peak. Returns true when the held value changed.
func (t *Tracker) updatePeakHold(elapsedMS float64) bool {
	if !t.cfg.PeakHoldEnabled {
		return false
	}

	changed := false

	t.peakHoldElapsedMS += elapsedMS
	if t.peakHoldElapsedMS > t.cfg.PeakHoldDecayTimeMS {
		t.peakHoldElapsedMS = 0

		if t.peakHoldDB > MinLevelDB {
			t.peakHoldDB = MinLevelDB
			changed = true
		}
	}

	if t.levelDB > t.peakHoldDB {
		t.peakHoldDB = t.levelDB
		t.peakHoldElapsedMS = 0
		changed = true
	}

	return changed
}

// updateClip arms the sticky latch. Returns true on the arming tick.
func (t *Tracker) updateClip() bool {
	if !t.cfg.ClipIndicatorEnabled || t.clipped {
		return false
	}

	if t.levelDB >= t.cfg.ClipThresholdDB {
		t.clipped = true
		return true
	}

	return false
}

// LevelDB returns the last decayed display level.
func (t *Tracker) LevelDB() float64 {
	return t.levelDB
}

// PeakHoldDB returns the current held peak level.
func (t *Tracker) PeakHoldDB() float64 {
	return t.peakHoldDB
}

// Clipped reports the sticky clip latch.
func (t *Tracker) Clipped() bool {
	return t.clipped
}

// Reset zeroes the input cell, drops the display level to the floor
// and clears the decay timer. Peak hold and clip latch are preserved:
// muting resets the live level but not what already happened.
func (t *Tracker) Reset() {
	t.cell.reset()
	t.levelDB = MinLevelDB
	t.lastTick = time.Time{}
}

// ResetPeakHold clears the held peak and the markers in every segment.
func (t *Tracker) ResetPeakHold() {
	t.peakHoldDB = MinLevelDB
	t.peakHoldElapsedMS = 0

	for _, seg := range t.segments {
		seg.ResetPeakHold()
	}
}

// ResetClip clears the sticky clip latch.
func (t *Tracker) ResetClip() {
	t.clipped = false
}

// TickMarks returns the label-strip tick marks of the configured
// tick-mark list, each positioned in overall meter coordinates.
func (t *Tracker) TickMarks() []TickMark {
	var out []TickMark
	for _, seg := range t.segments {
		out = append(out, seg.TickMarkPositions(t.cfg.TickMarks)...)
	}

	return out
}
