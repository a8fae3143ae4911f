package meter

import "errors"

// Level range and ballistics limits shared by every meter component.
const (
	// MinLevelDB is the meter floor in dB. Amplitudes at or below zero
	// convert to this value.
	MinLevelDB = -96.0

	// MaxLevelDB is the meter ceiling in dB.
	MaxLevelDB = 0.0

	// MinDecayMS and MaxDecayMS bound the configurable decay time.
	MinDecayMS = 100.0
	MaxDecayMS = 4000.0

	// DefaultDecayMS is the default meter decay time.
	DefaultDecayMS = 1000.0

	// DefaultPeakHoldDecayMS is the default peak-hold expiry time.
	DefaultPeakHoldDecayMS = 2000.0

	// DefaultRefreshRateHz is the default consumer refresh rate.
	DefaultRefreshRateHz = 30.0

	// DefaultClipThresholdDB is the level at which the clip latch arms.
	DefaultClipThresholdDB = 0.0
)

var (
	ErrInvalidRefreshRate  = errors.New("meter: refresh rate must be positive")
	ErrInvalidPeakHoldTime = errors.New("meter: peak hold decay time must be positive")
	ErrInvalidLevelRange   = errors.New("meter: segment level range must have positive length")
	ErrInvalidDisplayRange = errors.New("meter: segment display range must satisfy 0 <= start <= end <= 1")
	ErrNoSegments          = errors.New("meter: at least one segment is required")
	ErrInvalidChannelCount = errors.New("meter: channel count must be positive")
)

// Config holds the ballistics and display settings of a meter. It is a
// value type: setters copy it, nothing retains a pointer into it, and
// it never crosses the producer/consumer boundary.
type Config struct {
	// DecayTimeMS is the time the meter takes to fall across its full
	// level range. Clamped into [MinDecayMS, MaxDecayMS] before use.
	DecayTimeMS float64

	// PeakHoldDecayTimeMS is how long the peak-hold marker persists
	// without a higher reading before it is cleared.
	PeakHoldDecayTimeMS float64

	// RefreshRateHz is the consumer tick rate. Clamped to >= 1.
	RefreshRateHz float64

	// ClipThresholdDB arms the sticky clip latch when the displayed
	// level reaches or exceeds it.
	ClipThresholdDB float64

	// TickMarks lists the dB values at which a label strip draws
	// tick marks.
	TickMarks []float64

	// PeakHoldEnabled enables the sticky peak-hold marker.
	PeakHoldEnabled bool

	// ClipIndicatorEnabled enables the clip latch.
	ClipIndicatorEnabled bool
}

// DefaultConfig returns the meter defaults.
func DefaultConfig() Config {
	return Config{
		DecayTimeMS:          DefaultDecayMS,
		PeakHoldDecayTimeMS:  DefaultPeakHoldDecayMS,
		RefreshRateHz:        DefaultRefreshRateHz,
		ClipThresholdDB:      DefaultClipThresholdDB,
		TickMarks:            DefaultTickMarks(),
		PeakHoldEnabled:      true,
		ClipIndicatorEnabled: true,
	}
}

// DefaultTickMarks returns the default label-strip tick marks in dB.
func DefaultTickMarks() []float64 {
	return []float64{0, -3, -6, -9, -12, -18, -30, -40, -50}
}

// Validate reports whether the config can be applied. Decay time is
// not validated here because it is clamped on use.
func (c Config) Validate() error {
	if c.RefreshRateHz <= 0 {
		return ErrInvalidRefreshRate
	}

	if c.PeakHoldDecayTimeMS <= 0 {
		return ErrInvalidPeakHoldTime
	}

	return nil
}

// normalized returns a copy with the decay time clamped into its legal
// range and the refresh rate clamped to at least 1 Hz. The tick-mark
// slice is copied so the caller cannot mutate it afterwards.
func (c Config) normalized() Config {
	out := c

	if out.DecayTimeMS < MinDecayMS {
		out.DecayTimeMS = MinDecayMS
	}

	if out.DecayTimeMS > MaxDecayMS {
		out.DecayTimeMS = MaxDecayMS
	}

	if out.RefreshRateHz < 1 {
		out.RefreshRateHz = 1
	}

	if len(c.TickMarks) > 0 {
		out.TickMarks = make([]float64, len(c.TickMarks))
		copy(out.TickMarks, c.TickMarks)
	}

	return out
}
