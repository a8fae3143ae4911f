package meter

import (
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-vecmath"
)

// Channel is one meter channel: a Tracker plus channel identity,
// active (mute) state and the optional label-strip role.
type Channel struct {
	tracker *Tracker

	name       string
	labelStrip bool

	// active is read by the producer in SetInputLevel/ProcessBlock and
	// written by the consumer in SetActive.
	active atomic.Bool

	// squares is the scratch for the vectorized block peak scan. Sized
	// at construction; grows only if a larger block arrives.
	squares []float64
}

// NewChannel creates a meter channel.
func NewChannel(name string, cfg Config, specs []SegmentSpec) (*Channel, error) {
	tracker, err := NewTracker(cfg, specs)
	if err != nil {
		return nil, err
	}

	c := &Channel{
		tracker: tracker,
		name:    name,
	}
	c.active.Store(true)

	return c, nil
}

// Name returns the channel name.
func (c *Channel) Name() string {
	return c.name
}

// SetName sets the channel name. Consumer side only.
func (c *Channel) SetName(name string) {
	c.name = name
}

// IsLabelStrip reports whether this channel only publishes tick-mark
// positions instead of a live level.
func (c *Channel) IsLabelStrip() bool {
	return c.labelStrip
}

// SetLabelStrip switches the channel into or out of label-strip mode.
// Consumer side only.
func (c *Channel) SetLabelStrip(labelStrip bool) {
	c.labelStrip = labelStrip
}

// Active reports whether the channel is un-muted.
func (c *Channel) Active() bool {
	return c.active.Load()
}

// SetActive mutes or un-mutes the channel. Muting resets the live
// level but preserves the peak hold and clip latch. Consumer side only.
func (c *Channel) SetActive(active bool) {
	c.active.Store(active)

	if !active {
		c.tracker.Reset()
	}
}

// Tracker returns the channel's level tracker.
func (c *Channel) Tracker() *Tracker {
	return c.tracker
}

// SetInputLevel stores a raw amplitude from the audio producer.
// Ignored while the channel is muted or in label-strip mode.
func (c *Channel) SetInputLevel(amplitude float64) {
	if !c.active.Load() || c.labelStrip {
		return
	}

	c.tracker.SetInputLevel(amplitude)
}

// ProcessBlock reduces an audio block to its absolute peak amplitude
// and feeds it to the input cell once. Producer side; allocation-free
// once the scratch has grown to the producer's block size (use
// WithBlockSize to pre-size it).
func (c *Channel) ProcessBlock(samples []float64) {
	if len(samples) == 0 || !c.active.Load() || c.labelStrip {
		return
	}

	if cap(c.squares) < len(samples) {
		c.squares = make([]float64, len(samples))
	}

	squares := c.squares[:len(samples)]
	vecmath.MulBlock(squares, samples, samples)

	maxSquare := 0.0
	for _, v := range squares {
		if v > maxSquare {
			maxSquare = v
		}
	}

	c.tracker.SetInputLevel(math.Sqrt(maxSquare))
}

// presizeBlock pre-sizes the block scratch so ProcessBlock does not
// allocate on its first call.
func (c *Channel) presizeBlock(blockSize int) {
	if blockSize > 0 {
		c.squares = make([]float64, blockSize)
	}
}

// Tick advances the channel's ballistics. A label strip has no live
// level and returns a zero result.
func (c *Channel) Tick(now time.Time) TickResult {
	if c.labelStrip {
		return TickResult{LevelDB: MinLevelDB, PeakHoldDB: MinLevelDB}
	}

	return c.tracker.Tick(now)
}

// TickMarks returns the tick-mark position table for label-strip
// rendering.
func (c *Channel) TickMarks() []TickMark {
	return c.tracker.TickMarks()
}

// Meters is the per-session channel set: N meter channels plus one
// label strip, all sharing one Config and one segment layout. Config
// and scale updates propagate by value to every channel.
type Meters struct {
	cfg   Config
	specs []SegmentSpec

	channels   []*Channel
	labelStrip *Channel

	blockSize int
	results   []TickResult
}

// New creates a channel set. Without options it has two channels with
// the default config and scale.
func New(opts ...Option) (*Meters, error) {
	cfg := applyOptions(opts...)

	if cfg.channels <= 0 {
		return nil, ErrInvalidChannelCount
	}

	m := &Meters{
		cfg:       cfg.meter,
		specs:     cfg.scale,
		blockSize: cfg.blockSize,
	}

	strip, err := NewChannel("label_strip", m.cfg, m.specs)
	if err != nil {
		return nil, err
	}

	strip.SetLabelStrip(true)
	m.labelStrip = strip

	if err := m.SetChannelCount(cfg.channels); err != nil {
		return nil, err
	}

	for i, name := range cfg.names {
		if ch := m.Channel(i); ch != nil {
			ch.SetName(name)
		}
	}

	return m, nil
}

// SetChannelCount rebuilds the channel set for a new channel count.
// Existing per-channel state (peaks, latches) is discarded, matching a
// host changing its channel format.
func (m *Meters) SetChannelCount(count int) error {
	if count <= 0 {
		return ErrInvalidChannelCount
	}

	channels := make([]*Channel, 0, count)

	for i := 0; i < count; i++ {
		ch, err := NewChannel(defaultChannelName(i, count), m.cfg, m.specs)
		if err != nil {
			return err
		}

		ch.presizeBlock(m.blockSize)
		channels = append(channels, ch)
	}

	m.channels = channels
	m.results = make([]TickResult, count)

	return nil
}

func defaultChannelName(index, count int) string {
	if count == 2 {
		if index == 0 {
			return "L"
		}

		return "R"
	}

	return "ch" + strconv.Itoa(index+1)
}

// ChannelCount returns the number of meter channels (excluding the
// label strip).
func (m *Meters) ChannelCount() int {
	return len(m.channels)
}

// Channel returns the channel at index, or nil when out of range.
func (m *Meters) Channel(index int) *Channel {
	if index < 0 || index >= len(m.channels) {
		return nil
	}

	return m.channels[index]
}

// LabelStrip returns the label-strip channel.
func (m *Meters) LabelStrip() *Channel {
	return m.labelStrip
}

// SetInputLevel stores a raw amplitude for one channel. Producer side;
// out-of-range channels are ignored.
func (m *Meters) SetInputLevel(channel int, amplitude float64) {
	if channel < 0 || channel >= len(m.channels) {
		return
	}

	m.channels[channel].SetInputLevel(amplitude)
}

// ProcessBlock feeds one channel's audio block. Producer side.
func (m *Meters) ProcessBlock(channel int, samples []float64) {
	if channel < 0 || channel >= len(m.channels) {
		return
	}

	m.channels[channel].ProcessBlock(samples)
}

// Tick advances every channel to now and returns one result per
// channel. The returned slice is reused between ticks.
func (m *Meters) Tick(now time.Time) []TickResult {
	for i, ch := range m.channels {
		m.results[i] = ch.Tick(now)
	}

	return m.results
}

// SetConfig validates and propagates a new config to every channel and
// the label strip.
func (m *Meters) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.cfg = cfg

	for _, ch := range m.channels {
		if err := ch.tracker.SetConfig(cfg); err != nil {
			return err
		}
	}

	return m.labelStrip.tracker.SetConfig(cfg)
}

// Config returns a copy of the set's config.
func (m *Meters) Config() Config {
	return m.cfg
}

// SetScale propagates a new segment layout to every channel and the
// label strip.
func (m *Meters) SetScale(specs []SegmentSpec) error {
	if len(specs) == 0 {
		return ErrNoSegments
	}

	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return err
		}
	}

	m.specs = specs

	for _, ch := range m.channels {
		if err := ch.tracker.SetSegments(specs); err != nil {
			return err
		}
	}

	return m.labelStrip.tracker.SetSegments(specs)
}

// TickMarks returns the label-strip tick-mark table.
func (m *Meters) TickMarks() []TickMark {
	return m.labelStrip.TickMarks()
}

// Reset resets the live level of every channel, preserving peak holds
// and clip latches.
func (m *Meters) Reset() {
	for _, ch := range m.channels {
		ch.tracker.Reset()
	}
}

// ResetPeakHold clears the peak hold on every channel.
func (m *Meters) ResetPeakHold() {
	for _, ch := range m.channels {
		ch.tracker.ResetPeakHold()
	}
}

// ResetClip clears the clip latch on every channel.
func (m *Meters) ResetClip() {
	for _, ch := range m.channels {
		ch.tracker.ResetClip()
	}
}
