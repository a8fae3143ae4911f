package meter

// setConfig collects the construction-time settings for New.
type setConfig struct {
	meter     Config
	scale     []SegmentSpec
	channels  int
	names     []string
	blockSize int
}

// Option mutates the construction settings of a channel set.
type Option func(*setConfig)

func defaultSetConfig() setConfig {
	return setConfig{
		meter:    DefaultConfig(),
		scale:    DefaultScale(),
		channels: 2,
	}
}

// WithConfig sets the meter config for all channels.
func WithConfig(cfg Config) Option {
	return func(sc *setConfig) {
		sc.meter = cfg
	}
}

// WithScale sets the segment layout for all channels.
func WithScale(specs []SegmentSpec) Option {
	return func(sc *setConfig) {
		if len(specs) > 0 {
			sc.scale = specs
		}
	}
}

// WithChannels sets the number of meter channels.
func WithChannels(channels int) Option {
	return func(sc *setConfig) {
		sc.channels = channels
	}
}

// WithChannelNames assigns names to the channels in order.
func WithChannelNames(names ...string) Option {
	return func(sc *setConfig) {
		sc.names = names
	}
}

// WithBlockSize pre-sizes the per-channel block scratch so that
// ProcessBlock never allocates on the producer thread.
func WithBlockSize(blockSize int) Option {
	return func(sc *setConfig) {
		if blockSize > 0 {
			sc.blockSize = blockSize
		}
	}
}

func applyOptions(opts ...Option) setConfig {
	sc := defaultSetConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&sc)
		}
	}

	return sc
}
