// Command wavmeter runs a level meter over a WAV file and prints the
// per-channel readings as colored segment bars.
//
// Usage:
//
//	wavmeter [flags] file.wav
//
// Examples:
//
//	wavmeter track.wav
//	wavmeter -scale smpte -decay 500 track.wav
//	wavmeter -width 60 -interval 250ms -no-color track.wav
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-meter/meter"
)

const blockFrames = 1024

func main() {
	scaleName := flag.String("scale", "default", "meter scale: default, smpte or yamaha")
	decayMS := flag.Float64("decay", meter.DefaultDecayMS, "meter decay time in milliseconds")
	peakHoldMS := flag.Float64("peak-hold", meter.DefaultPeakHoldDecayMS, "peak hold decay time in milliseconds")
	refreshHz := flag.Float64("refresh", meter.DefaultRefreshRateHz, "meter refresh rate in Hz")
	clipDB := flag.Float64("clip", meter.DefaultClipThresholdDB, "clip threshold in dB")
	width := flag.Int("width", 50, "bar width in cells")
	interval := flag.Duration("interval", 100*time.Millisecond, "print interval in audio time")
	mono := flag.Bool("mono", false, "fold all channels into one meter")
	noColor := flag.Bool("no-color", false, "disable colored output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wavmeter [flags] file.wav\n\n")
		fmt.Fprintf(os.Stderr, "Meters a WAV file and prints per-channel level bars.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if *noColor {
		color.NoColor = true
	}

	if err := run(flag.Arg(0), *scaleName, *decayMS, *peakHoldMS, *refreshHz, *clipDB, *width, *interval, *mono); err != nil {
		fmt.Fprintf(os.Stderr, "wavmeter: %v\n", err)
		os.Exit(1)
	}
}

func run(path, scaleName string, decayMS, peakHoldMS, refreshHz, clipDB float64, width int, interval time.Duration, mono bool) error {
	scale, err := scaleByName(scaleName)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	dec := wav.NewDecoder(file)

	dec.ReadInfo()
	if dec.Err() != nil {
		return dec.Err()
	}

	channels := int(dec.NumChans)
	sampleRate := float64(dec.SampleRate)
	bitDepth := uint(dec.BitDepth)
	if channels == 0 || sampleRate == 0 || bitDepth == 0 {
		return fmt.Errorf("unsupported wav header in %s", path)
	}

	cfg := meter.DefaultConfig()
	cfg.DecayTimeMS = decayMS
	cfg.PeakHoldDecayTimeMS = peakHoldMS
	cfg.RefreshRateHz = refreshHz
	cfg.ClipThresholdDB = clipDB

	meterChannels := channels
	opts := []meter.Option{
		meter.WithConfig(cfg),
		meter.WithScale(scale),
		meter.WithBlockSize(blockFrames),
	}
	if mono {
		meterChannels = 1
		opts = append(opts, meter.WithChannelNames("M"))
	}
	opts = append(opts, meter.WithChannels(meterChannels))

	meters, err := meter.New(opts...)
	if err != nil {
		return err
	}

	printScaleHeader(meters, width)

	intBuf := &audio.IntBuffer{
		Data:   make([]int, blockFrames*channels),
		Format: &audio.Format{NumChannels: channels, SampleRate: int(sampleRate)},
	}

	blocks := make([][]float64, channels)
	for ch := range blocks {
		blocks[ch] = make([]float64, blockFrames)
	}

	fullScale := float64(int64(1) << (bitDepth - 1))
	tickPeriod := time.Duration(float64(time.Second) / meters.Config().RefreshRateHz)

	var (
		frames    int64
		nextTick  = tickPeriod
		nextPrint = interval
		results   []meter.TickResult
		base      = time.Unix(0, 0)
	)

	for {
		n, err := dec.PCMBuffer(intBuf)
		if err != nil && err != io.EOF {
			return err
		}
		if n == 0 {
			break
		}

		blockLen := n / channels
		if mono {
			// Fold to one channel by the per-frame absolute maximum.
			block := blocks[0][:blockLen]
			for i := 0; i < blockLen; i++ {
				peak := 0.0
				for ch := 0; ch < channels; ch++ {
					v := float64(intBuf.Data[i*channels+ch]) / fullScale
					if v < 0 {
						v = -v
					}
					if v > peak {
						peak = v
					}
				}
				block[i] = peak
			}
			meters.ProcessBlock(0, block)
		} else {
			for ch := 0; ch < channels; ch++ {
				block := blocks[ch][:blockLen]
				for i := 0; i < blockLen; i++ {
					block[i] = float64(intBuf.Data[i*channels+ch]) / fullScale
				}
				meters.ProcessBlock(ch, block)
			}
		}

		frames += int64(blockLen)
		elapsed := time.Duration(float64(frames) / sampleRate * float64(time.Second))

		for nextTick <= elapsed {
			results = meters.Tick(base.Add(nextTick))

			if nextPrint <= nextTick {
				printResults(meters, results, nextTick, width)
				nextPrint += interval
			}

			nextTick += tickPeriod
		}
	}

	return nil
}

func scaleByName(name string) ([]meter.SegmentSpec, error) {
	switch strings.ToLower(name) {
	case "default":
		return meter.DefaultScale(), nil
	case "smpte":
		return meter.SMPTEScale(), nil
	case "yamaha":
		return meter.YamahaScale(), nil
	default:
		return nil, fmt.Errorf("unknown scale %q (want default, smpte or yamaha)", name)
	}
}

// printScaleHeader renders the label strip: a ruler with the tick
// marks placed at their normalized positions.
func printScaleHeader(meters *meter.Meters, width int) {
	ruler := make([]byte, width)
	for i := range ruler {
		ruler[i] = '-'
	}

	var legend []string
	for _, mark := range meters.TickMarks() {
		cell := int(mark.Y * float64(width-1))
		ruler[cell] = '+'
		legend = append(legend, fmt.Sprintf("%g", mark.ValueDB))
	}

	fmt.Printf("%8s  %s\n", "dB", ruler)
	fmt.Printf("%8s  ticks: %s\n", "", strings.Join(legend, " "))
}

func printResults(meters *meter.Meters, results []meter.TickResult, at time.Duration, width int) {
	for i, res := range results {
		name := meters.Channel(i).Name()
		fmt.Printf("%7.2fs %-3s %s %6s %s\n",
			at.Seconds(), name, renderBar(res, width), meter.FormatPeak(res.PeakHoldDB), clipMarker(res.Clipped))
	}
}

// renderBar draws one channel's bar: each cell is colored by the
// segment whose display band contains it, lit up to the fill extent,
// with the peak-hold marker overlaid.
func renderBar(res meter.TickResult, width int) string {
	peakCell := -1
	for _, seg := range res.Segments {
		if seg.Peak > 0 {
			peakCell = int(seg.Peak * float64(width-1))
		}
	}

	var b strings.Builder
	for cell := 0; cell < width; cell++ {
		frac := (float64(cell) + 0.5) / float64(width)

		seg, ok := segmentAt(res.Segments, frac)
		paint := cellColor(seg)

		switch {
		case cell == peakCell:
			b.WriteString(paint.Sprint("▌"))
		case ok && frac < seg.Fill:
			b.WriteString(paint.Sprint("█"))
		default:
			b.WriteString(" ")
		}
	}

	return b.String()
}

func segmentAt(segments []meter.SegmentState, frac float64) (meter.SegmentState, bool) {
	for _, seg := range segments {
		if frac >= seg.Spec.DisplayRange.Start && frac < seg.Spec.DisplayRange.End {
			return seg, true
		}
	}

	return meter.SegmentState{}, false
}

func cellColor(seg meter.SegmentState) *color.Color {
	c := seg.Spec.Color
	return color.RGB(int(c.R), int(c.G), int(c.B))
}

func clipMarker(clipped bool) string {
	if !clipped {
		return ""
	}

	return color.New(color.FgRed, color.Bold).Sprint("CLIP")
}
