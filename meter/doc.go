// Package meter implements the numeric core of a multi-channel audio
// level meter: decaying, peak-held, clip-latched decibel readings
// mapped onto colored level segments as normalized 0..1 extents.
//
// The package bridges two rates. An audio-rate producer feeds raw
// amplitudes through SetInputLevel or ProcessBlock; these never block,
// never allocate (once pre-sized) and never take a lock. A UI-rate
// consumer calls Tick at its refresh rate and receives a TickResult
// with the decayed level, the held peak, the clip latch and
// per-segment fill extents plus a dirty flag. The single-slot input
// cell max-holds unread samples, so a transient between two ticks is
// never lost.
//
// Threading contract: exactly one producer and exactly one consumer.
// SetInputLevel and ProcessBlock are the only producer-side calls.
// Tick, SetConfig, SetScale, the resets and all queries belong to the
// consumer and must be serialized by the caller (a single-threaded UI
// or timer context). The engine creates no goroutines.
//
// Rendering is out of scope: the package emits decibels, fractions and
// booleans, never geometry. Segment colors are carried through
// untouched for the renderer.
package meter
