package skipper

/*------------------------------------------------------------------
 *
 * Purpose: Output ring, crossfade buffer and flush/keep-alive logic.
 *
 * The splicer holds a ring of recent output samples and performs
 * fade-out/fade-in crossfades centered on confirmed transition
 * samples. The fades are linear on each side; the two half-fades are
 * mixed additively afterward, so their envelopes sum to roughly one.
 *
 *----------------------------------------------------------------*/

import (
	"encoding/binary"
	"io"
)

// SkipPolicy decides, for a confirmed Mode, whether that mode's audio is
// skipped (elided) or kept (written through).
type SkipPolicy int

const (
	PassAll SkipPolicy = iota
	SkipMusic
	SkipTalk
	SkipAllModes
)

// skips reports whether mode's audio should be elided under this
// policy. ModeNone (the period before any confirmed transition) is
// always kept: nothing can be skipped before the classifier has
// decided anything.
func (p SkipPolicy) skips(mode Mode) bool {
	if mode == ModeNone {
		return false
	}
	switch p {
	case SkipMusic:
		return mode == ModeMusic
	case SkipTalk:
		return mode == ModeTalk
	case SkipAllModes:
		return true
	default:
		return false
	}
}

// Splicer owns the output ring and crossfade buffer and performs the
// fade-out/fade-in splice on confirmed transitions, plus periodic
// flush and keep-alive crossfades while skipping.
type Splicer struct {
	rate         int
	ring         *sampleRing
	crossfadeLen int

	crossfadeBuf  []stereoSample
	crossfadeFull bool

	policy    SkipPolicy
	keepAlive bool

	currentMode Mode
	numSamples  int64

	out              io.Writer
	samplesWritten   int64
	samplesDiscarded int64
}

// NewSplicer allocates the output ring (OutputSeconds of stereo audio)
// and the crossfade buffer (CrossfadeSecs) for the given sample rate.
func NewSplicer(rate int, out io.Writer, policy SkipPolicy, keepAlive bool) *Splicer {
	return &Splicer{
		rate:         rate,
		ring:         newSampleRing(OutputSeconds * rate),
		crossfadeLen: CrossfadeSecs * rate,
		policy:       policy,
		keepAlive:    keepAlive,
		out:          out,
	}
}

func (s *Splicer) SamplesWritten() int64   { return s.samplesWritten }
func (s *Splicer) SamplesDiscarded() int64 { return s.samplesDiscarded }
func (s *Splicer) CurrentMode() Mode       { return s.currentMode }

// Push enqueues one stereo output sample, growing the monotonic sample
// counter used to anchor transitions and flushes against absolute
// stream position.
func (s *Splicer) Push(l, r int16) error {
	if err := s.ring.push(stereoSample{L: l, R: r}); err != nil {
		return err
	}
	s.numSamples++
	return nil
}

// RingFull reports whether the output ring has reached capacity, one
// of the two flush triggers.
func (s *Splicer) RingFull() bool { return s.ring.Full() }

// HandleTransition performs the fade-out or fade-in splice for a
// confirmed classifier Transition. A transition between two modes with
// the same skip disposition (both kept, as under PassAll, or both
// skipped, as under -n) needs no splice at all: there is no audible
// join to smooth over, so the ring keeps flowing through MaybeFlush
// untouched and pass-through output stays bit-identical to the input.
func (s *Splicer) HandleTransition(t Transition) error {
	wasSkipping := s.policy.skips(s.currentMode)
	willSkip := s.policy.skips(t.To)
	if wasSkipping == willSkip {
		s.currentMode = t.To
		return nil
	}

	audioOffset := t.TransitionSample - s.numSamples + int64(s.ring.Len())
	crossfadeStart := audioOffset - int64(s.crossfadeLen/2)
	if crossfadeStart < 0 {
		return invariantErrorf(
			"transition anchor outside output ring: offset=%d crossfadeStart=%d ringLen=%d",
			audioOffset, crossfadeStart, s.ring.Len())
	}
	if crossfadeStart > int64(s.ring.Len()) {
		crossfadeStart = int64(s.ring.Len())
	}

	if willSkip {
		return s.fadeOut(int(crossfadeStart), t.To)
	}
	return s.fadeIn(int(crossfadeStart), t.To)
}

// fadeOut writes the kept prefix up to crossfadeStart, then fades the
// next crossfadeLen samples down to silence and saves them (unwritten)
// for additive mixing into the next fade-in.
func (s *Splicer) fadeOut(crossfadeStart int, to Mode) error {
	prefix := s.ring.popFront(crossfadeStart)
	if err := s.writeSamples(prefix); err != nil {
		return err
	}

	seg := s.ring.popFront(s.crossfadeLen)
	n := len(seg)
	faded := make([]stereoSample, n)
	for i, samp := range seg {
		mult := float64(n-i) / float64(n) // i/N for i from N down to 1
		faded[i] = scaleSample(samp, mult)
	}
	s.crossfadeBuf = faded
	s.crossfadeFull = true
	s.currentMode = to
	return nil
}

// fadeIn discards crossfadeStart samples of the class being left,
// fades the next crossfadeLen samples up from silence, and additively
// mixes in any saved fade-out tail, saturating to int16.
func (s *Splicer) fadeIn(crossfadeStart int, to Mode) error {
	dropped := crossfadeStart
	s.ring.dropFront(dropped)
	s.samplesDiscarded += int64(dropped)

	seg := s.ring.popFront(s.crossfadeLen)
	n := len(seg)
	out := make([]stereoSample, n)
	for i, samp := range seg {
		mult := float64(i+1) / float64(n)
		mixed := scaleSample(samp, mult)
		if s.crossfadeFull && i < len(s.crossfadeBuf) {
			mixed = addSaturate(mixed, s.crossfadeBuf[i])
		}
		out[i] = mixed
	}
	s.crossfadeFull = false
	if err := s.writeSamples(out); err != nil {
		return err
	}
	s.currentMode = to
	return nil
}

// MaybeFlush runs the non-transition flush: whenever the ring is full,
// or the confirmed backlog reaches 60s, flush the confirmed-available
// prefix, writing it if the current mode is kept and discarding it
// if skipped (with an optional keep-alive crossfade).
func (s *Splicer) MaybeFlush(confirmedSample int64) error {
	halfStep := int64(roundInt(StepSeconds * float64(s.rate) / 2))
	available := confirmedSample - s.numSamples + int64(s.ring.Len()) + halfStep

	// The backlog trigger fires at half the ring capacity (60s).
	backlogTrigger := available >= int64(s.ring.Cap()/2)
	if !s.ring.Full() && !backlogTrigger {
		return nil
	}
	if available <= 0 {
		return nil
	}
	if available > int64(s.ring.Len()) {
		available = int64(s.ring.Len())
	}

	skipping := s.policy.skips(s.currentMode)
	if skipping && s.keepAlive && available > int64(2*s.crossfadeLen) {
		return s.keepAliveFlush(available)
	}

	samples := s.ring.popFront(int(available))
	if skipping {
		s.samplesDiscarded += int64(len(samples))
		return nil
	}
	return s.writeSamples(samples)
}

// keepAliveFlush splices a synthetic, heavily attenuated crossfade
// partway through a long skip so downstream consumers don't see a
// silent underrun.
func (s *Splicer) keepAliveFlush(available int64) error {
	start := available/2 - int64(s.crossfadeLen)
	if start < 0 {
		start = 0
	}

	before := s.ring.popFront(int(start))
	s.samplesDiscarded += int64(len(before))

	segLen := 2 * s.crossfadeLen
	seg := s.ring.popFront(segLen)
	for i := range seg {
		seg[i] = scaleSample(seg[i], 0.25)
	}

	firstHalf := seg[:s.crossfadeLen]
	secondHalf := seg[s.crossfadeLen:]

	out := make([]stereoSample, s.crossfadeLen)
	for i := 0; i < s.crossfadeLen; i++ {
		mult := float64(i+1) / float64(s.crossfadeLen)
		mixed := scaleSample(firstHalf[i], mult)
		if s.crossfadeFull && i < len(s.crossfadeBuf) {
			mixed = addSaturate(mixed, s.crossfadeBuf[i])
		}
		out[i] = mixed
	}
	if err := s.writeSamples(out); err != nil {
		return err
	}

	consumed := int64(len(before)) + int64(len(seg))
	if available > consumed {
		extra := s.ring.popFront(int(available - consumed))
		s.samplesDiscarded += int64(len(extra))
	}

	newBuf := make([]stereoSample, s.crossfadeLen)
	for i := 0; i < s.crossfadeLen; i++ {
		mult := float64(s.crossfadeLen-i) / float64(s.crossfadeLen)
		newBuf[i] = scaleSample(secondHalf[i], mult)
	}
	s.crossfadeBuf = newBuf
	s.crossfadeFull = true
	return nil
}

// Drain flushes whatever remains in the ring on EOF, writing or
// discarding it according to the current mode.
func (s *Splicer) Drain() error {
	if s.ring.Empty() {
		return nil
	}
	remaining := s.ring.popFront(s.ring.Len())
	if s.policy.skips(s.currentMode) {
		s.samplesDiscarded += int64(len(remaining))
		return nil
	}
	return s.writeSamples(remaining)
}

// writeSamples encodes samples to little-endian stereo PCM and writes
// them to the configured sink, propagating any write failure.
func (s *Splicer) writeSamples(samples []stereoSample) error {
	if len(samples) == 0 {
		return nil
	}
	buf := make([]byte, len(samples)*4)
	for i, samp := range samples {
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(samp.L))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(samp.R))
	}
	if s.out != nil {
		if _, err := s.out.Write(buf); err != nil {
			return resourceError("writing output PCM", err)
		}
	}
	s.samplesWritten += int64(len(samples))
	return nil
}

func scaleSample(s stereoSample, mult float64) stereoSample {
	return stereoSample{
		L: saturateInt16(float64(s.L) * mult),
		R: saturateInt16(float64(s.R) * mult),
	}
}

func addSaturate(a, b stereoSample) stereoSample {
	return stereoSample{
		L: saturateInt16(float64(a.L) + float64(b.L)),
		R: saturateInt16(float64(a.R) + float64(b.R)),
	}
}

func saturateInt16(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
