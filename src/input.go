package skipper

/*------------------------------------------------------------------
 *
 * Purpose: Input stage: downmix, dither, band-limit, envelope.
 *
 *----------------------------------------------------------------*/

// PrewarmSeconds is how long the envelope ring is pre-rolled with
// filtered dither noise at startup, so the first real window's
// envelope is not contaminated by zeros.
const PrewarmSeconds = 6

// inputStage turns one raw stereo frame into a filtered mono sample
// and its instantaneous envelope energy, owning the dither source,
// band-limiting cascade and envelope ring.
type inputStage struct {
	channels int

	dither   *ditherLCG
	filter   *bandLimiter
	envelope *envelopeRing
}

func newInputStage(rate, channels int) *inputStage {
	s := &inputStage{
		channels: channels,
		dither:   newDitherLCG(),
		filter:   newBandLimiter(rate),
		envelope: newEnvelopeRing(rate),
	}
	s.prewarm(rate)
	return s
}

// prewarm runs PrewarmSeconds of filtered dither noise through the
// band-limiter and envelope ring ahead of any real audio.
func (s *inputStage) prewarm(rate int) {
	noise := make([]float64, PrewarmSeconds*rate)
	for i := range noise {
		noise[i] = float64(s.dither.next())
	}
	s.filter.applyBuffer(noise)
	s.envelope.prewarm(noise)
}

// downmix reduces one frame (1 or 2 channels) to a single mono sample:
// stereo is summed then halved, mono passes through unchanged.
func (s *inputStage) downmix(l, r int16) float64 {
	if s.channels == 1 {
		return float64(l)
	}
	return (float64(l) + float64(r)) / 2
}

// push processes one mono sample: add dither, band-limit, update the
// envelope ring, and return the filtered sample (for the filtered
// debug channel) alongside the envelope energy (for the level debug
// channel and the window analyzer).
func (s *inputStage) push(mono float64) (filtered, energy float64) {
	dithered := mono + float64(s.dither.next())
	filtered = s.filter.apply(dithered)
	energy = s.envelope.push(filtered)
	return filtered, energy
}
