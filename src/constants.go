package skipper

// Fixed pipeline constants. These are not tunable by configuration;
// they define the shapes of every buffer and of the tensor itself.
const (
	// EnvelopeMS is the length, in milliseconds, of the rolling
	// sum-of-squares ring used to compute instantaneous energy.
	EnvelopeMS = 50

	// WindowSeconds is the length of the sliding analysis window.
	WindowSeconds = 5
	// StepMillis is the hop between successive analysis windows.
	StepMillis = 200

	// AverageCount is the number of trailing scores averaged by the
	// hysteresis classifier: ceil(5000/200).
	AverageCount = 25

	// MinMusicSecs and MinTalkSecs are the minimum dwell times, in
	// seconds, required before a tendency becomes a confirmed mode.
	MinMusicSecs = 20
	MinTalkSecs  = 10
	// MaxPendSecs is how long a pending (not-yet-confirmed) transition
	// may be contested before it is cancelled outright.
	MaxPendSecs = 60

	// OutputSeconds is the capacity of the output ring buffer.
	OutputSeconds = 120
	// CrossfadeSecs is the length of a crossfade, and of the buffer
	// that holds the pre-fade-out tail awaiting an additive mix.
	CrossfadeSecs = 2

	// MaxCycles caps the number of trigger points counted per window.
	MaxCycles = 128

	// TensorDimH, TensorDimI, TensorDimJ, TensorDimK are the fixed
	// shape of the 4-D lookup table: range_dB, cycles/2, low_third>>4,
	// mid_third>>4.
	TensorDimH = 48
	TensorDimI = 24
	TensorDimJ = 16
	TensorDimK = 16

	// TensorScoreMax is the saturation bound of a tensor cell / score.
	TensorScoreMax = 99

	// TensorFileVersion is the only version this implementation
	// accepts in a tensor file header.
	TensorFileVersion = 1

	// MinCodeWidth and MaxCodeWidth bound the dictionary coder's
	// variable code width. Encoding tries every width in the range and
	// keeps the smallest result.
	MinCodeWidth = 9
	MaxCodeWidth = 16

	// LCGSeed is the fixed seed for the dither generator. Descriptor
	// captures are only reproducible against a fixed dither sequence,
	// so the seed and formula must never change.
	LCGSeed uint32 = 0x31415926
)

// AverageSeconds is AverageCount expressed in seconds of audio (used in
// the transition-sample anchor formula).
const AverageSeconds = float64(AverageCount) * float64(StepMillis) / 1000.0

// StepSeconds is StepMillis expressed in seconds.
const StepSeconds = float64(StepMillis) / 1000.0

// envelopeLen returns N = round(rate*50ms/1000), the sum-of-squares ring size.
func envelopeLen(rate int) int {
	return roundInt(float64(rate) * EnvelopeMS / 1000.0)
}

// windowLen returns W = 5*rate, the analysis window length in samples.
func windowLen(rate int) int {
	return WindowSeconds * rate
}

// stepLen returns S = 0.2*rate, the window hop in samples.
func stepLen(rate int) int {
	return roundInt(float64(rate) * StepSeconds)
}

// minMusicCount, minTalkCount and maxPendCount are the up-counter
// thresholds, in steps. They depend only on the fixed step duration, not
// on sample rate.
func minMusicCount() int {
	return roundInt(MinMusicSecs / StepSeconds)
}

func minTalkCount() int {
	return roundInt(MinTalkSecs / StepSeconds)
}

func maxPendCount() int {
	return roundInt(MaxPendSecs / StepSeconds)
}

func roundInt(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
