package skipper

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBiquadHighPassAttenuatesDC(t *testing.T) {
	bq := newBiquad()
	bq.init(true, 250, 44100)
	var last float64
	for i := 0; i < 2000; i++ {
		last = bq.apply(1.0) // constant (DC) input
	}
	assert.Less(t, math.Abs(last), 0.01)
}

func TestBiquadLowPassPassesDC(t *testing.T) {
	bq := newBiquad()
	bq.init(false, 2000, 44100)
	var last float64
	for i := 0; i < 2000; i++ {
		last = bq.apply(1.0)
	}
	assert.InDelta(t, 1.0, last, 0.01)
}

func TestBandLimiterAttenuatesOutOfBandTone(t *testing.T) {
	bl := newBandLimiter(44100)
	var peak float64
	// 50 Hz tone: well below the 250Hz high-pass corner.
	for i := 0; i < 4410; i++ {
		x := math.Sin(2 * math.Pi * 50 * float64(i) / 44100)
		y := bl.apply(x)
		if math.Abs(y) > peak {
			peak = math.Abs(y)
		}
	}
	assert.Less(t, peak, 0.5)
}

func TestBandLimiterPassesInBandTone(t *testing.T) {
	bl := newBandLimiter(44100)
	var peak float64
	// 1 kHz tone: squarely inside the 250Hz-2kHz pass band.
	for i := 0; i < 44100; i++ {
		x := math.Sin(2 * math.Pi * 1000 * float64(i) / 44100)
		y := bl.apply(x)
		if math.Abs(y) > peak {
			peak = math.Abs(y)
		}
	}
	assert.Greater(t, peak, 0.5)
}

func TestApplyBufferMatchesSequentialApply(t *testing.T) {
	a := newBiquad()
	a.init(true, 250, 44100)
	b := newBiquad()
	b.init(true, 250, 44100)

	in := []float64{1, 0.5, -0.3, 0.2, -0.1, 0, 0.7}
	buf := append([]float64(nil), in...)
	a.applyBuffer(buf)

	var want []float64
	for _, x := range in {
		want = append(want, b.apply(x))
	}
	assert.Equal(t, want, buf)
}
