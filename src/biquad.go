package skipper

/*------------------------------------------------------------------
 *
 * Purpose: Band-limiting IIR filters for the input stage.
 *
 * Standard RBJ Audio-EQ-Cookbook biquad sections, normalized by sample
 * rate. The analysis chain cascades a ~250Hz high-pass into a ~2kHz
 * low-pass to confine energy estimation to the voice band.
 *
 *----------------------------------------------------------------*/

import "math"

// biquadCoefs holds the five normalized coefficients of a Direct Form I
// biquad section: y[n] = b0*x[n] + b1*x[n-1] + b2*x[n-2]
//
//	- a1*y[n-1] - a2*y[n-2]
type biquadCoefs struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// biquad is one second-order IIR section with its own state, so two
// instances cascade cleanly (high-pass then low-pass).
type biquad struct {
	c      biquadCoefs
	x1, x2 float64
	y1, y2 float64
}

// newBiquad builds an uninitialized section; call init before apply.
func newBiquad() *biquad { return &biquad{} }

// init computes coefficients for a high-pass or low-pass Butterworth-Q
// section at cutoff frequency fc (Hz) given the sample rate (Hz).
func (bq *biquad) init(highpass bool, fc float64, rate int) {
	const q = 0.7071067811865476 // 1/sqrt(2): maximally flat (Butterworth) Q

	w0 := 2 * math.Pi * fc / float64(rate)
	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)
	alpha := sinW0 / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	if highpass {
		b0 = (1 + cosW0) / 2
		b1 = -(1 + cosW0)
		b2 = (1 + cosW0) / 2
	} else {
		b0 = (1 - cosW0) / 2
		b1 = 1 - cosW0
		b2 = (1 - cosW0) / 2
	}
	a0 = 1 + alpha
	a1 = -2 * cosW0
	a2 = 1 - alpha

	bq.c = biquadCoefs{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
	bq.x1, bq.x2, bq.y1, bq.y2 = 0, 0, 0, 0
}

// apply filters a single sample through this section.
func (bq *biquad) apply(x float64) float64 {
	c := &bq.c
	y := c.b0*x + c.b1*bq.x1 + c.b2*bq.x2 - c.a1*bq.y1 - c.a2*bq.y2
	bq.x2, bq.x1 = bq.x1, x
	bq.y2, bq.y1 = bq.y1, y
	return y
}

// applyBuffer filters an entire buffer in place.
func (bq *biquad) applyBuffer(buf []float64) {
	for i, x := range buf {
		buf[i] = bq.apply(x)
	}
}

// bandLimiter cascades the high-pass (~250Hz) and low-pass (~2kHz)
// sections applied before envelope estimation.
type bandLimiter struct {
	hp, lp *biquad
}

func newBandLimiter(rate int) *bandLimiter {
	hp := newBiquad()
	hp.init(true, 250, rate)
	lp := newBiquad()
	lp.init(false, 2000, rate)
	return &bandLimiter{hp: hp, lp: lp}
}

func (f *bandLimiter) apply(x float64) float64 {
	return f.lp.apply(f.hp.apply(x))
}

// applyBuffer runs both sections over a whole buffer in place.
func (f *bandLimiter) applyBuffer(buf []float64) {
	f.hp.applyBuffer(buf)
	f.lp.applyBuffer(buf)
}
