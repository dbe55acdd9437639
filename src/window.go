package skipper

/*------------------------------------------------------------------
 *
 * Purpose: Sliding window analyzer.
 *
 * Collects a W = 5*rate sample window of envelope energies, advancing
 * by S = 0.2*rate, and emits one Descriptor per full slide: dynamic
 * range, completed half-cycle count, zone occupancy fractions, attack
 * ratio and peak jitter.
 *
 *----------------------------------------------------------------*/

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// windowAnalyzer accumulates energies into a ring of length W and emits
// a Descriptor every S new samples once the ring is full.
type windowAnalyzer struct {
	w, s  int
	ring  []float64
	pos   int // next write position
	seen  int // total energies ever pushed, saturating at w for fullness checks
	since int // energies pushed since the last emitted descriptor
}

func newWindowAnalyzer(rate int) *windowAnalyzer {
	return &windowAnalyzer{
		w:    windowLen(rate),
		s:    stepLen(rate),
		ring: make([]float64, windowLen(rate)),
	}
}

// push adds one energy sample. It returns a Descriptor and true whenever
// a full window slide has just completed.
func (a *windowAnalyzer) push(energy float64) (Descriptor, bool) {
	a.ring[a.pos] = energy
	a.pos = (a.pos + 1) % a.w

	if a.seen < a.w {
		// Still filling. The hop counter starts once a full window
		// exists to slide; the first descriptor comes one step after
		// the fill.
		a.seen++
		return Descriptor{}, false
	}

	a.since++
	if a.since < a.s {
		return Descriptor{}, false
	}
	a.since -= a.s

	ordered := make([]float64, a.w)
	// a.pos is the index of the oldest sample (about to be overwritten next).
	for i := 0; i < a.w; i++ {
		ordered[i] = a.ring[(a.pos+i)%a.w]
	}
	return analyzeWindow(ordered), true
}

// analyzeWindow computes a single Descriptor from one W-length ordered
// (oldest-to-newest) slice of envelope energies.
func analyzeWindow(win []float64) Descriptor {
	peak := floats.Max(win)
	trough := floats.Min(win)

	if peak <= 0 || trough <= 0 {
		// Silence or a degenerate window: no signal to characterize.
		return Descriptor{
			AttackRatio: quantizeUnit(0.5),
			PeakJitter:  quantizeUnit(1.0),
		}
	}

	rangeDB := clampInt(roundInt(10*math.Log10(peak/trough)), 0, 95)

	triggers := pickCycles(win, peak, trough)
	cycles := len(triggers)

	lowF, midF, highF := zoneFractions(win, peak, trough)

	d := Descriptor{
		RangeDB:   uint8(rangeDB),
		Cycles:    uint8(cycles),
		LowThird:  quantizeFraction(lowF),
		MidThird:  quantizeFraction(midF),
		HighThird: quantizeFraction(highF),
	}

	d.AttackRatio = attackRatio(triggers)
	d.PeakJitter = peakJitter(triggers)

	return d
}

// pickCycles runs the alternating trough-then-peak extremum picker. A
// candidate extremum is confirmed once a later sample breaches the
// geometric threshold sqrt(peak/trough) in the opposite direction;
// each confirmation toggles the search direction.
func pickCycles(win []float64, peak, trough float64) []int {
	thresh := math.Sqrt(peak / trough)

	var triggers []int
	lookingForTrough := true
	candIdx := 0
	candVal := win[0]

	for i := 1; i < len(win); i++ {
		v := win[i]
		if lookingForTrough {
			if v < candVal {
				candVal, candIdx = v, i
			} else if candVal > 0 && v/candVal >= thresh {
				triggers = appendTrigger(triggers, candIdx)
				lookingForTrough = false
				candVal, candIdx = v, i
			}
		} else {
			if v > candVal {
				candVal, candIdx = v, i
			} else if v > 0 && candVal/v >= thresh {
				triggers = appendTrigger(triggers, candIdx)
				lookingForTrough = true
				candVal, candIdx = v, i
			}
		}
	}

	if len(triggers)%2 != 0 {
		triggers = triggers[:len(triggers)-1]
	}
	return triggers
}

// appendTrigger adds a confirmed extremum index, capping the vector at
// MaxCycles by discarding the two most recent and continuing. Dropping
// a pair keeps the trough/peak alternation parity intact.
func appendTrigger(triggers []int, idx int) []int {
	triggers = append(triggers, idx)
	if len(triggers) > MaxCycles {
		triggers = triggers[:len(triggers)-2]
	}
	return triggers
}

// zoneFractions partitions the window into three energy zones with the
// cube root of peak/trough as the divider ([trough, trough*cr),
// [trough*cr, peak/cr], (peak/cr, peak]) and returns the fraction of
// samples falling in each, pre-rescale.
func zoneFractions(win []float64, peak, trough float64) (low, mid, high float64) {
	cr := math.Cbrt(peak / trough)
	loBound := trough * cr
	hiBound := peak / cr

	var nLow, nMid, nHigh int
	for _, v := range win {
		switch {
		case v < loBound:
			nLow++
		case v <= hiBound:
			nMid++
		default:
			nHigh++
		}
	}
	total := float64(len(win))
	return float64(nLow) / total, float64(nMid) / total, float64(nHigh) / total
}

// attackRatio partitions inter-trigger intervals by parity: odd-parity
// intervals are attacks, even-parity decays. Returns the quantized
// default (0.5) when cycles < 4, or when the parity split degenerates
// to an all-attack or all-decay window.
func attackRatio(triggers []int) uint8 {
	cycles := len(triggers)
	if cycles < 4 {
		return quantizeUnit(0.5)
	}

	var attackSum, decaySum float64
	var attackCount, decayCount int
	for i := 0; i < cycles-1; i++ {
		interval := float64(triggers[i+1] - triggers[i])
		if i%2 == 0 { // odd-parity interval (1-indexed i+1 is odd)
			attackSum += interval
			attackCount++
		} else {
			decaySum += interval
			decayCount++
		}
	}

	if attackCount == 0 || decayCount == 0 {
		return quantizeUnit(0.5)
	}

	ratio := attackSum / (attackSum + decaySum)
	if attackCount != decayCount {
		ratio *= float64(attackCount+decayCount) / (2 * float64(attackCount))
	}
	return quantizeUnit(ratio)
}

// peakJitter predicts a uniform period from the first and last peak
// position (the odd-indexed triggers) and reports the mean absolute
// residual divided by that period, clamped to 1.0. Defaults to 1.0
// with fewer than three peaks.
func peakJitter(triggers []int) uint8 {
	var peaks []float64
	for i := 1; i < len(triggers); i += 2 {
		peaks = append(peaks, float64(triggers[i]))
	}
	if len(peaks) < 3 {
		return quantizeUnit(1.0)
	}

	n := len(peaks)
	period := (peaks[n-1] - peaks[0]) / float64(n-1)
	if period <= 0 {
		return quantizeUnit(1.0)
	}

	residuals := make([]float64, n)
	for i, p := range peaks {
		predicted := peaks[0] + float64(i)*period
		residuals[i] = math.Abs(p - predicted)
	}
	jitter := stat.Mean(residuals, nil) / period
	if jitter > 1.0 {
		jitter = 1.0
	}
	return quantizeUnit(jitter)
}
