package skipper

/*------------------------------------------------------------------
 *
 * Purpose: The 8-byte per-window acoustic descriptor.
 *
 *----------------------------------------------------------------*/

// Descriptor is the fixed-width per-window feature record written to the
// analysis file and looked up in the tensor. Every field is quantized to
// a single byte; spare is reserved and always zero.
type Descriptor struct {
	RangeDB     uint8 // 0..95
	Cycles      uint8 // 0..128, always even
	LowThird    uint8 // quantized fraction, 0..255
	MidThird    uint8
	HighThird   uint8
	AttackRatio uint8 // 128 (0.5) when Cycles < 4
	PeakJitter  uint8 // 255 (1.0) when Cycles < 6
	Spare       uint8 // always 0
}

// MarshalBinary encodes the descriptor as its 8-byte wire form.
func (d Descriptor) MarshalBinary() []byte {
	return []byte{
		d.RangeDB, d.Cycles, d.LowThird, d.MidThird,
		d.HighThird, d.AttackRatio, d.PeakJitter, d.Spare,
	}
}

// UnmarshalDescriptor decodes one 8-byte record.
func UnmarshalDescriptor(b []byte) (Descriptor, error) {
	if len(b) != 8 {
		return Descriptor{}, configErrorf("descriptor record must be 8 bytes, got %d", len(b))
	}
	return Descriptor{
		RangeDB: b[0], Cycles: b[1], LowThird: b[2], MidThird: b[3],
		HighThird: b[4], AttackRatio: b[5], PeakJitter: b[6], Spare: b[7],
	}, nil
}

// TensorIndex derives the 4-D tensor coordinate for this descriptor:
// h = min(range_dB,47), i = min(cycles>>1,23), j = min(low_third>>4,15),
// k = min(mid_third>>4,15). Sub-resolution bits are dropped and each
// axis saturates to its edge. HighThird, AttackRatio and PeakJitter are
// recorded in the analysis file but not used for indexing at the
// current dimensioning.
func (d Descriptor) TensorIndex() (h, i, j, k int) {
	h = clampInt(int(d.RangeDB), 0, TensorDimH-1)
	i = clampInt(int(d.Cycles)>>1, 0, TensorDimI-1)
	j = clampInt(int(d.LowThird)>>4, 0, TensorDimJ-1)
	k = clampInt(int(d.MidThird)>>4, 0, TensorDimK-1)
	return
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// quantizeFraction maps a zone fraction in [0,1] to a byte after the
// nonlinear rescale f <- f*((1-f)*3/4 + 1), which concentrates typical
// fractions around the middle of the byte range.
func quantizeFraction(f float64) uint8 {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	f = f * ((1-f)*0.75 + 1)
	if f > 1 {
		f = 1
	}
	v := int(f*255 + 0.5)
	return uint8(clampInt(v, 0, 255))
}

// quantizeUnit maps a value already confined to [0,1] straight to a byte
// (used for attack ratio and peak jitter, which are not zone fractions
// and so skip the nonlinear rescale).
func quantizeUnit(f float64) uint8 {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	v := int(f*255 + 0.5)
	return uint8(clampInt(v, 0, 255))
}
