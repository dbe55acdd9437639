package skipper

/*------------------------------------------------------------------
 *
 * Purpose: 3x3x3x3 neighborhood dilation of a sparse tensor.
 *
 *----------------------------------------------------------------*/

// dilate fills empty cells from their nonzero 3x3x3x3 neighbors,
// writing each pass to a shadow array so labeled cells are never
// contaminated within a pass, and repeats until a pass changes
// nothing. Unknown cells only ever decrease, so the loop terminates.
func dilate(t *Tensor) {
	dims := t.dims
	for {
		shadow := make([]int8, len(t.data))
		copy(shadow, t.data)
		changed := false

		for h := 0; h < dims[0]; h++ {
			for i := 0; i < dims[1]; i++ {
				for j := 0; j < dims[2]; j++ {
					for k := 0; k < dims[3]; k++ {
						idx := t.index(h, i, j, k)
						if t.data[idx] != 0 {
							continue
						}
						sum, count := neighborSum(t, h, i, j, k)
						if count > 0 {
							v := int8(roundInt(float64(sum) / float64(count)))
							// A zero mean leaves the cell empty, so
							// only a nonzero fill counts as a change.
							if v != 0 {
								shadow[idx] = v
								changed = true
							}
						}
					}
				}
			}
		}

		copy(t.data, shadow)
		if !changed {
			return
		}
	}
}

// neighborSum sums the nonzero values in the 3x3x3x3 neighborhood
// around (h,i,j,k), excluding the center cell and any out-of-range
// neighbor (no edge wraparound, no saturating duplication).
func neighborSum(t *Tensor, h, i, j, k int) (sum int, count int) {
	dims := t.dims
	for dh := -1; dh <= 1; dh++ {
		hh := h + dh
		if hh < 0 || hh >= dims[0] {
			continue
		}
		for di := -1; di <= 1; di++ {
			ii := i + di
			if ii < 0 || ii >= dims[1] {
				continue
			}
			for dj := -1; dj <= 1; dj++ {
				jj := j + dj
				if jj < 0 || jj >= dims[2] {
					continue
				}
				for dk := -1; dk <= 1; dk++ {
					kk := k + dk
					if kk < 0 || kk >= dims[3] {
						continue
					}
					if dh == 0 && di == 0 && dj == 0 && dk == 0 {
						continue
					}
					v := t.data[t.index(hh, ii, jj, kk)]
					if v != 0 {
						sum += int(v)
						count++
					}
				}
			}
		}
	}
	return sum, count
}
