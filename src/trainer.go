package skipper

/*------------------------------------------------------------------
 *
 * Purpose: Offline tensor construction from two labeled descriptor
 * corpora.
 *
 *----------------------------------------------------------------*/

import (
	"io"
)

// histogram is a 4-D cell-tally array shaped like a Tensor but holding
// unbounded counts rather than saturated scores.
type histogram struct {
	dims [4]int
	data []int
}

func newHistogram(dims [4]int) *histogram {
	n := dims[0] * dims[1] * dims[2] * dims[3]
	return &histogram{dims: dims, data: make([]int, n)}
}

func (h *histogram) index(h0, i, j, k int) int {
	h0 = clampInt(h0, 0, h.dims[0]-1)
	i = clampInt(i, 0, h.dims[1]-1)
	j = clampInt(j, 0, h.dims[2]-1)
	k = clampInt(k, 0, h.dims[3]-1)
	return ((h0*h.dims[1]+i)*h.dims[2]+j)*h.dims[3] + k
}

func (h *histogram) add(h0, i, j, k int) { h.data[h.index(h0, i, j, k)]++ }
func (h *histogram) at(h0, i, j, k int) int {
	return h.data[h.index(h0, i, j, k)]
}

// TrainerConfig controls the offline tensor build.
type TrainerConfig struct {
	// Dims is the number of leading tensor axes actually populated;
	// trailing axes collapse to a single plane during accumulation and
	// scoring, and the final tensor replicates that plane across them
	// (see expandReducedDims).
	Dims int
	// Alternate tallies only every other window of each input file
	// into the build set, reserving the other half for test, so build
	// and test data are disjoint.
	Alternate bool
}

// ReadDescriptors decodes a full stream of 8-byte descriptor records.
func ReadDescriptors(r io.Reader) ([]Descriptor, error) {
	var out []Descriptor
	buf := make([]byte, 8)
	for {
		_, err := io.ReadFull(r, buf)
		if err == io.EOF {
			return out, nil
		}
		if err == io.ErrUnexpectedEOF {
			return nil, configErrorf("descriptor file truncated: not a multiple of 8 bytes")
		}
		if err != nil {
			return nil, resourceError("reading descriptor file", err)
		}
		d, derr := UnmarshalDescriptor(buf)
		if derr != nil {
			return nil, derr
		}
		out = append(out, d)
	}
}

// reducedShape returns the tensor shape used during accumulation and
// scoring: axes at or beyond dims collapse to size 1.
func reducedShape(dims int) [4]int {
	shape := [4]int{TensorDimH, TensorDimI, TensorDimJ, TensorDimK}
	for axis := dims; axis < 4; axis++ {
		shape[axis] = 1
	}
	return shape
}

// reduceCoord zeroes any coordinate component whose axis is beyond
// dims.
func reduceCoord(h, i, j, k, dims int) (int, int, int, int) {
	if dims < 2 {
		i = 0
	}
	if dims < 3 {
		j = 0
	}
	if dims < 4 {
		k = 0
	}
	return h, i, j, k
}

// splitBuild partitions descs into a build set and a test set. When
// alternate is false, every descriptor is build data (test is empty).
func splitBuild(descs []Descriptor, alternate bool) (build, test []Descriptor) {
	if !alternate {
		return descs, nil
	}
	for idx, d := range descs {
		if idx%2 == 0 {
			build = append(build, d)
		} else {
			test = append(test, d)
		}
	}
	return build, test
}

// accumulate tallies a build set's descriptors into hist at the
// dimension-reduced cell for each one, returning the window count used
// for per-file normalization.
func accumulate(hist *histogram, build []Descriptor, dims int) int {
	for _, d := range build {
		h, i, j, k := d.TensorIndex()
		h, i, j, k = reduceCoord(h, i, j, k, dims)
		hist.add(h, i, j, k)
	}
	return len(build)
}

// scoreCell maps one cell's tallies to a signed score: cells unique to
// one class saturate at ±99; contested cells are scored by normalized
// prevalence, with the dominant class's weight pinned to 1.
func scoreCell(a, b, countA, countB int) int8 {
	switch {
	case a > 0 && b == 0:
		return 99
	case b > 0 && a == 0:
		return -99
	case a == 0 && b == 0:
		return 0
	default:
		wA := float64(a) / float64(countA)
		wB := float64(b) / float64(countB)
		if wA >= wB {
			wB = wB / wA
			wA = 1
		} else {
			wA = wA / wB
			wB = 1
		}
		return int8(clampInt(roundInt(wA*TensorScoreMax-wB*TensorScoreMax), -TensorScoreMax, TensorScoreMax))
	}
}

// expandReducedDims rebuilds the fixed-shape runtime tensor by
// replicating the reduced-dimension plane across every index of the
// axes that were collapsed during training, so the runtime lookup
// table always has the full shape.
func expandReducedDims(plane *Tensor, dims int) *Tensor {
	full := NewTensor()
	for h := 0; h < TensorDimH; h++ {
		for i := 0; i < TensorDimI; i++ {
			for j := 0; j < TensorDimJ; j++ {
				for k := 0; k < TensorDimK; k++ {
					ph, pi, pj, pk := reduceCoord(h, i, j, k, dims)
					full.Set(h, i, j, k, plane.At(ph, pi, pj, pk))
				}
			}
		}
	}
	return full
}

// BuildTensor runs the complete offline construction pipeline:
// histogram accumulation, cell scoring, dilation, and (if dims<4)
// replication back to the fixed runtime shape.
func BuildTensor(cfg TrainerConfig, descsA, descsB []Descriptor) (*Tensor, error) {
	dims := cfg.Dims
	if dims <= 0 || dims > 4 {
		return nil, configErrorf("trainer dims must be in [1,4], got %d", dims)
	}

	shape := reducedShape(dims)
	distA := newHistogram(shape)
	distB := newHistogram(shape)

	buildA, _ := splitBuild(descsA, cfg.Alternate)
	buildB, _ := splitBuild(descsB, cfg.Alternate)
	countA := accumulate(distA, buildA, dims)
	countB := accumulate(distB, buildB, dims)
	if countA == 0 || countB == 0 {
		return nil, configErrorf("trainer requires nonempty build sets for both classes")
	}

	plane := newTensorWithDims(shape)
	for h := 0; h < shape[0]; h++ {
		for i := 0; i < shape[1]; i++ {
			for j := 0; j < shape[2]; j++ {
				for k := 0; k < shape[3]; k++ {
					a := distA.at(h, i, j, k)
					b := distB.at(h, i, j, k)
					plane.Set(h, i, j, k, scoreCell(a, b, countA, countB))
				}
			}
		}
	}

	dilate(plane)

	if dims == 4 {
		return plane, nil
	}
	return expandReducedDims(plane, dims), nil
}
