package skipper

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descAt(h, i, j, k int) Descriptor {
	return Descriptor{
		RangeDB:  uint8(h),
		Cycles:   uint8(i * 2),
		LowThird: uint8(j << 4),
		MidThird: uint8(k << 4),
	}
}

func TestScoreCellAUnique(t *testing.T) {
	assert.Equal(t, int8(99), scoreCell(3, 0, 10, 10))
}

func TestScoreCellBUnique(t *testing.T) {
	assert.Equal(t, int8(-99), scoreCell(0, 3, 10, 10))
}

func TestScoreCellEmpty(t *testing.T) {
	assert.Equal(t, int8(0), scoreCell(0, 0, 10, 10))
}

func TestScoreCellContestedEqualWeight(t *testing.T) {
	// Equal normalized weight in both classes should score near zero.
	v := scoreCell(5, 5, 10, 10)
	assert.Equal(t, int8(0), v)
}

func TestScoreCellContestedFavorsDominant(t *testing.T) {
	// Class A is four times as prevalent (normalized) as class B.
	v := scoreCell(8, 2, 10, 10)
	assert.Greater(t, v, int8(0))
}

func TestReadDescriptorsRoundTrip(t *testing.T) {
	ds := []Descriptor{descAt(1, 2, 3, 4), descAt(10, 20, 5, 6)}
	var buf bytes.Buffer
	for _, d := range ds {
		buf.Write(d.MarshalBinary())
	}
	got, err := ReadDescriptors(&buf)
	require.NoError(t, err)
	assert.Equal(t, ds, got)
}

func TestReadDescriptorsRejectsTruncated(t *testing.T) {
	_, err := ReadDescriptors(bytes.NewReader([]byte{1, 2, 3}))
	assert.Error(t, err)
}

func TestSplitBuildAlternatesHalves(t *testing.T) {
	var ds []Descriptor
	for i := 0; i < 10; i++ {
		ds = append(ds, descAt(i, 0, 0, 0))
	}
	build, testSet := splitBuild(ds, true)
	assert.Len(t, build, 5)
	assert.Len(t, testSet, 5)
	// Disjoint: every even index in build, every odd in test.
	for _, d := range build {
		assert.Equal(t, 0, int(d.RangeDB)%2)
	}
	for _, d := range testSet {
		assert.Equal(t, 1, int(d.RangeDB)%2)
	}
}

func TestSplitBuildNoAlternateKeepsAll(t *testing.T) {
	ds := []Descriptor{descAt(1, 0, 0, 0), descAt(2, 0, 0, 0)}
	build, testSet := splitBuild(ds, false)
	assert.Equal(t, ds, build)
	assert.Empty(t, testSet)
}

func TestBuildTensorAUniqueCellsScorePositive(t *testing.T) {
	// Class A has a distinct descriptor no B window ever produces.
	descsA := []Descriptor{descAt(40, 0, 0, 0), descAt(40, 0, 0, 0)}
	descsB := []Descriptor{descAt(1, 1, 1, 1)}

	tn, err := BuildTensor(TrainerConfig{Dims: 4}, descsA, descsB)
	require.NoError(t, err)

	h, i, j, k := descAt(40, 0, 0, 0).TensorIndex()
	assert.Equal(t, int8(99), tn.At(h, i, j, k))
}

func TestBuildTensorRejectsEmptyBuildSet(t *testing.T) {
	_, err := BuildTensor(TrainerConfig{Dims: 4}, nil, []Descriptor{descAt(1, 1, 1, 1)})
	assert.Error(t, err)
}

func TestBuildTensorRejectsBadDims(t *testing.T) {
	_, err := BuildTensor(TrainerConfig{Dims: 0}, []Descriptor{descAt(1, 1, 1, 1)}, []Descriptor{descAt(2, 2, 2, 2)})
	assert.Error(t, err)
}

func TestExpandReducedDimsReplicatesCollapsedPlane(t *testing.T) {
	dims := 2 // only h,i axes populated; j,k collapse
	shape := reducedShape(dims)
	plane := newTensorWithDims(shape)
	plane.Set(3, 3, 0, 0, 77)

	full := expandReducedDims(plane, dims)
	// Every (j,k) combination at (3,3) should carry the same replicated
	// value.
	for j := 0; j < TensorDimJ; j++ {
		for k := 0; k < TensorDimK; k++ {
			assert.Equal(t, int8(77), full.At(3, 3, j, k))
		}
	}
}

func TestBuildTensorDimensionReductionProducesFullShape(t *testing.T) {
	descsA := []Descriptor{descAt(10, 10, 0, 0), descAt(10, 10, 0, 0)}
	descsB := []Descriptor{descAt(30, 2, 0, 0)}

	tn, err := BuildTensor(TrainerConfig{Dims: 2}, descsA, descsB)
	require.NoError(t, err)
	assert.Equal(t, [4]int{TensorDimH, TensorDimI, TensorDimJ, TensorDimK}, tn.dims)
}
