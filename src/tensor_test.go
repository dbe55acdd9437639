package skipper

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTensorAtSetRoundTrip(t *testing.T) {
	tn := NewTensor()
	tn.Set(1, 2, 3, 4, -42)
	assert.Equal(t, int8(-42), tn.At(1, 2, 3, 4))
}

func TestTensorIndexSaturatesOutOfRange(t *testing.T) {
	tn := NewTensor()
	tn.Set(TensorDimH-1, TensorDimI-1, TensorDimJ-1, TensorDimK-1, 7)
	assert.Equal(t, int8(7), tn.At(1000, 1000, 1000, 1000))
}

func TestTensorScoreLooksUpByDescriptorIndex(t *testing.T) {
	tn := NewTensor()
	d := Descriptor{RangeDB: 10, Cycles: 4, LowThird: 32, MidThird: 16}
	h, i, j, k := d.TensorIndex()
	tn.Set(h, i, j, k, 55)
	assert.Equal(t, int8(55), tn.Score(d))
}

func TestTensorFileRoundTrip(t *testing.T) {
	tn := NewTensor()
	// Scatter some nonzero cells so the coder has real work to do.
	for n := 0; n < 500; n++ {
		h := (n * 7) % TensorDimH
		i := (n * 3) % TensorDimI
		j := (n * 5) % TensorDimJ
		k := (n * 11) % TensorDimK
		tn.Set(h, i, j, k, int8(n%199-99))
	}

	var buf bytes.Buffer
	_, err := tn.WriteTo(&buf)
	require.NoError(t, err)

	got, err := ReadTensor(&buf)
	require.NoError(t, err)

	assert.Equal(t, tn.data, got.data)
	assert.Equal(t, tn.checksum(), got.checksum())
}

func TestReadTensorRejectsBadVersion(t *testing.T) {
	tn := NewTensor()
	var buf bytes.Buffer
	_, err := tn.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.Bytes()
	raw[0] = 2 // corrupt version field

	_, err = ReadTensor(bytes.NewReader(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tensor")
}

func TestReadTensorRejectsDimMismatch(t *testing.T) {
	tn := NewTensor()
	var buf bytes.Buffer
	_, err := tn.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.Bytes()
	raw[8] = 99 // corrupt dims[0]

	_, err = ReadTensor(bytes.NewReader(raw))
	require.Error(t, err)
}

func TestReadTensorRejectsChecksumMismatch(t *testing.T) {
	tn := NewTensor()
	tn.Set(0, 0, 0, 0, 99)
	var buf bytes.Buffer
	_, err := tn.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.Bytes()
	raw[4] ^= 0xFF // corrupt checksum field

	_, err = ReadTensor(bytes.NewReader(raw))
	require.Error(t, err)
}

func TestReadTensorRejectsTruncatedHeader(t *testing.T) {
	_, err := ReadTensor(bytes.NewReader([]byte{1, 2, 3}))
	require.Error(t, err)
}

// Property: every tensor value stays within the documented bound, and
// a populated tensor round-trips through the on-disk codec exactly.
func TestTensorValueRangeAndCodecRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tn := NewTensor()
		n := rapid.IntRange(0, 200).Draw(t, "n")
		for i := 0; i < n; i++ {
			h := rapid.IntRange(0, TensorDimH-1).Draw(t, "h")
			ii := rapid.IntRange(0, TensorDimI-1).Draw(t, "i")
			j := rapid.IntRange(0, TensorDimJ-1).Draw(t, "j")
			k := rapid.IntRange(0, TensorDimK-1).Draw(t, "k")
			v := rapid.Int32Range(-99, 99).Draw(t, "v")
			tn.Set(h, ii, j, k, int8(v))
		}

		for _, v := range tn.data {
			assert.GreaterOrEqual(t, v, int8(-99))
			assert.LessOrEqual(t, v, int8(99))
		}

		var buf bytes.Buffer
		_, err := tn.WriteTo(&buf)
		require.NoError(t, err)
		got, err := ReadTensor(&buf)
		require.NoError(t, err)
		assert.Equal(t, tn.data, got.data)
		assert.Equal(t, tn.checksum(), got.checksum())
	})
}
