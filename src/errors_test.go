package skipper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindStrings(t *testing.T) {
	assert.Equal(t, "config", KindConfig.String())
	assert.Equal(t, "resource", KindResource.String())
	assert.Equal(t, "invalid tensor", KindTensor.String())
	assert.Equal(t, "invariant violation", KindInvariant.String())
}

func TestErrorMessageIncludesWrappedErr(t *testing.T) {
	inner := errors.New("disk full")
	err := resourceError("writing output", inner)
	assert.Contains(t, err.Error(), "resource")
	assert.Contains(t, err.Error(), "writing output")
	assert.Contains(t, err.Error(), "disk full")
	assert.ErrorIs(t, err, inner)
}

func TestErrorMessageWithoutWrappedErr(t *testing.T) {
	err := configErrorf("bad value %d", 7)
	assert.Contains(t, err.Error(), "config")
	assert.Contains(t, err.Error(), "bad value 7")
}

func TestTensorErrorKindSurfacesInvalidTensorPrefix(t *testing.T) {
	err := tensorError("unsupported version", nil)
	assert.Contains(t, err.Error(), "invalid tensor")
}
