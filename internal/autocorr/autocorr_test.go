package autocorr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func sineBlock(n int, freqHz, sampleRate float64) []int32 {
	out := make([]int32, n)
	for i := range out {
		v := math.Sin(2 * math.Pi * freqHz * float64(i) / sampleRate)
		out[i] = int32(v * 0.8 * float64(math.MaxInt32))
	}
	return out
}

func TestComputeAllZero(t *testing.T) {
	dst := make([]int32, 6)
	signal := make([]int32, 64)
	Compute(dst, signal)
	assert.Equal(t, int32(0x7FFFFFFF), dst[0])
	for _, k := range dst[1:] {
		assert.Equal(t, int32(0), k)
	}
}

func TestComputeNonZeroInvariants(t *testing.T) {
	dst := make([]int32, 8)
	signal := sineBlock(256, 220, 48000)
	Compute(dst, signal)
	assert.Equal(t, int32(0x7FFFFFFF), dst[0])
	for k, v := range dst {
		assert.LessOrEqualf(t, absInt32(v), dst[0], "|acf[%d]| must not exceed acf[0]", k)
	}
}

func TestComputeInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(8, 512).Draw(t, "n")
		signal := rapid.SliceOfN(rapid.Int32Range(-1<<30, 1<<30), n, n).Draw(t, "signal")
		order := rapid.IntRange(1, 16).Draw(t, "order")
		dst := make([]int32, order+1)
		Compute(dst, signal)

		anyNonZero := false
		for _, s := range signal {
			if s != 0 {
				anyNonZero = true
				break
			}
		}
		if !anyNonZero {
			return
		}
		assert.Equal(t, int32(0x7FFFFFFF), dst[0])
		for _, v := range dst {
			assert.LessOrEqual(t, absInt32(v), dst[0])
		}
	})
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
