package durbin

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cbegin/talkbox-go/internal/autocorr"
	"github.com/cbegin/talkbox-go/internal/lpcfilter"
)

func TestRecurseErrorPowerBounds(t *testing.T) {
	const order = 10
	acf := make([]int32, order+1)
	acf[0] = q1One
	for i := 1; i <= order; i++ {
		acf[i] = q1One / int32(i+1)
	}
	a := make([]int32, order)
	e := Recurse(acf, a, order, 24, KMax)
	assert.GreaterOrEqual(t, e, int32(0))
	assert.LessOrEqual(t, e, q1One)
}

func TestRecurseErrorPowerBoundsProperty(t *testing.T) {
	const order = 12
	rapid.Check(t, func(t *rapid.T) {
		acf := make([]int32, order+1)
		acf[0] = q1One
		for i := 1; i <= order; i++ {
			acf[i] = rapid.Int32Range(-q1One, q1One).Draw(t, "acf")
		}
		a := make([]int32, order)
		e := Recurse(acf, a, order, 24, KMax)
		assert.GreaterOrEqual(t, e, int32(0))
		assert.LessOrEqual(t, e, q1One)
	})
}

// sineBlock synthesizes a sum of vowel-formant-like sinusoids, matching the
// end-to-end "speech-like modulator" scenario the engine tests against.
func sineBlock(n int, sampleRate float64, freqs []float64) []int32 {
	out := make([]int32, n)
	for i := range out {
		var v float64
		for _, f := range freqs {
			v += math.Sin(2 * math.Pi * f * float64(i) / sampleRate)
		}
		v /= float64(len(freqs))
		out[i] = int32(v * 0.9 * float64(math.MaxInt32))
	}
	return out
}

// TestRecurseProducesStableFilter exercises the full chain
// (autocorrelation -> Durbin -> all-pole filter) on a synthetic vowel and
// checks the resulting model is stable: an impulse response must decay.
func TestRecurseProducesStableFilter(t *testing.T) {
	const order = 20
	const blockLen = 512
	block := sineBlock(blockLen, 48000, []float64{200, 800, 1200})

	acf := make([]int32, order+1)
	autocorr.Compute(acf, block)

	a := make([]int32, order)
	e := Recurse(acf, a, order, 24, KMax)
	assert.Greater(t, e, int32(0))

	f := lpcfilter.New(order, 24)
	impulse := int32(1) << 28
	out := make([]int32, 2048)
	out[0] = f.FilterOne(impulse, a)
	for i := 1; i < len(out); i++ {
		out[i] = f.FilterOne(0, a)
	}

	quarter := len(out) / 4
	var firstMax, lastMax int64
	for _, v := range out[:quarter] {
		if av := abs64(int64(v)); av > firstMax {
			firstMax = av
		}
	}
	for _, v := range out[len(out)-quarter:] {
		if av := abs64(int64(v)); av > lastMax {
			lastMax = av
		}
	}
	assert.Lessf(t, lastMax, firstMax, "impulse response must decay: first-quarter max %d, last-quarter max %d", firstMax, lastMax)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
