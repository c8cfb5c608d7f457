// Package preemphasis implements the first-order allpass-derived high-pass
// filter used to flatten the modulator's long-term spectrum before LPC
// analysis.
package preemphasis

import "math"

// Filter is a single-voice high-pass filter with two-element state: a
// non-recursive term and a recursive term, both updated every sample.
type Filter struct {
	coeff int32 // Q1.31 allpass coefficient
	mem0  int32 // non-recursive state
	mem1  int32 // recursive state
}

// New creates a Filter with its cutoff derived from fcHz and sampleRate, per
// CoeffForCutoff.
func New(fcHz, sampleRate float64) *Filter {
	f := &Filter{}
	f.SetCutoff(fcHz, sampleRate)
	return f
}

// CoeffForCutoff derives the Q1.31 allpass coefficient from a cutoff
// frequency and sample rate: c = (tan(pi*fc/fs) - 1) / (tan(pi*fc/fs) + 1).
func CoeffForCutoff(fcHz, sampleRate float64) int32 {
	ftan := math.Tan(math.Pi * fcHz / sampleRate)
	c := (ftan - 1) / (ftan + 1)
	return int32(c * float64(0x7FFFFFFF))
}

// SetCutoff recomputes the filter's coefficient for a new cutoff frequency.
// It does not reset the filter's running state.
func (f *Filter) SetCutoff(fcHz, sampleRate float64) {
	f.coeff = CoeffForCutoff(fcHz, sampleRate)
}

// Coeff returns the current Q1.31 coefficient.
func (f *Filter) Coeff() int32 {
	return f.coeff
}

// SetCoeffRaw installs a precomputed Q1.31 coefficient directly, bypassing
// CoeffForCutoff. Used to apply a coefficient published lock-free from
// another goroutine.
func (f *Filter) SetCoeffRaw(c int32) {
	f.coeff = c
}

// Reset zeroes the filter's running state, leaving the coefficient intact.
func (f *Filter) Reset() {
	f.mem0 = 0
	f.mem1 = 0
}

// Process runs one sample through the high-pass filter:
//
//	x' = x >> 1
//	y  = ((coeff * (x' - mem1)) >> 31) + mem0
//	mem0 = x'; mem1 = y
//	output = x' - y
func (f *Filter) Process(x int32) int32 {
	xHalf := x >> 1
	y := int32((int64(f.coeff)*int64(xHalf-f.mem1))>>31) + f.mem0
	f.mem0 = xHalf
	f.mem1 = y
	return xHalf - y
}
