// Package lpcfilter implements the direct-form all-pole prediction-error
// filter that drives carrier synthesis from the current LPC coefficient
// vector.
package lpcfilter

// Filter holds the per-voice delay line for the all-pole filter. It has no
// other state and performs no allocation after construction, so it is safe
// to call FilterOne from a real-time audio thread.
type Filter struct {
	memory           []int32
	fractionalDigits uint
}

// New allocates a Filter for the given coefficient order and Q-format
// fractional-bit count.
func New(order int, fractionalDigits uint) *Filter {
	return &Filter{
		memory:           make([]int32, order),
		fractionalDigits: fractionalDigits,
	}
}

// Reset zeroes the delay line.
func (f *Filter) Reset() {
	for i := range f.memory {
		f.memory[i] = 0
	}
}

// FilterOne runs one sample through the prediction-error filter:
//
//	y = x - floor(sum(a[i]*mem[i]) / 2^fractionalDigits)
//
// then shifts mem right by one and inserts y at index 0. a must have at
// least len(f.memory) elements; only the first len(f.memory) are read.
func (f *Filter) FilterOne(x int32, a []int32) int32 {
	var acc int64
	for i, m := range f.memory {
		acc += int64(a[i]) * int64(m)
	}
	y := x - int32(acc>>f.fractionalDigits)

	copy(f.memory[1:], f.memory[:len(f.memory)-1])
	f.memory[0] = y

	return y
}

// Order reports the filter's coefficient count.
func (f *Filter) Order() int {
	return len(f.memory)
}
