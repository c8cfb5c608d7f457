package lpcfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterOneSilence(t *testing.T) {
	f := New(4, 24)
	a := []int32{1 << 20, 1 << 18, 1 << 16, 1 << 14}
	for i := 0; i < 100; i++ {
		y := f.FilterOne(0, a)
		assert.Equal(t, int32(0), y, "silence in must produce silence out")
	}
}

func TestFilterOneShiftsMemory(t *testing.T) {
	f := New(3, 24)
	a := []int32{0, 0, 0} // zero coefficients: output == input, no feedback
	y1 := f.FilterOne(1000, a)
	assert.Equal(t, int32(1000), y1)
	y2 := f.FilterOne(2000, a)
	assert.Equal(t, int32(2000), y2)
	assert.Equal(t, []int32{2000, 1000, 0}, f.memory)
}

func TestFilterOneFeedback(t *testing.T) {
	f := New(1, 24)
	// a[0] = 1.0 in Q8.24 means y = x - mem[0]: each output subtracts the previous one.
	one := int32(1 << 24)
	a := []int32{one}
	y1 := f.FilterOne(100, a)
	assert.Equal(t, int32(100), y1) // mem starts at 0
	y2 := f.FilterOne(100, a)
	assert.Equal(t, int32(0), y2) // 100 - mem[0](100) = 0
}

func TestResetClearsMemory(t *testing.T) {
	f := New(2, 24)
	a := []int32{0, 0}
	f.FilterOne(500, a)
	f.Reset()
	for _, m := range f.memory {
		assert.Equal(t, int32(0), m)
	}
}

func TestOrder(t *testing.T) {
	f := New(50, 24)
	assert.Equal(t, 50, f.Order())
}
