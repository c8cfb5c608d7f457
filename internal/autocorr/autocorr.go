// Package autocorr computes a normalized, automatically-rescaled
// autocorrelation function from a block of fixed-point samples, the
// sufficient statistic the Durbin recursion needs to estimate an LPC model.
package autocorr

import "math/bits"

// Compute writes dst[0..len(dst)-1] with the normalized autocorrelation of
// signal, in Q1.31 with dst[0] pinned to fixedpoint.Q1One whenever signal is
// not all-zero. It destructively rescales signal in place to keep the running
// sums within 63 bits while preserving as many significant bits as possible.
func Compute(dst []int32, signal []int32) {
	n := len(signal)

	nShift := (bits.Len(uint(n-1)) + 1) / 2

	var maxAbs int32
	for _, s := range signal {
		a := s
		if a < 0 {
			a = -a
		}
		if a > maxAbs {
			maxAbs = a
		}
	}

	for i := 0; i < 32 && maxAbs < 0x40000000; i++ {
		maxAbs <<= 1
		nShift--
	}

	if nShift > 0 {
		for i, s := range signal {
			signal[i] = s >> uint(nShift)
		}
	} else {
		shl := uint(-nShift)
		for i, s := range signal {
			signal[i] = s << shl
		}
	}

	var sumSq int64
	for _, s := range signal {
		sumSq += int64(s) * int64(s)
	}
	r0 := int32(sumSq >> 32)

	if r0 == 0 {
		dst[0] = 0x7FFFFFFF
		for k := 1; k < len(dst); k++ {
			dst[k] = 0
		}
		return
	}

	i := 0
	for ; i < 32 && r0 < 0x20000000; i++ {
		r0 <<= 1
	}
	nShift2 := 32 - i

	for k := range dst {
		var sum int64
		for i := 0; i < n-k; i++ {
			sum += int64(signal[i+k]) * int64(signal[i])
		}
		dst[k] = int32(sum >> uint(nShift2))
	}

	const q59One = int64(1) << 59
	const maxACF = q59One - 1
	invR0 := q59One / int64(dst[0])

	for k := range dst {
		scaled := int64(dst[k]) * invR0
		if scaled > maxACF {
			scaled = maxACF
		}
		dst[k] = int32(scaled >> 28)
	}
	// The truncating division above can leave dst[0] a few LSBs short of one.
	dst[0] = 0x7FFFFFFF
}
