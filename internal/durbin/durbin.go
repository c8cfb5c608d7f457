// Package durbin implements the Levinson-Durbin recursion that turns a
// normalized autocorrelation vector into an all-pole (LPC) coefficient
// vector and a residual error power, clamping reflection coefficients to
// keep the resulting filter stable.
package durbin

// q1One is Q1.31 unity, used both as the acf normalization constant and as
// the upper clamp for the residual error.
const q1One int32 = 0x7FFFFFFF

// KMax is the maximum allowed magnitude of a reflection coefficient, in
// Q1.31 (0.99 of unity). Clamping here is what prevents Recurse from ever
// producing an unstable (pole outside the unit circle) all-pole model.
const KMax int32 = 2126008811 // round(0.99 * 0x7FFFFFFF)

// Recurse runs the Levinson-Durbin recursion over acf (length order+1,
// Q1.31, acf[0] == q1One) and writes the resulting order coefficients into
// a, a signed Q(32-fractionalDigits).fractionalDigits vector. Reflection
// coefficients are clamped to magnitude kMax. It returns the residual error
// power in Q1.31, clamped to [0, q1One].
func Recurse(acf []int32, a []int32, order int, fractionalDigits uint, kMax int32) int32 {
	shiftDiff := 31 - fractionalDigits // Q1.31 <-> Q(32-fractionalDigits).fractionalDigits

	for i := range a[:order] {
		a[i] = 0
	}

	e := acf[0]

	for m := 1; m <= order; m++ {
		// acc = acf[m] + sum_{j=1}^{m-1} a_j * acf[m-j], accumulated in the
		// coefficient's own Q-format.
		acc := int64(acf[m]) >> shiftDiff
		for j := 1; j < m; j++ {
			acc += (int64(a[j-1]) * int64(acf[m-j])) >> 31
		}

		k := clampK(divQ1_31(acc, e, shiftDiff), kMax)

		a[m-1] = int32(int64(k) >> shiftDiff)

		half := m / 2
		for j := 1; j <= half; j++ {
			aj := a[j-1]
			aimj := a[m-1-j]
			a[j-1] = aj + int32((int64(k)*int64(aimj))>>31)
			a[m-1-j] = aimj + int32((int64(k)*int64(aj))>>31)
		}

		kSq := int32((int64(k) * int64(k)) >> 31)
		e = int32((int64(e) * int64(q1One-kSq)) >> 31)
		e = clampE(e)
	}

	return e
}

// divQ1_31 divides a coefficient-format numerator by a Q1.31 denominator and
// returns -(numerator/denominator) in Q1.31, per the recursion's sign
// convention (k_m = -(...)/E). numerator is first rescaled by shiftDiff into
// Q1.31 (the same format as denominatorQ1_31), then by a further 31 bits so
// the quotient itself lands in Q1.31 rather than as a plain real-valued
// ratio. The rescaled numerator is clamped to int32 range first so the <<31
// cannot overflow int64.
func divQ1_31(numerator int64, denominatorQ1_31 int32, shiftDiff uint) int32 {
	if denominatorQ1_31 == 0 {
		return 0
	}
	numQ1_31 := clampToInt32(numerator << shiftDiff)
	ratio := -(int64(numQ1_31) << 31) / int64(denominatorQ1_31)
	return clampToInt32(ratio)
}

func clampToInt32(v int64) int32 {
	if v > int64(q1One) {
		return q1One
	}
	if v < -int64(q1One) {
		return -q1One
	}
	return int32(v)
}

func clampK(k int32, kMax int32) int32 {
	if k > kMax {
		return kMax
	}
	if k < -kMax {
		return -kMax
	}
	return k
}

func clampE(e int32) int32 {
	if e < 0 {
		return 0
	}
	if e > q1One {
		return q1One
	}
	return e
}
