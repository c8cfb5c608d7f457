// Package fixedpoint implements the Q-format integer math kernels shared by
// the LPC analysis and synthesis paths: signed leading-zero count and the
// Taylor-series log/exp pair used for the prediction-error gain.
//
// Q m.n notation follows the rest of the engine: Qm.n is a signed fixed-point
// value with m integer bits (including sign) and n fractional bits. Q1.31 is
// the dominant format, with 0x7FFFFFFF conventionally standing for "one".
package fixedpoint

// Q1One is the Q1.31 representation of unity (the largest representable
// positive value, per the vocoder convention of treating it as "one").
const Q1One int32 = 0x7FFFFFFF

// Conversion coefficients for LogFixed/ExpFixed, in Q8.24 format. Each pair
// (L*, E*) inverts the other: ExpFixed(LogFixed(x, L), E) ~= x.
const (
	LLog10   int32 = 0x004D104D // y = log10(x)
	LLog     int32 = 0x00B17218 // y = log(x)
	LLog2    int32 = 0x01000000 // y = log2(x)
	L10Log10 int32 = 0x0302A305 // y = 10*log10(x)
	L20Log10 int32 = 0x06054609 // y = 20*log10(x)

	ELog10   int32 = 0x035269E1 // y = 10^x
	ELog     int32 = 0x01715476 // y = e^x
	ELog2    int32 = 0x01000000 // y = 2^x
	E10Log10 int32 = 0x00550A97 // y = 10^(x/10)
	E20Log10 int32 = 0x002A854B // y = 10^(x/20)
)

// taylorLogCoeffs are the degree-10 Taylor series coefficients for log(1+u)
// around u=0, in Q2.14 format.
var taylorLogCoeffs = [10]int16{
	23637, -11819, 7879, -5909, 4727,
	-3940, 3377, -2955, 2626, -2364,
}

// taylorExpCoeffs are the Taylor series coefficients for exp(x) starting at
// order 3, in Q0.16 format.
var taylorExpCoeffs = [3]int16{10923, 2731, 546}

const ln2Q1_15 int16 = 0x58B9 // ln(2) in Q1.15

// LeadingZeros returns the number of leading zero bits of x, treated as an
// unsigned 32-bit pattern. LeadingZeros(0) == 32.
func LeadingZeros(x uint32) int {
	if x == 0 {
		return 32
	}
	n := 0
	if x <= 0x0000FFFF {
		n += 16
		x <<= 16
	}
	if x <= 0x00FFFFFF {
		n += 8
		x <<= 8
	}
	if x <= 0x0FFFFFFF {
		n += 4
		x <<= 4
	}
	if x <= 0x3FFFFFFF {
		n += 2
		x <<= 2
	}
	if x <= 0x7FFFFFFF {
		n++
	}
	return n
}

// LogFixed computes log_base(x) * convScale in Q16.16, where x is Q1.31 and
// conv is the Q8.24 conversion coefficient selecting the base (LLog,
// LLog10, L20Log10, ...). x must be positive; LogFixed does not special-case
// x <= 0 since the engine only ever calls it with a strictly positive
// residual error power.
func LogFixed(x int32, conv int32) int32 {
	shift := LeadingZeros(uint32(x)) - 1 // bring the top set bit to bit 30
	x <<= uint(shift)

	outLog := int32(-shift) << 16 // conversion to Q16.16

	hi := int16(x >> 16)
	u := int16(int32(hi) + 0x8000) // Q1.31 -> Q1.15, then centre around 1 via wraparound add

	product := u
	for _, c := range taylorLogCoeffs {
		outLog += (int32(product) * int32(c)) >> 13
		product = int16((int32(product) * int32(u)) >> 15)
	}

	return int32((int64(outLog) * int64(conv)) >> 24)
}

// ExpFixed inverts LogFixed: y is Q16.16, conv is the Q8.24 conversion
// coefficient, and the result is Q1.31. Underflow (the integer exponent
// shift exceeds 31) returns 0, which is the only failure mode.
func ExpFixed(y int32, conv int32) int32 {
	scaled := int32((int64(y) * int64(conv)) >> 24)

	hi := int16(scaled >> 16)     // integer part, Q1.15
	lw := uint16(scaled & 0xFFFF) // fractional part, Q0.16

	shift := int(-hi)
	if shift > 31 {
		return 0
	}

	x := int16(lw >> 1) // Q0.16 -> Q1.15

	// outLin is accumulated as uint32 (matching log32.h's uint32_t out_lin):
	// it is seeded at Q1One and grows past it for any nonzero fractional
	// part, so a signed accumulator would go negative and shift arithmetically
	// (sign-extending) instead of logically.
	outLin := uint32(Q1One) // seed with 1
	xPrime := int32(x) * int32(ln2Q1_15)
	outLin += uint32(xPrime << 1)
	x = int16(xPrime >> 15)

	xSq := int32(x) * int32(x)
	outLin += uint32(xSq)
	product := int16(xSq >> 15)

	for _, c := range taylorExpCoeffs {
		product = int16((int32(product) * int32(x)) >> 15)
		outLin += uint32(int32(product) * int32(c))
	}

	if shift > 0 {
		return int32(outLin >> uint(shift))
	}
	return int32(outLin)
}
