// Package fixedpoint implements the signed Q17.14 fixed-point arithmetic
// used by the MLFQ scheduling policy's recent_cpu and load_avg recurrences.
//
// A dedicated type keeps fixed-point values from being mixed accidentally
// with plain integers; every operation is defined by its identity with the
// corresponding rational-number operation, not by convenience.
package fixedpoint

import "strconv"

// Q is the number of fractional bits of the format (Q17.14).
const Q = 14

// F is the scale factor, 2^Q.
const F = 1 << Q

// Fixed is a signed Q17.14 fixed-point number. The zero value is 0.
type Fixed int32

// FromInt converts an integer to fixed-point: n -> n*F.
func FromInt(n int) Fixed {
	return Fixed(n * F)
}

// ToIntTruncate converts to integer, truncating toward zero: x -> x/F.
func (x Fixed) ToIntTruncate() int {
	return int(x) / F
}

// ToIntRound converts to integer, rounding to nearest (half away from zero):
// x -> (x + sign(x)*F/2) / F.
func (x Fixed) ToIntRound() int {
	if x >= 0 {
		return int(x+F/2) / F
	}
	return int(x-F/2) / F
}

// Add returns x+y.
func (x Fixed) Add(y Fixed) Fixed {
	return x + y
}

// Sub returns x-y.
func (x Fixed) Sub(y Fixed) Fixed {
	return x - y
}

// AddInt returns x+n (n is first converted to fixed-point).
func (x Fixed) AddInt(n int) Fixed {
	return x + Fixed(n*F)
}

// SubInt returns x-n (n is first converted to fixed-point).
func (x Fixed) SubInt(n int) Fixed {
	return x - Fixed(n*F)
}

// Mul returns x*y, computed with a 64-bit intermediate product.
func (x Fixed) Mul(y Fixed) Fixed {
	return Fixed((int64(x) * int64(y)) / F)
}

// MulInt returns x*n.
func (x Fixed) MulInt(n int) Fixed {
	return x * Fixed(n)
}

// Div returns x/y, computed with a 64-bit intermediate product.
func (x Fixed) Div(y Fixed) Fixed {
	return Fixed((int64(x) * F) / int64(y))
}

// DivInt returns x/n.
func (x Fixed) DivInt(n int) Fixed {
	return x / Fixed(n)
}

// Neg returns -x.
func (x Fixed) Neg() Fixed {
	return -x
}

// String renders x the way get_load_avg/get_recent_cpu report it: the
// value times 100, rounded to the nearest integer, as a decimal string
// with two implied fractional digits (e.g. "63" for 0.6322 -> 63).
func (x Fixed) String() string {
	hundred := x.MulInt(100).ToIntRound()
	return strconv.Itoa(hundred)
}
