package number

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"strconv"
	"strings"
)

// FracBits is the number of fractional bits in a Fixed value.
const FracBits = 64

// maxFracDigits is enough decimal digits to identify any 64-bit binary
// fraction: 10^-20 is below half of 2^-64.
const maxFracDigits = 20

// Fixed is a signed 64.64 fixed-point number: a 128-bit two's complement
// integer scaled by 2^-64. The zero value is 0.
type Fixed struct {
	hi int64  // integer part (floor)
	lo uint64 // fractional part in units of 2^-64
}

var (
	// MaxFixed is the largest representable Fixed value.
	MaxFixed = Fixed{hi: math.MaxInt64, lo: math.MaxUint64}
	// MinFixed is the smallest representable Fixed value.
	MinFixed = Fixed{hi: math.MinInt64}

	two64    = new(big.Int).Lsh(big.NewInt(1), 64)
	two128   = new(big.Int).Lsh(big.NewInt(1), 128)
	mask64   = new(big.Int).Sub(two64, big.NewInt(1))
	minFixed = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxFixed = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
)

// FixedFromBits builds a Fixed from its raw integer and fractional words.
func FixedFromBits(hi int64, lo uint64) Fixed {
	return Fixed{hi: hi, lo: lo}
}

// FixedFromInt64 returns the Fixed value of i.
func FixedFromInt64(i int64) Fixed {
	return Fixed{hi: i}
}

// FixedFromUint64 returns the Fixed value of u. It fails when u does not fit
// in the 64-bit signed integer part.
func FixedFromUint64(u uint64) (Fixed, error) {
	if u > math.MaxInt64 {
		return Fixed{}, fmt.Errorf("number: %d overflows fixed-point integer part", u)
	}
	return Fixed{hi: int64(u)}, nil
}

// FixedFromFloat64 converts x to the nearest Fixed value, rounding halfway
// cases away from zero.
func FixedFromFloat64(x float64) (Fixed, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Fixed{}, fmt.Errorf("number: cannot convert %v to fixed-point", x)
	}
	scaled := new(big.Float).SetPrec(256).SetFloat64(x)
	scaled.SetMantExp(scaled, FracBits)
	q, _ := scaled.Int(nil)
	rem := new(big.Float).SetPrec(256).Sub(scaled, new(big.Float).SetPrec(256).SetInt(q))
	rem.Abs(rem)
	if rem.Cmp(big.NewFloat(0.5)) >= 0 {
		if x < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	f, ok := fixedFromBig(q)
	if !ok {
		return Fixed{}, fmt.Errorf("number: %v overflows fixed-point range", x)
	}
	return f, nil
}

// ParseFixed parses a decimal literal such as "3.14", "-0.5" or "+2." into
// the nearest Fixed value, rounding halfway cases to even. Errors are
// *strconv.NumError values.
func ParseFixed(s string) (Fixed, error) {
	const fn = "ParseFixed"
	body := s
	neg := false
	if body != "" && (body[0] == '-' || body[0] == '+') {
		neg = body[0] == '-'
		body = body[1:]
	}
	intDigits, fracDigits, _ := strings.Cut(body, ".")
	if intDigits == "" && fracDigits == "" || !isDigits(intDigits) || !isDigits(fracDigits) {
		return Fixed{}, &strconv.NumError{Func: fn, Num: s, Err: strconv.ErrSyntax}
	}

	num, ok := new(big.Int).SetString("0"+intDigits+fracDigits, 10)
	if !ok {
		return Fixed{}, &strconv.NumError{Func: fn, Num: s, Err: strconv.ErrSyntax}
	}
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(fracDigits))), nil)
	q := roundHalfEven(num.Lsh(num, FracBits), den)
	if neg {
		q.Neg(q)
	}
	f, ok := fixedFromBig(q)
	if !ok {
		return Fixed{}, &strconv.NumError{Func: fn, Num: s, Err: strconv.ErrRange}
	}
	return f, nil
}

// MustParseFixed is like ParseFixed but panics on error.
func MustParseFixed(s string) Fixed {
	f, err := ParseFixed(s)
	if err != nil {
		panic(err)
	}
	return f
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// roundHalfEven returns num/den rounded to the nearest integer, ties to even.
// num and den must be non-negative.
func roundHalfEven(num, den *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	switch r.Lsh(r, 1).Cmp(den) {
	case 1:
		q.Add(q, big.NewInt(1))
	case 0:
		if q.Bit(0) == 1 {
			q.Add(q, big.NewInt(1))
		}
	}
	return q
}

func fixedFromBig(q *big.Int) (Fixed, bool) {
	if q.Cmp(minFixed) < 0 || q.Cmp(maxFixed) > 0 {
		return Fixed{}, false
	}
	v := new(big.Int).Set(q)
	if v.Sign() < 0 {
		v.Add(v, two128)
	}
	lo := new(big.Int).And(v, mask64).Uint64()
	hi := new(big.Int).Rsh(v, 64).Uint64()
	return Fixed{hi: int64(hi), lo: lo}, true
}

// Big returns the raw scaled 128-bit integer (the value times 2^64).
func (f Fixed) Big() *big.Int {
	v := big.NewInt(f.hi)
	v.Lsh(v, 64)
	return v.Add(v, new(big.Int).SetUint64(f.lo))
}

// Bits returns the raw integer and fractional words.
func (f Fixed) Bits() (hi int64, lo uint64) { return f.hi, f.lo }

// Int returns the integer part, rounded towards negative infinity.
func (f Fixed) Int() int64 { return f.hi }

// Frac returns the fractional part, always in [0, 1).
func (f Fixed) Frac() Fixed { return Fixed{lo: f.lo} }

// IsInteger reports whether f has no fractional part.
func (f Fixed) IsInteger() bool { return f.lo == 0 }

// Sign returns -1, 0 or +1.
func (f Fixed) Sign() int {
	switch {
	case f.hi < 0:
		return -1
	case f.hi == 0 && f.lo == 0:
		return 0
	default:
		return 1
	}
}

// Cmp compares f and g and returns -1, 0 or +1.
func (f Fixed) Cmp(g Fixed) int {
	switch {
	case f.hi < g.hi:
		return -1
	case f.hi > g.hi:
		return 1
	case f.lo < g.lo:
		return -1
	case f.lo > g.lo:
		return 1
	}
	return 0
}

// Add returns f+g, failing on overflow.
func (f Fixed) Add(g Fixed) (Fixed, error) {
	lo, carry := bits.Add64(f.lo, g.lo, 0)
	hiU, _ := bits.Add64(uint64(f.hi), uint64(g.hi), carry)
	hi := int64(hiU)
	if (f.hi < 0) == (g.hi < 0) && (hi < 0) != (f.hi < 0) {
		return Fixed{}, fmt.Errorf("number: fixed-point overflow in %s + %s", f, g)
	}
	return Fixed{hi: hi, lo: lo}, nil
}

// Sub returns f-g, failing on overflow.
func (f Fixed) Sub(g Fixed) (Fixed, error) {
	lo, borrow := bits.Sub64(f.lo, g.lo, 0)
	hiU, _ := bits.Sub64(uint64(f.hi), uint64(g.hi), borrow)
	hi := int64(hiU)
	if (f.hi < 0) != (g.hi < 0) && (hi < 0) != (f.hi < 0) {
		return Fixed{}, fmt.Errorf("number: fixed-point overflow in %s - %s", f, g)
	}
	return Fixed{hi: hi, lo: lo}, nil
}

// Neg returns -f. Like Go's signed integers, negating MinFixed wraps around
// to MinFixed.
func (f Fixed) Neg() Fixed {
	lo, borrow := bits.Sub64(0, f.lo, 0)
	hi, _ := bits.Sub64(0, uint64(f.hi), borrow)
	return Fixed{hi: int64(hi), lo: lo}
}

// Float64 returns the float64 nearest to f.
func (f Fixed) Float64() float64 {
	x := new(big.Float).SetPrec(128).SetInt(f.Big())
	x.SetMantExp(x, -FracBits)
	v, _ := x.Float64()
	return v
}

// String returns the shortest decimal representation that parses back to
// exactly f. Integral values keep a ".0" suffix so they still read as
// fixed-point literals.
func (f Fixed) String() string {
	mag := f.Big()
	neg := mag.Sign() < 0
	if neg {
		mag.Neg(mag)
	}
	intPart := new(big.Int).Rsh(mag, 64)
	frac := new(big.Int).And(mag, mask64)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(intPart.String())
	b.WriteByte('.')
	if frac.Sign() == 0 {
		b.WriteByte('0')
		return b.String()
	}
	b.WriteString(shortestFrac(frac))
	return b.String()
}

// shortestFrac returns the fewest decimal digits d such that 0.d parses back
// to frac/2^64.
func shortestFrac(frac *big.Int) string {
	pow := big.NewInt(1)
	ten := big.NewInt(10)
	for k := 1; k <= maxFracDigits; k++ {
		pow.Mul(pow, ten)
		d := roundHalfEven(new(big.Int).Mul(frac, pow), two64)
		if d.Cmp(pow) >= 0 {
			continue
		}
		back := roundHalfEven(new(big.Int).Lsh(d, FracBits), pow)
		if back.Cmp(frac) == 0 {
			digits := d.String()
			return strings.Repeat("0", k-len(digits)) + digits
		}
	}
	// Unreachable: maxFracDigits always identifies the fraction.
	d := roundHalfEven(new(big.Int).Mul(frac, pow), two64)
	digits := d.String()
	return strings.Repeat("0", maxFracDigits-len(digits)) + digits
}
