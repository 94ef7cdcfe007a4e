// Package number implements the numeric values of GunnyScript: unsigned and
// signed 64-bit integers and signed 64.64 fixed-point numbers.
package number

import (
	"math"
	"strconv"
	"strings"

	"github.com/KimNorgaard/go-gunnyscript/errors"
)

// Kind is the variant held by a Number.
type Kind uint8

const (
	KindUnsigned Kind = iota
	KindSigned
	KindFixed
)

func (k Kind) String() string {
	switch k {
	case KindSigned:
		return "signed"
	case KindFixed:
		return "fixed"
	default:
		return "unsigned"
	}
}

// Number is a tagged numeric value. Two numbers are equal only when they hold
// the same variant and the same value, so Uint(1) != Int(1). Numbers are
// comparable with ==.
type Number struct {
	kind Kind
	u    uint64
	i    int64
	f    Fixed
}

// Uint returns an unsigned Number.
func Uint(u uint64) Number { return Number{kind: KindUnsigned, u: u} }

// Int returns a signed Number.
func Int(i int64) Number { return Number{kind: KindSigned, i: i} }

// FromFixed returns a fixed-point Number.
func FromFixed(f Fixed) Number { return Number{kind: KindFixed, f: f} }

// Kind returns the variant held by n.
func (n Number) Kind() Kind { return n.kind }

// Equal reports whether n and o hold the same variant and value.
func (n Number) Equal(o Number) bool { return n == o }

// AsUint64 returns n as an unsigned integer when it can be represented
// exactly.
func (n Number) AsUint64() (uint64, bool) {
	switch n.kind {
	case KindUnsigned:
		return n.u, true
	case KindSigned:
		if n.i < 0 {
			return 0, false
		}
		return uint64(n.i), true
	default:
		if n.f.Sign() < 0 || !n.f.IsInteger() {
			return 0, false
		}
		return uint64(n.f.Int()), true
	}
}

// AsInt64 returns n as a signed integer when it can be represented exactly.
func (n Number) AsInt64() (int64, bool) {
	switch n.kind {
	case KindUnsigned:
		if n.u > math.MaxInt64 {
			return 0, false
		}
		return int64(n.u), true
	case KindSigned:
		return n.i, true
	default:
		if !n.f.IsInteger() {
			return 0, false
		}
		return n.f.Int(), true
	}
}

// AsFixed returns n as a fixed-point value. Unsigned values above the
// fixed-point integer range saturate to MaxFixed.
func (n Number) AsFixed() Fixed {
	switch n.kind {
	case KindUnsigned:
		f, err := FixedFromUint64(n.u)
		if err != nil {
			return MaxFixed
		}
		return f
	case KindSigned:
		return FixedFromInt64(n.i)
	default:
		return n.f
	}
}

// Float64 returns the float64 nearest to n.
func (n Number) Float64() float64 {
	switch n.kind {
	case KindUnsigned:
		return float64(n.u)
	case KindSigned:
		return float64(n.i)
	default:
		return n.f.Float64()
	}
}

// String renders n in a form Parse maps back to the same variant, except
// for non-negative signed values which read back as unsigned.
func (n Number) String() string {
	switch n.kind {
	case KindUnsigned:
		return strconv.FormatUint(n.u, 10)
	case KindSigned:
		return strconv.FormatInt(n.i, 10)
	default:
		return n.f.String()
	}
}

// Parse classifies and parses a numeric literal. Rules, in order: a "0x"
// prefix is hexadecimal (unsigned), a '.' makes a fixed-point number, a
// leading '-' a signed number, a leading '0' followed by more digits an octal
// (unsigned) number; anything else is unsigned decimal. A single leading '+'
// is accepted on decimal and fixed-point literals.
func Parse(s string) (Number, error) {
	switch {
	case strings.HasPrefix(s, "0x"):
		u, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return Number{}, errors.Wrap(errors.InvalidHexNumber, strconv.Quote(s), err)
		}
		return Uint(u), nil
	case strings.Contains(s, "."):
		f, err := ParseFixed(s)
		if err != nil {
			return Number{}, errors.Wrap(errors.InvalidFixedPointNumber, strconv.Quote(s), err)
		}
		return FromFixed(f), nil
	case strings.HasPrefix(s, "-"):
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Number{}, errors.Wrap(errors.InvalidSignedNumber, strconv.Quote(s), err)
		}
		return Int(i), nil
	case len(s) > 1 && s[0] == '0':
		u, err := strconv.ParseUint(s[1:], 8, 64)
		if err != nil {
			return Number{}, errors.Wrap(errors.InvalidOctalNumber, strconv.Quote(s), err)
		}
		return Uint(u), nil
	default:
		u, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 64)
		if err != nil {
			return Number{}, errors.Wrap(errors.InvalidUnsignedNumber, strconv.Quote(s), err)
		}
		return Uint(u), nil
	}
}
