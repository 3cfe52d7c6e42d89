package value

import (
	"errors"
	"math"
	"strconv"
	"unicode/utf8"

	"golang.org/x/exp/constraints"

	"github.com/xplshn/omnia/pkg/errs"
	"github.com/xplshn/omnia/pkg/types"
)

func narrowSigned[T constraints.Signed](x int64) (T, bool) {
	v := T(x)
	return v, int64(v) == x
}

func narrowUnsigned[T constraints.Unsigned](x uint64) (T, bool) {
	v := T(x)
	return v, uint64(v) == x
}

func rangeErr(k types.Kind) *errs.Error { return errs.Range(k.String(), "converting") }

// FromInt64 builds a value of kind k holding x, failing when x does not fit.
func FromInt64(k types.Kind, x int64) (Value, error) {
	switch k {
	case types.Byte:
		if v, ok := narrowSigned[int8](x); ok {
			return Byte{v}, nil
		}
	case types.Int:
		if v, ok := narrowSigned[int32](x); ok {
			return Int{v}, nil
		}
	case types.Long:
		return Long{x}, nil
	case types.UByte, types.UInt, types.ULong:
		if x >= 0 {
			return FromUint64(k, uint64(x))
		}
	case types.Decimal:
		return Decimal{float64(x)}, nil
	case types.Char:
		if x >= 0 && x <= utf8.MaxRune && utf8.ValidRune(rune(x)) {
			return Char{rune(x)}, nil
		}
	default:
		return nil, errs.New(errs.UnsupportedCoercion, "cannot build %s from an integer", k)
	}
	return nil, rangeErr(k)
}

// FromUint64 builds a value of kind k holding x, failing when x does not fit.
func FromUint64(k types.Kind, x uint64) (Value, error) {
	switch k {
	case types.UByte:
		if v, ok := narrowUnsigned[uint8](x); ok {
			return UByte{v}, nil
		}
	case types.UInt:
		if v, ok := narrowUnsigned[uint32](x); ok {
			return UInt{v}, nil
		}
	case types.ULong:
		return ULong{x}, nil
	case types.Byte, types.Int, types.Long, types.Char:
		if x <= math.MaxInt64 {
			return FromInt64(k, int64(x))
		}
	case types.Decimal:
		return Decimal{float64(x)}, nil
	default:
		return nil, errs.New(errs.UnsupportedCoercion, "cannot build %s from an integer", k)
	}
	return nil, rangeErr(k)
}

// FromFloat builds a value of kind k from f. Integer kinds truncate toward
// zero; non-finite inputs and values outside the kind's range fail.
func FromFloat(k types.Kind, f float64) (Value, error) {
	if k == types.Decimal {
		return Decimal{f}, nil
	}
	if !k.IsInteger() {
		return nil, errs.New(errs.UnsupportedCoercion, "cannot build %s from a decimal", k)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, rangeErr(k)
	}
	t := math.Trunc(f)
	if k.IsSigned() {
		// 2^63 is the first float above the int64 range.
		if t < math.MinInt64 || t >= math.MaxInt64 {
			return nil, rangeErr(k)
		}
		return FromInt64(k, int64(t))
	}
	if t < 0 || t >= math.MaxUint64 {
		return nil, rangeErr(k)
	}
	return FromUint64(k, uint64(t))
}

// Zero returns the zero value of kind k.
func Zero(k types.Kind) (Value, error) {
	switch k {
	case types.Decimal:
		return Decimal{}, nil
	case types.Char:
		return Char{}, nil
	case types.CharArray:
		return CharArray{}, nil
	case types.Bool:
		return Bool{}, nil
	case types.Byte:
		return Byte{}, nil
	case types.UByte:
		return UByte{}, nil
	case types.Int:
		return Int{}, nil
	case types.UInt:
		return UInt{}, nil
	case types.Long:
		return Long{}, nil
	case types.ULong:
		return ULong{}, nil
	}
	return nil, errs.New(errs.TypeResolution, "type '%s' has no values", k)
}

// FromLiteral parses the text of a literal token as a value of kind k.
func FromLiteral(k types.Kind, text string) (Value, error) {
	switch k {
	case types.Decimal:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, literalErr(k, text, err)
		}
		return Decimal{f}, nil
	case types.Byte, types.Int, types.Long:
		x, err := strconv.ParseInt(text, 0, k.Bits())
		if err != nil {
			return nil, literalErr(k, text, err)
		}
		return FromInt64(k, x)
	case types.UByte, types.UInt, types.ULong:
		x, err := strconv.ParseUint(text, 0, k.Bits())
		if err != nil {
			return nil, literalErr(k, text, err)
		}
		return FromUint64(k, x)
	case types.Char:
		r, size := utf8.DecodeRuneInString(text)
		if r == utf8.RuneError || size != len(text) {
			return nil, errs.New(errs.TypeResolution, "invalid char literal '%s'", text)
		}
		return Char{r}, nil
	case types.CharArray:
		return CharArray{text}, nil
	case types.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, errs.New(errs.TypeResolution, "invalid bool literal '%s'", text)
		}
		return Bool{b}, nil
	}
	return nil, errs.New(errs.TypeResolution, "type '%s' has no literals", k)
}

func literalErr(k types.Kind, text string, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		e := rangeErr(k)
		e.Operation = "reading literal " + text
		return e
	}
	return errs.New(errs.TypeResolution, "invalid %s literal '%s'", k, text)
}

// Int64Of reads a signed-integer value.
func Int64Of(v Value) (int64, bool) {
	switch v := v.(type) {
	case Byte:
		return int64(v.V), true
	case Int:
		return int64(v.V), true
	case Long:
		return v.V, true
	}
	return 0, false
}

// Uint64Of reads an unsigned-integer value.
func Uint64Of(v Value) (uint64, bool) {
	switch v := v.(type) {
	case UByte:
		return uint64(v.V), true
	case UInt:
		return uint64(v.V), true
	case ULong:
		return v.V, true
	}
	return 0, false
}
