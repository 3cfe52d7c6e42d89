// Package value defines the closed set of runtime values
package value

import (
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/xplshn/omnia/pkg/types"
)

// Value is an immutable scalar. The set of implementations is closed: only
// the types in this package satisfy it, so a type switch over them is
// exhaustive.
type Value interface {
	AsInt32() int32
	AsDecimal() float64
	String() string
	Tag() types.Tag
	sealed()
}

// --- Value variants ---
type Decimal struct{ V float64 }
type Char struct{ V rune }
type CharArray struct{ V string }
type Bool struct{ V bool }
type Byte struct{ V int8 }
type UByte struct{ V uint8 }
type Int struct{ V int32 }
type UInt struct{ V uint32 }
type Long struct{ V int64 }
type ULong struct{ V uint64 }

func (Decimal) sealed()   {}
func (Char) sealed()      {}
func (CharArray) sealed() {}
func (Bool) sealed()      {}
func (Byte) sealed()      {}
func (UByte) sealed()     {}
func (Int) sealed()       {}
func (UInt) sealed()      {}
func (Long) sealed()      {}
func (ULong) sealed()     {}

var (
	tagDecimal   = types.NewTag(types.Decimal)
	tagChar      = types.NewTag(types.Char)
	tagCharArray = types.NewTag(types.CharArray)
	tagBool      = types.NewTag(types.Bool)
	tagByte      = types.NewTag(types.Byte)
	tagUByte     = types.NewTag(types.UByte)
	tagInt       = types.NewTag(types.Int)
	tagUInt      = types.NewTag(types.UInt)
	tagLong      = types.NewTag(types.Long)
	tagULong     = types.NewTag(types.ULong)
)

func (v Decimal) Tag() types.Tag   { return tagDecimal }
func (v Char) Tag() types.Tag      { return tagChar }
func (v CharArray) Tag() types.Tag { return tagCharArray }
func (v Bool) Tag() types.Tag      { return tagBool }
func (v Byte) Tag() types.Tag      { return tagByte }
func (v UByte) Tag() types.Tag     { return tagUByte }
func (v Int) Tag() types.Tag       { return tagInt }
func (v UInt) Tag() types.Tag      { return tagUInt }
func (v Long) Tag() types.Tag      { return tagLong }
func (v ULong) Tag() types.Tag     { return tagULong }

// AsInt32 truncates toward zero and saturates; NaN is 0.
func (v Decimal) AsInt32() int32 {
	switch {
	case math.IsNaN(v.V):
		return 0
	case v.V >= math.MaxInt32:
		return math.MaxInt32
	case v.V <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v.V)
}
func (v Decimal) AsDecimal() float64 { return v.V }
func (v Decimal) String() string     { return FormatDecimal(v.V) }

func (v Char) AsInt32() int32     { return int32(v.V) }
func (v Char) AsDecimal() float64 { return float64(uint8(v.V)) }
func (v Char) String() string     { return string(v.V) }

// Text values have no numeric reading; both approximations come from a
// stable hash of the text.
func (v CharArray) AsInt32() int32     { return int32(xxhash.Sum64String(v.V)) }
func (v CharArray) AsDecimal() float64 { return float64(xxhash.Sum64String(v.V)) }
func (v CharArray) String() string     { return v.V }

func (v Bool) AsInt32() int32 {
	if v.V {
		return 1
	}
	return 0
}
func (v Bool) AsDecimal() float64 { return float64(v.AsInt32()) }
func (v Bool) String() string     { return strconv.FormatBool(v.V) }

func (v Byte) AsInt32() int32     { return int32(v.V) }
func (v Byte) AsDecimal() float64 { return float64(v.V) }
func (v Byte) String() string     { return strconv.FormatInt(int64(v.V), 10) }

func (v UByte) AsInt32() int32     { return int32(v.V) }
func (v UByte) AsDecimal() float64 { return float64(v.V) }
func (v UByte) String() string     { return strconv.FormatUint(uint64(v.V), 10) }

func (v Int) AsInt32() int32     { return v.V }
func (v Int) AsDecimal() float64 { return float64(v.V) }
func (v Int) String() string     { return strconv.FormatInt(int64(v.V), 10) }

func (v UInt) AsInt32() int32     { return int32(v.V) }
func (v UInt) AsDecimal() float64 { return float64(v.V) }
func (v UInt) String() string     { return strconv.FormatUint(uint64(v.V), 10) }

func (v Long) AsInt32() int32     { return int32(v.V) }
func (v Long) AsDecimal() float64 { return float64(v.V) }
func (v Long) String() string     { return strconv.FormatInt(v.V, 10) }

func (v ULong) AsInt32() int32     { return int32(v.V) }
func (v ULong) AsDecimal() float64 { return float64(v.V) }
func (v ULong) String() string     { return strconv.FormatUint(v.V, 10) }

// Text builds a char[] value.
func Text(s string) CharArray { return CharArray{V: s} }

// FormatDecimal renders f with the fewest digits that read back to f.
func FormatDecimal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// KindOf returns the concrete kind of v.
func KindOf(v Value) types.Kind { return v.Tag().Kind }

// Equal reports whether a and b have the same kind and payload. Decimals are
// compared by bit pattern.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if da, ok := a.(Decimal); ok {
		db, ok := b.(Decimal)
		return ok && math.Float64bits(da.V) == math.Float64bits(db.V)
	}
	return a == b
}
