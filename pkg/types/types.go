// Package types defines the concrete value kinds and their classification tags
package types

import (
	"strings"

	"github.com/xplshn/omnia/pkg/errs"
	"github.com/xplshn/omnia/pkg/token"
)

// Kind is a concrete value kind, or one of the classification-only markers.
type Kind int

const (
	Decimal Kind = iota
	Omni
	Char
	CharArray
	Bool
	Byte
	UByte
	Int
	UInt
	Long
	ULong
	Null

	// Classification-only markers, never the kind of a value.
	AnyNumeric
	StringLike
	Other
)

// Class is the coarse capability bucket of a Kind.
type Class = Kind

var kindNames = map[Kind]string{
	Decimal:   "decimal",
	Omni:      "omni",
	Char:      "char",
	CharArray: "char[]",
	Bool:      "bool",
	Byte:      "byte",
	UByte:     "ubyte",
	Int:       "int",
	UInt:      "uint",
	Long:      "long",
	ULong:     "ulong",
	Null:      "null",
}

var kindsByName = make(map[string]Kind)

// Aliases accepted by ParseKind besides the canonical names.
var kindAliases = map[string]Kind{
	"string":  CharArray,
	"str":     CharArray,
	"chararr": CharArray,
	"float":   Decimal,
}

func init() {
	for k, name := range kindNames {
		kindsByName[name] = k
	}
	for alias, k := range kindAliases {
		kindsByName[alias] = k
	}
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Deprecated"
}

// IsMarker reports whether k is classification-only.
func (k Kind) IsMarker() bool { return k == AnyNumeric || k == StringLike || k == Other }

// Class returns the canonical classification of k. Markers classify as themselves.
func (k Kind) Class() Class {
	switch k {
	case Decimal, Omni, Byte, UByte, Int, UInt, Long, ULong:
		return AnyNumeric
	case Char, CharArray:
		return StringLike
	case AnyNumeric, StringLike:
		return k
	default:
		return Other
	}
}

func (k Kind) IsNumeric() bool { return k.Class() == AnyNumeric && !k.IsMarker() }

func (k Kind) IsInteger() bool { return k.IsSigned() || k.IsUnsigned() }

func (k Kind) IsSigned() bool { return k == Byte || k == Int || k == Long }

func (k Kind) IsUnsigned() bool { return k == UByte || k == UInt || k == ULong }

// IsText reports whether k is the owned-text kind.
func (k Kind) IsText() bool { return k == CharArray }

// Bits returns the storage width of numeric kinds, 0 otherwise.
func (k Kind) Bits() int {
	switch k {
	case Byte, UByte:
		return 8
	case Int, UInt:
		return 32
	case Long, ULong, Decimal:
		return 64
	case Omni:
		return 128
	}
	return 0
}

// ParseKind resolves a kind from its canonical lowercase name.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindsByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return 0, errs.New(errs.TypeResolution, "unknown type '%s'", name)
}

// Describe renders k for user-facing messages. Markers must never reach a
// user, so they surface as an internal error instead of "Deprecated".
func Describe(k Kind) (string, error) {
	if k.IsMarker() {
		return "", errs.New(errs.Internal, "classification marker %d used as a concrete type", int(k))
	}
	return k.String(), nil
}

// FromToken maps a lexer type keyword to its kind.
func FromToken(t token.Type) (Kind, error) {
	switch t {
	case token.DecimalKw:
		return Decimal, nil
	case token.OmniKw:
		return Omni, nil
	case token.CharKw:
		return Char, nil
	case token.CharArrKw:
		return CharArray, nil
	case token.BoolKw:
		return Bool, nil
	case token.ByteKw:
		return Byte, nil
	case token.UByteKw:
		return UByte, nil
	case token.IntKw:
		return Int, nil
	case token.UIntKw:
		return UInt, nil
	case token.LongKw:
		return Long, nil
	case token.ULongKw:
		return ULong, nil
	case token.NullKw:
		return Null, nil
	}
	return 0, errs.New(errs.TypeResolution, "unexpected token '%s' for type", t)
}

// Tag is the classified tag (classification, concrete kind) of a value.
type Tag struct {
	Class Class
	Kind  Kind
}

// NewTag derives the tag of a concrete kind.
func NewTag(k Kind) Tag { return Tag{Class: k.Class(), Kind: k} }

// Valid reports whether the classification agrees with the kind.
func (t Tag) Valid() bool { return !t.Kind.IsMarker() && t.Class == t.Kind.Class() }

func (t Tag) String() string {
	var class string
	switch t.Class {
	case AnyNumeric:
		class = "numeric"
	case StringLike:
		class = "string-like"
	default:
		class = "other"
	}
	return class + "/" + t.Kind.String()
}
