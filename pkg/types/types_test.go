package types

import (
	"errors"
	"testing"

	"github.com/xplshn/omnia/pkg/errs"
	"github.com/xplshn/omnia/pkg/token"
)

func TestFromToken(t *testing.T) {
	cases := map[token.Type]Kind{
		token.DecimalKw: Decimal,
		token.OmniKw:    Omni,
		token.CharKw:    Char,
		token.CharArrKw: CharArray,
		token.BoolKw:    Bool,
		token.ByteKw:    Byte,
		token.UByteKw:   UByte,
		token.IntKw:     Int,
		token.UIntKw:    UInt,
		token.LongKw:    Long,
		token.ULongKw:   ULong,
		token.NullKw:    Null,
	}
	for tok, want := range cases {
		got, err := FromToken(tok)
		if err != nil {
			t.Fatalf("FromToken(%s): %v", tok, err)
		}
		if got != want {
			t.Fatalf("FromToken(%s) = %s, want %s", tok, got, want)
		}
		if !tok.IsTypeKeyword() {
			t.Fatalf("%s should be a type keyword", tok)
		}
	}
}

func TestFromTokenRejectsNonTypes(t *testing.T) {
	for _, tok := range []token.Type{token.Plus, token.Ident, token.SpanKw, token.Number} {
		_, err := FromToken(tok)
		if !errors.Is(err, errs.TypeResolution) {
			t.Fatalf("FromToken(%s): expected type resolution error, got %v", tok, err)
		}
	}
}

func TestMarkersRenderDeprecated(t *testing.T) {
	for _, k := range []Kind{AnyNumeric, StringLike, Other} {
		if k.String() != "Deprecated" {
			t.Errorf("%d.String() = %q", int(k), k.String())
		}
		if _, err := Describe(k); !errors.Is(err, errs.Internal) {
			t.Errorf("Describe(%d): expected internal error, got %v", int(k), err)
		}
	}
	if s, err := Describe(ULong); err != nil || s != "ulong" {
		t.Fatalf("Describe(ULong) = %q, %v", s, err)
	}
}

func TestClasses(t *testing.T) {
	cases := map[Kind]Class{
		Decimal:   AnyNumeric,
		Omni:      AnyNumeric,
		Byte:      AnyNumeric,
		ULong:     AnyNumeric,
		Char:      StringLike,
		CharArray: StringLike,
		Bool:      Other,
		Null:      Other,
	}
	for k, want := range cases {
		if got := k.Class(); got != want {
			t.Errorf("%s.Class() = %d, want %d", k, got, want)
		}
		if !NewTag(k).Valid() {
			t.Errorf("NewTag(%s) is not valid", k)
		}
	}
	if (Tag{Class: StringLike, Kind: Int}).Valid() {
		t.Fatalf("mismatched tag must be invalid")
	}
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{"int": Int, "char[]": CharArray, "string": CharArray, " ULong ": ULong, "float": Decimal} {
		got, err := ParseKind(name)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %s, %v; want %s", name, got, err, want)
		}
	}
	if _, err := ParseKind("quad"); !errors.Is(err, errs.TypeResolution) {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}
