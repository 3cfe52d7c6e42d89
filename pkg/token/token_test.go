package token

import "testing"

func TestTypeString(t *testing.T) {
	cases := map[Type]string{
		Plus:      "+",
		Dec:       "--",
		CharArrKw: "char[]",
		ULongKw:   "ulong",
		Ident:     "identifier",
		Type(999): "token(999)",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(typ), got, want)
		}
	}
}

func TestKeywords(t *testing.T) {
	for word, typ := range KeywordMap {
		if typ.String() != word {
			t.Errorf("keyword %q renders as %q", word, typ.String())
		}
	}
	if !IntKw.IsTypeKeyword() || !NullKw.IsTypeKeyword() {
		t.Fatalf("int and null are type keywords")
	}
	if SpanKw.IsTypeKeyword() || Plus.IsTypeKeyword() {
		t.Fatalf("span and '+' are not value types")
	}
}

func TestTokenIsZero(t *testing.T) {
	if !(Token{}).IsZero() {
		t.Fatalf("an empty token has no position")
	}
	if (Token{Line: 1, Column: 1}).IsZero() {
		t.Fatalf("a positioned token is not zero")
	}
}
