package value

import (
	"errors"
	"math"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/omnia/pkg/errs"
	"github.com/xplshn/omnia/pkg/types"
)

func TestReadContract(t *testing.T) {
	type reading struct {
		Int32   int32
		Decimal float64
		Text    string
		Tag     string
	}
	cases := []struct {
		in   Value
		want reading
	}{
		{Int{V: -5}, reading{-5, -5, "-5", "numeric/int"}},
		{Byte{V: -128}, reading{-128, -128, "-128", "numeric/byte"}},
		{UByte{V: 255}, reading{255, 255, "255", "numeric/ubyte"}},
		{UInt{V: 7}, reading{7, 7, "7", "numeric/uint"}},
		{Long{V: 1 << 40}, reading{0, 1 << 40, "1099511627776", "numeric/long"}},
		{ULong{V: 3}, reading{3, 3, "3", "numeric/ulong"}},
		{Decimal{V: 2.75}, reading{2, 2.75, "2.75", "numeric/decimal"}},
		{Decimal{V: -2.75}, reading{-2, -2.75, "-2.75", "numeric/decimal"}},
		{Bool{V: true}, reading{1, 1, "true", "other/bool"}},
		{Bool{V: false}, reading{0, 0, "false", "other/bool"}},
		{Char{V: 'A'}, reading{65, 65, "A", "string-like/char"}},
	}
	for _, tc := range cases {
		got := reading{tc.in.AsInt32(), tc.in.AsDecimal(), tc.in.String(), tc.in.Tag().String()}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("%#v mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestDecimalAsInt32Saturates(t *testing.T) {
	cases := map[float64]int32{
		1e20:           math.MaxInt32,
		-1e20:          math.MinInt32,
		math.Inf(1):    math.MaxInt32,
		math.Inf(-1):   math.MinInt32,
		math.NaN():     0,
		float64(-0.99): 0,
	}
	for in, want := range cases {
		if got := (Decimal{V: in}).AsInt32(); got != want {
			t.Errorf("Decimal(%v).AsInt32() = %d, want %d", in, got, want)
		}
	}
}

func TestCharArrayHashes(t *testing.T) {
	v := Text("hello")
	h := xxhash.Sum64String("hello")
	if got := v.AsInt32(); got != int32(h) {
		t.Fatalf("AsInt32 = %d, want %d", got, int32(h))
	}
	if got := v.AsDecimal(); got != float64(h) {
		t.Fatalf("AsDecimal = %v, want %v", got, float64(h))
	}
	if v.AsInt32() != Text("hello").AsInt32() {
		t.Fatalf("hash must be stable")
	}
	if !v.Tag().Valid() || v.Tag().Class != types.StringLike {
		t.Fatalf("unexpected tag %s", v.Tag())
	}
}

func TestEveryTagIsValid(t *testing.T) {
	for _, v := range []Value{Decimal{}, Char{}, CharArray{}, Bool{}, Byte{}, UByte{}, Int{}, UInt{}, Long{}, ULong{}} {
		if !v.Tag().Valid() {
			t.Errorf("%T has invalid tag %s", v, v.Tag())
		}
		z, err := Zero(KindOf(v))
		if err != nil {
			t.Fatalf("Zero(%s): %v", KindOf(v), err)
		}
		if !Equal(z, v) {
			t.Errorf("Zero(%s) = %#v, want %#v", KindOf(v), z, v)
		}
	}
}

func TestFromLiteral(t *testing.T) {
	cases := []struct {
		kind types.Kind
		text string
		want Value
		err  error
	}{
		{types.Int, "2147483647", Int{V: math.MaxInt32}, nil},
		{types.Int, "2147483648", nil, errs.RangeExceeded},
		{types.Byte, "-128", Byte{V: -128}, nil},
		{types.Byte, "0x7f", Byte{V: 127}, nil},
		{types.UByte, "256", nil, errs.RangeExceeded},
		{types.UByte, "-1", nil, errs.TypeResolution},
		{types.ULong, "18446744073709551615", ULong{V: math.MaxUint64}, nil},
		{types.Long, "12abc", nil, errs.TypeResolution},
		{types.Decimal, "1e3", Decimal{V: 1000}, nil},
		{types.Char, "é", Char{V: 'é'}, nil},
		{types.Char, "ab", nil, errs.TypeResolution},
		{types.CharArray, "", Text(""), nil},
		{types.Bool, "true", Bool{V: true}, nil},
		{types.Bool, "yes", nil, errs.TypeResolution},
		{types.Omni, "1", nil, errs.TypeResolution},
	}
	for _, tc := range cases {
		got, err := FromLiteral(tc.kind, tc.text)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Errorf("FromLiteral(%s, %q): expected %v, got %v (%v)", tc.kind, tc.text, tc.err, err, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("FromLiteral(%s, %q): unexpected error: %v", tc.kind, tc.text, err)
			continue
		}
		if !Equal(got, tc.want) {
			t.Errorf("FromLiteral(%s, %q) = %#v, want %#v", tc.kind, tc.text, got, tc.want)
		}
	}
}

func TestConversionsAreRangeChecked(t *testing.T) {
	if _, err := FromInt64(types.Byte, 128); !errors.Is(err, errs.RangeExceeded) {
		t.Fatalf("expected byte range error, got %v", err)
	}
	if _, err := FromInt64(types.UInt, -1); !errors.Is(err, errs.RangeExceeded) {
		t.Fatalf("expected uint range error, got %v", err)
	}
	if _, err := FromUint64(types.Long, math.MaxUint64); !errors.Is(err, errs.RangeExceeded) {
		t.Fatalf("expected long range error, got %v", err)
	}
	if _, err := FromFloat(types.Long, math.NaN()); !errors.Is(err, errs.RangeExceeded) {
		t.Fatalf("expected NaN to fail, got %v", err)
	}
	if _, err := FromFloat(types.ULong, 1.8446744073709552e19); !errors.Is(err, errs.RangeExceeded) {
		t.Fatalf("expected 2^64 to fail, got %v", err)
	}
	v, err := FromFloat(types.UByte, 255.9)
	if err != nil || !Equal(v, UByte{V: 255}) {
		t.Fatalf("expected ubyte 255, got %v (%v)", v, err)
	}
}

func TestEqualComparesKinds(t *testing.T) {
	if Equal(Int{V: 1}, Long{V: 1}) {
		t.Fatalf("values of different kinds must differ")
	}
	if !Equal(Decimal{V: math.NaN()}, Decimal{V: math.NaN()}) {
		t.Fatalf("NaN decimals with the same bits are equal")
	}
	if Equal(Decimal{V: 0}, Decimal{V: math.Copysign(0, -1)}) {
		t.Fatalf("signed zeros differ")
	}
}

func TestFormatDecimal(t *testing.T) {
	cases := map[float64]string{
		10:           "10",
		0.1:          "0.1",
		-2.5:         "-2.5",
		1e21:         "1000000000000000000000",
		math.Inf(1):  "inf",
		math.Inf(-1): "-inf",
	}
	for in, want := range cases {
		if got := FormatDecimal(in); got != want {
			t.Errorf("FormatDecimal(%v) = %q, want %q", in, got, want)
		}
	}
}
