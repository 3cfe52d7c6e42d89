package arith

import (
	"errors"
	"math"
	"testing"

	"github.com/xplshn/omnia/pkg/errs"
)

func TestSignedBounds(t *testing.T) {
	cases := []struct {
		name string
		op   Op
		a, b int32
		want int32
		err  error
	}{
		{"add", Add, 5, 3, 8, nil},
		{"add overflow", Add, math.MaxInt32, 1, 0, errs.RangeExceeded},
		{"sub underflow", Sub, math.MinInt32, 1, 0, errs.RangeExceeded},
		{"mul overflow", Mul, 1 << 16, 1 << 16, 0, errs.RangeExceeded},
		{"div truncates", Div, -7, 2, -3, nil},
		{"div min by -1", Div, math.MinInt32, -1, 0, errs.RangeExceeded},
		{"div by zero", Div, 1, 0, 0, errs.DivisionByZero},
		{"rem sign follows dividend", Rem, -7, 2, -1, nil},
		{"rem min by -1", Rem, math.MinInt32, -1, 0, nil},
		{"rem by zero", Rem, 1, 0, 0, errs.DivisionByZero},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Signed("int", tc.op, tc.a, tc.b)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v (value %d)", tc.err, err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestSignedByteAndLong(t *testing.T) {
	if _, err := Signed[int8]("byte", Add, 127, 1); !errors.Is(err, errs.RangeExceeded) {
		t.Fatalf("expected byte overflow, got %v", err)
	}
	if v, err := Signed[int8]("byte", Sub, -100, 28); err != nil || v != -128 {
		t.Fatalf("expected -128, got %d (%v)", v, err)
	}
	if _, err := Signed[int64]("long", Mul, math.MaxInt64, 2); !errors.Is(err, errs.RangeExceeded) {
		t.Fatalf("expected long overflow, got %v", err)
	}
	if v, err := Signed[int64]("long", Add, math.MaxInt64-1, 1); err != nil || v != math.MaxInt64 {
		t.Fatalf("expected MaxInt64, got %d (%v)", v, err)
	}
}

func TestUnsignedBounds(t *testing.T) {
	if _, err := Unsigned[uint8]("ubyte", Add, 200, 100); !errors.Is(err, errs.RangeExceeded) {
		t.Fatalf("expected ubyte overflow, got %v", err)
	}
	if _, err := Unsigned[uint32]("uint", Sub, 1, 2); !errors.Is(err, errs.RangeExceeded) {
		t.Fatalf("expected uint underflow, got %v", err)
	}
	if _, err := Unsigned[uint64]("ulong", Mul, math.MaxUint64, 2); !errors.Is(err, errs.RangeExceeded) {
		t.Fatalf("expected ulong overflow, got %v", err)
	}
	if v, err := Unsigned[uint64]("ulong", Add, math.MaxUint64-1, 1); err != nil || v != math.MaxUint64 {
		t.Fatalf("expected MaxUint64, got %d (%v)", v, err)
	}
	if _, err := Unsigned[uint32]("uint", Div, 1, 0); !errors.Is(err, errs.DivisionByZero) {
		t.Fatalf("expected division by zero, got %v", err)
	}
	if v, err := Unsigned[uint32]("uint", Rem, 17, 5); err != nil || v != 2 {
		t.Fatalf("expected 2, got %d (%v)", v, err)
	}
}

func TestFloatFiniteness(t *testing.T) {
	cases := []struct {
		name string
		op   Op
		a, b float64
		want float64
		err  error
	}{
		{"add", Add, 1.5, 2.25, 3.75, nil},
		{"div", Div, 1, 4, 0.25, nil},
		{"div by zero", Div, 1, 0, 0, errs.DivisionByZero},
		{"zero by zero", Div, 0, 0, 0, errs.DivisionByZero},
		{"rem by zero", Rem, 1, 0, 0, errs.DivisionByZero},
		{"rem", Rem, 7.5, 2, 1.5, nil},
		{"mul overflow", Mul, math.MaxFloat64, 10, 0, errs.NonFiniteResult},
		{"inf minus inf", Sub, math.Inf(1), math.Inf(1), 0, errs.NonFiniteResult},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Float("decimal", tc.op, tc.a, tc.b)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v (value %v)", tc.err, err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestErrorNamesOperation(t *testing.T) {
	_, err := Signed[int32]("int", Add, math.MaxInt32, 1)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if want := "got value out of int bounds while adding"; err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
