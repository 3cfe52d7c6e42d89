// Package arith implements checked scalar arithmetic. Integer operations fail
// when the exact result does not fit the operand type; decimal operations
// fail when the result is not finite.
package arith

import (
	"fmt"
	"math"
	"math/big"

	"golang.org/x/exp/constraints"

	"github.com/xplshn/omnia/pkg/errs"
)

type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
	Rem
)

var opVerbs = [...]string{
	Add: "adding",
	Sub: "subtracting",
	Mul: "multiplying",
	Div: "dividing",
	Rem: "taking remainder",
}

var opSymbols = [...]string{Add: "+", Sub: "-", Mul: "*", Div: "/", Rem: "%"}

// Verb names the operation in error messages.
func (op Op) Verb() string {
	if op < 0 || int(op) >= len(opVerbs) {
		return fmt.Sprintf("op(%d)", int(op))
	}
	return opVerbs[op]
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opSymbols) {
		return fmt.Sprintf("op(%d)", int(op))
	}
	return opSymbols[op]
}

// exact computes a op b without bounds. Quo and Rem truncate toward zero.
func exact(op Op, a, b *big.Int) *big.Int {
	r := new(big.Int)
	switch op {
	case Add:
		r.Add(a, b)
	case Sub:
		r.Sub(a, b)
	case Mul:
		r.Mul(a, b)
	case Div:
		r.Quo(a, b)
	case Rem:
		r.Rem(a, b)
	}
	return r
}

func validOp(op Op) bool { return op >= Add && op <= Rem }

// Signed applies op to two values of the same signed integer type. name is
// the language-level type name used in errors.
func Signed[T constraints.Signed](name string, op Op, a, b T) (T, error) {
	if !validOp(op) {
		return 0, errs.New(errs.UnsupportedOperator, "unknown arithmetic operation %d", int(op))
	}
	if b == 0 && (op == Div || op == Rem) {
		return 0, errs.DivZero(name, op.Verb())
	}
	r := exact(op, big.NewInt(int64(a)), big.NewInt(int64(b)))
	if !r.IsInt64() {
		return 0, errs.Range(name, op.Verb())
	}
	v := T(r.Int64())
	if int64(v) != r.Int64() {
		return 0, errs.Range(name, op.Verb())
	}
	return v, nil
}

// Unsigned applies op to two values of the same unsigned integer type.
func Unsigned[T constraints.Unsigned](name string, op Op, a, b T) (T, error) {
	if !validOp(op) {
		return 0, errs.New(errs.UnsupportedOperator, "unknown arithmetic operation %d", int(op))
	}
	if b == 0 && (op == Div || op == Rem) {
		return 0, errs.DivZero(name, op.Verb())
	}
	r := exact(op, new(big.Int).SetUint64(uint64(a)), new(big.Int).SetUint64(uint64(b)))
	if r.Sign() < 0 || !r.IsUint64() {
		return 0, errs.Range(name, op.Verb())
	}
	v := T(r.Uint64())
	if uint64(v) != r.Uint64() {
		return 0, errs.Range(name, op.Verb())
	}
	return v, nil
}

// Float applies op to two decimals. A zero divisor is reported as
// DivisionByZero; any other NaN or infinite result as NonFiniteResult.
func Float(name string, op Op, a, b float64) (float64, error) {
	var r float64
	switch op {
	case Add:
		r = a + b
	case Sub:
		r = a - b
	case Mul:
		r = a * b
	case Div, Rem:
		if b == 0 {
			return 0, errs.DivZero(name, op.Verb())
		}
		if op == Div {
			r = a / b
		} else {
			r = math.Mod(a, b)
		}
	default:
		return 0, errs.New(errs.UnsupportedOperator, "unknown arithmetic operation %d", int(op))
	}
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, errs.NonFinite(name, op.Verb())
	}
	return r, nil
}
