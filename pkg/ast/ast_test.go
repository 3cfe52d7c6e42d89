package ast

import (
	"errors"
	"testing"

	"github.com/xplshn/omnia/pkg/arith"
	"github.com/xplshn/omnia/pkg/errs"
	"github.com/xplshn/omnia/pkg/token"
	"github.com/xplshn/omnia/pkg/value"
)

func TestOperators(t *testing.T) {
	for op := Add; op <= Decrement; op++ {
		bySymbol, err := ParseOperator(op.String())
		if err != nil || bySymbol != op {
			t.Fatalf("ParseOperator(%q) = %v, %v", op.String(), bySymbol, err)
		}
		byName, err := ParseOperator(op.Name())
		if err != nil || byName != op {
			t.Fatalf("ParseOperator(%q) = %v, %v", op.Name(), byName, err)
		}
		fromTok, err := OperatorFromToken(op.Token())
		if err != nil || fromTok != op {
			t.Fatalf("OperatorFromToken(%s) = %v, %v", op.Token(), fromTok, err)
		}
		if _, ok := op.Arith(); ok == op.IsUnaryOnly() {
			t.Fatalf("%s: arithmetic and unary-only must be exclusive", op)
		}
	}
	if op, _ := Remainder.Arith(); op != arith.Rem {
		t.Fatalf("Remainder maps to %s", op)
	}
	if _, err := ParseOperator("**"); !errors.Is(err, errs.UnsupportedOperator) {
		t.Fatalf("expected unsupported operator, got %v", err)
	}
	if _, err := OperatorFromToken(token.Semi); err == nil {
		t.Fatalf("';' is not an operator")
	}
}

func TestDepthAndString(t *testing.T) {
	tree := Bin(Add,
		Lit(value.Int{V: 1}),
		Bin(Multiply, NewIdent(token.Token{}, "x"), NewUnaryOp(token.Token{}, Increment, Lit(value.Char{V: 'c'}))),
	)
	if got := Depth(tree); got != 4 {
		t.Fatalf("Depth = %d, want 4", got)
	}
	if got, want := tree.String(), "(int(1) + (x * (++'c')))"; got != want {
		t.Fatalf("String = %s, want %s", got, want)
	}
	if Depth(nil) != 0 {
		t.Fatalf("Depth(nil) must be 0")
	}
}
