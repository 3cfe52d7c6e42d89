// Package eval evaluates expression trees over the value model. Evaluation is
// pure: a tree either produces a value or fails with an *errs.Error.
package eval

import (
	"errors"

	"github.com/xplshn/omnia/pkg/arith"
	"github.com/xplshn/omnia/pkg/ast"
	"github.com/xplshn/omnia/pkg/coerce"
	"github.com/xplshn/omnia/pkg/config"
	"github.com/xplshn/omnia/pkg/errs"
	"github.com/xplshn/omnia/pkg/types"
	"github.com/xplshn/omnia/pkg/value"
)

// Evaluator holds read-only settings and may be shared between goroutines.
type Evaluator struct {
	scope      *Scope
	opts       coerce.Options
	maxDepth   int
	boolConcat bool
	folding    bool
}

// New returns an evaluator resolving identifiers through scope. A nil cfg
// selects the defaults; a nil scope resolves nothing.
func New(cfg *config.Config, scope *Scope) *Evaluator {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Evaluator{
		scope:      scope,
		opts:       cfg.CoerceOptions(),
		maxDepth:   cfg.Depth(),
		boolConcat: cfg.IsFeatureEnabled(config.FeatBoolConcat),
		folding:    cfg.IsFeatureEnabled(config.FeatFold),
	}
}

// Calc evaluates node. The tree is not modified.
func (e *Evaluator) Calc(node *ast.Node) (value.Value, error) {
	if e.folding {
		node = e.Fold(node)
	}
	return e.calc(node, 1)
}

func (e *Evaluator) calc(node *ast.Node, depth int) (value.Value, error) {
	if node == nil {
		return nil, errs.New(errs.Internal, "missing expression node")
	}
	if depth > e.maxDepth {
		return nil, errs.New(errs.DepthExceeded, "expression nesting exceeds %d levels", e.maxDepth).At(node.Tok)
	}

	switch d := node.Data.(type) {
	case ast.LiteralNode:
		if d.Value == nil {
			return nil, errs.New(errs.Internal, "literal without a value").At(node.Tok)
		}
		return d.Value, nil
	case ast.IdentNode:
		v, ok := e.scope.Lookup(d.Name)
		if !ok {
			return nil, errs.New(errs.Unresolved, "undefined identifier '%s'", d.Name).At(node.Tok)
		}
		return v, nil
	case ast.UnaryOpNode:
		err := &errs.Error{Kind: errs.UnsupportedOperator, Op: d.Op.String(), Msg: "unary expressions cannot be evaluated"}
		return nil, err.At(node.Tok)
	case ast.BinaryOpNode:
		left, err := e.calc(d.Left, depth+1)
		if err != nil {
			return nil, err
		}
		right, err := e.calc(d.Right, depth+1)
		if err != nil {
			return nil, err
		}
		v, err := e.Apply(d.Op, left, right)
		if err != nil {
			return nil, position(err, node)
		}
		return v, nil
	}
	return nil, errs.New(errs.Internal, "unknown node type %s", node.Type).At(node.Tok)
}

func position(err error, node *ast.Node) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return e.At(node.Tok)
	}
	return err
}

// Apply combines two already evaluated operands. The left operand decides
// the result kind: the right one is converted into it, or both are joined as
// text when either is char[].
func (e *Evaluator) Apply(op ast.Operator, left, right value.Value) (value.Value, error) {
	if left == nil || right == nil {
		return nil, errs.New(errs.Internal, "missing operand for %s", op)
	}
	sym := op.String()
	lk, rk := value.KindOf(left), value.KindOf(right)

	if op.IsUnaryOnly() {
		return nil, errs.Operator(sym, lk.String(), rk.String())
	}

	if lk == types.CharArray || rk == types.CharArray {
		if op != ast.Add {
			return nil, errs.Operator(sym, lk.String(), rk.String())
		}
		// Text on the left never takes a bool.
		if rk == types.Bool || (lk == types.Bool && !e.boolConcat) {
			return nil, errs.Coercion(sym, lk.String(), rk.String())
		}
		return coerce.Concat(left, right), nil
	}

	aop, ok := op.Arith()
	if !ok {
		return nil, errs.Operator(sym, lk.String(), rk.String())
	}
	if !lk.IsNumeric() {
		return nil, errs.Coercion(sym, lk.String(), rk.String())
	}

	converted, err := coerce.Into(sym, lk, right, e.opts)
	if err != nil {
		return nil, withOperands(err, sym, lk, rk)
	}
	v, err := compute(aop, left, converted)
	if err != nil {
		if lk != rk && right.AsDecimal() != 0 && errors.Is(err, errs.DivisionByZero) {
			err = afterConversion(err, aop, rk)
		}
		return nil, withOperands(err, sym, lk, rk)
	}
	return v, nil
}

// afterConversion names the conversion that turned a non-zero divisor into
// zero, as in int(1) / decimal(0.5).
func afterConversion(err error, aop arith.Op, rk types.Kind) error {
	var e *errs.Error
	if !errors.As(err, &e) {
		return err
	}
	c := *e
	c.Operation = aop.Verb() + " after converting " + rk.String() + " operand"
	return &c
}

func withOperands(err error, sym string, lk, rk types.Kind) error {
	var e *errs.Error
	if !errors.As(err, &e) || e.Op != "" {
		return err
	}
	c := *e
	c.Op, c.Left, c.Right = sym, lk.String(), rk.String()
	return &c
}

func operand[V value.Value](v value.Value) (V, error) {
	r, ok := v.(V)
	if !ok {
		var zero V
		return zero, errs.New(errs.Internal, "converted operand is %s, want %s", value.KindOf(v), zero.Tag().Kind)
	}
	return r, nil
}

// compute applies op to two operands of the same kind.
func compute(op arith.Op, left, right value.Value) (value.Value, error) {
	name := value.KindOf(left).String()
	switch l := left.(type) {
	case value.Byte:
		r, err := operand[value.Byte](right)
		if err != nil {
			return nil, err
		}
		v, err := arith.Signed(name, op, l.V, r.V)
		if err != nil {
			return nil, err
		}
		return value.Byte{V: v}, nil
	case value.Int:
		r, err := operand[value.Int](right)
		if err != nil {
			return nil, err
		}
		v, err := arith.Signed(name, op, l.V, r.V)
		if err != nil {
			return nil, err
		}
		return value.Int{V: v}, nil
	case value.Long:
		r, err := operand[value.Long](right)
		if err != nil {
			return nil, err
		}
		v, err := arith.Signed(name, op, l.V, r.V)
		if err != nil {
			return nil, err
		}
		return value.Long{V: v}, nil
	case value.UByte:
		r, err := operand[value.UByte](right)
		if err != nil {
			return nil, err
		}
		v, err := arith.Unsigned(name, op, l.V, r.V)
		if err != nil {
			return nil, err
		}
		return value.UByte{V: v}, nil
	case value.UInt:
		r, err := operand[value.UInt](right)
		if err != nil {
			return nil, err
		}
		v, err := arith.Unsigned(name, op, l.V, r.V)
		if err != nil {
			return nil, err
		}
		return value.UInt{V: v}, nil
	case value.ULong:
		r, err := operand[value.ULong](right)
		if err != nil {
			return nil, err
		}
		v, err := arith.Unsigned(name, op, l.V, r.V)
		if err != nil {
			return nil, err
		}
		return value.ULong{V: v}, nil
	case value.Decimal:
		r, err := operand[value.Decimal](right)
		if err != nil {
			return nil, err
		}
		v, err := arith.Float(name, op, l.V, r.V)
		if err != nil {
			return nil, err
		}
		return value.Decimal{V: v}, nil
	}
	return nil, errs.New(errs.Internal, "no arithmetic for %s", name)
}
