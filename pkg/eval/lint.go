package eval

import (
	"fmt"

	"github.com/xplshn/omnia/pkg/ast"
	"github.com/xplshn/omnia/pkg/config"
	"github.com/xplshn/omnia/pkg/token"
	"github.com/xplshn/omnia/pkg/types"
	"github.com/xplshn/omnia/pkg/value"
)

// Diagnostic is a warning found without evaluating the tree.
type Diagnostic struct {
	Warning config.Warning
	Tok     token.Token
	Msg     string
}

type linter struct {
	cfg   *config.Config
	scope *Scope
	diags []Diagnostic
}

// Lint reports lossy conversions, implicit text rendering and unary nodes in
// node. Only warnings enabled in cfg are returned, innermost first.
func Lint(cfg *config.Config, scope *Scope, node *ast.Node) []Diagnostic {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	l := &linter{cfg: cfg, scope: scope}
	l.walk(node, 1)
	return l.diags
}

func (l *linter) warn(wt config.Warning, tok token.Token, format string, args ...interface{}) {
	if !l.cfg.IsWarningEnabled(wt) {
		return
	}
	l.diags = append(l.diags, Diagnostic{Warning: wt, Tok: tok, Msg: fmt.Sprintf(format, args...)})
}

// walk returns the static kind of node, when it can be known.
func (l *linter) walk(node *ast.Node, depth int) (types.Kind, bool) {
	if node == nil || depth > l.cfg.Depth() {
		return 0, false
	}

	switch d := node.Data.(type) {
	case ast.LiteralNode:
		if d.Value == nil {
			return 0, false
		}
		return value.KindOf(d.Value), true
	case ast.IdentNode:
		if v, ok := l.scope.Lookup(d.Name); ok {
			return value.KindOf(v), true
		}
		return 0, false
	case ast.UnaryOpNode:
		l.walk(d.Expr, depth+1)
		l.warn(config.WarnUnaryOp, node.Tok, "unary '%s' cannot be evaluated", d.Op)
		return 0, false
	case ast.BinaryOpNode:
		lk, lok := l.walk(d.Left, depth+1)
		rk, rok := l.walk(d.Right, depth+1)
		if !lok || !rok {
			return 0, false
		}
		return l.binary(node, d.Op, lk, rk)
	}
	return 0, false
}

func (l *linter) binary(node *ast.Node, op ast.Operator, lk, rk types.Kind) (types.Kind, bool) {
	if lk.IsText() || rk.IsText() {
		if op != ast.Add || rk == types.Bool {
			return 0, false
		}
		if !lk.IsText() {
			l.warn(config.WarnImplicitConcat, node.Tok, "%s operand is rendered as text", lk)
		}
		if !rk.IsText() {
			l.warn(config.WarnImplicitConcat, node.Tok, "%s operand is rendered as text", rk)
		}
		return types.CharArray, true
	}
	if !lk.IsNumeric() || !rk.IsNumeric() {
		return 0, false
	}
	switch {
	case lk.IsInteger() && rk == types.Decimal:
		l.warn(config.WarnTruncation, node.Tok, "decimal operand is truncated to %s", lk)
	case lk.IsInteger() && rk.IsInteger() && rk.Bits() > lk.Bits():
		l.warn(config.WarnNarrowing, node.Tok, "%s operand is narrowed to %s", rk, lk)
	}
	return lk, true
}
