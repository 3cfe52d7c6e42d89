package eval

import "github.com/xplshn/omnia/pkg/ast"

// Fold returns a copy of node in which every binary subtree over literals is
// replaced by a literal holding its value. Subtrees that fail to evaluate are
// kept so the failure is reported, with its position, by Calc.
func (e *Evaluator) Fold(node *ast.Node) *ast.Node {
	return e.fold(node, 1)
}

func (e *Evaluator) fold(node *ast.Node, depth int) *ast.Node {
	if node == nil || depth > e.maxDepth {
		return node
	}

	switch d := node.Data.(type) {
	case ast.BinaryOpNode:
		left := e.fold(d.Left, depth+1)
		right := e.fold(d.Right, depth+1)
		if isLiteral(left) && isLiteral(right) {
			lv := left.Data.(ast.LiteralNode).Value
			rv := right.Data.(ast.LiteralNode).Value
			if v, err := e.Apply(d.Op, lv, rv); err == nil {
				return ast.NewLiteral(node.Tok, v)
			}
		}
		return ast.NewBinaryOp(node.Tok, d.Op, left, right)
	case ast.UnaryOpNode:
		return ast.NewUnaryOp(node.Tok, d.Op, e.fold(d.Expr, depth+1))
	}
	c := *node
	return &c
}

func isLiteral(n *ast.Node) bool {
	if n == nil {
		return false
	}
	lit, ok := n.Data.(ast.LiteralNode)
	return ok && lit.Value != nil
}
