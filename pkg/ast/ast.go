// Package ast defines the expression tree handed to the evaluator
package ast

import (
	"fmt"

	"github.com/xplshn/omnia/pkg/arith"
	"github.com/xplshn/omnia/pkg/errs"
	"github.com/xplshn/omnia/pkg/token"
	"github.com/xplshn/omnia/pkg/value"
)

// NodeType defines the kind of a node in the AST
type NodeType int

// Node types enum
const (
	Literal NodeType = iota
	Ident
	BinaryOp
	UnaryOp
)

var nodeTypeNames = [...]string{
	Literal:  "literal",
	Ident:    "ident",
	BinaryOp: "binary",
	UnaryOp:  "unary",
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return fmt.Sprintf("node(%d)", int(t))
	}
	return nodeTypeNames[t]
}

// Node represents a node in the expression tree. A node exclusively owns the
// nodes reachable through its Data; trees are never shared or cyclic.
type Node struct {
	Type NodeType
	Tok  token.Token
	Data interface{}
}

// Operator is the operator of a binary or unary node.
type Operator int

const (
	Add Operator = iota
	Subtract
	Multiply
	Divide
	Remainder
	Increment
	Decrement
)

var operatorInfo = [...]struct {
	symbol, name string
}{
	Add:       {"+", "add"},
	Subtract:  {"-", "subtract"},
	Multiply:  {"*", "multiply"},
	Divide:    {"/", "divide"},
	Remainder: {"%", "remainder"},
	Increment: {"++", "increment"},
	Decrement: {"--", "decrement"},
}

func (op Operator) valid() bool { return op >= Add && op <= Decrement }

func (op Operator) String() string {
	if !op.valid() {
		return fmt.Sprintf("operator(%d)", int(op))
	}
	return operatorInfo[op].symbol
}

// Name is the lowercase operator name used by tree files.
func (op Operator) Name() string {
	if !op.valid() {
		return op.String()
	}
	return operatorInfo[op].name
}

// IsUnaryOnly reports whether op may only appear on a unary node.
func (op Operator) IsUnaryOnly() bool { return op == Increment || op == Decrement }

// Arith maps a binary operator onto its checked arithmetic operation.
func (op Operator) Arith() (arith.Op, bool) {
	switch op {
	case Add:
		return arith.Add, true
	case Subtract:
		return arith.Sub, true
	case Multiply:
		return arith.Mul, true
	case Divide:
		return arith.Div, true
	case Remainder:
		return arith.Rem, true
	}
	return 0, false
}

// ParseOperator resolves an operator from its symbol or name.
func ParseOperator(s string) (Operator, error) {
	for op := Add; op <= Decrement; op++ {
		if s == operatorInfo[op].symbol || s == operatorInfo[op].name {
			return op, nil
		}
	}
	return 0, errs.New(errs.UnsupportedOperator, "unknown operator '%s'", s)
}

// OperatorFromToken maps a lexer operator token.
func OperatorFromToken(t token.Type) (Operator, error) {
	switch t {
	case token.Plus:
		return Add, nil
	case token.Minus:
		return Subtract, nil
	case token.Star:
		return Multiply, nil
	case token.Slash:
		return Divide, nil
	case token.Rem:
		return Remainder, nil
	case token.Inc:
		return Increment, nil
	case token.Dec:
		return Decrement, nil
	}
	return 0, errs.New(errs.UnsupportedOperator, "token '%s' is not an operator", t)
}

// Token is the lexer token spelling op.
func (op Operator) Token() token.Type {
	switch op {
	case Add:
		return token.Plus
	case Subtract:
		return token.Minus
	case Multiply:
		return token.Star
	case Divide:
		return token.Slash
	case Remainder:
		return token.Rem
	case Increment:
		return token.Inc
	case Decrement:
		return token.Dec
	}
	return token.EOF
}

// --- Node Data Structs ---
type LiteralNode struct{ Value value.Value }
type IdentNode struct{ Name string }
type BinaryOpNode struct {
	Op          Operator
	Left, Right *Node
}
type UnaryOpNode struct {
	Op   Operator
	Expr *Node
}

// --- Node Constructors ---

func newNode(tok token.Token, nodeType NodeType, data interface{}) *Node {
	return &Node{Type: nodeType, Tok: tok, Data: data}
}

func NewLiteral(tok token.Token, v value.Value) *Node {
	return newNode(tok, Literal, LiteralNode{Value: v})
}
func NewIdent(tok token.Token, name string) *Node {
	return newNode(tok, Ident, IdentNode{Name: name})
}
func NewBinaryOp(tok token.Token, op Operator, left, right *Node) *Node {
	return newNode(tok, BinaryOp, BinaryOpNode{Op: op, Left: left, Right: right})
}
func NewUnaryOp(tok token.Token, op Operator, expr *Node) *Node {
	return newNode(tok, UnaryOp, UnaryOpNode{Op: op, Expr: expr})
}

// Lit builds a literal node without a source position.
func Lit(v value.Value) *Node { return NewLiteral(token.Token{}, v) }

// Bin builds a binary node without a source position.
func Bin(op Operator, left, right *Node) *Node { return NewBinaryOp(token.Token{}, op, left, right) }

// Depth returns the nesting depth of the tree rooted at n.
func Depth(n *Node) int {
	if n == nil {
		return 0
	}
	switch d := n.Data.(type) {
	case BinaryOpNode:
		return 1 + max(Depth(d.Left), Depth(d.Right))
	case UnaryOpNode:
		return 1 + Depth(d.Expr)
	}
	return 1
}

// String renders the tree in fully parenthesized infix form.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch d := n.Data.(type) {
	case LiteralNode:
		if d.Value == nil {
			return "<nil>"
		}
		if _, ok := d.Value.(value.CharArray); ok {
			return fmt.Sprintf("%q", d.Value.String())
		}
		if _, ok := d.Value.(value.Char); ok {
			return fmt.Sprintf("%q", d.Value.(value.Char).V)
		}
		return fmt.Sprintf("%s(%s)", value.KindOf(d.Value), d.Value)
	case IdentNode:
		return d.Name
	case BinaryOpNode:
		return fmt.Sprintf("(%s %s %s)", d.Left, d.Op, d.Right)
	case UnaryOpNode:
		return fmt.Sprintf("(%s%s)", d.Op, d.Expr)
	}
	return fmt.Sprintf("<%s>", n.Type)
}
