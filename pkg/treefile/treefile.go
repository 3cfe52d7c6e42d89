// Package treefile reads and writes expression trees as YAML documents. JSON
// documents are accepted as well since they are valid YAML.
//
// A leaf is {kind, value} or {ident}; a binary node is {op, left, right}; a
// unary node is {op, expr}. The root may also carry vars (name to literal
// leaf) and expect, the recorded result of evaluating the tree.
package treefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/xplshn/omnia/pkg/ast"
	"github.com/xplshn/omnia/pkg/errs"
	"github.com/xplshn/omnia/pkg/eval"
	"github.com/xplshn/omnia/pkg/token"
	"github.com/xplshn/omnia/pkg/types"
	"github.com/xplshn/omnia/pkg/value"
)

// Expect is a recorded evaluation result: either a kind and rendered value,
// or the name of an error kind.
type Expect struct {
	Kind  string `yaml:"kind,omitempty" json:"kind,omitempty"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
	Error string `yaml:"error,omitempty" json:"error,omitempty"`
}

// Var is a named literal that populates the global scope.
type Var struct {
	Name  string
	Value value.Value
}

type Document struct {
	Tree   *ast.Node
	Vars   []Var
	Expect *Expect
}

// Result records the outcome of an evaluation in the form stored by expect.
func Result(v value.Value, err error) Expect {
	if err != nil {
		if k := errs.KindOf(err); k != 0 {
			return Expect{Error: k.String()}
		}
		return Expect{Error: errs.Internal.String()}
	}
	return Expect{Kind: value.KindOf(v).String(), Value: v.String()}
}

// Scope builds a global scope holding the document's vars.
func (d *Document) Scope() (*eval.Scope, error) {
	s := eval.NewScope(nil)
	for _, v := range d.Vars {
		if err := s.Define(v.Name, v.Value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type decoder struct {
	fileIndex int
}

func Load(path string, fileIndex int) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, fileIndex)
}

// Parse decodes a document. Node tokens point into data under fileIndex.
func Parse(data []byte, fileIndex int) (*Document, error) {
	return Decode(bytes.NewReader(data), fileIndex)
}

func Decode(r io.Reader, fileIndex int) (*Document, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty tree document")
		}
		return nil, err
	}
	d := &decoder{fileIndex: fileIndex}
	n := &root
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	return d.document(n)
}

func (d *decoder) tok(n *yaml.Node, typ token.Type) token.Token {
	return token.Token{Type: typ, Value: n.Value, FileIndex: d.fileIndex, Line: n.Line, Column: n.Column, Len: len(n.Value)}
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...interface{}) error {
	return fmt.Errorf("line %d, column %d: %s", n.Line, n.Column, fmt.Sprintf(format, args...))
}

// fields maps the keys of a mapping node to their values.
func (d *decoder) fields(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "expected a mapping")
	}
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		known := false
		for _, a := range allowed {
			if key.Value == a {
				known = true
				break
			}
		}
		if !known {
			return nil, d.errorf(key, "unknown field '%s'", key.Value)
		}
		if _, dup := out[key.Value]; dup {
			return nil, d.errorf(key, "duplicate field '%s'", key.Value)
		}
		out[key.Value] = n.Content[i+1]
	}
	return out, nil
}

func (d *decoder) document(n *yaml.Node) (*Document, error) {
	f, err := d.fields(n, "op", "left", "right", "expr", "kind", "value", "ident", "vars", "expect")
	if err != nil {
		return nil, err
	}
	doc := &Document{}
	if vars, ok := f["vars"]; ok {
		if doc.Vars, err = d.vars(vars); err != nil {
			return nil, err
		}
		delete(f, "vars")
	}
	if expect, ok := f["expect"]; ok {
		var e Expect
		if err := expect.Decode(&e); err != nil {
			return nil, d.errorf(expect, "expect: %v", err)
		}
		if e.Error != "" {
			if _, ok := errs.ParseKind(e.Error); !ok {
				return nil, d.errorf(expect, "unknown error kind '%s'", e.Error)
			}
		}
		doc.Expect = &e
		delete(f, "expect")
	}
	if doc.Tree, err = d.node(n, f); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *decoder) vars(n *yaml.Node) ([]Var, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "vars: expected a mapping")
	}
	var out []Var
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		leaf, err := d.expr(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		lit, ok := leaf.Data.(ast.LiteralNode)
		if !ok {
			return nil, d.errorf(n.Content[i+1], "var '%s' must be a literal", name)
		}
		out = append(out, Var{Name: name, Value: lit.Value})
	}
	return out, nil
}

func (d *decoder) expr(n *yaml.Node) (*ast.Node, error) {
	f, err := d.fields(n, "op", "left", "right", "expr", "kind", "value", "ident")
	if err != nil {
		return nil, err
	}
	return d.node(n, f)
}

func (d *decoder) node(n *yaml.Node, f map[string]*yaml.Node) (*ast.Node, error) {
	op, hasOp := f["op"]
	ident, hasIdent := f["ident"]
	_, hasKind := f["kind"]

	switch {
	case hasOp:
		return d.operator(op, f)
	case hasIdent:
		if len(f) != 1 {
			return nil, d.errorf(n, "identifier leaf takes only 'ident'")
		}
		return ast.NewIdent(d.tok(ident, token.Ident), ident.Value), nil
	case hasKind:
		return d.literal(n, f)
	}
	return nil, d.errorf(n, "node needs one of 'op', 'ident' or 'kind'")
}

func (d *decoder) operator(opNode *yaml.Node, f map[string]*yaml.Node) (*ast.Node, error) {
	op, err := ast.ParseOperator(opNode.Value)
	if err != nil {
		return nil, d.errorf(opNode, "%v", err)
	}
	tok := d.tok(opNode, op.Token())

	if expr, ok := f["expr"]; ok {
		if _, l := f["left"]; l {
			return nil, d.errorf(opNode, "unary node cannot have 'left'")
		}
		if _, r := f["right"]; r {
			return nil, d.errorf(opNode, "unary node cannot have 'right'")
		}
		child, err := d.expr(expr)
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(tok, op, child), nil
	}

	leftNode, lok := f["left"]
	rightNode, rok := f["right"]
	if !lok || !rok {
		return nil, d.errorf(opNode, "binary node needs 'left' and 'right'")
	}
	left, err := d.expr(leftNode)
	if err != nil {
		return nil, err
	}
	right, err := d.expr(rightNode)
	if err != nil {
		return nil, err
	}
	return ast.NewBinaryOp(tok, op, left, right), nil
}

func (d *decoder) literal(n *yaml.Node, f map[string]*yaml.Node) (*ast.Node, error) {
	kindNode := f["kind"]
	for key := range f {
		if key != "kind" && key != "value" {
			return nil, d.errorf(n, "literal leaf cannot have '%s'", key)
		}
	}
	k, err := types.ParseKind(kindNode.Value)
	if err != nil {
		return nil, d.errorf(kindNode, "%v", err)
	}
	text := ""
	at := kindNode
	if v, ok := f["value"]; ok {
		if v.Kind != yaml.ScalarNode {
			return nil, d.errorf(v, "literal value must be a scalar")
		}
		text, at = v.Value, v
	}
	if text == "" && k != types.CharArray {
		zero, err := value.Zero(k)
		if err != nil {
			return nil, d.errorf(kindNode, "%v", err)
		}
		return ast.NewLiteral(d.tok(kindNode, literalToken(k)), zero), nil
	}
	v, err := value.FromLiteral(k, text)
	if err != nil {
		return nil, d.errorf(at, "%v", err)
	}
	return ast.NewLiteral(d.tok(at, literalToken(k)), v), nil
}

func literalToken(k types.Kind) token.Type {
	switch {
	case k == types.Decimal:
		return token.FloatNumber
	case k.IsInteger():
		return token.Number
	case k == types.Char:
		return token.CharLit
	case k == types.Bool:
		return token.True
	}
	return token.String
}

// Encode writes a document for node. vars and expect are optional.
func Encode(w io.Writer, node *ast.Node, vars []Var, expect *Expect) error {
	root := encodeNode(node)
	if len(vars) > 0 {
		m := make(map[string]interface{}, len(vars))
		for _, v := range vars {
			m[v.Name] = leaf(v.Value)
		}
		root["vars"] = m
	}
	if expect != nil {
		root["expect"] = expect
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}

func leaf(v value.Value) map[string]interface{} {
	return map[string]interface{}{"kind": value.KindOf(v).String(), "value": v.String()}
}

func encodeNode(n *ast.Node) map[string]interface{} {
	if n == nil {
		return map[string]interface{}{}
	}
	switch d := n.Data.(type) {
	case ast.LiteralNode:
		return leaf(d.Value)
	case ast.IdentNode:
		return map[string]interface{}{"ident": d.Name}
	case ast.BinaryOpNode:
		return map[string]interface{}{"op": d.Op.Name(), "left": encodeNode(d.Left), "right": encodeNode(d.Right)}
	case ast.UnaryOpNode:
		return map[string]interface{}{"op": d.Op.Name(), "expr": encodeNode(d.Expr)}
	}
	return map[string]interface{}{}
}

// VarNames lists the names of vars in sorted order.
func VarNames(vars []Var) []string {
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.Name)
	}
	sort.Strings(names)
	return names
}
