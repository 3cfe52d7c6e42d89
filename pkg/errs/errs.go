// Package errs defines the error taxonomy shared by the value model and the evaluator
package errs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xplshn/omnia/pkg/token"
)

// Kind classifies an evaluation failure. A Kind is itself an error so that
// errors.Is(err, errs.RangeExceeded) matches any *Error of that kind.
type Kind int

const (
	TypeResolution Kind = iota + 1
	RangeExceeded
	DivisionByZero
	NonFiniteResult
	UnsupportedCoercion
	UnsupportedOperator
	DepthExceeded
	Unresolved
	Internal
)

var kindNames = map[Kind]string{
	TypeResolution:      "type-resolution",
	RangeExceeded:       "range-exceeded",
	DivisionByZero:      "division-by-zero",
	NonFiniteResult:     "non-finite-result",
	UnsupportedCoercion: "unsupported-coercion",
	UnsupportedOperator: "unsupported-operator",
	DepthExceeded:       "depth-exceeded",
	Unresolved:          "unresolved",
	Internal:            "internal",
}

var kindByName = make(map[string]Kind)

func init() {
	for k, name := range kindNames {
		kindByName[name] = k
	}
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) Error() string { return k.String() }

// ParseKind resolves a kind from its String form.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindByName[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// Error is the concrete error produced by every failing operation.
type Error struct {
	Kind Kind
	// Op is the operator symbol, empty when no operator is involved.
	Op string
	// Left and Right are the operand kind names.
	Left, Right string
	// Operation names the checked step that failed ("adding", "converting", ...).
	Operation string
	Msg       string
	Tok       token.Token
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Msg != "" {
		sb.WriteString(e.Msg)
	} else {
		sb.WriteString(defaultMessage(e))
	}
	switch {
	case e.Op != "" && e.Left != "" && e.Right != "":
		fmt.Fprintf(&sb, " (%s %s %s)", e.Left, e.Op, e.Right)
	case e.Op != "" && e.Left != "":
		fmt.Fprintf(&sb, " (%s %s)", e.Op, e.Left)
	}
	return sb.String()
}

func defaultMessage(e *Error) string {
	switch e.Kind {
	case RangeExceeded:
		if e.Operation != "" {
			return fmt.Sprintf("got value out of %s bounds while %s", e.Left, e.Operation)
		}
		return fmt.Sprintf("value out of %s bounds", e.Left)
	case DivisionByZero:
		if e.Operation != "" {
			return "attempted to divide by zero while " + e.Operation
		}
		return "attempted to divide by zero"
	case NonFiniteResult:
		return fmt.Sprintf("non-finite %s result while %s", e.Left, e.Operation)
	case UnsupportedCoercion:
		return fmt.Sprintf("cannot coerce %s into %s", e.Right, e.Left)
	case UnsupportedOperator:
		return fmt.Sprintf("operator %s is not supported here", e.Op)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	return false
}

// At returns a copy of e positioned at tok, keeping an existing position.
func (e *Error) At(tok token.Token) *Error {
	if !e.Tok.IsZero() || tok.IsZero() {
		return e
	}
	c := *e
	c.Tok = tok
	return &c
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Range(kind, operation string) *Error {
	return &Error{Kind: RangeExceeded, Left: kind, Operation: operation}
}

func DivZero(kind, operation string) *Error {
	return &Error{Kind: DivisionByZero, Left: kind, Operation: operation}
}

func NonFinite(kind, operation string) *Error {
	return &Error{Kind: NonFiniteResult, Left: kind, Operation: operation}
}

func Coercion(op, left, right string) *Error {
	return &Error{Kind: UnsupportedCoercion, Op: op, Left: left, Right: right}
}

func Operator(op, left, right string) *Error {
	return &Error{Kind: UnsupportedOperator, Op: op, Left: left, Right: right}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsUserError reports whether err is a reportable evaluation failure rather
// than a defect in the dispatch tables.
func IsUserError(err error) bool {
	k := KindOf(err)
	return k != 0 && k != Internal
}
