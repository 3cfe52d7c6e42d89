package eval

import (
	"fmt"

	"github.com/xplshn/omnia/pkg/value"
)

// Symbol binds a name to a value.
type Symbol struct {
	Name  string
	Value value.Value
	Next  *Symbol
}

// Scope is a linked list of symbols with a pointer to the enclosing scope.
type Scope struct {
	Symbols *Symbol
	Parent  *Scope
}

func NewScope(parent *Scope) *Scope { return &Scope{Parent: parent} }

// Define adds name to s. Names may shadow outer scopes but not each other.
func (s *Scope) Define(name string, v value.Value) error {
	if v == nil {
		return fmt.Errorf("symbol '%s' has no value", name)
	}
	for sym := s.Symbols; sym != nil; sym = sym.Next {
		if sym.Name == name {
			return fmt.Errorf("redefinition of '%s'", name)
		}
	}
	s.Symbols = &Symbol{Name: name, Value: v, Next: s.Symbols}
	return nil
}

// Lookup finds name in s or the nearest enclosing scope.
func (s *Scope) Lookup(name string) (value.Value, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		for sym := sc.Symbols; sym != nil; sym = sym.Next {
			if sym.Name == name {
				return sym.Value, true
			}
		}
	}
	return nil, false
}
