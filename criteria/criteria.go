package criteria

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
)

// Kind is the discriminant of a compiled Criteria.
type Kind int

const (
	KindType Kind = iota + 1
	KindUnion
	KindPredicate
	KindNull
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindUnion:
		return "union"
	case KindPredicate:
		return "predicate"
	case KindNull:
		return "null"
	case KindGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Criteria is a compiled acceptance rule. Implementations are immutable and
// safe for concurrent use.
type Criteria interface {
	Kind() Kind
	// Match returns value unchanged when it conforms, or a
	// *TypeMismatchError.
	Match(value any) (any, error)
	String() string

	criteria()
}

// Compile classifies a raw criteria expression. Forms are tried in order:
// compiled Criteria and generic tags, types, unions, predicates, nil. A
// union is compiled member by member and a single invalid member makes the
// whole union invalid.
func Compile(expr any) (Criteria, error) {
	switch c := expr.(type) {
	case *Generic:
		if c == nil || c.err != nil {
			var err error
			if c != nil {
				err = c.err
			}
			return nil, invalid(expr, err)
		}
		return c, nil
	case Criteria:
		return c, nil
	case reflect.Type:
		return &exactType{typ: c}, nil
	case []any:
		return compileUnion(c)
	case []Criteria:
		exprs := make([]any, len(c))
		for i, m := range c {
			if m == nil {
				return nil, invalid(expr, fmt.Errorf("member %d is a nil Criteria", i))
			}
			exprs[i] = m
		}
		return compileUnion(exprs)
	case nil:
		return null{}, nil
	}

	if p, ok := newPredicate("", expr); ok {
		return p, nil
	}
	return nil, invalid(expr, nil)
}

// MustCompile is like Compile but panics on an invalid expression. It is
// meant for package-level criteria.
func MustCompile(expr any) Criteria {
	c, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return c
}

func compileUnion(exprs []any) (Criteria, error) {
	members := make([]Criteria, 0, len(exprs))
	for _, e := range exprs {
		c, err := Compile(e)
		if err != nil {
			return nil, err
		}
		members = append(members, c)
	}
	return &union{members: members}, nil
}

// Match checks value against expr and returns it unchanged on success.
func Match(expr any, value any) (any, error) {
	c, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return c.Match(value)
}

// IsValid reports whether expr is a well-formed criteria. It probes expr
// with a nil value: only ErrInvalidCriteria makes it invalid, a type
// mismatch on the probe does not.
func IsValid(expr any) bool {
	_, err := Match(expr, nil)
	return !errors.Is(err, ErrInvalidCriteria)
}

// SchemaOf returns the cty type a Schema criteria requires.
func SchemaOf(c Criteria) (cty.Type, bool) {
	if g, ok := c.(*Generic); ok && g.kind == GenericSchema && g.err == nil {
		return g.schema, true
	}
	return cty.NilType, false
}

// TypeOf returns the type an exact-type criteria requires.
func TypeOf(c Criteria) (reflect.Type, bool) {
	if t, ok := c.(*exactType); ok {
		return t.typ, true
	}
	return nil, false
}
