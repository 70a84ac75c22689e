package criteria

import (
	"fmt"
	"reflect"
	"sort"
)

// Scope names the types and predicates that criteria written in HCL syntax
// can refer to. Register everything before the scope is shared; lookups are
// then safe from multiple goroutines.
type Scope struct {
	types      map[string]reflect.Type
	predicates map[string]Criteria
}

// builtinTypes are present in every scope.
var builtinTypes = map[string]reflect.Type{
	"any":        Any,
	"bool":       reflect.TypeFor[bool](),
	"string":     reflect.TypeFor[string](),
	"int":        reflect.TypeFor[int](),
	"int8":       reflect.TypeFor[int8](),
	"int16":      reflect.TypeFor[int16](),
	"int32":      reflect.TypeFor[int32](),
	"int64":      reflect.TypeFor[int64](),
	"uint":       reflect.TypeFor[uint](),
	"uint8":      reflect.TypeFor[uint8](),
	"uint16":     reflect.TypeFor[uint16](),
	"uint32":     reflect.TypeFor[uint32](),
	"uint64":     reflect.TypeFor[uint64](),
	"uintptr":    reflect.TypeFor[uintptr](),
	"float32":    reflect.TypeFor[float32](),
	"float64":    reflect.TypeFor[float64](),
	"complex64":  reflect.TypeFor[complex64](),
	"complex128": reflect.TypeFor[complex128](),
	"byte":       reflect.TypeFor[byte](),
	"rune":       reflect.TypeFor[rune](),
	"error":      reflect.TypeFor[error](),
	"bytes":      reflect.TypeFor[[]byte](),
	"list":       reflect.TypeFor[[]any](),
	"map":        reflect.TypeFor[map[string]any](),
}

// reservedNames are keywords of the criteria syntax.
var reservedNames = map[string]struct{}{
	"null":     {},
	"ellipsis": {},
	"optional": {},
	"oneof":    {},
	"callable": {},
	"schema":   {},
}

// NewScope returns a scope holding the builtin Go types.
func NewScope() *Scope {
	s := &Scope{
		types:      make(map[string]reflect.Type, len(builtinTypes)),
		predicates: make(map[string]Criteria),
	}
	for name, t := range builtinTypes {
		s.types[name] = t
	}
	return s
}

var defaultScope = NewScope()

// RegisterType makes t available under name.
func (s *Scope) RegisterType(name string, t reflect.Type) {
	s.checkName(name)
	if t == nil {
		panic(fmt.Sprintf("criteria: type '%s' must not be nil", name))
	}
	s.types[name] = t
}

// RegisterPredicate makes fn, a func(any) bool or func(T) bool, available
// under name.
func (s *Scope) RegisterPredicate(name string, fn any) {
	s.checkName(name)
	p, ok := newPredicate(name, fn)
	if !ok {
		panic(fmt.Sprintf("criteria: predicate '%s' must be a func of one argument returning bool, got %T", name, fn))
	}
	s.predicates[name] = p
}

func (s *Scope) checkName(name string) {
	if _, reserved := reservedNames[name]; reserved {
		panic(fmt.Sprintf("criteria: '%s' is a reserved name", name))
	}
	if _, exists := s.types[name]; exists {
		panic(fmt.Sprintf("criteria: name '%s' already registered", name))
	}
	if _, exists := s.predicates[name]; exists {
		panic(fmt.Sprintf("criteria: name '%s' already registered", name))
	}
}

// Type looks up a named type.
func (s *Scope) Type(name string) (reflect.Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Names lists every registered name in sorted order.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.types)+len(s.predicates))
	for name := range s.types {
		names = append(names, name)
	}
	for name := range s.predicates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scope) lookup(name string) (Criteria, bool) {
	if t, ok := s.types[name]; ok {
		return &exactType{typ: t}, true
	}
	p, ok := s.predicates[name]
	return p, ok
}
