package criteria

import (
	"errors"
	"reflect"
	"runtime"
	"strings"
)

// instanceOf reports whether a value of dynamic type t is an instance of
// want. Interfaces are satisfied structurally, concrete types by identity.
func instanceOf(t, want reflect.Type) bool {
	if t == nil {
		return false
	}
	if t == want {
		return true
	}
	return want.Kind() == reflect.Interface && t.Implements(want)
}

type exactType struct {
	typ reflect.Type
}

func (c *exactType) Kind() Kind     { return KindType }
func (c *exactType) String() string { return typeName(c.typ) }
func (c *exactType) criteria()      {}

func (c *exactType) Match(value any) (any, error) {
	if !instanceOf(reflect.TypeOf(value), c.typ) {
		return nil, mismatch(value, c.String(), typeName(reflect.TypeOf(value)),
			"expected value %s to be of type %s", repr(value), c.String())
	}
	return value, nil
}

type union struct {
	members []Criteria
}

func (c *union) Kind() Kind { return KindUnion }
func (c *union) criteria()  {}

func (c *union) String() string {
	return "(" + c.memberList(", ") + ")"
}

func (c *union) memberList(sep string) string {
	names := make([]string, len(c.members))
	for i, m := range c.members {
		names[i] = m.String()
	}
	return strings.Join(names, sep)
}

// Match returns the result of the first member that accepts value. Only type
// mismatches move on to the next member; any other error is returned as is.
func (c *union) Match(value any) (any, error) {
	for _, m := range c.members {
		v, err := m.Match(value)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrTypeMismatch) {
			return nil, err
		}
	}
	return nil, mismatch(value, c.String(), typeName(reflect.TypeOf(value)),
		"value %s does not conform to any of the following criteria:\n%s", repr(value), c.memberList("\n"))
}

type predicate struct {
	name string
	fn   reflect.Value
	// arg is the predicate's parameter type.
	arg reflect.Type
}

// newPredicate accepts funcs of exactly one parameter returning a bool.
func newPredicate(name string, fn any) (*predicate, bool) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, false
	}
	ft := rv.Type()
	if ft.NumIn() != 1 || ft.IsVariadic() || ft.NumOut() != 1 || ft.Out(0).Kind() != reflect.Bool {
		return nil, false
	}
	if name == "" {
		name = funcName(rv)
	}
	return &predicate{name: name, fn: rv, arg: ft.In(0)}, true
}

func (c *predicate) Kind() Kind     { return KindPredicate }
func (c *predicate) String() string { return c.name }
func (c *predicate) criteria()      {}

func (c *predicate) Match(value any) (result any, err error) {
	fail := func() error {
		return mismatch(value, c.name, typeName(reflect.TypeOf(value)),
			"value %s expected to conform to criteria %s", repr(value), c.name)
	}

	var arg reflect.Value
	switch {
	case value == nil && nillable(c.arg):
		arg = reflect.Zero(c.arg)
	case value == nil:
		return nil, fail()
	case reflect.TypeOf(value).AssignableTo(c.arg):
		arg = reflect.ValueOf(value)
	default:
		return nil, fail()
	}

	// A failed type assertion inside the predicate means the value is of the
	// wrong type, not that the predicate is broken.
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*runtime.TypeAssertionError); !ok {
				panic(r)
			}
			result, err = nil, fail()
		}
	}()

	if !c.fn.Call([]reflect.Value{arg})[0].Bool() {
		return nil, fail()
	}
	return value, nil
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

type null struct{}

func (null) Kind() Kind     { return KindNull }
func (null) String() string { return "nil" }
func (null) criteria()      {}

func (null) Match(value any) (any, error) {
	if value != nil {
		return nil, mismatch(value, "nil", repr(value),
			"expected nil as argument instead of %s", repr(value))
	}
	return nil, nil
}
