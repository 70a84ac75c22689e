package criteria

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// GenericKind tells the parameterized generic forms apart.
type GenericKind int

const (
	// GenericOptionalOrUnion is built by Optional and OneOf.
	GenericOptionalOrUnion GenericKind = iota + 1
	// GenericCallable is built by Callable.
	GenericCallable
	// GenericSchema is built by Schema.
	GenericSchema
)

// Any is the universal type. A func parameter or result of type any is
// unconstrained, and Callable compares it only with itself.
var Any = reflect.TypeFor[any]()

type ellipsis struct{}

var ellipsisType = reflect.TypeFor[ellipsis]()

// Ellipsis returns the parameter list that makes Callable skip the argument
// check.
func Ellipsis() []reflect.Type {
	return []reflect.Type{ellipsisType}
}

// Generic is a parameterized criteria form. The zero value is not usable;
// build one with Optional, OneOf, Callable or Schema.
type Generic struct {
	kind GenericKind
	name string

	// OptionalOrUnion
	types    []reflect.Type
	nullable bool

	// Callable
	params    []reflect.Type
	anyParams bool
	results   []reflect.Type

	// Schema
	schema cty.Type

	err error
}

// Optional accepts nil or a value whose type is one of types.
func Optional(types ...reflect.Type) *Generic {
	g := newOptionalOrUnion("Optional", types)
	g.nullable = true
	return g
}

// OneOf accepts a value whose type is one of types.
func OneOf(types ...reflect.Type) *Generic {
	return newOptionalOrUnion("OneOf", types)
}

func newOptionalOrUnion(name string, types []reflect.Type) *Generic {
	g := &Generic{kind: GenericOptionalOrUnion, name: name, types: slices.Clone(types)}
	if len(types) == 0 {
		g.err = fmt.Errorf("%s requires at least one type", name)
	}
	for _, t := range types {
		if t == nil {
			g.err = fmt.Errorf("%s members must be types", name)
		}
	}
	return g
}

// Callable accepts a func whose positional parameter types equal params and
// whose result types equal results. Pass Ellipsis as params to skip the
// parameter check. No results means the result is Any.
//
// Variadic parameters are not part of the comparison.
func Callable(params []reflect.Type, results ...reflect.Type) *Generic {
	g := &Generic{kind: GenericCallable, name: "Callable"}
	if len(params) == 1 && params[0] == ellipsisType {
		g.anyParams = true
	} else {
		g.params = slices.Clone(params)
	}
	if len(results) == 0 {
		results = []reflect.Type{Any}
	}
	g.results = slices.Clone(results)

	for _, t := range slices.Concat(g.params, g.results) {
		if t == nil {
			g.err = errors.New("Callable parameter and result types must not be nil")
		}
	}
	return g
}

// Schema accepts a value whose cty type conforms to ty. Values may be
// cty.Value or any Go value gocty can imply a type for.
func Schema(ty cty.Type) *Generic {
	g := &Generic{kind: GenericSchema, name: "Schema", schema: ty}
	if ty == cty.NilType {
		g.err = errors.New("Schema requires a type")
	}
	return g
}

// GenericKind returns which generic form g is.
func (g *Generic) GenericKind() GenericKind { return g.kind }

func (g *Generic) Kind() Kind { return KindGeneric }
func (g *Generic) criteria()  {}

func (g *Generic) String() string {
	switch g.kind {
	case GenericOptionalOrUnion:
		return fmt.Sprintf("%s[%s]", g.name, typeList(g.types))
	case GenericCallable:
		params := "..."
		if !g.anyParams {
			params = "[" + typeList(g.params) + "]"
		}
		return fmt.Sprintf("Callable[%s, %s]", params, resultName(g.results))
	case GenericSchema:
		return fmt.Sprintf("Schema[%s]", g.schema.FriendlyName())
	}
	return "Generic"
}

func (g *Generic) Match(value any) (any, error) {
	if g.err != nil {
		return nil, invalid(g, g.err)
	}
	switch g.kind {
	case GenericOptionalOrUnion:
		return g.matchOptionalOrUnion(value)
	case GenericCallable:
		return g.matchCallable(value)
	case GenericSchema:
		return g.matchSchema(value)
	}
	return nil, invalid(g, g.err)
}

func (g *Generic) matchOptionalOrUnion(value any) (any, error) {
	if value == nil && g.nullable {
		return nil, nil
	}
	t := reflect.TypeOf(value)
	for _, want := range g.types {
		if instanceOf(t, want) {
			return value, nil
		}
	}
	return nil, mismatch(value, g.String(), typeName(t),
		"expected value %s to be of type %s", repr(value), g.String())
}

func (g *Generic) matchCallable(value any) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Func {
		return nil, mismatch(value, g.String(), typeName(reflect.TypeOf(value)),
			"expected value %s to be callable", repr(value))
	}
	ft := rv.Type()

	if !g.anyParams {
		params := positionalParams(ft)
		if !slices.Equal(params, g.params) {
			return nil, mismatch(value, "("+typeList(g.params)+")", "("+typeList(params)+")",
				"callable arguments expected to be (%s) instead of (%s)", typeList(g.params), typeList(params))
		}
	}

	results := funcResults(ft)
	if !slices.Equal(results, g.results) {
		return nil, mismatch(value, resultName(g.results), resultName(results),
			"callable return value expected to be %s instead of %s", resultName(g.results), resultName(results))
	}
	return value, nil
}

// positionalParams lists a func's parameter types without the variadic tail.
func positionalParams(ft reflect.Type) []reflect.Type {
	n := ft.NumIn()
	if ft.IsVariadic() {
		n--
	}
	params := make([]reflect.Type, n)
	for i := range n {
		params[i] = ft.In(i)
	}
	return params
}

// funcResults lists a func's result types; a func without results yields
// Any.
func funcResults(ft reflect.Type) []reflect.Type {
	if ft.NumOut() == 0 {
		return []reflect.Type{Any}
	}
	results := make([]reflect.Type, ft.NumOut())
	for i := range results {
		results[i] = ft.Out(i)
	}
	return results
}

func resultName(results []reflect.Type) string {
	if len(results) == 1 {
		return typeName(results[0])
	}
	return "(" + typeList(results) + ")"
}

func (g *Generic) matchSchema(value any) (any, error) {
	var ty cty.Type
	switch v := value.(type) {
	case nil:
		return nil, mismatch(value, g.schema.FriendlyName(), "nil",
			"expected value nil to conform to %s", g.schema.FriendlyName())
	case cty.Value:
		if v.IsNull() {
			return nil, mismatch(value, g.schema.FriendlyName(), "null",
				"expected value null to conform to %s", g.schema.FriendlyName())
		}
		ty = v.Type()
	default:
		implied, err := gocty.ImpliedType(value)
		if err != nil {
			return nil, mismatch(value, g.schema.FriendlyName(), typeName(reflect.TypeOf(value)),
				"value %s has no schema type: %s", repr(value), err)
		}
		ty = implied
	}

	if errs := ty.TestConformance(g.schema); len(errs) > 0 {
		return nil, mismatch(value, g.schema.FriendlyName(), ty.FriendlyName(),
			"expected value %s to conform to %s: %s", repr(value), g.schema.FriendlyName(), errors.Join(errs...))
	}
	return value, nil
}
