package decorate

import (
	"fmt"
	"reflect"
	"slices"
)

// table is an ordered name to attribute mapping.
type table struct {
	names []string
	attrs map[string]any
}

// Set binds value to name. New names are appended to the walk order,
// rebinding keeps the original position.
func (t *table) Set(name string, value any) {
	if t.attrs == nil {
		t.attrs = make(map[string]any)
	}
	if _, exists := t.attrs[name]; !exists {
		t.names = append(t.names, name)
	}
	t.attrs[name] = value
}

// Get returns the attribute bound to name, or nil.
func (t *table) Get(name string) any {
	return t.attrs[name]
}

// Lookup returns the attribute bound to name and whether it exists.
func (t *table) Lookup(name string) (any, bool) {
	v, ok := t.attrs[name]
	return v, ok
}

// Names lists attribute names in registration order.
func (t *table) Names() []string {
	return slices.Clone(t.names)
}

// Namespace is the attribute registry of one package.
type Namespace struct {
	table
	path string
}

// New creates an empty namespace for the package with the given import
// path. Packages usually pass Here().
func New(path string) *Namespace {
	return &Namespace{path: path}
}

// Path returns the import path the namespace stands for.
func (ns *Namespace) Path() string {
	return ns.path
}

// Class is a Go type together with its attribute table. Funcs in the table
// are instance methods taking the receiver first; ClassMethod, StaticMethod
// and Property wrap the other kinds of members.
type Class struct {
	table
	Name string
	Type reflect.Type
}

// NewClass describes typ. Pointer types are named after their element.
func NewClass(typ reflect.Type) *Class {
	if typ == nil {
		panic("decorate: class type must not be nil")
	}
	name := typ.Name()
	if name == "" && typ.Kind() == reflect.Pointer {
		name = typ.Elem().Name()
	}
	return &Class{Name: name, Type: typ}
}

func (c *Class) String() string {
	return fmt.Sprintf("class %s", c.Type)
}

// ClassMethod is a method bound to the class rather than an instance.
type ClassMethod struct {
	Fn any
}

// StaticMethod is a plain function stored on a class.
type StaticMethod struct {
	Fn any
}

// Property groups the accessors of a computed attribute. Set and Del are
// optional.
type Property struct {
	Get any
	Set any
	Del any
}
