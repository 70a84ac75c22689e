package decorate

import (
	"fmt"
	"reflect"
)

// Kind says what kind of member a Callable was taken from.
type Kind int

const (
	KindFunction Kind = iota + 1
	KindMethod
	KindClassMethod
	KindStaticMethod
	KindGetter
	KindSetter
	KindDeleter
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindClassMethod:
		return "classmethod"
	case KindStaticMethod:
		return "staticmethod"
	case KindGetter:
		return "getter"
	case KindSetter:
		return "setter"
	case KindDeleter:
		return "deleter"
	default:
		return "unknown"
	}
}

// InitName is the class attribute conventionally holding the constructor.
// Decorate presents it like any other method; decorators that want to leave
// constructors alone check for it.
const InitName = "Init"

// Callable is a member presented to a Decorator.
type Callable struct {
	// Name is the attribute name. Property accessors carry the property's
	// name.
	Name string
	// Qualname is Name prefixed with the class name for class members.
	Qualname string
	Kind     Kind
	Fn       any
}

// Decorator returns the replacement for c.Fn. Returning c.Fn leaves the
// member unchanged.
type Decorator func(c Callable) (any, error)

// Decorate replaces every callable native to ns with its decorated
// version, in registration order. An error from d stops the walk; members
// decorated before it stay decorated.
//
// Decorate mutates ns and must not run concurrently with other users of it.
func Decorate(ns *Namespace, d Decorator) error {
	for _, name := range ns.Names() {
		switch v := ns.Get(name).(type) {
		case *Class:
			if Origin(v) != ns.Path() {
				continue
			}
			if err := decorateClass(v, d); err != nil {
				return err
			}

		default:
			if !isFunc(v) || Origin(v) != ns.Path() {
				continue
			}
			out, err := apply(d, Callable{Name: name, Qualname: name, Kind: KindFunction, Fn: v})
			if err != nil {
				return err
			}
			ns.Set(name, out)
		}
	}
	return nil
}

func decorateClass(cls *Class, d Decorator) error {
	for _, name := range cls.Names() {
		qualname := cls.Name + "." + name
		member := func(kind Kind, fn any) (any, error) {
			return apply(d, Callable{Name: name, Qualname: qualname, Kind: kind, Fn: fn})
		}

		switch v := cls.Get(name).(type) {
		case *ClassMethod:
			fn, err := member(KindClassMethod, v.Fn)
			if err != nil {
				return err
			}
			cls.Set(name, &ClassMethod{Fn: fn})

		case *StaticMethod:
			fn, err := member(KindStaticMethod, v.Fn)
			if err != nil {
				return err
			}
			cls.Set(name, &StaticMethod{Fn: fn})

		case *Property:
			prop := &Property{}
			accessors := []struct {
				kind Kind
				in   any
				out  *any
			}{
				{KindGetter, v.Get, &prop.Get},
				{KindSetter, v.Set, &prop.Set},
				{KindDeleter, v.Del, &prop.Del},
			}
			for _, a := range accessors {
				if a.in == nil {
					continue
				}
				fn, err := member(a.kind, a.in)
				if err != nil {
					return err
				}
				*a.out = fn
			}
			cls.Set(name, prop)

		default:
			if !isFunc(v) {
				continue
			}
			fn, err := member(KindMethod, v)
			if err != nil {
				return err
			}
			cls.Set(name, fn)
		}
	}
	return nil
}

func apply(d Decorator, c Callable) (any, error) {
	out, err := d(c)
	if err != nil {
		return nil, fmt.Errorf("decorating %s %s: %w", c.Kind, c.Qualname, err)
	}
	return out, nil
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
