// Package guard enforces criteria on the arguments and results of funcs by
// wrapping them. It is the usual Decorator handed to decorate.Decorate.
package guard

import (
	"fmt"
	"reflect"

	"github.com/vk/typesafety/criteria"
	"github.com/vk/typesafety/decorate"
)

var errorType = reflect.TypeFor[error]()

// Signature lists the criteria a wrapped func enforces. A nil entry in Args
// leaves that position unchecked, as do positions past the end of Args and
// variadic arguments. Result applies to the first result.
type Signature struct {
	// Name identifies the func in errors.
	Name   string
	Args   []criteria.Criteria
	Result criteria.Criteria
}

// ArgumentError reports an argument rejected by its criteria.
type ArgumentError struct {
	Func  string
	Index int
	Err   error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %d of %s: %v", e.Index, e.Func, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// ResultError reports a result rejected by its criteria.
type ResultError struct {
	Func string
	Err  error
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("result of %s: %v", e.Func, e.Err)
}

func (e *ResultError) Unwrap() error { return e.Err }

// Wrap returns a func with fn's type that matches its arguments and result
// against sig. When fn's last result is an error, a mismatch is returned
// through it alongside zero values; otherwise the wrapper panics with the
// mismatch error. The result is not checked when fn itself returns an
// error.
//
// Nil pointers, maps, slices, funcs, chans and interfaces are presented to
// criteria as nil.
func Wrap(fn any, sig Signature) (any, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("guard: cannot wrap %T: not a func", fn)
	}
	ft := rv.Type()
	if sig.Name == "" {
		sig.Name = ft.String()
	}

	positional := ft.NumIn()
	if ft.IsVariadic() {
		positional--
	}
	if len(sig.Args) > positional {
		return nil, fmt.Errorf("guard: %s has %d positional parameters but %d argument criteria", sig.Name, positional, len(sig.Args))
	}
	if sig.Result != nil && ft.NumOut() == 0 {
		return nil, fmt.Errorf("guard: %s has no result to check", sig.Name)
	}
	returnsErr := ft.NumOut() > 0 && ft.Out(ft.NumOut()-1) == errorType

	fail := func(err error) []reflect.Value {
		if !returnsErr {
			panic(err)
		}
		out := make([]reflect.Value, ft.NumOut())
		for i := range out {
			out[i] = reflect.Zero(ft.Out(i))
		}
		out[len(out)-1] = reflect.ValueOf(&err).Elem()
		return out
	}

	wrapper := reflect.MakeFunc(ft, func(in []reflect.Value) []reflect.Value {
		for i, c := range sig.Args {
			if c == nil {
				continue
			}
			if _, err := c.Match(plain(in[i])); err != nil {
				return fail(&ArgumentError{Func: sig.Name, Index: i, Err: err})
			}
		}

		var out []reflect.Value
		if ft.IsVariadic() {
			out = rv.CallSlice(in)
		} else {
			out = rv.Call(in)
		}

		if sig.Result == nil {
			return out
		}
		if returnsErr && !out[len(out)-1].IsNil() {
			return out
		}
		if _, err := sig.Result.Match(plain(out[0])); err != nil {
			return fail(&ResultError{Func: sig.Name, Err: err})
		}
		return out
	})
	return wrapper.Interface(), nil
}

// plain unwraps v, turning nil references into untyped nil.
func plain(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}

// Decorator wraps every callable lookup knows a signature for. Constructors
// and unknown callables pass through unchanged.
func Decorator(lookup func(c decorate.Callable) (Signature, bool)) decorate.Decorator {
	return func(c decorate.Callable) (any, error) {
		if c.Name == decorate.InitName {
			return c.Fn, nil
		}
		sig, ok := lookup(c)
		if !ok {
			return c.Fn, nil
		}
		if sig.Name == "" {
			sig.Name = c.Qualname
		}
		return Wrap(c.Fn, sig)
	}
}
