package contract

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/typesafety/criteria"
	"github.com/vk/typesafety/decorate"
	"github.com/vk/typesafety/guard"
	"github.com/vk/typesafety/internal/ctxlog"
)

// Key returns the contract name that governs c.
func Key(c decorate.Callable) string {
	switch c.Kind {
	case decorate.KindSetter:
		return c.Qualname + ".set"
	case decorate.KindDeleter:
		return c.Qualname + ".del"
	}
	return c.Qualname
}

// Signature returns the guard signature for c, if a contract covers it.
func (s *Set) Signature(c decorate.Callable) (guard.Signature, bool) {
	ct, ok := s.contracts[Key(c)]
	if !ok {
		return guard.Signature{}, false
	}
	return guard.Signature{Name: ct.Name, Args: ct.Args, Result: ct.Returns}, true
}

// Decorator returns a decorator enforcing the contracts of s.
func (s *Set) Decorator() decorate.Decorator {
	return guard.Decorator(s.Signature)
}

// Apply validates s against ns and then decorates ns with it.
func (s *Set) Apply(ctx context.Context, ns *decorate.Namespace) error {
	if err := s.Validate(ctx, ns); err != nil {
		return err
	}
	if err := decorate.Decorate(ns, s.Decorator()); err != nil {
		return fmt.Errorf("failed to apply contracts to %s: %w", ns.Path(), err)
	}
	ctxlog.FromContext(ctx).Debug("Contracts applied.", "namespace", ns.Path(), "contracts", s.Len())
	return nil
}

// Validate performs a parity check between the contracts and the callables
// native to ns. Every contract must name such a callable, must not declare
// more arguments than it has positional parameters, may only declare
// returns for a callable with results, and must not require a concrete type
// the parameter can never hold. All problems are reported together.
func (s *Set) Validate(ctx context.Context, ns *decorate.Namespace) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range s.Names() {
		ct := s.contracts[name]
		fn, err := resolve(ns, name)
		if err != nil {
			errs = append(errs, fmt.Sprintf("contract '%s': %v", name, err))
			continue
		}
		ft := reflect.TypeOf(fn)

		positional := ft.NumIn()
		if ft.IsVariadic() {
			positional--
		}
		if len(ct.Args) > positional {
			errs = append(errs, fmt.Sprintf("contract '%s': declares %d arguments, but the callable has %d positional parameters", name, len(ct.Args), positional))
			continue
		}
		if ct.Returns != nil && ft.NumOut() == 0 {
			errs = append(errs, fmt.Sprintf("contract '%s': declares returns, but the callable has no results", name))
		}

		for i, arg := range ct.Args {
			if msg := checkType(arg, ft.In(i)); msg != "" {
				errs = append(errs, fmt.Sprintf("contract '%s', argument %d: %s", name, i, msg))
			}
			if isAny(arg) {
				logger.Warn("Contract argument is 'any', which only rejects nil. Consider a specific type or optional(any).", "contract", name, "argument", i)
			}
			if isDynamic(arg) {
				logger.Warn("Contract argument is 'schema(any)', which disables schema checking. Consider a specific type like 'string', 'number', or 'list(string)'.", "contract", name, "argument", i)
			}
		}
		if ct.Returns != nil && ft.NumOut() > 0 {
			if msg := checkType(ct.Returns, ft.Out(0)); msg != "" {
				errs = append(errs, fmt.Sprintf("contract '%s', returns: %s", name, msg))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("contract validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// resolve finds the callable a contract name refers to in ns.
func resolve(ns *decorate.Namespace, name string) (any, error) {
	parts := strings.Split(name, ".")
	attr, ok := ns.Lookup(parts[0])
	if !ok {
		return nil, fmt.Errorf("'%s' is not declared in namespace %s", parts[0], ns.Path())
	}

	if len(parts) == 1 {
		if !isFunc(attr) {
			return nil, fmt.Errorf("'%s' is not a function", name)
		}
		if decorate.Origin(attr) != ns.Path() {
			return nil, fmt.Errorf("'%s' is not native to namespace %s", name, ns.Path())
		}
		return attr, nil
	}

	cls, ok := attr.(*decorate.Class)
	if !ok {
		return nil, fmt.Errorf("'%s' is not a class", parts[0])
	}
	if decorate.Origin(cls) != ns.Path() {
		return nil, fmt.Errorf("class '%s' is not native to namespace %s", parts[0], ns.Path())
	}
	member, ok := cls.Lookup(parts[1])
	if !ok {
		return nil, fmt.Errorf("class '%s' has no member '%s'", parts[0], parts[1])
	}

	var fn any
	switch m := member.(type) {
	case *decorate.ClassMethod:
		fn = m.Fn
	case *decorate.StaticMethod:
		fn = m.Fn
	case *decorate.Property:
		fn = m.Get
		if len(parts) == 3 {
			switch parts[2] {
			case "set":
				fn = m.Set
			case "del":
				fn = m.Del
			default:
				return nil, fmt.Errorf("unknown property accessor '%s'", parts[2])
			}
		}
	default:
		fn = m
	}
	if len(parts) > 2 {
		if _, isProp := member.(*decorate.Property); !isProp || len(parts) > 3 {
			return nil, fmt.Errorf("'%s' is not a valid member name", name)
		}
	}
	if !isFunc(fn) {
		return nil, fmt.Errorf("'%s' is not callable", name)
	}
	return fn, nil
}

// checkType reports a criteria that can never accept a value of the
// declared Go type.
func checkType(c criteria.Criteria, declared reflect.Type) string {
	if schema, ok := criteria.SchemaOf(c); ok {
		return checkSchema(schema, declared)
	}
	want, ok := criteria.TypeOf(c)
	if !ok || declared.Kind() == reflect.Interface {
		return ""
	}
	if want == declared || (want.Kind() == reflect.Interface && declared.Implements(want)) {
		return ""
	}
	return fmt.Sprintf("type mismatch. Contract requires '%s' but the parameter is '%s'", want, declared)
}

var ctyValueType = reflect.TypeFor[cty.Value]()

// checkSchema compares a schema criteria with the cty type implied by the
// declared Go type.
func checkSchema(schema cty.Type, declared reflect.Type) string {
	if schema.Equals(cty.DynamicPseudoType) || declared.Kind() == reflect.Interface || declared == ctyValueType {
		return ""
	}
	implied, err := gocty.ImpliedType(reflect.Zero(declared).Interface())
	if err != nil {
		return fmt.Sprintf("could not imply schema type from parameter type '%s': %v", declared, err)
	}
	if errs := implied.TestConformance(schema); len(errs) > 0 {
		return fmt.Sprintf("type mismatch. Contract requires '%s' but the parameter provides '%s'", schema.FriendlyName(), implied.FriendlyName())
	}
	return ""
}

func isDynamic(c criteria.Criteria) bool {
	schema, ok := criteria.SchemaOf(c)
	return ok && schema.Equals(cty.DynamicPseudoType)
}

func isAny(c criteria.Criteria) bool {
	t, ok := criteria.TypeOf(c)
	return ok && t == criteria.Any
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
