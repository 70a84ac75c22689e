// This file reads criteria written in HCL expression syntax, e.g.
// `[int, string]`, `optional(int)` or `callable([int, string], string)`.

package criteria

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Parse reads a criteria expression from src. A nil scope means the builtin
// types only.
func Parse(src string, scope *Scope) (Criteria, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "criteria", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, invalid(src, diags)
	}
	return ParseExpression(expr, []byte(src), scope)
}

// ParseExpression converts an already parsed HCL expression. src is the
// buffer the expression was parsed from and is used for error messages; it
// may be nil.
func ParseExpression(expr hcl.Expression, src []byte, scope *Scope) (Criteria, error) {
	if scope == nil {
		scope = defaultScope
	}
	p := &parser{scope: scope, src: src}
	return p.criteria(expr)
}

type parser struct {
	scope *Scope
	src   []byte
}

func (p *parser) text(expr hcl.Expression) string {
	rng := expr.Range()
	if p.src != nil && rng.End.Byte <= len(p.src) {
		return string(rng.SliceBytes(p.src))
	}
	return rng.String()
}

func (p *parser) fail(expr hcl.Expression, summary, detail string) error {
	return invalid(p.text(expr), hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  expr.Range().Ptr(),
	}})
}

func (p *parser) criteria(expr hcl.Expression) (Criteria, error) {
	switch v := expr.(type) {
	case *hclsyntax.ParenthesesExpr:
		return p.criteria(v.Expression)

	case *hclsyntax.LiteralValueExpr:
		if v.Val.IsNull() {
			return null{}, nil
		}
		return nil, p.fail(expr, "Invalid criteria", fmt.Sprintf("A literal %s is not a criteria; use a type name instead.", v.Val.Type().FriendlyName()))

	case *hclsyntax.ScopeTraversalExpr:
		name, err := p.name(v)
		if err != nil {
			return nil, err
		}
		c, ok := p.scope.lookup(name)
		if !ok {
			return nil, p.fail(expr, "Unknown criteria name", fmt.Sprintf("There is no type or predicate named %q.", name))
		}
		return c, nil

	case *hclsyntax.TupleConsExpr:
		members := make([]Criteria, 0, len(v.Exprs))
		for _, e := range v.Exprs {
			c, err := p.criteria(e)
			if err != nil {
				return nil, err
			}
			members = append(members, c)
		}
		return &union{members: members}, nil

	case *hclsyntax.FunctionCallExpr:
		return p.generic(v)

	default:
		return nil, p.fail(expr, "Unsupported criteria expression", fmt.Sprintf("Expressions of kind %T cannot be used as criteria.", v))
	}
}

func (p *parser) name(v *hclsyntax.ScopeTraversalExpr) (string, error) {
	if len(v.Traversal) != 1 {
		return "", p.fail(v, "Invalid criteria name", "A criteria name must be a single identifier.")
	}
	return v.Traversal.RootName(), nil
}

func (p *parser) generic(call *hclsyntax.FunctionCallExpr) (Criteria, error) {
	switch call.Name {
	case "optional", "oneof":
		if len(call.Args) == 0 {
			return nil, p.fail(call, "Missing type arguments", fmt.Sprintf("%s() requires at least one type.", call.Name))
		}
		types := make([]reflect.Type, 0, len(call.Args))
		for _, arg := range call.Args {
			t, err := p.typ(arg)
			if err != nil {
				return nil, err
			}
			types = append(types, t)
		}
		if call.Name == "optional" {
			return Optional(types...), nil
		}
		return OneOf(types...), nil

	case "callable":
		return p.callable(call)

	case "schema":
		if len(call.Args) != 1 {
			return nil, p.fail(call, "Invalid schema", fmt.Sprintf("schema() requires exactly one type constraint, got %d.", len(call.Args)))
		}
		ty, diags := typeexpr.TypeConstraint(call.Args[0])
		if diags.HasErrors() {
			return nil, invalid(p.text(call), diags)
		}
		return Schema(ty), nil

	default:
		return nil, p.fail(call, "Unknown criteria constructor", fmt.Sprintf("There is no criteria constructor named %q.", call.Name))
	}
}

// callable reads callable(params, result). params is a tuple of type names
// or the keyword ellipsis; result is a type name or a tuple of them.
func (p *parser) callable(call *hclsyntax.FunctionCallExpr) (Criteria, error) {
	if len(call.Args) == 0 || len(call.Args) > 2 {
		return nil, p.fail(call, "Invalid callable", fmt.Sprintf("callable() takes a parameter list and an optional result, got %d arguments.", len(call.Args)))
	}

	var params []reflect.Type
	if p.isEllipsis(call.Args[0]) {
		params = Ellipsis()
	} else {
		tuple, ok := call.Args[0].(*hclsyntax.TupleConsExpr)
		if !ok {
			return nil, p.fail(call.Args[0], "Invalid callable parameters", "The parameter list must be a list of type names or ellipsis.")
		}
		var err error
		if params, err = p.types(tuple); err != nil {
			return nil, err
		}
		if params == nil {
			params = []reflect.Type{}
		}
	}

	var results []reflect.Type
	if len(call.Args) == 2 {
		if tuple, ok := call.Args[1].(*hclsyntax.TupleConsExpr); ok {
			var err error
			if results, err = p.types(tuple); err != nil {
				return nil, err
			}
		} else {
			t, err := p.typ(call.Args[1])
			if err != nil {
				return nil, err
			}
			results = []reflect.Type{t}
		}
	}
	return Callable(params, results...), nil
}

func (p *parser) isEllipsis(expr hcl.Expression) bool {
	v, ok := expr.(*hclsyntax.ScopeTraversalExpr)
	return ok && len(v.Traversal) == 1 && v.Traversal.RootName() == "ellipsis"
}

func (p *parser) types(tuple *hclsyntax.TupleConsExpr) ([]reflect.Type, error) {
	var types []reflect.Type
	for _, e := range tuple.Exprs {
		t, err := p.typ(e)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// typ resolves a type name. Generic arguments must be plain types, not
// predicates or unions.
func (p *parser) typ(expr hcl.Expression) (reflect.Type, error) {
	v, ok := expr.(*hclsyntax.ScopeTraversalExpr)
	if !ok {
		if lit, isLit := expr.(*hclsyntax.LiteralValueExpr); isLit && lit.Val.IsNull() {
			return nil, p.fail(expr, "Invalid type argument", "Use optional() to admit null.")
		}
		return nil, p.fail(expr, "Invalid type argument", "Generic arguments must be type names.")
	}
	name, err := p.name(v)
	if err != nil {
		return nil, err
	}
	t, ok := p.scope.Type(name)
	if !ok {
		return nil, p.fail(expr, "Unknown type", fmt.Sprintf("There is no type named %q.", name))
	}
	return t, nil
}

// Literal evaluates an HCL literal expression into a plain Go value: numbers
// become int when whole and float64 otherwise, tuples []any, objects
// map[string]any and null nil.
func Literal(src string) (any, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "value", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	return fromCty(val)
}

func fromCty(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := []any{}
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			e, err := fromCty(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			e, err := fromCty(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = e
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value of type %s", ty.FriendlyName())
}
