// Package criteria matches runtime values against declarative acceptance
// rules.
//
// A raw criteria expression is one of:
//
//   - a reflect.Type: the value's dynamic type must be that type, or
//     implement it when it is an interface type;
//   - a []any: an ordered union, the first accepting member wins;
//   - a predicate func(any) bool or func(T) bool;
//   - untyped nil: the value itself must be nil;
//   - a *Generic built by Optional, OneOf, Callable or Schema.
//
// Compile classifies an expression once into a Criteria. Match and IsValid
// are conveniences over Compile for one-shot use. Anything that is not one
// of the forms above yields an *InvalidCriteriaError, which callers tell
// apart from a *TypeMismatchError with errors.Is.
//
// Criteria can also be written in HCL expression syntax and read with Parse
// against a Scope of named types and predicates.
package criteria
