// Package decorate rewrites every callable that a package declares in its
// namespace by passing it through a Decorator.
//
// Go cannot patch package symbols at runtime, so a package describes itself
// with an explicit Namespace populated at load time: functions, classes
// (a Go type plus a table of methods, class methods, static methods and
// properties) and plain values. Decorate then walks that registry.
//
// Only members native to the namespace are decorated. Ownership is derived
// from the code itself, never from a flag: a function belongs to the package
// named by its runtime symbol and a class to its type's PkgPath. Imported
// or re-exported members are left as they are and foreign classes are never
// entered.
package decorate
