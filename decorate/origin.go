package decorate

import (
	"net/url"
	"reflect"
	"runtime"
	"strings"
)

// Origin returns the import path of the package declaring v. v may be a
// func, a reflect.Type or a *Class. Anything else has no origin and yields
// "".
func Origin(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case reflect.Type:
		return typeOrigin(x)
	case *Class:
		if x == nil {
			return ""
		}
		return typeOrigin(x.Type)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return ""
	}
	fn := runtime.FuncForPC(rv.Pointer())
	if fn == nil {
		return ""
	}
	return packageOf(fn.Name())
}

// Here returns the import path of the calling package.
func Here() string {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return ""
	}
	return packageOf(runtime.FuncForPC(pc).Name())
}

func typeOrigin(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	return t.PkgPath()
}

// packageOf extracts the package path from a runtime symbol such as
// "example.com/a/b.(*T).Method-fm" or "example.com/a/b.F[...]". The linker
// escapes dots in the last path element ("gopkg.in/yaml%2ev3"), so the
// result is unescaped to match reflect.Type.PkgPath.
func packageOf(symbol string) string {
	if i := strings.IndexByte(symbol, '['); i >= 0 {
		symbol = symbol[:i]
	}
	slash := strings.LastIndexByte(symbol, '/')
	pkg := symbol
	if dot := strings.IndexByte(symbol[slash+1:], '.'); dot >= 0 {
		pkg = symbol[:slash+1+dot]
	}
	if unescaped, err := url.PathUnescape(pkg); err == nil {
		return unescaped
	}
	return pkg
}
