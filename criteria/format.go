package criteria

import (
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"
)

// repr renders a value for error messages.
func repr(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case reflect.Type:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Func {
		return funcName(rv)
	}
	return fmt.Sprintf("%#v", v)
}

// funcName returns the runtime symbol of a func value, or its type for nil
// funcs.
func funcName(rv reflect.Value) string {
	if rv.IsNil() {
		return rv.Type().String()
	}
	if fn := runtime.FuncForPC(rv.Pointer()); fn != nil {
		return fn.Name()
	}
	return rv.Type().String()
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	if t == Any {
		return "any"
	}
	return t.String()
}

func typeList(types []reflect.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = typeName(t)
	}
	return strings.Join(names, ", ")
}
