// Package mock lives in a directory whose name carries a version suffix.
package mock

import (
	"reflect"

	"github.com/vk/typesafety/decorate"
)

type T struct{}

func (T) M() int { return 1 }

func F() int { return 2 }

// Load builds the package namespace.
func Load() *decorate.Namespace {
	ns := decorate.New(decorate.Here())
	ns.Set("F", F)

	cls := decorate.NewClass(reflect.TypeFor[T]())
	cls.Set("M", T.M)
	ns.Set("T", cls)
	return ns
}
