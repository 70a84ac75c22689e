// Package mockmodule2 declares members that mockmodule re-exports.
package mockmodule2

import (
	"reflect"

	"github.com/vk/typesafety/decorate"
)

type UndecoratedClass struct{}

func (UndecoratedClass) Method(x int) int { return x + 1 }

func UndecoratedFunction(x int) int { return x + 2 }

// Class describes UndecoratedClass.
func Class() *decorate.Class {
	cls := decorate.NewClass(reflect.TypeFor[UndecoratedClass]())
	cls.Set("method", UndecoratedClass.Method)
	return cls
}
