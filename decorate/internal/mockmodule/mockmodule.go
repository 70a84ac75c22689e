// Package mockmodule is a decoration target with native and imported
// members.
package mockmodule

import (
	"reflect"

	"github.com/vk/typesafety/decorate"
	"github.com/vk/typesafety/decorate/internal/mockmodule2"
)

func Function() int { return 0 }

type ModuleClass struct {
	value int
}

func (c *ModuleClass) Init(value int) { c.value = value }

func (c *ModuleClass) Method() int { return 1 }

func (c *ModuleClass) Value() int { return c.value }

func (c *ModuleClass) SetValue(v int) { c.value = v }

func clsmethod(cls *decorate.Class) int { return 2 }

func staticmethod() int { return 3 }

// Load builds a fresh namespace for the package. Every call starts from the
// undecorated members.
func Load() *decorate.Namespace {
	ns := decorate.New(decorate.Here())
	ns.Set("function", Function)

	cls := decorate.NewClass(reflect.TypeFor[*ModuleClass]())
	cls.Set(decorate.InitName, (*ModuleClass).Init)
	cls.Set("method", (*ModuleClass).Method)
	cls.Set("value", &decorate.Property{Get: (*ModuleClass).Value, Set: (*ModuleClass).SetValue})
	cls.Set("clsmethod", &decorate.ClassMethod{Fn: clsmethod})
	cls.Set("staticmethod", &decorate.StaticMethod{Fn: staticmethod})
	cls.Set("label", "module class")
	ns.Set("ModuleClass", cls)

	ns.Set("UndecoratedClass", mockmodule2.Class())
	ns.Set("undecorated_function", mockmodule2.UndecoratedFunction)
	ns.Set("answer", 42)
	return ns
}
