// Package vtable derives the dispatch table of a class from the completed
// class registry and renders it as target struct members and an
// initializer list.
//
// A table starts with the class-object and destructor slots, then the four
// root methods, then every other instance method in order of first
// introduction, ancestors before descendants. An override replaces the
// implementation of its slot and never moves it, so the table of a class
// always extends the table of its superclass.
package vtable

import (
	"fmt"
	"strings"

	"github.com/funvibe/cpptrans/internal/classes"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/naming"
)

// RuntimeNamespace holds the runtime's built-in classes.
const RuntimeNamespace = "java::lang"

// Slot is one dispatch table entry.
type Slot struct {
	Name   string   // mangled method name, or a fixed slot name
	Return string   // source return type of the introducing declaration
	Params []string // source parameter types, receiver excluded
	// Source is the nearest class on the chain that implements the slot.
	Source string
	// Runtime is the implementation name inside Source.
	Runtime string
	// Cast is set when the implementation's signature differs from the
	// slot's and the function pointer needs converting.
	Cast  bool
	Fixed bool // __isa or __delete
}

// Layout is the dispatch table of one class.
type Layout struct {
	Class string
	Slots []Slot
}

// Names returns the slot names in table order.
func (l *Layout) Names() []string {
	out := make([]string, len(l.Slots))
	for i, s := range l.Slots {
		out[i] = s.Name
	}
	return out
}

// Slot returns the slot named name.
func (l *Layout) Slot(name string) (Slot, bool) {
	for _, s := range l.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// Synthesize builds the layout of class. Every class on its chain must be
// registered.
func Synthesize(reg *classes.Registry, class string) (*Layout, error) {
	profile, err := reg.MustGet(class)
	if err != nil {
		return nil, err
	}
	layout := &Layout{Class: class}
	layout.Slots = append(layout.Slots,
		Slot{Name: config.IsaSlotName, Return: config.ClassClassName, Source: class, Fixed: true},
		Slot{Name: config.DeleteSlotName, Return: "void", Source: class, Fixed: true},
	)

	for _, rm := range naming.RootMethods {
		slot, err := bind(reg, class, rm.Mangled, rm.Return, rm.Params)
		if err != nil {
			return nil, err
		}
		layout.Slots = append(layout.Slots, slot)
	}

	seen := make(map[string]bool)
	inherited, err := reg.CollectInheritedMembers(class, nil)
	if err != nil {
		return nil, err
	}
	for _, m := range inherited {
		if m.Method == nil || !m.Method.Dispatched() {
			continue
		}
		seen[m.Method.Mangled] = true
		slot, err := bind(reg, class, m.Method.Mangled, m.Method.Return, m.Method.Params)
		if err != nil {
			return nil, err
		}
		layout.Slots = append(layout.Slots, slot)
	}

	if profile.Builtin {
		return layout, nil
	}
	for _, m := range profile.Methods {
		if !m.Dispatched() || naming.IsRoot(m.Mangled) || seen[m.Mangled] {
			continue
		}
		seen[m.Mangled] = true
		layout.Slots = append(layout.Slots, Slot{
			Name:    m.Mangled,
			Return:  m.Return,
			Params:  m.Params,
			Source:  class,
			Runtime: m.Mangled,
		})
	}
	return layout, nil
}

// bind fills a slot whose shape was fixed by its introducing declaration.
func bind(reg *classes.Registry, class, mangled, ret string, params []string) (Slot, error) {
	source, err := reg.FindDefiningAncestor(class, mangled)
	if err != nil {
		return Slot{}, err
	}
	slot := Slot{Name: mangled, Return: ret, Params: params, Source: source, Runtime: mangled}
	if rm, ok := naming.LookupRoot(mangled); ok && source == config.RootClassName {
		slot.Runtime = rm.Runtime
	}
	if source != class {
		slot.Cast = true
		return slot, nil
	}
	// An override with a narrower return type still needs the cast.
	if p, ok := reg.Get(class); ok {
		if m := p.Method(mangled); m != nil && m.Return != ret {
			slot.Cast = true
		}
	}
	return slot, nil
}

// StructName is the data struct of a class: "__List", or the runtime's
// qualified struct for built-ins.
func StructName(reg *classes.Registry, class string) string {
	if p, ok := reg.Get(class); ok && p.Builtin {
		return RuntimeNamespace + "::__" + class
	}
	return "__" + class
}

// Pointer spells the function pointer type of slot for a table of class,
// for example "int32_t(*)(int32_t, List)". The receiver comes last.
func (s Slot) Pointer(class string) string {
	return s.Target() + "(*)(" + strings.Join(s.paramTypes(class), ", ") + ")"
}

// Target returns the slot's target return type.
func (s Slot) Target() string {
	return naming.TargetType(s.Return)
}

func (s Slot) paramTypes(class string) []string {
	if s.Name == config.DeleteSlotName {
		return []string{"__" + class + "*"}
	}
	out := make([]string, 0, len(s.Params)+1)
	for _, p := range s.Params {
		out = append(out, naming.TargetType(p))
	}
	return append(out, class)
}

// Declarations renders the table struct's members, one per slot.
func (l *Layout) Declarations() []string {
	out := make([]string, 0, len(l.Slots))
	for _, s := range l.Slots {
		if s.Name == config.IsaSlotName {
			out = append(out, fmt.Sprintf("%s %s;", config.ClassClassName, s.Name))
			continue
		}
		out = append(out, fmt.Sprintf("%s (*%s)(%s);", s.Target(), s.Name, strings.Join(s.paramTypes(l.Class), ", ")))
	}
	return out
}

// Initializers renders the table constructor's member initializers, one
// per slot, binding each slot to its implementation.
func (l *Layout) Initializers(reg *classes.Registry) []string {
	own := "__" + l.Class
	out := make([]string, 0, len(l.Slots))
	for _, s := range l.Slots {
		var value string
		switch {
		case s.Name == config.IsaSlotName:
			value = own + "::" + config.ClassFuncName + "()"
		case s.Name == config.DeleteSlotName:
			value = "&__rt::__delete<" + own + ">"
		case s.Cast:
			value = "(" + s.Pointer(l.Class) + ")&" + StructName(reg, s.Source) + "::" + s.Runtime
		default:
			value = "&" + own + "::" + s.Runtime
		}
		out = append(out, s.Name+"("+value+")")
	}
	return out
}
