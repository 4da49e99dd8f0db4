// Package classes records what lowering learns about each class so later
// stages can answer inheritance questions without re-walking trees.
package classes

import (
	"strings"

	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/token"
)

// MethodSig describes one declared method. Types are source spellings.
type MethodSig struct {
	Name       string
	Mangled    string
	Return     string
	Params     []string
	ParamNames []string
	Static     bool
	Private    bool
	Init       bool // constructor-initializer method
	Pos        token.Position
}

// Dispatched reports whether the method occupies a dispatch-table slot.
func (m *MethodSig) Dispatched() bool {
	return !m.Static && !m.Init && m.Name != config.MainName
}

// Field is a class-level data member.
type Field struct {
	Name    string
	Type    string
	Static  bool
	Private bool
	Pos     token.Position
}

// FieldType pairs a declaration's static type with the most specific type
// observed at its initializer. Dynamic is "" when nothing was learned.
type FieldType struct {
	Static  string
	Dynamic string
}

// ClassProfile is the per-class record built during lowering.
type ClassProfile struct {
	Name    string
	Super   string // "" when the class extends the root directly
	Builtin bool   // provided by the runtime, never emitted
	Pos     token.Position

	Public  []string // member names, methods mangled
	Private []string
	Methods []*MethodSig
	Fields  []*Field

	// FieldTypes covers class fields, LocalTypes the local declarations
	// of each method keyed by mangled method name.
	FieldTypes map[string]FieldType
	LocalTypes map[string]map[string]FieldType
}

func NewProfile(name, super string) *ClassProfile {
	return &ClassProfile{
		Name:       name,
		Super:      super,
		FieldTypes: make(map[string]FieldType),
		LocalTypes: make(map[string]map[string]FieldType),
	}
}

// SuperName returns the declared superclass, or the root class.
func (p *ClassProfile) SuperName() string {
	if p.Super == "" {
		return config.RootClassName
	}
	return p.Super
}

func (p *ClassProfile) AddMethod(m *MethodSig) {
	p.Methods = append(p.Methods, m)
	p.addMember(m.Mangled, m.Private)
}

func (p *ClassProfile) AddField(f *Field) {
	p.Fields = append(p.Fields, f)
	p.addMember(f.Name, f.Private)
}

func (p *ClassProfile) addMember(name string, private bool) {
	if private {
		p.Private = append(p.Private, name)
	} else {
		p.Public = append(p.Public, name)
	}
}

// Method returns the method declared here under a mangled name.
func (p *ClassProfile) Method(mangled string) *MethodSig {
	for _, m := range p.Methods {
		if m.Mangled == mangled {
			return m
		}
	}
	return nil
}

// Field returns the field declared here under name.
func (p *ClassProfile) Field(name string) *Field {
	for _, f := range p.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Inits returns the constructor-initializer methods in constructor order.
func (p *ClassProfile) Inits() []*MethodSig {
	var out []*MethodSig
	for _, m := range p.Methods {
		if m.Init {
			out = append(out, m)
		}
	}
	return out
}

// RecordLocal notes a local declaration's types. The first declaration of
// a name within a method wins.
func (p *ClassProfile) RecordLocal(method, name string, ft FieldType) {
	locals, ok := p.LocalTypes[method]
	if !ok {
		locals = make(map[string]FieldType)
		p.LocalTypes[method] = locals
	}
	if _, seen := locals[name]; !seen {
		locals[name] = ft
	}
}

// DeclaredType returns the recorded types of a local in method, falling
// back to a class field of the same name.
func (p *ClassProfile) DeclaredType(method, name string) (FieldType, bool) {
	if ft, ok := p.LocalTypes[method][name]; ok {
		return ft, true
	}
	ft, ok := p.FieldTypes[name]
	return ft, ok
}

// InitKey names a constructor by its parameter types. It is the symbol
// under which the constructor is defined and the LocalTypes key of its
// body.
func InitKey(params []string) string {
	return "<init>(" + strings.Join(params, ",") + ")"
}
