package emitter

import (
	"slices"

	"github.com/funvibe/cpptrans/internal/ast"
	"github.com/funvibe/cpptrans/internal/classes"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/naming"
)

// runtimeNames are brought into the class namespace in every header.
var runtimeNames = []string{config.RootClassName, config.StringClassName, config.ClassClassName}

// header renders the declaration surface: the data struct, with every
// inherited instance field ahead of the class's own, and the dispatch
// table struct.
func (c *classEmitter) header() string {
	p := NewCodePrinter()
	c.p = p
	name := c.profile.Name
	st := "__" + name
	vt := st + "_VT"

	p.line("#pragma once")
	p.line("")
	p.line(`#include "` + c.opts.RuntimeHeader + `"`)
	if super := c.profile.SuperName(); !c.builtin(super) {
		p.line(`#include "` + super + config.HeaderExt + `"`)
	}
	p.line("")
	p.open("namespace " + c.opts.Namespace)
	for _, n := range runtimeNames {
		p.line("using java::lang::" + n + ";")
	}
	p.line("")
	for _, ref := range c.referencedClasses() {
		p.line("struct __" + ref + ";")
		p.line("typedef __rt::Ptr<__" + ref + "> " + ref + ";")
	}
	p.line("struct " + st + ";")
	p.line("struct " + vt + ";")
	p.line("typedef __rt::Ptr<" + st + "> " + name + ";")
	p.line("")

	p.open("struct " + st)
	p.line(vt + "* " + config.VPtrName + ";")
	c.dataFields()
	p.line("")
	p.line(st + "();")
	p.line("")
	c.methodDeclarations()
	p.line("static " + config.ClassClassName + " " + config.ClassFuncName + "();")
	p.line("static " + vt + " " + config.VTableName + ";")
	p.close(";")
	p.line("")

	p.open("struct " + vt)
	for _, d := range c.layout.Declarations() {
		p.line(d)
	}
	p.line("")
	inits := c.layout.Initializers(c.registry)
	p.line(vt + "()")
	for i, in := range inits {
		lead, tail := "  ", ","
		if i == 0 {
			lead = ": "
		}
		if i == len(inits)-1 {
			tail = " {"
		}
		p.line(lead + in + tail)
	}
	p.line("}")
	p.close(";")
	p.close("")
	return p.String()
}

func (c *classEmitter) builtin(class string) bool {
	prof, ok := c.registry.Get(class)
	return ok && prof.Builtin
}

// referencedClasses lists the other user classes named in the struct's
// declarations, which need forward declarations.
func (c *classEmitter) referencedClasses() []string {
	var types []string
	inherited, _ := c.registry.CollectInheritedMembers(c.profile.Name, nil)
	for _, m := range inherited {
		if m.Field != nil {
			types = append(types, m.Field.Type)
		}
	}
	for _, f := range c.profile.Fields {
		types = append(types, f.Type)
	}
	for _, m := range c.profile.Methods {
		types = append(types, m.Return)
		types = append(types, m.Params...)
	}
	for _, s := range c.layout.Slots {
		types = append(types, s.Return)
		types = append(types, s.Params...)
	}

	var out []string
	for _, t := range types {
		base, _ := naming.ElementType(t)
		if base == c.profile.Name || naming.IsPrimitive(base) || !c.registry.IsClass(base) || c.builtin(base) {
			continue
		}
		if !slices.Contains(out, base) {
			out = append(out, base)
		}
	}
	return out
}

// dataFields declares instance fields root-most ancestor first, then the
// class's own fields, then static fields.
func (c *classEmitter) dataFields() {
	inherited, _ := c.registry.CollectInheritedMembers(c.profile.Name, nil)
	for _, m := range inherited {
		if m.Field == nil || m.Field.Static {
			continue
		}
		c.fieldLine(m.Field, c.decls[m.Owner], "")
	}
	for _, f := range c.profile.Fields {
		if !f.Static {
			c.fieldLine(f, c.decl, "")
		}
	}
	for _, f := range c.profile.Fields {
		if f.Static {
			c.fieldLine(f, nil, "static ")
		}
	}
}

// fieldLine declares one field. Instance fields carry their initializer,
// taken from the lowered declaration of the owning class.
func (c *classEmitter) fieldLine(f *classes.Field, owner *ast.Node, prefix string) {
	text := prefix + naming.TargetType(f.Type) + " " + f.Name
	if init := fieldInitializer(owner, f.Name); init != nil {
		c.withClassScope(owner, func() {
			text += " = " + c.expr(init, precAssign, true)
		})
	}
	text += ";"
	if f.Private {
		text += " // private"
	}
	c.p.line(text)
}

// fieldInitializer finds the initializer of field name in a lowered class.
func fieldInitializer(decl *ast.Node, name string) *ast.Node {
	if decl == nil {
		return nil
	}
	for _, fd := range members(decl, "FieldDeclaration") {
		for _, d := range fd.Node(2).Nodes() {
			if d.Leaf(0) == name {
				return d.Node(2)
			}
		}
	}
	return nil
}

// methodDeclarations declares every method as a static member function;
// instance methods take the receiver as their last parameter. Private
// methods follow the others.
func (c *classEmitter) methodDeclarations() {
	var public, private []string
	for _, m := range members(c.decl, "MethodDeclaration") {
		if m.Leaf(3) == config.MainName && slices.Contains(ast.ModifierWords(m.Node(0)), "static") {
			continue
		}
		text := "static " + typeString(m.Node(2), 0) + " " + m.Leaf(3) + "(" + params(m.Node(4)) + ");"
		if slices.Contains(ast.ModifierWords(m.Node(0)), "private") {
			private = append(private, text)
		} else {
			public = append(public, text)
		}
	}
	for _, l := range public {
		c.p.line(l)
	}
	if len(private) > 0 {
		c.p.line("// private")
		for _, l := range private {
			c.p.line(l)
		}
	}
	c.p.line("")
}
