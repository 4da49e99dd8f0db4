package naming

import (
	"strings"
)

var primitives = map[string]bool{
	"byte": true, "short": true, "char": true, "int": true, "long": true,
	"float": true, "double": true, "boolean": true,
	// lowered spellings
	"int32_t": true, "bool": true,
}

var loweredPrimitive = map[string]string{
	"int":     "int32_t",
	"boolean": "bool",
}

var sourcePrimitive = map[string]string{
	"int32_t": "int",
	"bool":    "boolean",
}

// IsPrimitive reports whether t, in source or lowered spelling and without
// array dimensions, is a primitive type.
func IsPrimitive(t string) bool {
	return primitives[t]
}

// IsReference reports whether values of source type t are managed pointers.
func IsReference(t string) bool {
	if t == "" || t == "void" {
		return false
	}
	base, dims := ElementType(t)
	return dims > 0 || !IsPrimitive(base)
}

// LowerPrimitive maps a source primitive to the target spelling carried
// by the lowered tree. Only int and boolean change; every other primitive
// keeps its name.
func LowerPrimitive(name string) string {
	if l, ok := loweredPrimitive[name]; ok {
		return l
	}
	return name
}

// SourcePrimitive reverses LowerPrimitive.
func SourcePrimitive(name string) string {
	if s, ok := sourcePrimitive[name]; ok {
		return s
	}
	return name
}

// EmitPrimitive spells a lowered primitive for the target. byte has no
// target keyword and prints as char.
func EmitPrimitive(name string) string {
	if name == "byte" {
		return "char"
	}
	return name
}

// ElementType splits "T[][]" into ("T", 2).
func ElementType(t string) (string, int) {
	dims := 0
	for strings.HasSuffix(t, "[]") {
		t = t[:len(t)-2]
		dims++
	}
	return t, dims
}

// ArrayOf appends dims pairs of brackets to base.
func ArrayOf(base string, dims int) string {
	return base + strings.Repeat("[]", dims)
}

// TargetType spells a source type in the target language.
func TargetType(t string) string {
	base, dims := ElementType(t)
	var elem string
	switch {
	case base == "" || base == "void":
		return "void"
	case IsPrimitive(base):
		elem = EmitPrimitive(LowerPrimitive(base))
	default:
		if i := strings.LastIndexByte(base, '.'); i >= 0 {
			base = base[i+1:]
		}
		elem = base
	}
	return ArrayTarget(elem, dims)
}

// ArrayTarget wraps an already target-spelled element type in the
// runtime's managed array templates.
func ArrayTarget(elem string, dims int) string {
	if dims == 0 {
		return elem
	}
	return "__rt::Ptr<" + ArrayTemplate(elem, dims) + " >"
}

// ArrayTemplate names the runtime template allocated for an array of the
// given dimensions. Beyond two dimensions the two-dimensional template
// holds arrays.
func ArrayTemplate(elem string, dims int) string {
	switch {
	case dims <= 1:
		return "__rt::Array<" + elem + ">"
	case dims == 2:
		return "__rt::Array2D<" + elem + ">"
	default:
		return "__rt::Array2D<" + ArrayTarget(elem, dims-2) + ">"
	}
}
