// Package naming holds the rules that turn source names into target names:
// method mangling, the root-object method table and type spelling.
package naming

import (
	"strconv"
	"strings"

	"github.com/funvibe/cpptrans/internal/config"
)

// Method mangles a method name with its declared parameter types:
// "m_" + name, then one "_"+token per parameter. Declaration sites and
// call sites both go through here, which keeps them in lock-step.
func Method(name string, paramTypes []string) string {
	var sb strings.Builder
	sb.WriteString(config.MethodPrefix)
	sb.WriteString(name)
	for _, t := range paramTypes {
		sb.WriteByte('_')
		sb.WriteString(TypeToken(t))
	}
	return sb.String()
}

// TypeToken spells a source type as an identifier fragment. Qualified
// names keep their last segment; array types append "Array" and, beyond
// one dimension, the dimension count ("int[][]" is "intArray2D").
func TypeToken(t string) string {
	base, dims := ElementType(t)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[i+1:]
	}
	switch dims {
	case 0:
		return base
	case 1:
		return base + "Array"
	default:
		return base + "Array" + strconv.Itoa(dims) + "D"
	}
}

// RootMethod describes one of the four methods every class inherits from
// the root object.
type RootMethod struct {
	Name    string   // source name
	Mangled string   // slot name in every dispatch table
	Runtime string   // implementation name in the runtime's root class
	Return  string   // source return type
	Params  []string // source parameter types, receiver excluded
}

// RootMethods lists the root slots in dispatch-table order.
var RootMethods = []RootMethod{
	{Name: "hashCode", Mangled: "m_hashCode", Runtime: "m_hashCode", Return: "int"},
	{Name: "equals", Mangled: "m_equals_Object", Runtime: "m_equals", Return: "boolean", Params: []string{config.RootClassName}},
	{Name: "getClass", Mangled: "m_getClass", Runtime: "m_getClass", Return: config.ClassClassName},
	{Name: "toString", Mangled: "m_toString", Runtime: "m_toString", Return: config.StringClassName},
}

// LookupRoot reports whether mangled names a root slot.
func LookupRoot(mangled string) (RootMethod, bool) {
	for _, rm := range RootMethods {
		if rm.Mangled == mangled {
			return rm, true
		}
	}
	return RootMethod{}, false
}

// IsRoot reports whether mangled names a root slot.
func IsRoot(mangled string) bool {
	_, ok := LookupRoot(mangled)
	return ok
}
