package naming

import "testing"

func TestMethod(t *testing.T) {
	tests := []struct {
		name   string
		params []string
		want   string
	}{
		{"foo", nil, "m_foo"},
		{"twice", []string{"int"}, "m_twice_int"},
		{"put", []string{"String", "List"}, "m_put_String_List"},
		{"sum", []string{"int[]"}, "m_sum_intArray"},
		{"grid", []string{"double[][]"}, "m_grid_doubleArray2D"},
		{"eq", []string{"java.lang.Object"}, "m_eq_Object"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Method(tt.name, tt.params); got != tt.want {
				t.Errorf("Method(%q, %v) = %q, want %q", tt.name, tt.params, got, tt.want)
			}
		})
	}
}

func TestRootMethodsMatchMangling(t *testing.T) {
	for _, rm := range RootMethods {
		if got := Method(rm.Name, rm.Params); got != rm.Mangled {
			t.Errorf("root %s mangles to %q, table says %q", rm.Name, got, rm.Mangled)
		}
		if !IsRoot(rm.Mangled) {
			t.Errorf("IsRoot(%q) = false", rm.Mangled)
		}
	}
	if IsRoot("m_equals") {
		t.Error("runtime implementation name is not a slot name")
	}
}

func TestTargetType(t *testing.T) {
	tests := map[string]string{
		"int":      "int32_t",
		"boolean":  "bool",
		"byte":     "char",
		"double":   "double",
		"short":    "short",
		"long":     "long",
		"float":    "float",
		"void":     "void",
		"List":     "List",
		"String[]": "__rt::Ptr<__rt::Array<String> >",
		"int[][]":  "__rt::Ptr<__rt::Array2D<int32_t> >",
	}
	for in, want := range tests {
		if got := TargetType(in); got != want {
			t.Errorf("TargetType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrimitiveSpellings(t *testing.T) {
	if LowerPrimitive("int") != "int32_t" || LowerPrimitive("boolean") != "bool" {
		t.Error("lowered primitive spelling wrong")
	}
	for _, p := range []string{"byte", "short", "char", "long", "float", "double"} {
		if got := LowerPrimitive(p); got != p {
			t.Errorf("LowerPrimitive(%q) = %q, want it unchanged", p, got)
		}
	}
	if SourcePrimitive(LowerPrimitive("int")) != "int" {
		t.Error("SourcePrimitive does not reverse LowerPrimitive")
	}
	if !IsReference("int[]") || IsReference("int") || !IsReference("List") || IsReference("void") {
		t.Error("IsReference misclassifies")
	}
	if base, dims := ElementType("Object[][]"); base != "Object" || dims != 2 {
		t.Errorf("ElementType = %q, %d", base, dims)
	}
}
