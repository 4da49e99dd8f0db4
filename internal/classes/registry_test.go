package classes

import (
	"errors"
	"testing"

	"github.com/funvibe/cpptrans/internal/diagnostics"
)

// A <- B <- C, B overrides toString and introduces m_size, C overrides m_size.
func sampleRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()

	a := NewProfile("A", "")
	a.AddField(&Field{Name: "count", Type: "int"})
	a.AddMethod(&MethodSig{Name: "init", Mangled: "init", Init: true})
	a.AddMethod(&MethodSig{Name: "get", Mangled: "m_get", Return: "int"})

	b := NewProfile("B", "A")
	b.AddField(&Field{Name: "name", Type: "String", Private: true})
	b.AddMethod(&MethodSig{Name: "toString", Mangled: "m_toString", Return: "String"})
	b.AddMethod(&MethodSig{Name: "size", Mangled: "m_size", Return: "int"})
	b.AddMethod(&MethodSig{Name: "make", Mangled: "m_make", Return: "B", Static: true})

	c := NewProfile("C", "B")
	c.AddMethod(&MethodSig{Name: "size", Mangled: "m_size", Return: "int"})

	for _, p := range []*ClassProfile{a, b, c} {
		if err := r.Register(p); err != nil {
			t.Fatalf("register %s: %v", p.Name, err)
		}
	}
	return r
}

func TestRegisterAndGet(t *testing.T) {
	r := sampleRegistry(t)
	if _, ok := r.Get("B"); !ok {
		t.Fatal("B not registered")
	}
	if _, ok := r.Get("Object"); !ok {
		t.Fatal("root class should be built in")
	}
	if got := r.Names(); len(got) != 3 || got[0] != "A" || got[2] != "C" {
		t.Errorf("names = %v", got)
	}
	err := r.Register(NewProfile("A", ""))
	if !errors.Is(err, &diagnostics.DiagnosticError{Code: diagnostics.ErrS001}) {
		t.Errorf("duplicate registration: %v", err)
	}
}

func TestMustGetUnregistered(t *testing.T) {
	r := NewRegistry()
	_, err := r.MustGet("Ghost")
	if !errors.Is(err, &diagnostics.DiagnosticError{Code: diagnostics.ErrC001}) {
		t.Fatalf("expected C001, got %v", err)
	}
}

func TestFindDefiningAncestor(t *testing.T) {
	r := sampleRegistry(t)
	tests := []struct {
		class, method, want string
	}{
		{"C", "m_size", "C"},
		{"C", "m_toString", "B"},
		{"C", "m_get", "A"},
		{"C", "m_hashCode", "Object"},
		{"A", "m_toString", "Object"},
		{"A", "m_missing", "Object"},
	}
	for _, tt := range tests {
		got, err := r.FindDefiningAncestor(tt.class, tt.method)
		if err != nil {
			t.Fatalf("%s.%s: %v", tt.class, tt.method, err)
		}
		if got != tt.want {
			t.Errorf("FindDefiningAncestor(%s, %s) = %s, want %s", tt.class, tt.method, got, tt.want)
		}
	}
}

func TestAncestorsDetectsUnregisteredSuper(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewProfile("Orphan", "Missing")); err != nil {
		t.Fatal(err)
	}
	_, err := r.Ancestors("Orphan")
	if !errors.Is(err, &diagnostics.DiagnosticError{Code: diagnostics.ErrC001}) {
		t.Fatalf("expected C001, got %v", err)
	}
}

func TestAncestorsDetectsCycle(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(NewProfile("X", "Y"))
	_ = r.Register(NewProfile("Y", "X"))
	if _, err := r.Ancestors("X"); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestCollectInheritedMembers(t *testing.T) {
	r := sampleRegistry(t)
	members, err := r.CollectInheritedMembers("C", []string{"m_size"})
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, m := range members {
		names = append(names, m.Owner+"."+m.Name())
	}
	want := []string{"A.count", "A.m_get", "B.name", "B.m_make"}
	if len(names) != len(want) {
		t.Fatalf("members = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("member %d = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestFindFieldAndMethod(t *testing.T) {
	r := sampleRegistry(t)
	f, owner, err := r.FindField("C", "count")
	if err != nil || f == nil || owner != "A" {
		t.Errorf("FindField = %v, %q, %v", f, owner, err)
	}
	m, owner, err := r.FindMethod("C", "m_equals_Object")
	if err != nil || m == nil || owner != "Object" {
		t.Errorf("FindMethod root = %v, %q, %v", m, owner, err)
	}
	if !r.IsSubclass("C", "A") || r.IsSubclass("A", "C") {
		t.Error("IsSubclass wrong")
	}
}

func TestProfileLocalsAndPartition(t *testing.T) {
	p := NewProfile("A", "")
	p.FieldTypes["arr"] = FieldType{Static: "Object[]", Dynamic: "String[]"}
	p.RecordLocal("m_run", "x", FieldType{Static: "Object", Dynamic: "A"})
	p.RecordLocal("m_run", "x", FieldType{Static: "int"})

	if ft, _ := p.DeclaredType("m_run", "x"); ft.Static != "Object" {
		t.Errorf("first local declaration should win, got %+v", ft)
	}
	if ft, ok := p.DeclaredType("m_run", "arr"); !ok || ft.Dynamic != "String[]" {
		t.Errorf("field fallback failed: %+v", ft)
	}
	p.AddMethod(&MethodSig{Mangled: "m_secret", Private: true})
	p.AddField(&Field{Name: "open"})
	if len(p.Private) != 1 || len(p.Public) != 1 {
		t.Errorf("partition = %v / %v", p.Public, p.Private)
	}
}

func TestFailedAncestor(t *testing.T) {
	r := sampleRegistry(t)
	failed := func(names ...string) func(string) bool {
		return func(n string) bool {
			for _, f := range names {
				if f == n {
					return true
				}
			}
			return false
		}
	}

	tests := []struct {
		class  string
		failed []string
		want   string
	}{
		{"C", nil, ""},
		{"C", []string{"A"}, "A"},
		{"C", []string{"A", "B"}, "B"},
		{"C", []string{"C"}, ""},
		{"Missing", []string{"A"}, ""},
	}
	for _, tt := range tests {
		if got := r.FailedAncestor(tt.class, failed(tt.failed...)); got != tt.want {
			t.Errorf("FailedAncestor(%s, %v) = %q, want %q", tt.class, tt.failed, got, tt.want)
		}
	}
}
