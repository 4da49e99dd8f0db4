package classes

import (
	"fmt"
	"slices"

	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/naming"
	"github.com/funvibe/cpptrans/internal/token"
)

// Registry maps class names to profiles. It is written during lowering and
// only read afterwards, which is what lets emission run in parallel.
type Registry struct {
	profiles map[string]*ClassProfile
	order    []string
}

// NewRegistry returns a registry seeded with the runtime's built-in
// classes: the root object and String.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]*ClassProfile)}
	for _, p := range builtins() {
		r.profiles[p.Name] = p
	}
	return r
}

func builtins() []*ClassProfile {
	root := NewProfile(config.RootClassName, "")
	root.Builtin = true
	for _, rm := range naming.RootMethods {
		root.AddMethod(&MethodSig{Name: rm.Name, Mangled: rm.Mangled, Return: rm.Return, Params: rm.Params})
	}

	str := NewProfile(config.StringClassName, config.RootClassName)
	str.Builtin = true
	str.AddMethod(&MethodSig{Name: "length", Mangled: naming.Method("length", nil), Return: "int"})
	str.AddMethod(&MethodSig{Name: "charAt", Mangled: naming.Method("charAt", []string{"int"}), Return: "char", Params: []string{"int"}})
	return []*ClassProfile{root, str}
}

// Register stores a user class profile. A name registered twice is S001.
func (r *Registry) Register(p *ClassProfile) error {
	if _, exists := r.profiles[p.Name]; exists {
		return diagnostics.NewError(diagnostics.ErrS001, p.Pos, fmt.Sprintf("class %q already registered", p.Name))
	}
	r.profiles[p.Name] = p
	r.order = append(r.order, p.Name)
	return nil
}

// Get returns the profile for name.
func (r *Registry) Get(name string) (*ClassProfile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// MustGet returns the profile for name or a C001 error.
func (r *Registry) MustGet(name string) (*ClassProfile, error) {
	if p, ok := r.profiles[name]; ok {
		return p, nil
	}
	return nil, unregistered(name)
}

func unregistered(name string) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrC001, token.Position{}, fmt.Sprintf("class %q is not registered", name))
}

// IsClass reports whether name is a registered class, built-ins included.
func (r *Registry) IsClass(name string) bool {
	_, ok := r.profiles[name]
	return ok
}

// Names returns user classes in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Ancestors returns the chain from name up to and including the root
// class, nearest first. A chain that loops or reaches an unregistered
// class yields C001.
func (r *Registry) Ancestors(name string) ([]*ClassProfile, error) {
	var chain []*ClassProfile
	seen := make(map[string]bool)
	for cur := name; ; {
		if seen[cur] {
			return nil, diagnostics.NewError(diagnostics.ErrC001, token.Position{},
				fmt.Sprintf("inheritance cycle through %q", cur))
		}
		seen[cur] = true
		p, err := r.MustGet(cur)
		if err != nil {
			return nil, err
		}
		chain = append(chain, p)
		if cur == config.RootClassName {
			return chain, nil
		}
		cur = p.SuperName()
	}
}

// Lineage returns Ancestors in root-first order.
func (r *Registry) Lineage(name string) ([]*ClassProfile, error) {
	chain, err := r.Ancestors(name)
	if err != nil {
		return nil, err
	}
	slices.Reverse(chain)
	return chain, nil
}

// FindDefiningAncestor returns the nearest class, starting with className
// itself, that declares mangled. The root class is the answer when no
// class on the chain does.
func (r *Registry) FindDefiningAncestor(className, mangled string) (string, error) {
	chain, err := r.Ancestors(className)
	if err != nil {
		return "", err
	}
	for _, p := range chain {
		if p.Method(mangled) != nil {
			return p.Name, nil
		}
	}
	return config.RootClassName, nil
}

// FindMethod searches className and then its ancestors for mangled.
func (r *Registry) FindMethod(className, mangled string) (*MethodSig, string, error) {
	chain, err := r.Ancestors(className)
	if err != nil {
		return nil, "", err
	}
	for _, p := range chain {
		if m := p.Method(mangled); m != nil {
			return m, p.Name, nil
		}
	}
	return nil, "", nil
}

// FindField searches className and then its ancestors for a field.
func (r *Registry) FindField(className, name string) (*Field, string, error) {
	chain, err := r.Ancestors(className)
	if err != nil {
		return nil, "", err
	}
	for _, p := range chain {
		if f := p.Field(name); f != nil {
			return f, p.Name, nil
		}
	}
	return nil, "", nil
}

// Member is an inherited method or field together with its declaring class.
type Member struct {
	Owner  string
	Method *MethodSig
	Field  *Field
}

// Name returns the member's key: mangled name for methods.
func (m Member) Name() string {
	if m.Method != nil {
		return m.Method.Mangled
	}
	return m.Field.Name
}

// CollectInheritedMembers walks the ancestors of className root-first and
// returns each member once, at its first introduction. Names listed in
// already are skipped, as are the root methods and initializer methods.
func (r *Registry) CollectInheritedMembers(className string, already []string) ([]Member, error) {
	lineage, err := r.Lineage(className)
	if err != nil {
		return nil, err
	}
	skip := make(map[string]bool, len(already))
	for _, n := range already {
		skip[n] = true
	}
	var out []Member
	for _, p := range lineage[:len(lineage)-1] {
		for _, f := range p.Fields {
			if !skip[f.Name] {
				skip[f.Name] = true
				out = append(out, Member{Owner: p.Name, Field: f})
			}
		}
		for _, m := range p.Methods {
			if m.Init || naming.IsRoot(m.Mangled) || skip[m.Mangled] {
				continue
			}
			skip[m.Mangled] = true
			out = append(out, Member{Owner: p.Name, Method: m})
		}
	}
	return out, nil
}

// IsSubclass reports whether sub equals super or descends from it.
func (r *Registry) IsSubclass(sub, super string) bool {
	chain, err := r.Ancestors(sub)
	if err != nil {
		return false
	}
	for _, p := range chain {
		if p.Name == super {
			return true
		}
	}
	return false
}

// FailedAncestor returns the nearest proper ancestor of name that failed
// reports true for, or "" when there is none.
func (r *Registry) FailedAncestor(name string, failed func(string) bool) string {
	chain, err := r.Ancestors(name)
	if err != nil {
		return ""
	}
	for _, p := range chain[1:] {
		if failed(p.Name) {
			return p.Name
		}
	}
	return ""
}

// Remove drops a user class, used when lowering of that class fails after
// its profile was registered.
func (r *Registry) Remove(name string) {
	if p, ok := r.profiles[name]; !ok || p.Builtin {
		return
	}
	delete(r.profiles, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
}
