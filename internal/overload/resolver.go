// Package overload picks the declared method a call site refers to by
// mangling the argument types and widening them until a declaration
// matches.
package overload

import (
	"fmt"
	"strings"

	"github.com/funvibe/cpptrans/internal/classes"
	"github.com/funvibe/cpptrans/internal/config"
	"github.com/funvibe/cpptrans/internal/diagnostics"
	"github.com/funvibe/cpptrans/internal/naming"
	"github.com/funvibe/cpptrans/internal/token"
)

type Resolver struct {
	registry *classes.Registry
}

func NewResolver(registry *classes.Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Resolution is the outcome of resolving one call site.
type Resolution struct {
	Mangled   string
	Owner     string // class declaring the chosen method
	Method    *classes.MethodSig
	Types     []string // argument types after widening
	Widenings int      // total widening steps applied
}

// Widen returns the next wider type of t. The second result is false when
// t cannot be widened further.
func (r *Resolver) Widen(t string) (string, bool) {
	if _, dims := naming.ElementType(t); dims > 0 {
		return config.RootClassName, true
	}
	switch t {
	case "":
		return "", false
	case "byte", "short", "char":
		return "int", true
	case "int", "long", "float":
		return "double", true
	case "double", "boolean", "void":
		return "", false
	case config.RootClassName:
		return "", false
	case config.StringClassName:
		return config.RootClassName, true
	}
	if p, ok := r.registry.Get(t); ok {
		return p.SuperName(), true
	}
	return config.RootClassName, true
}

// Resolve finds the method of class (or an ancestor) named name that the
// argument types select. Exact matches win. Otherwise one argument
// position at a time is widened, left to right, restoring it after a
// failed attempt; when no single widening works each position is widened
// for good in turn and the search repeats on the result.
//
// On failure the returned Resolution still carries the unwidened
// candidate name, alongside an R001 error.
func (r *Resolver) Resolve(class, name string, argTypes []string, pos token.Position) (*Resolution, error) {
	types := make([]string, len(argTypes))
	copy(types, argTypes)

	s := &search{r: r, class: class, name: name, failed: make(map[string]bool)}
	res, err := s.run(types)
	if err != nil {
		return nil, err
	}
	if res != nil {
		res.Widenings = r.distance(argTypes, res.Types)
		return res, nil
	}

	candidate := naming.Method(name, argTypes)
	msg := fmt.Sprintf("no method of %s matches %s(%s)", class, name, strings.Join(argTypes, ", "))
	return &Resolution{Mangled: candidate, Owner: class, Types: argTypes},
		diagnostics.NewError(diagnostics.ErrR001, pos, msg)
}

type search struct {
	r      *Resolver
	class  string
	name   string
	failed map[string]bool
}

func (s *search) lookup(types []string) (*Resolution, error) {
	mangled := naming.Method(s.name, types)
	m, owner, err := s.r.registry.FindMethod(s.class, mangled)
	if err != nil || m == nil {
		return nil, err
	}
	final := make([]string, len(types))
	copy(final, types)
	return &Resolution{Mangled: mangled, Owner: owner, Method: m, Types: final}, nil
}

func (s *search) run(types []string) (*Resolution, error) {
	key := strings.Join(types, ",")
	if s.failed[key] {
		return nil, nil
	}
	if res, err := s.lookup(types); res != nil || err != nil {
		return res, err
	}

	for i, orig := range types {
		wider, ok := s.r.Widen(orig)
		if !ok {
			continue
		}
		types[i] = wider
		res, err := s.lookup(types)
		types[i] = orig
		if res != nil || err != nil {
			return res, err
		}
	}

	for i, orig := range types {
		wider, ok := s.r.Widen(orig)
		if !ok {
			continue
		}
		types[i] = wider
		res, err := s.run(types)
		types[i] = orig
		if res != nil || err != nil {
			return res, err
		}
	}

	s.failed[key] = true
	return nil, nil
}

// distance counts widening steps between two argument type lists.
func (r *Resolver) distance(from, to []string) int {
	total := 0
	for i := range from {
		for t := from[i]; t != to[i]; total++ {
			next, ok := r.Widen(t)
			if !ok {
				break
			}
			t = next
		}
	}
	return total
}
