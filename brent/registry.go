package brent

import "github.com/a1880/matrix-multiplication/scheme"

// A Registry assigns dense ids to literals in first-reference order.
// The id of a variable is its index in the registry.
type Registry struct {
	digits int
	vars   []Variable
	ids    map[Literal]int
}

// NewRegistry returns an empty registry naming products with the given width.
func NewRegistry(digits int) *Registry {
	return &Registry{digits: digits, ids: make(map[Literal]int)}
}

// Register returns the id of lit, creating its variable if needed.
// val is the coefficient of lit in the known scheme, used on creation only.
func (r *Registry) Register(lit Literal, val int8) int {
	if id, ok := r.ids[lit]; ok {
		r.vars[id].Refs++
		return id
	}
	id := len(r.vars)
	r.vars = append(r.vars, Variable{
		ID:      id,
		Literal: lit,
		Name:    lit.Key(r.digits),
		Value:   val,
		Refs:    1,
	})
	r.ids[lit] = id
	return id
}

// Lookup returns the id of lit and whether it is registered.
func (r *Registry) Lookup(lit Literal) (int, bool) {
	id, ok := r.ids[lit]
	return id, ok
}

// Var returns the variable with the given id.
func (r *Registry) Var(id int) Variable {
	return r.vars[id]
}

// Len is the number of registered variables.
func (r *Registry) Len() int {
	return len(r.vars)
}

// Variables returns every variable, ordered by id.
func (r *Registry) Variables() []Variable {
	res := make([]Variable, len(r.vars))
	copy(res, r.vars)
	return res
}

// Names maps every variable name to its id.
func (r *Registry) Names() map[string]int {
	res := make(map[string]int, len(r.vars))
	for _, v := range r.vars {
		res[v.Name] = v.ID
	}
	return res
}

// Digits is the width product numbers are padded to.
func (r *Registry) Digits() int {
	return r.digits
}

func (r *Registry) markUnconstrained(ids ...int) {
	for _, id := range ids {
		r.vars[id].Unconstrained = true
	}
}

// Kinds counts the registered variables of each kind.
func (r *Registry) Kinds() map[scheme.Kind]int {
	res := make(map[scheme.Kind]int, 3)
	for _, v := range r.vars {
		res[v.Literal.Kind]++
	}
	return res
}
