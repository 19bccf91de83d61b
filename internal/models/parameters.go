package models

import "sort"

// ParameterSet maps parameter names to their current numeric values.
type ParameterSet map[string]float64

// Clone returns an independent copy of the set. A nil set clones to nil.
func (p ParameterSet) Clone() ParameterSet {
	if p == nil {
		return nil
	}
	cp := make(ParameterSet, len(p))
	for k, v := range p {
		cp[k] = v
	}
	return cp
}

// With returns a copy of the set with name set to value. The receiver is unchanged.
func (p ParameterSet) With(name string, value float64) ParameterSet {
	cp := p.Clone()
	if cp == nil {
		cp = make(ParameterSet, 1)
	}
	cp[name] = value
	return cp
}

// Names returns the parameter names in sorted order.
func (p ParameterSet) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether both sets hold the same names and values.
func (p ParameterSet) Equal(other ParameterSet) bool {
	if len(p) != len(other) {
		return false
	}
	for k, v := range p {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}
