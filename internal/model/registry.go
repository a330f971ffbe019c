package model

import (
	"sort"
	"strings"
)

// Registry maps a unique person or category name to its display color.
type Registry map[string]string

func (r Registry) Has(name string) bool {
	_, ok := r[name]
	return ok
}

func (r Registry) Color(name string) string {
	return r[name]
}

// Names returns the registered names sorted case-insensitively.
func (r Registry) Names() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i]), strings.ToLower(out[j])
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})
	return out
}

func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (r Registry) Set(name, color string) {
	r[name] = color
}

func (r Registry) Delete(name string) {
	delete(r, name)
}
