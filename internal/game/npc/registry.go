package npc

import (
	"fmt"
	"slices"
	"strings"
)

// Registry indexes monster templates by id. It is immutable after construction
// and therefore safe for concurrent use.
type Registry struct {
	templates map[string]*Template
	ids       []string
}

// NewRegistry builds a Registry from templates.
//
// Precondition: every template must have passed Validate.
// Postcondition: Returns an error if templates is empty or two templates share an id.
func NewRegistry(templates []*Template) (*Registry, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("npc.NewRegistry: at least one template is required")
	}
	r := &Registry{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if _, dup := r.templates[t.ID]; dup {
			return nil, fmt.Errorf("npc.NewRegistry: duplicate template id %q", t.ID)
		}
		r.templates[t.ID] = t
		r.ids = append(r.ids, t.ID)
	}
	slices.Sort(r.ids)
	return r, nil
}

// NewDefaultRegistry returns a Registry over DefaultTemplates.
func NewDefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultTemplates())
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the template with id.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.templates[strings.TrimSpace(id)]
	return t, ok
}

// IDs returns all template ids in sorted order.
func (r *Registry) IDs() []string {
	return slices.Clone(r.ids)
}

// All returns all templates ordered by id.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.templates[id])
	}
	return out
}
