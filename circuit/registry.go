package circuit

import (
	"fmt"
	"strings"
)

/*
Registry maps caller-chosen qubit identifiers to dense 1-based register
positions. Declaration order fixes the position, so the first declared qubit
is the most significant bit of every basis index.
*/
type Registry struct {
	index map[string]int
	ids   []string
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add declares id and returns its position.
func (r *Registry) Add(id string) (int, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, fmt.Errorf("%w: empty identifier", ErrInvalidRequest)
	}
	if _, ok := r.index[id]; ok {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateQubit, id)
	}

	r.ids = append(r.ids, id)
	r.index[id] = len(r.ids)
	return len(r.ids), nil
}

func (r *Registry) Resolve(id string) (int, error) {
	pos, ok := r.index[strings.TrimSpace(id)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownQubitReference, id)
	}
	return pos, nil
}

// ResolveAll resolves every identifier, failing on the first miss.
func (r *Registry) ResolveAll(ids []string) ([]int, error) {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		pos, err := r.Resolve(id)
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, nil
}

func (r *Registry) Len() int { return len(r.ids) }

func (r *Registry) IDs() []string {
	return append([]string(nil), r.ids...)
}
