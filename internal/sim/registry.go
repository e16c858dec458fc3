package sim

import "slices"

// registry is an id-keyed arena that remembers insertion order.
// Iteration order is the order entities were created, which makes
// "first encountered" tie-breaks deterministic.
type registry[K comparable, V any] struct {
	byID  map[K]*V
	order []K
}

func newRegistry[K comparable, V any]() registry[K, V] {
	return registry[K, V]{byID: make(map[K]*V)}
}

func (r *registry[K, V]) put(id K, v *V) {
	if _, exists := r.byID[id]; !exists {
		r.order = append(r.order, id)
	}
	r.byID[id] = v
}

func (r *registry[K, V]) get(id K) (*V, bool) {
	v, ok := r.byID[id]
	return v, ok
}

func (r *registry[K, V]) remove(id K) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return true
}

func (r *registry[K, V]) len() int {
	return len(r.byID)
}

// ids returns a copy of the live ids in creation order.
// Passes that may delete entries iterate over this copy and re-check
// membership with get.
func (r *registry[K, V]) ids() []K {
	return slices.Clone(r.order)
}

// each visits live entries in creation order. fn must not add or remove entries.
func (r *registry[K, V]) each(fn func(*V)) {
	for _, id := range r.order {
		fn(r.byID[id])
	}
}
