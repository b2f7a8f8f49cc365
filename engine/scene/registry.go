package scene

import (
	"fmt"
	"reflect"
	"sort"
)

// Registry is a heterogeneous store holding at most one value per type. Scenes pop a
// value to borrow it and push it back on exit. It is not safe for concurrent use.
type Registry struct {
	values map[reflect.Type]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{values: make(map[reflect.Type]any)}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Put stores v under its type T.
//
// Parameters:
//   - r: the registry
//   - v: the value
//
// Returns:
//   - error: an error if a value of type T is already present
func Put[T any](r *Registry, v T) error {
	key := typeKey[T]()
	if _, ok := r.values[key]; ok {
		return fmt.Errorf("registry: %s already present", key)
	}
	r.values[key] = v
	return nil
}

// Take removes and returns the value of type T.
//
// Parameters:
//   - r: the registry
//
// Returns:
//   - T: the value, or the zero value
//   - bool: false if no value of type T is present
func Take[T any](r *Registry) (T, bool) {
	key := typeKey[T]()
	v, ok := r.values[key]
	if !ok {
		var zero T
		return zero, false
	}
	delete(r.values, key)
	return v.(T), true
}

// Get returns the value of type T without removing it.
func Get[T any](r *Registry) (T, bool) {
	v, ok := r.values[typeKey[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// MustTake is Take for values a scene cannot run without.
func MustTake[T any](r *Registry) (T, error) {
	v, ok := Take[T](r)
	if !ok {
		return v, fmt.Errorf("registry: %s missing", typeKey[T]())
	}
	return v, nil
}

// Has reports whether a value of type T is present.
func Has[T any](r *Registry) bool {
	_, ok := r.values[typeKey[T]()]
	return ok
}

// Len returns the number of stored values.
func (r *Registry) Len() int { return len(r.values) }

// Types lists the stored types by name, sorted. Used for leak checks and logging.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.values))
	for k := range r.values {
		out = append(out, k.String())
	}
	sort.Strings(out)
	return out
}
