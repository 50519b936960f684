package trace

import (
	"fmt"
	"reflect"
	"sync"
)

// Box attaches a trace level and a graph node to a value.
//
// A box exclusively owns its reference to the node. Providers define one
// box variant per differentiable value type, usually by embedding BaseBox.
type Box interface {
	Value() any
	Level() Level
	Node() Node
}

// BoxFactory constructs a box variant.
type BoxFactory func(value any, level Level, node Node) Box

// BaseBox implements Box and the transparent printing and truthiness of
// the wrapped value. Embed it in provider box variants.
type BaseBox struct {
	value any
	level Level
	node  Node
}

// NewBaseBox creates the embeddable part of a box.
func NewBaseBox(value any, level Level, node Node) BaseBox {
	return BaseBox{value: value, level: level, node: node}
}

// Value returns the wrapped value, which may itself be a box of a lower level.
func (b *BaseBox) Value() any { return b.value }

// Level returns the trace level the box belongs to.
func (b *BaseBox) Level() Level { return b.level }

// Node returns the graph node recorded for the value.
func (b *BaseBox) Node() Node { return b.node }

// String defers to the wrapped value.
func (b *BaseBox) String() string {
	return fmt.Sprint(b.value)
}

// Bool defers to the truthiness of the wrapped value.
func (b *BaseBox) Bool() bool {
	return Truthy(b.value)
}

// IsBox reports whether x is a box of any level.
func IsBox(x any) bool {
	_, ok := x.(Box)
	return ok
}

// Unwrap strips boxes from x until a non-box value is reached.
func Unwrap(x any) any {
	for {
		b, ok := x.(Box)
		if !ok {
			return x
		}
		x = b.Value()
	}
}

// Truthy reports whether x is "true" in ordinary control flow, looking
// through any boxes. Booleans are themselves; nil, zero numbers and empty
// strings, slices, maps and channels are false; everything else is
// non-zero. Values with a Bool() bool method decide for themselves.
func Truthy(x any) bool {
	x = Unwrap(x)
	switch v := x.(type) {
	case nil:
		return false
	case bool:
		return v
	case interface{ Bool() bool }:
		return v.Bool()
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Chan, reflect.Array:
		return rv.Len() > 0
	default:
		return !rv.IsZero()
	}
}

// Registry maps value types to box variants.
//
// Each registration also maps the box type to itself, so boxing a value
// that is already a box of a lower level selects the right variant.
// Providers register before tracing; the first Trace on any Tracer using
// the registry seals it.
type Registry struct {
	mu        sync.RWMutex
	factories map[reflect.Type]BoxFactory
	sealed    bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[reflect.Type]BoxFactory)}
}

// Register records that values of valueType, and boxes of boxType, are
// wrapped with factory. boxType must be the concrete type factory returns.
//
// Panics with a REGISTRY_SEALED TraceError after tracing has begun.
func (r *Registry) Register(boxType, valueType reflect.Type, factory BoxFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		panic(&TraceError{
			Code:    ErrCodeRegistrySealed,
			Message: "box types must be registered before tracing",
			Type:    valueType,
		})
	}
	r.factories[valueType] = factory
	r.factories[boxType] = factory
}

// RegisterBox is the typed form of Registry.Register.
//
// Example:
//
//	trace.RegisterBox[*scalar.Box, float64](reg, scalar.NewBox)
func RegisterBox[B Box, V any](r *Registry, factory func(value any, level Level, node Node) B) {
	r.Register(reflect.TypeFor[B](), reflect.TypeFor[V](), func(value any, level Level, node Node) Box {
		return factory(value, level, node)
	})
}

// Lookup returns the factory registered for t.
func (r *Registry) Lookup(t reflect.Type) (BoxFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[t]
	return f, ok
}

// Wrap boxes value at level with node, choosing the variant registered for
// the value's runtime type. Returns an UNSUPPORTED_TYPE TraceError if there
// is none.
func (r *Registry) Wrap(value any, level Level, node Node) (Box, error) {
	t := reflect.TypeOf(value)
	factory, ok := r.Lookup(t)
	if !ok {
		return nil, NewUnsupportedTypeError(t)
	}
	return factory(value, level, node), nil
}

// Sealed reports whether tracing has begun with this registry.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

func (r *Registry) seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}
