package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotSerializable is returned when a store cannot describe how to rebuild itself.
var ErrNotSerializable = errors.New("rate store is not serializable")

// Snapshot is the serialized form of a store: a registered kind plus the arguments
// its factory needs to rebuild it.
type Snapshot struct {
	Kind string          `json:"kind"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Snapshotter is implemented by stores that can be serialized.
type Snapshotter interface {
	Snapshot() (Snapshot, error)
}

// Factory rebuilds a store from the arguments of a Snapshot.
type Factory func(args json.RawMessage) (any, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes a store factory available under kind. It panics if kind is registered twice.
func Register(kind string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if f == nil {
		panic("store: Register factory is nil")
	}
	if _, dup := factories[kind]; dup {
		panic("store: Register called twice for kind " + kind)
	}
	factories[kind] = f
}

// Kinds lists the registered store kinds.
func Kinds() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Take serializes s, failing with ErrNotSerializable when s is not a Snapshotter.
func Take(s any) (Snapshot, error) {
	sn, ok := s.(Snapshotter)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %T", ErrNotSerializable, s)
	}
	return sn.Snapshot()
}

// Restore rebuilds a store from its snapshot.
func Restore(s Snapshot) (any, error) {
	factoriesMu.RLock()
	f, ok := factories[s.Kind]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown rate store kind %q (registered: %v)", s.Kind, Kinds())
	}
	st, err := f(s.Args)
	if err != nil {
		return nil, fmt.Errorf("restore %s store: %w", s.Kind, err)
	}
	return st, nil
}
