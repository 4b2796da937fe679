// Package syncmap is a typed wrapper around sync.Map.
package syncmap

import "sync"

// SyncMap is safe for concurrent use. Copies share the same underlying map.
type SyncMap[K comparable, V any] struct {
	_map *sync.Map
}

func New[K comparable, V any]() SyncMap[K, V] {
	return SyncMap[K, V]{
		_map: &sync.Map{},
	}
}

func (sm SyncMap[K, V]) Set(key K, value V) {
	sm._map.Store(key, value)
}

func (sm SyncMap[K, V]) Lookup(key K) (value V, ok bool) {
	v, has := sm._map.Load(key)
	if !has {
		return value, false
	}
	return v.(V), true
}

func (sm SyncMap[K, V]) Get(key K) (value V) {
	v, _ := sm.Lookup(key)
	return v
}

func (sm SyncMap[K, V]) Delete(key K) {
	sm._map.Delete(key)
}

// Range calls f for each entry until f returns false. Entries may be deleted
// from f.
func (sm SyncMap[K, V]) Range(f func(key K, value V) bool) {
	sm._map.Range(func(k, v any) bool {
		return f(k.(K), v.(V))
	})
}

// Len counts the entries. It is linear in the size of the map.
func (sm SyncMap[K, V]) Len() int {
	n := 0
	sm._map.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
