// go:generate atomicmapper -pointer -type Vector -import github.com/kruserr/sensordb/mmav

package sensordb

import (
	"sync"
	"sync/atomic"

	"github.com/kruserr/sensordb/mmav"
)

// VectorAtomicMap is a copy-on-write thread-safe map of pointers to mmav.Vector.
type VectorAtomicMap struct {
	mu  sync.Mutex
	val atomic.Value
}

type _VectorMap map[string]*mmav.Vector

// NewVectorAtomicMap returns a new initialized VectorAtomicMap.
func NewVectorAtomicMap() *VectorAtomicMap {
	am := &VectorAtomicMap{}
	am.val.Store(make(_VectorMap, 0))
	return am
}

// Get returns a pointer to mmav.Vector for a given key.
func (am *VectorAtomicMap) Get(key string) (value *mmav.Vector, ok bool) {
	value, ok = am.val.Load().(_VectorMap)[key]
	return value, ok
}

// GetAll returns the underlying map of pointers to mmav.Vector.
// This map must NOT be modified; use Set and Delete to change it safely.
func (am *VectorAtomicMap) GetAll() map[string]*mmav.Vector {
	return am.val.Load().(_VectorMap)
}

// Len returns the number of elements in the map.
func (am *VectorAtomicMap) Len() int {
	return len(am.val.Load().(_VectorMap))
}

// Set inserts a pointer to mmav.Vector under a given key.
func (am *VectorAtomicMap) Set(key string, value *mmav.Vector) {
	am.mu.Lock()
	defer am.mu.Unlock()

	m1 := am.val.Load().(_VectorMap)
	m2 := make(_VectorMap, len(m1)+1)
	for k, v := range m1 {
		m2[k] = v
	}

	m2[key] = value
	am.val.Store(m2)
}

// Delete removes the pointer to mmav.Vector under key from the map.
func (am *VectorAtomicMap) Delete(key string) {
	am.mu.Lock()
	defer am.mu.Unlock()

	m1 := am.val.Load().(_VectorMap)
	_, ok := m1[key]
	if !ok {
		return
	}

	m2 := make(_VectorMap, len(m1)-1)
	for k, v := range m1 {
		if k != key {
			m2[k] = v
		}
	}

	am.val.Store(m2)
}
