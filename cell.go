// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package sensordb

import "sync"

// AggregateFunc is invoked synchronously, under the target key's cell lock,
// strictly before a record is durably appended to that key's vector. key
// is the sensor key being posted to and record is the raw payload about to
// be stored. Implementations read and write the running aggregate through
// cell's unlocked accessors.
type AggregateFunc func(key string, record []byte, cell *AggregateCell)

// AggregateCell holds the mutable aggregate state for one sensor key. Its
// Bytes/SetBytes accessors are unlocked and meant to be called only from
// within the AggregateFunc invoked while the cell's lock is already held;
// Snapshot is the locked accessor for concurrent readers.
type AggregateCell struct {
	mu   sync.Mutex
	data []byte
}

// Bytes returns the cell's current value without locking. Only safe to
// call from within an AggregateFunc.
func (c *AggregateCell) Bytes() []byte {
	return c.data
}

// SetBytes replaces the cell's current value without locking. Only safe to
// call from within an AggregateFunc.
func (c *AggregateCell) SetBytes(b []byte) {
	c.data = b
}

// Snapshot returns a copy of the cell's current value, safe to call from
// any goroutine.
func (c *AggregateCell) Snapshot() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]byte, len(c.data))
	copy(out, c.data)
	return out
}

// update runs fn against the cell under its lock. If fn panics the panic
// is logged and swallowed, matching the Engine's error-free public API.
func (c *AggregateCell) update(key string, record []byte, fn AggregateFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			Logger.Printf("error: aggregate hook panicked key=%s: %v", key, r)
		}
	}()

	fn(key, record, c)
}
