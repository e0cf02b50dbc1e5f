// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package sensordb

import "github.com/kruserr/sensordb/mmav"

// Option is the type of function used to set internal Engine parameters.
type Option func(*Engine)

// WithSegmentSize overrides the byte length of every Segment file the
// Engine creates. It must be called before any sensor key is first seen.
func WithSegmentSize(size int) Option {
	return func(e *Engine) {
		e.segmentSize = size
	}
}

// WithDataStart overrides the byte offset at which a Segment's data region
// begins. It must be called before any sensor key is first seen.
func WithDataStart(dataStart int) Option {
	return func(e *Engine) {
		e.dataStart = dataStart
	}
}

// WithAggregateFn registers fn as the aggregate hook invoked synchronously,
// before the value is durably appended, every time a record is posted
// under key.
func WithAggregateFn(key string, fn AggregateFunc) Option {
	return func(e *Engine) {
		e.hooks.Set(key, fn)
	}
}

func defaultEngine() *Engine {
	return &Engine{
		segmentSize: mmav.DefaultSegmentSize,
		dataStart:   mmav.DefaultDataStart,
		vectors:     NewVectorAtomicMap(),
		meta:        NewMetaAtomicMap(),
		aggregates:  NewAggregateAtomicMap(),
		hooks:       NewHookAtomicMap(),
	}
}
