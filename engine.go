// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package sensordb implements an embedded, append-only time-series store
// for sensor readings. Every sensor key is backed by its own
// memory-mapped mmav.Vector; a metadata blob and a hook-maintained
// aggregate blob can be attached to each key independently of its
// record history.
package sensordb

import (
	"os"
	"path/filepath"

	"github.com/kruserr/sensordb/mmav"
)

const metaFileName = "meta"

// Engine multiplexes a set of per-key mmav.Vectors, metadata blobs and
// aggregate cells under one data directory. Every exported method is
// total: it never returns a Go error, reporting absence as an empty
// value instead. The sole exception is Open, since a corrupted Segment
// discovered while bringing a key's Vector online at startup cannot be
// served safely.
type Engine struct {
	dataDir     string
	segmentSize int
	dataStart   int

	vectors    *VectorAtomicMap
	meta       *MetaAtomicMap
	aggregates *AggregateAtomicMap
	hooks      *HookAtomicMap
}

// Open creates or reopens an Engine rooted at dataDir, which is created if
// it does not already exist. Every existing per-key subdirectory found
// under dataDir is eagerly reopened, and its meta file read, so that
// corruption in a key's tail Segment, or the Segment before it, is
// reported here. Older Segments are opened lazily on first read; a
// corruption found then is logged and the read returns empty.
func Open(dataDir string, opts ...Option) (*Engine, error) {
	d, err := os.Stat(dataDir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			Logger.Printf("error: failed to create data dir: %s", err)
			return nil, ErrInvalidDir
		}
	} else if err != nil {
		return nil, ErrInvalidDir
	} else if !d.IsDir() {
		return nil, ErrInvalidDir
	}

	e := defaultEngine()
	e.dataDir = dataDir

	for _, opt := range opts {
		opt(e)
	}

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, ErrInvalidDir
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		key := entry.Name()
		v, err := mmav.OpenVector(e.vectorDir(key), e.segmentSize, e.dataStart)
		if err != nil {
			Logger.Printf("error: failed to reopen vector key=%s: %s", key, err)
			return nil, err
		}

		e.vectors.Set(key, v)
		e.meta.Set(key, e.readMetaFile(key))
	}

	return e, nil
}

func (e *Engine) vectorDir(key string) string {
	return filepath.Join(e.dataDir, key)
}

func (e *Engine) metaPath(key string) string {
	return filepath.Join(e.vectorDir(key), metaFileName)
}

// readMetaFile reads key's meta file, creating it empty if it does not yet
// exist so that a key always has a meta file on disk once opened.
func (e *Engine) readMetaFile(key string) []byte {
	b, err := os.ReadFile(e.metaPath(key))
	if err == nil {
		return b
	}

	if !os.IsNotExist(err) {
		Logger.Printf("error: failed to read meta file key=%s: %s", key, err)
		return []byte{}
	}

	if err := os.WriteFile(e.metaPath(key), []byte{}, 0644); err != nil {
		Logger.Printf("error: failed to create meta file key=%s: %s", key, err)
	}
	return []byte{}
}

// ensureKey makes key present in sensors (creating its Vector on first
// use) and gives it a meta entry, per spec's state machine: a key becomes
// present via either post or post_meta.
func (e *Engine) ensureKey(key string) *mmav.Vector {
	if v, ok := e.vectors.Get(key); ok {
		return v
	}

	v, err := mmav.OpenVector(e.vectorDir(key), e.segmentSize, e.dataStart)
	if err != nil {
		Logger.Printf("alert: failed to open vector key=%s: %s", key, err)
		return nil
	}

	e.vectors.Set(key, v)
	if _, ok := e.meta.Get(key); !ok {
		e.meta.Set(key, e.readMetaFile(key))
	}

	return v
}

// Contains reports whether key is present, whether or not it has any
// records yet.
func (e *Engine) Contains(key string) bool {
	_, ok := e.vectors.Get(key)
	return ok
}

// Get returns the record at logical index i for key, or an empty slice if
// key or i is absent.
func (e *Engine) Get(key string, i int) []byte {
	if !e.Contains(key) {
		return []byte{}
	}
	v, _ := e.vectors.Get(key)
	return v.Get(i)
}

// Post appends record to key, creating key if it does not yet exist and
// running key's registered aggregate hook, if any, strictly before the
// append is made durable. A hook panic is swallowed and does not abort
// the append.
func (e *Engine) Post(key string, record []byte) {
	v := e.ensureKey(key)
	if v == nil {
		return
	}

	cell := e.aggregates.GetOrCreate(key)
	if fn, ok := e.hooks.Get(key); ok {
		cell.update(key, record, fn)
	}

	v.Push(record)
}

// GetMeta returns the metadata blob attached to key, or an empty slice if
// key is absent.
func (e *Engine) GetMeta(key string) []byte {
	if !e.Contains(key) {
		return []byte{}
	}
	b, _ := e.meta.Get(key)
	return b
}

// PostMeta replaces the metadata blob attached to key, creating key if it
// does not yet exist.
func (e *Engine) PostMeta(key string, blob []byte) {
	e.ensureKey(key)

	if err := os.WriteFile(e.metaPath(key), blob, 0644); err != nil {
		Logger.Printf("error: failed to write meta file key=%s: %s", key, err)
		return
	}

	e.meta.Set(key, blob)
}

// GetAggregates returns a snapshot of the aggregate blob for key, or an
// empty slice if key has never been posted to.
func (e *Engine) GetAggregates(key string) []byte {
	cell, ok := e.aggregates.Get(key)
	if !ok {
		return []byte{}
	}
	return cell.Snapshot()
}

// GetLatest returns the most recently posted record for key, or an empty
// slice if key is absent or has no records.
func (e *Engine) GetLatest(key string) []byte {
	if !e.Contains(key) {
		return []byte{}
	}
	v, _ := e.vectors.Get(key)
	return v.Last()
}

// GetLatestWithLimit returns the last limit records for key in ascending
// order, or every record if limit exceeds key's length, subject to the
// span-clamping rule described on mmav.Vector.LastLimit.
func (e *Engine) GetLatestWithLimit(key string, limit int) [][]byte {
	if !e.Contains(key) {
		return [][]byte{}
	}
	v, _ := e.vectors.Get(key)
	return v.LastLimit(limit)
}

// GetRange returns the records for key at logical positions [start, end],
// subject to mmav.Vector's span-clamping rule.
func (e *Engine) GetRange(key string, start, end int) [][]byte {
	if !e.Contains(key) {
		return [][]byte{}
	}
	v, _ := e.vectors.Get(key)
	return v.Range(start, end)
}

// GetAllMeta returns every key's metadata blob.
func (e *Engine) GetAllMeta() map[string][]byte {
	all := e.meta.GetAll()
	out := make(map[string][]byte, len(all))
	for k, v := range all {
		out[k] = v
	}
	return out
}

// GetAllAggregates returns a snapshot of every key's aggregate blob.
func (e *Engine) GetAllAggregates() map[string][]byte {
	all := e.aggregates.GetAll()
	out := make(map[string][]byte, len(all))
	for k, cell := range all {
		out[k] = cell.Snapshot()
	}
	return out
}

// GetAllLatest returns the most recent record for every key.
func (e *Engine) GetAllLatest() map[string][]byte {
	all := e.vectors.GetAll()
	out := make(map[string][]byte, len(all))
	for k, v := range all {
		out[k] = v.Last()
	}
	return out
}

// GetAllLatestWithLimit returns the last limit records for every key,
// omitting keys whose result is empty.
func (e *Engine) GetAllLatestWithLimit(limit int) map[string][][]byte {
	all := e.vectors.GetAll()
	out := make(map[string][][]byte, len(all))
	for k, v := range all {
		records := v.LastLimit(limit)
		if len(records) == 0 {
			continue
		}
		out[k] = records
	}
	return out
}
