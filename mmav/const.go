// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package mmav implements the Memory-Mapped Append-only Vector: a
// dynamically-growing append-only byte log built out of fixed-size,
// memory-mapped Segment files.
package mmav

// DefaultSegmentSize is the byte length of a Segment file when no override
// is supplied to OpenSegment/OpenVector.
const DefaultSegmentSize = 14_580_008

// DefaultDataStart is the byte offset at which the data region of a Segment
// begins when no override is supplied. Bytes between the 8-byte header and
// DefaultDataStart hold the index region.
const DefaultDataStart = 80_008

// MaxRecordsPerSegment caps how many records a single Segment may hold,
// independently of how much data-region space remains.
const MaxRecordsPerSegment = 10_000

// headerSize is the width in bytes of the two persisted seek counters at
// the head of every Segment file (data_seek, index_seek).
const headerSize = 8

// indexEntryWidth is the width in bytes of one (start, end) index pair.
const indexEntryWidth = 8
