// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mmav

import "errors"

var (
	// ErrSizeCorrupted is returned by OpenSegment when a reopened file's
	// persisted data_seek exceeds the segment's size.
	ErrSizeCorrupted = errors.New("mmav: data_seek exceeds segment size")

	// ErrSeekCorrupted is returned by OpenSegment when a reopened file's
	// persisted index_seek exceeds the data start offset.
	ErrSeekCorrupted = errors.New("mmav: index_seek exceeds data start")

	// ErrFileFull is returned by Segment.Push when the record would not
	// fit in the remaining data region.
	ErrFileFull = errors.New("mmav: segment file full")

	// ErrArrayFull is returned by Segment.Push when the segment already
	// holds MaxRecordsPerSegment records.
	ErrArrayFull = errors.New("mmav: segment index full")

	// ErrArrayEmpty is returned by Segment.Get when the segment holds no
	// records.
	ErrArrayEmpty = errors.New("mmav: segment empty")

	// ErrIndexOutOfRange is returned by Segment.Get when the requested
	// index exceeds MaxRecordsPerSegment, or the decoded index pair
	// violates the segment's invariants.
	ErrIndexOutOfRange = errors.New("mmav: index out of range")

	// ErrIndexOutOfBounds is returned by Segment.Get when the requested
	// index exceeds the segment's current record count.
	ErrIndexOutOfBounds = errors.New("mmav: index out of bounds")
)
