// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package mmav

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/kruserr/sensordb/internal/logging"
	"github.com/tysontate/gommap"
	"golang.org/x/sys/unix"
)

// Logger is the logger instance used by mmav in case of error.
var Logger = logging.New("MMAV ")

var byteOrder = binary.LittleEndian

// Segment is a single fixed-size memory-mapped file holding a bounded
// append-only sequence of opaque byte records, plus an embedded offset
// index and the two persisted seek counters that drive it.
//
// Layout (byte-exact, see spec):
//
//	[0:4)          data_seek  (u32, LE)
//	[4:8)          index_seek (u32, LE)
//	[8:dataStart)  index region: packed (start u32, end u32) pairs
//	[dataStart:size) data region: raw record bytes, contiguous
type Segment struct {
	path      string
	size      int
	dataStart int

	file *os.File
	mmap gommap.MMap

	dataSeek  uint32
	indexSeek uint32
}

// OpenSegment opens the Segment backed by the file at path, creating it
// (and any parent directory) if it does not exist. size is the fixed file
// length and dataStart the byte offset where the data region begins.
//
// OpenSegment returns ErrSizeCorrupted if a reopened file's persisted
// data_seek exceeds size, and ErrSeekCorrupted if its persisted index_seek
// exceeds dataStart.
func OpenSegment(path string, size, dataStart int) (*Segment, error) {
	existed := true
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		existed = false
	}

	if !existed {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	if !existed {
		if err := file.Truncate(int64(size)); err != nil {
			file.Close()
			return nil, err
		}
	}

	mm, err := gommap.Map(file.Fd(), gommap.PROT_READ|gommap.PROT_WRITE, gommap.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, err
	}

	if err := unix.Madvise(mm, unix.MADV_RANDOM); err != nil {
		Logger.Printf("warn: madvise random failed path=%s: %s", path, err)
	}

	seg := &Segment{
		path:      path,
		size:      size,
		dataStart: dataStart,
		file:      file,
		mmap:      mm,
	}

	if existed {
		seg.dataSeek = byteOrder.Uint32(mm[0:4])
		seg.indexSeek = byteOrder.Uint32(mm[4:8])

		if int(seg.dataSeek) > size {
			file.Close()
			return nil, ErrSizeCorrupted
		}
		if int(seg.indexSeek) > dataStart {
			file.Close()
			return nil, ErrSeekCorrupted
		}
	} else {
		seg.dataSeek = uint32(dataStart)
		seg.indexSeek = headerSize
	}

	return seg, nil
}

// Len returns the number of records currently held by the segment.
func (s *Segment) Len() int {
	if s.indexSeek == 0 || s.indexSeek == headerSize {
		return 0
	}
	return int((s.indexSeek - headerSize) / indexEntryWidth)
}

// Push appends value as a new record. It returns ErrArrayFull if the
// segment already holds MaxRecordsPerSegment records, or ErrFileFull if
// value does not fit in the remaining data region.
func (s *Segment) Push(value []byte) error {
	if s.Len() > MaxRecordsPerSegment-1 {
		return ErrArrayFull
	}

	if int(s.dataSeek)+len(value) > s.size {
		return ErrFileFull
	}

	copy(s.mmap[s.dataSeek:int(s.dataSeek)+len(value)], value)
	s.advanceSeek(uint32(len(value)))
	return nil
}

// advanceSeek records a new (start, end) index pair for a record of length
// n starting at the current data_seek, then advances both persisted seek
// counters. data_seek is advanced and written last, so a crash mid-push
// leaves the previous, fully-written state readable.
func (s *Segment) advanceSeek(n uint32) {
	end := s.dataSeek + n

	byteOrder.PutUint32(s.mmap[s.indexSeek:s.indexSeek+4], s.dataSeek)
	byteOrder.PutUint32(s.mmap[s.indexSeek+4:s.indexSeek+8], end)

	s.indexSeek += indexEntryWidth
	byteOrder.PutUint32(s.mmap[4:8], s.indexSeek)

	s.dataSeek = end
	byteOrder.PutUint32(s.mmap[0:4], s.dataSeek)
}

// Get returns a freshly allocated copy of the record at index i.
func (s *Segment) Get(i int) ([]byte, error) {
	if s.Len() == 0 {
		return nil, ErrArrayEmpty
	}

	if i > MaxRecordsPerSegment-1 {
		return nil, ErrIndexOutOfRange
	}

	if i > s.Len()-1 {
		return nil, ErrIndexOutOfBounds
	}

	off := indexEntryWidth * (i + 1)
	start := byteOrder.Uint32(s.mmap[off : off+4])
	end := byteOrder.Uint32(s.mmap[off+4 : off+8])

	if int(start) < s.dataStart || int(start) > s.size {
		return nil, ErrIndexOutOfRange
	}
	if int(end) < s.dataStart || int(end) > s.size || end < start {
		return nil, ErrIndexOutOfRange
	}

	out := make([]byte, end-start)
	copy(out, s.mmap[start:end])
	return out, nil
}

// Last returns the most recently pushed record, or an empty slice if the
// segment holds no records or the stored index entry is malformed. Last
// never returns an error - it elides.
func (s *Segment) Last() []byte {
	if s.Len() == 0 {
		return []byte{}
	}

	b, err := s.Get(s.Len() - 1)
	if err != nil {
		return []byte{}
	}
	return b
}

// Close flushes the segment's changes to disk and closes its file handle.
func (s *Segment) Close() error {
	if err := s.mmap.Sync(gommap.MS_SYNC); err != nil {
		return err
	}
	return s.file.Close()
}
