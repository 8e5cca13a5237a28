package bitstream

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Wire byte order for every record. Layout is field by field with no padding.
var Order = binary.LittleEndian

// OverrunError is raised (via panic) when a read or skip would go past the
// write cursor. Streams trust the transport for packet boundaries, so this is
// a broken contract rather than a recoverable condition.
type OverrunError struct {
	Offset    int
	Requested int
	Available int
}

func (e *OverrunError) Error() string {
	return fmt.Sprintf(
		"bitstream: read of %d bytes at offset %d overruns %d available",
		e.Requested,
		e.Offset,
		e.Available,
	)
}

// Stream is an append-only byte buffer with independent read and write
// cursors.
type Stream struct {
	data  []byte
	read  int
	write int
}

func New() *Stream {
	return &Stream{}
}

// FromBytes copies b into a new stream whose write cursor sits at the end of
// the data, ready to be read.
func FromBytes(b []byte) *Stream {
	data := make([]byte, len(b))
	copy(data, b)
	return &Stream{
		data:  data,
		write: len(data),
	}
}

// Size returns the number of written bytes that have not been read yet.
func (s *Stream) Size() int {
	return s.write - s.read
}

// Len returns the number of bytes written so far.
func (s *Stream) Len() int {
	return s.write
}

// Bytes returns the unread part of the stream. The slice aliases the stream.
func (s *Stream) Bytes() []byte {
	return s.data[s.read:s.write]
}

func (s *Stream) grow(n int) []byte {
	need := s.write + n
	if need > cap(s.data) {
		grown := make([]byte, need, 2*need)
		copy(grown, s.data[:s.write])
		s.data = grown
	} else {
		s.data = s.data[:need]
	}

	out := s.data[s.write : s.write+n]
	s.write += n
	return out
}

func (s *Stream) take(n int) []byte {
	if n < 0 || s.read+n > s.write {
		panic(&OverrunError{
			Offset:    s.read,
			Requested: n,
			Available: s.write - s.read,
		})
	}

	out := s.data[s.read : s.read+n]
	s.read += n
	return out
}

func (s *Stream) WriteUint8(v uint8) {
	s.grow(1)[0] = v
}

func (s *Stream) WriteUint16(v uint16) {
	Order.PutUint16(s.grow(2), v)
}

func (s *Stream) WriteUint32(v uint32) {
	Order.PutUint32(s.grow(4), v)
}

func (s *Stream) WriteFloat32(v float32) {
	Order.PutUint32(s.grow(4), math.Float32bits(v))
}

func (s *Stream) WriteBytes(b []byte) {
	copy(s.grow(len(b)), b)
}

// Write appends each record verbatim in wire order. Records must be
// fixed-size values (numbers, arrays or structs made of them).
func (s *Stream) Write(records ...any) {
	for _, record := range records {
		switch v := record.(type) {
		case uint8:
			s.WriteUint8(v)
		case uint16:
			s.WriteUint16(v)
		case uint32:
			s.WriteUint32(v)
		case float32:
			s.WriteFloat32(v)
		case []byte:
			s.WriteBytes(v)
		default:
			size := binary.Size(v)
			if size < 0 {
				panic(fmt.Sprintf("bitstream: %T is not a fixed-size record", v))
			}

			var buffer bytes.Buffer
			buffer.Grow(size)
			if err := binary.Write(&buffer, Order, v); err != nil {
				panic(fmt.Sprintf("bitstream: could not write %T: %v", v, err))
			}
			s.WriteBytes(buffer.Bytes())
		}
	}
}

func (s *Stream) ReadUint8() uint8 {
	return s.take(1)[0]
}

func (s *Stream) ReadUint16() uint16 {
	return Order.Uint16(s.take(2))
}

func (s *Stream) ReadUint32() uint32 {
	return Order.Uint32(s.take(4))
}

func (s *Stream) ReadFloat32() float32 {
	return math.Float32frombits(Order.Uint32(s.take(4)))
}

// ReadBytes copies the next n bytes out of the stream.
func (s *Stream) ReadBytes(n int) []byte {
	out := make([]byte, n)
	copy(out, s.take(n))
	return out
}

// Read fills each pointer with the next record in wire order.
func (s *Stream) Read(outs ...any) {
	for _, out := range outs {
		switch v := out.(type) {
		case *uint8:
			*v = s.ReadUint8()
		case *uint16:
			*v = s.ReadUint16()
		case *uint32:
			*v = s.ReadUint32()
		case *float32:
			*v = s.ReadFloat32()
		default:
			size := binary.Size(v)
			if size < 0 {
				panic(fmt.Sprintf("bitstream: %T is not a fixed-size record", v))
			}

			if err := binary.Read(bytes.NewReader(s.take(size)), Order, v); err != nil {
				panic(fmt.Sprintf("bitstream: could not read %T: %v", v, err))
			}
		}
	}
}

// Skip advances the read cursor by n bytes without copying.
func (s *Stream) Skip(n int) {
	s.take(n)
}

// Peek returns the next unread byte without consuming it.
func (s *Stream) Peek() (byte, bool) {
	if s.read >= s.write {
		return 0, false
	}
	return s.data[s.read], true
}
