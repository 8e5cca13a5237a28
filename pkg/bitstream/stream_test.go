package bitstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitives(t *testing.T) {
	s := New()
	s.WriteUint8(7)
	s.WriteUint16(0xBEEF)
	s.WriteUint32(0xDEADBEEF)
	s.WriteFloat32(-1.5)

	assert.Equal(t, 11, s.Len())
	assert.Equal(t, 11, s.Size())

	assert.Equal(t, uint8(7), s.ReadUint8())
	assert.Equal(t, uint16(0xBEEF), s.ReadUint16())
	assert.Equal(t, uint32(0xDEADBEEF), s.ReadUint32())
	assert.Equal(t, float32(-1.5), s.ReadFloat32())
	assert.Equal(t, 0, s.Size())
}

func TestLittleEndian(t *testing.T) {
	s := New()
	s.WriteUint16(0x0102)
	s.WriteUint32(0x03040506)

	assert.Equal(t, []byte{0x02, 0x01, 0x06, 0x05, 0x04, 0x03}, s.Bytes())
}

func TestRecords(t *testing.T) {
	type record struct {
		A uint8
		B uint16
		C float32
	}

	before := record{A: 1, B: 2, C: 3.25}

	s := New()
	s.Write(uint8(9), before)

	// no padding between fields
	assert.Equal(t, 1+1+2+4, s.Len())

	var tag uint8
	var after record
	s.Read(&tag, &after)
	assert.Equal(t, uint8(9), tag)
	assert.Equal(t, before, after)
}

func TestCursorsAreIndependent(t *testing.T) {
	s := New()
	s.WriteUint8(1)
	assert.Equal(t, uint8(1), s.ReadUint8())

	s.WriteUint8(2)
	s.WriteUint8(3)
	assert.Equal(t, 2, s.Size())
	assert.Equal(t, uint8(2), s.ReadUint8())
	assert.Equal(t, uint8(3), s.ReadUint8())
}

func TestGrowthKeepsData(t *testing.T) {
	s := New()
	for i := 0; i < 1000; i++ {
		s.WriteUint32(uint32(i))
	}

	for i := 0; i < 1000; i++ {
		require.Equal(t, uint32(i), s.ReadUint32())
	}
}

func TestFromBytesCopies(t *testing.T) {
	raw := []byte{1, 2, 3}
	s := FromBytes(raw)
	raw[0] = 9

	b, ok := s.Peek()
	assert.True(t, ok)
	assert.Equal(t, byte(1), b)

	s.Skip(1)
	assert.Equal(t, []byte{2, 3}, s.ReadBytes(2))

	_, ok = s.Peek()
	assert.False(t, ok)
}

func TestOverrunPanics(t *testing.T) {
	s := FromBytes([]byte{1})

	assert.PanicsWithError(t, "bitstream: read of 4 bytes at offset 0 overruns 1 available", func() {
		s.ReadUint32()
	})

	assert.Panics(t, func() {
		s.Skip(2)
	})

	var out uint16
	assert.Panics(t, func() {
		s.Read(&out)
	})
}
