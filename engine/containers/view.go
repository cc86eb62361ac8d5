package containers

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/spaghettifunk/stingray-assets/engine/core"
	"golang.org/x/exp/constraints"
)

const (
	SizeUint16  = 2
	SizeUint32  = 4
	SizeUint64  = 8
	SizeFloat32 = 4
)

// BufferView is a non-owning, bounds-checked window over bytes owned by someone else.
//
// The view never copies and never writes. The backing bytes must stay valid and unmodified
// for as long as the view, or anything decoded from it, is in use. Every derived view is
// checked against its immediate parent when it is created.
//
// All multi-byte reads are little-endian regardless of the host.
type BufferView struct {
	data []byte
	// base is the absolute offset of data[0] within the root view.
	base int
}

// NewBufferView wraps b. The caller keeps ownership of b.
func NewBufferView(b []byte) BufferView {
	return BufferView{data: b}
}

// Len returns the number of bytes in the view.
func (v BufferView) Len() int {
	return len(v.data)
}

// Base returns the absolute offset of the view within the root view it was derived from.
func (v BufferView) Base() int {
	return v.base
}

// Bytes exposes the viewed range. The slice aliases the backing buffer.
func (v BufferView) Bytes() []byte {
	return v.data
}

// Slice derives the sub-view [offset, offset+length).
func (v BufferView) Slice(field string, offset, length int) (BufferView, error) {
	if !v.contains(offset, length) {
		return BufferView{}, core.OutOfBounds(field, offset, length, len(v.data))
	}
	return BufferView{
		data: v.data[offset : offset+length : offset+length],
		base: v.base + offset,
	}, nil
}

// Tail derives the sub-view [offset, Len()).
func (v BufferView) Tail(field string, offset int) (BufferView, error) {
	if offset < 0 {
		return BufferView{}, core.OutOfBounds(field, offset, 0, len(v.data))
	}
	return v.Slice(field, offset, len(v.data)-offset)
}

// Array derives the view of count contiguous records of stride bytes starting at offset.
func (v BufferView) Array(field string, offset int, count uint32, stride int) (BufferView, error) {
	length := uint64(count) * uint64(stride)
	if length > uint64(len(v.data)) {
		return BufferView{}, core.OutOfBounds(field, offset, int(min(length, math.MaxInt32)), len(v.data))
	}
	return v.Slice(field, offset, int(length))
}

func (v BufferView) contains(offset, length int) bool {
	return offset >= 0 && length >= 0 && offset <= len(v.data) && length <= len(v.data)-offset
}

func (v BufferView) U16(field string, offset int) (uint16, error) {
	if !v.contains(offset, SizeUint16) {
		return 0, core.OutOfBounds(field, offset, SizeUint16, len(v.data))
	}
	return binary.LittleEndian.Uint16(v.data[offset:]), nil
}

func (v BufferView) U32(field string, offset int) (uint32, error) {
	if !v.contains(offset, SizeUint32) {
		return 0, core.OutOfBounds(field, offset, SizeUint32, len(v.data))
	}
	return binary.LittleEndian.Uint32(v.data[offset:]), nil
}

func (v BufferView) U64(field string, offset int) (uint64, error) {
	if !v.contains(offset, SizeUint64) {
		return 0, core.OutOfBounds(field, offset, SizeUint64, len(v.data))
	}
	return binary.LittleEndian.Uint64(v.data[offset:]), nil
}

func (v BufferView) F32(field string, offset int) (float32, error) {
	bits, err := v.U32(field, offset)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// U32At reads element i of a packed u32 array. The view must already be validated to hold
// the array, so a failing read means the caller passed a bad index.
func (v BufferView) U32At(i int) uint32 {
	return binary.LittleEndian.Uint32(v.data[i*SizeUint32:])
}

// U64At reads element i of a packed u64 array, see U32At.
func (v BufferView) U64At(i int) uint64 {
	return binary.LittleEndian.Uint64(v.data[i*SizeUint64:])
}

// ReadArray decodes every element of a validated packed array of unsigned integers.
// The element width is taken from T.
func ReadArray[T constraints.Unsigned](v BufferView) []T {
	var zero T
	width := int(unsafe.Sizeof(zero))
	out := make([]T, len(v.data)/width)
	for i := range out {
		switch width {
		case SizeUint16:
			out[i] = T(binary.LittleEndian.Uint16(v.data[i*width:]))
		case SizeUint32:
			out[i] = T(binary.LittleEndian.Uint32(v.data[i*width:]))
		case SizeUint64:
			out[i] = T(binary.LittleEndian.Uint64(v.data[i*width:]))
		default:
			out[i] = T(v.data[i])
		}
	}
	return out
}
