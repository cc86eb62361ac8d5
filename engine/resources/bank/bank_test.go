package bank

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/spaghettifunk/stingray-assets/engine/core"
	"github.com/spaghettifunk/stingray-assets/engine/resources"
	"github.com/spaghettifunk/stingray-assets/engine/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(data []byte) resources.AssetDescriptor {
	return resources.AssetDescriptor{Type: resources.ResourceTypeWwiseBank, ID: 0xFEEDFACECAFEBEEF, Data: data}
}

func sampleBank() testutil.Bank {
	return testutil.Bank{
		Reserved: 0xDEADBEEF,
		NameHash: 0x1122334455667788,
		Chunks: []testutil.Chunk{
			testutil.BankHeaderChunk(134, 0x42),
			testutil.MediaIndexChunk([3]uint32{0x100, 0, 4}, [3]uint32{0x200, 4, 3}),
			{Tag: TagData, Payload: []byte{1, 2, 3, 4, 5, 6, 7}},
			{Tag: TagHierarchy, Payload: []byte{0, 0, 0, 0}},
		},
	}
}

func TestNewBank(t *testing.T) {
	data := sampleBank().Build()

	b, err := New(descriptor(data), core.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, core.Hash(0xFEEDFACECAFEBEEF), b.ID())
	assert.Equal(t, len(data), b.Size())
	assert.Equal(t, Extension, b.Extension())

	h := b.Header()
	assert.Equal(t, uint32(len(data)-HeaderSize), h.DeclaredSize)
	assert.Equal(t, core.Hash(0x1122334455667788), h.NameHash)
	assert.Equal(t, uint32(0xDEADBEEF), binary.LittleEndian.Uint32(h.Raw()))

	version, ok := b.Version()
	require.True(t, ok)
	assert.Equal(t, uint32(134), version)
	id, ok := b.BankID()
	require.True(t, ok)
	assert.Equal(t, uint32(0x42), id)

	chunks := b.Chunks()
	require.Len(t, chunks, 4)
	assert.Equal(t, TagBankHeader, chunks[0].Tag)
	assert.Equal(t, HeaderSize, chunks[0].Offset)
	assert.Equal(t, TagHierarchy, chunks[3].Tag)
	assert.Len(t, chunks[0].Bytes(), 8+12)
	assert.Len(t, chunks[0].Payload(), 12)

	_, ok = b.Chunk("STID")
	assert.False(t, ok)

	media := b.Media()
	require.Len(t, media, 2)
	assert.Equal(t, uint32(0x100), media[0].ID)
	assert.Equal(t, []byte{1, 2, 3, 4}, media[0].Data)
	assert.Equal(t, []byte{5, 6, 7}, media[1].Data)

	dataChunk, ok := b.Chunk(TagData)
	require.True(t, ok)
	assert.Equal(t, dataChunk.Offset+8+4, media[1].Offset)
	assert.Equal(t, data[media[1].Offset:media[1].Offset+3], media[1].Data)
}

func TestBankSections(t *testing.T) {
	data := sampleBank().Build()
	b, err := New(descriptor(data), core.DefaultConfig())
	require.NoError(t, err)

	sections := b.Sections()
	assert.Equal(t, []string{"header", TagBankHeader, TagDataIndex, TagData, TagHierarchy}, names(sections))
	require.NoError(t, resources.ValidateSections(b.Size(), sections))

	// Sections tile the buffer when there are no trailing bytes.
	end := 0
	for _, s := range sections {
		assert.Equal(t, end, s.Offset)
		end = s.End()
	}
	assert.Equal(t, len(data), end)
}

func names(sections []resources.Section) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Name
	}
	return out
}

func TestBankTrailingBytes(t *testing.T) {
	bk := sampleBank()
	bk.Trailing = []byte{0xFF, 0xFF, 0xFF}
	data := bk.Build()

	b, err := New(descriptor(data), core.DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, b.Chunks(), 4)
	assert.Equal(t, len(data), b.Size())

	sections := b.Sections()
	assert.Equal(t, len(data)-3, sections[len(sections)-1].End())
}

func TestBankWithoutChunks(t *testing.T) {
	b, err := New(descriptor(testutil.Bank{}.Build()), core.DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, b.Chunks())
	assert.Empty(t, b.Media())
	_, ok := b.Version()
	assert.False(t, ok)
	assert.Len(t, b.Sections(), 1)
}

func TestBankShortHeader(t *testing.T) {
	_, err := New(descriptor(make([]byte, HeaderSize-1)), core.DefaultConfig())
	assert.ErrorIs(t, err, core.ErrMalformedHeader)
}

func TestBankDeclaredSizeTooLarge(t *testing.T) {
	bk := sampleBank()
	size := uint32(len(bk.Build())-HeaderSize) + 1
	bk.DeclaredSize = &size

	_, err := New(descriptor(bk.Build()), core.DefaultConfig())
	assert.ErrorIs(t, err, core.ErrMalformedHeader)
}

func TestBankChunkOverrun(t *testing.T) {
	tests := []struct {
		name string
		data func() []byte
	}{
		{
			name: "partial chunk header",
			data: func() []byte {
				bk := sampleBank()
				bk.Trailing = []byte{'B', 'K'}
				data := bk.Build()
				binary.LittleEndian.PutUint32(data[offDeclaredSize:], uint32(len(data)-HeaderSize))
				return data
			},
		},
		{
			name: "payload past the declared size",
			data: func() []byte {
				data := sampleBank().Build()
				// Grow the last chunk's size field.
				last := len(data) - 4 - 4
				binary.LittleEndian.PutUint32(data[last:], 5)
				return data
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(descriptor(tt.data()), core.DefaultConfig())
			assert.ErrorIs(t, err, core.ErrOutOfBounds)
		})
	}
}

func TestBankTruncated(t *testing.T) {
	data := sampleBank().Build()

	// Cutting the buffer while the declared size stays put is a header inconsistency.
	for cut := HeaderSize; cut < len(data); cut++ {
		_, err := New(descriptor(data[:cut]), core.DefaultConfig())
		require.ErrorIs(t, err, core.ErrMalformedHeader, "cut at %d", cut)
	}

	// Cutting both the buffer and the declared size either lands on a chunk boundary or
	// leaves a partial chunk.
	for cut := HeaderSize + 1; cut < len(data); cut++ {
		short := append([]byte(nil), data[:cut]...)
		binary.LittleEndian.PutUint32(short[offDeclaredSize:], uint32(cut-HeaderSize))
		_, err := New(descriptor(short), core.DefaultConfig())
		if err == nil {
			continue
		}
		assert.True(t, errors.Is(err, core.ErrOutOfBounds) || errors.Is(err, core.ErrMalformedHeader), "cut at %d: %v", cut, err)
	}
}

func TestBankMediaOutsideData(t *testing.T) {
	bk := sampleBank()
	bk.Chunks[1] = testutil.MediaIndexChunk([3]uint32{0x100, 4, 4})

	_, err := New(descriptor(bk.Build()), core.DefaultConfig())
	assert.ErrorIs(t, err, core.ErrOutOfBounds)
}

func TestBankMediaWithoutData(t *testing.T) {
	bk := sampleBank()
	bk.Chunks = bk.Chunks[:2]

	_, err := New(descriptor(bk.Build()), core.DefaultConfig())
	assert.ErrorIs(t, err, core.ErrMalformedHeader)
}

func TestBankMalformedIndex(t *testing.T) {
	bk := sampleBank()
	bk.Chunks[1] = testutil.Chunk{Tag: TagDataIndex, Payload: make([]byte, 13)}

	_, err := New(descriptor(bk.Build()), core.DefaultConfig())
	assert.ErrorIs(t, err, core.ErrMalformedHeader)
}

func TestBankShortHeaderChunk(t *testing.T) {
	bk := sampleBank()
	bk.Chunks[0] = testutil.Chunk{Tag: TagBankHeader, Payload: []byte{1, 0, 0, 0}}

	_, err := New(descriptor(bk.Build()), core.DefaultConfig())
	assert.ErrorIs(t, err, core.ErrMalformedHeader)
}

func TestBankLimits(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Limits.MaxChunks = 3
	_, err := New(descriptor(sampleBank().Build()), cfg)
	assert.ErrorIs(t, err, core.ErrMalformedHeader)

	cfg = core.DefaultConfig()
	cfg.Limits.MaxMedia = 1
	_, err = New(descriptor(sampleBank().Build()), cfg)
	assert.ErrorIs(t, err, core.ErrMalformedHeader)
}

func FuzzNewBank(f *testing.F) {
	f.Add(sampleBank().Build())
	f.Add(testutil.Bank{}.Build())
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		b, err := New(descriptor(data), core.DefaultConfig())
		if err != nil {
			if !errors.Is(err, core.ErrOutOfBounds) && !errors.Is(err, core.ErrMalformedHeader) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		require.NoError(t, resources.ValidateSections(b.Size(), b.Sections()))
		for _, m := range b.Media() {
			require.LessOrEqual(t, m.Offset+len(m.Data), b.Size())
		}
	})
}
