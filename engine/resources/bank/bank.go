// Package bank decodes Wwise sound banks as they are stored in the archive: a 16 byte
// engine header followed by the bank's own chunk stream. Audio payloads are located, never
// decoded. Like every decoder in this module it borrows the descriptor's bytes.
package bank

import (
	"fmt"

	"github.com/spaghettifunk/stingray-assets/engine/containers"
	"github.com/spaghettifunk/stingray-assets/engine/core"
	"github.com/spaghettifunk/stingray-assets/engine/resources"
)

// Extension is the file suffix used for extracted banks.
const Extension = "bnk"

const (
	// HeaderSize is the size of the engine header that precedes the bank data.
	HeaderSize = 16

	offDeclaredSize = 4
	offNameHash     = 8

	chunkHeaderSize = 8
	mediaEntrySize  = 12
)

// Well known chunk tags.
const (
	TagBankHeader = "BKHD"
	TagDataIndex  = "DIDX"
	TagData       = "DATA"
	TagHierarchy  = "HIRC"
)

// Header is the engine header of a bank. The first word is reserved and kept in Raw.
type Header struct {
	raw          containers.BufferView
	DeclaredSize uint32
	NameHash     core.Hash
}

func (h Header) Raw() []byte {
	return h.raw.Bytes()
}

// Chunk is one entry of the bank's chunk stream.
type Chunk struct {
	Tag string
	// Offset of the chunk header within the backing buffer.
	Offset  int
	view    containers.BufferView
	payload containers.BufferView
}

// Bytes returns the chunk including its 8 byte tag/size header.
func (c Chunk) Bytes() []byte {
	return c.view.Bytes()
}

func (c Chunk) Payload() []byte {
	return c.payload.Bytes()
}

// MediaEntry is one embedded sound listed in the data index.
type MediaEntry struct {
	ID uint32
	// Offset of the media within the backing buffer.
	Offset int
	Data   []byte
}

// Bank is a decoded sound bank. It is immutable once New returns.
type Bank struct {
	id     core.Hash
	view   containers.BufferView
	header Header
	data   containers.BufferView
	chunks []Chunk
	media  []MediaEntry

	version uint32
	bankID  uint32
	hasBKHD bool
}

// New decodes the bank held in desc.Data.
func New(desc resources.AssetDescriptor, cfg core.DecoderConfig) (*Bank, error) {
	view := containers.NewBufferView(desc.Data)
	raw, err := view.Slice("bank header", 0, HeaderSize)
	if err != nil {
		return nil, core.Malformed("bank header", "%d bytes is shorter than the %d byte header", view.Len(), HeaderSize)
	}

	h := Header{raw: raw}
	h.DeclaredSize, _ = raw.U32("bank size", offDeclaredSize)
	nameHash, _ := raw.U64("bank name", offNameHash)
	h.NameHash = core.Hash(nameHash)

	available := view.Len() - HeaderSize
	if uint64(h.DeclaredSize) > uint64(available) {
		return nil, core.Malformed("bank size", "declared %d bytes, only %d available", h.DeclaredSize, available)
	}
	data, err := view.Slice("bank data", HeaderSize, int(h.DeclaredSize))
	if err != nil {
		return nil, err
	}

	b := &Bank{id: desc.ID, view: view, header: h, data: data}
	if err := b.walkChunks(cfg.Limits); err != nil {
		return nil, fmt.Errorf("bank %s: %w", desc.ID, err)
	}
	if err := b.decodeBankHeader(); err != nil {
		return nil, fmt.Errorf("bank %s: %w", desc.ID, err)
	}
	if err := b.decodeMedia(cfg.Limits); err != nil {
		return nil, fmt.Errorf("bank %s: %w", desc.ID, err)
	}

	core.LogDebug("decoded bank %s: %d chunks %s, %d media", desc.ID, len(b.chunks), resources.SectionNames(b.Sections()[1:]), len(b.media))
	return b, nil
}

// walkChunks splits the data region into {tag, size, payload} chunks.
func (b *Bank) walkChunks(limits core.LimitsConfig) error {
	offset := 0
	for offset < b.data.Len() {
		if uint32(len(b.chunks)) >= limits.MaxChunks {
			return core.Malformed("bank chunks", "more than %d chunks", limits.MaxChunks)
		}
		head, err := b.data.Slice("chunk header", offset, chunkHeaderSize)
		if err != nil {
			return err
		}
		size, _ := head.U32("chunk size", 4)
		if uint64(size) > uint64(b.data.Len()-offset-chunkHeaderSize) {
			return core.OutOfBounds("chunk "+string(head.Bytes()[:4]), offset+chunkHeaderSize, int(min(uint64(size), uint64(1<<31-1))), b.data.Len())
		}
		whole, err := b.data.Slice("chunk", offset, chunkHeaderSize+int(size))
		if err != nil {
			return err
		}
		payload, _ := whole.Slice("chunk payload", chunkHeaderSize, int(size))

		b.chunks = append(b.chunks, Chunk{
			Tag:     string(head.Bytes()[:4]),
			Offset:  whole.Base(),
			view:    whole,
			payload: payload,
		})
		offset += chunkHeaderSize + int(size)
	}
	return nil
}

func (b *Bank) decodeBankHeader() error {
	c, ok := b.Chunk(TagBankHeader)
	if !ok {
		return nil
	}
	version, err := c.payload.U32("bank version", 0)
	if err != nil {
		return core.Malformed("bank header chunk", "payload of %d bytes is too short", c.payload.Len())
	}
	bankID, err := c.payload.U32("bank id", 4)
	if err != nil {
		return core.Malformed("bank header chunk", "payload of %d bytes is too short", c.payload.Len())
	}
	b.version, b.bankID, b.hasBKHD = version, bankID, true
	return nil
}

// decodeMedia resolves the data index entries against the DATA payload.
func (b *Bank) decodeMedia(limits core.LimitsConfig) error {
	index, ok := b.Chunk(TagDataIndex)
	if !ok {
		return nil
	}
	if index.payload.Len()%mediaEntrySize != 0 {
		return core.Malformed("data index", "%d bytes is not a multiple of %d", index.payload.Len(), mediaEntrySize)
	}
	count := uint32(index.payload.Len() / mediaEntrySize)
	if err := core.CheckCount("data index", count, limits.MaxMedia); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	data, ok := b.Chunk(TagData)
	if !ok {
		return core.Malformed("data index", "%d entries but no %s chunk", count, TagData)
	}

	b.media = make([]MediaEntry, count)
	for i := range b.media {
		base := i * mediaEntrySize
		id, _ := index.payload.U32("media id", base)
		offset, _ := index.payload.U32("media offset", base+4)
		size, _ := index.payload.U32("media size", base+8)
		m, err := data.payload.Slice("media", int(offset), int(size))
		if err != nil {
			return err
		}
		b.media[i] = MediaEntry{ID: id, Offset: m.Base(), Data: m.Bytes()}
	}
	return nil
}

func (b *Bank) ID() core.Hash {
	return b.id
}

func (b *Bank) Header() Header {
	return b.header
}

// Version returns the bank format version from the BKHD chunk, if there is one.
func (b *Bank) Version() (uint32, bool) {
	return b.version, b.hasBKHD
}

// BankID returns the Wwise bank id from the BKHD chunk, if there is one.
func (b *Bank) BankID() (uint32, bool) {
	return b.bankID, b.hasBKHD
}

// Chunks returns the chunks in stream order.
func (b *Bank) Chunks() []Chunk {
	return append([]Chunk(nil), b.chunks...)
}

// Chunk returns the first chunk tagged tag.
func (b *Bank) Chunk(tag string) (Chunk, bool) {
	for _, c := range b.chunks {
		if c.Tag == tag {
			return c, true
		}
	}
	return Chunk{}, false
}

// Media returns the embedded sounds listed in the data index, in index order.
func (b *Bank) Media() []MediaEntry {
	return append([]MediaEntry(nil), b.media...)
}

// Size returns the byte length of the backing data.
func (b *Bank) Size() int {
	return b.view.Len()
}

func (b *Bank) Extension() string {
	return Extension
}

// Sections returns the engine header followed by every chunk, in physical order.
func (b *Bank) Sections() []resources.Section {
	sections := make([]resources.Section, 0, len(b.chunks)+1)
	sections = append(sections, resources.Section{Name: "header", Offset: 0, Data: b.header.Raw()})
	for _, c := range b.chunks {
		sections = append(sections, resources.Section{Name: c.Tag, Offset: c.Offset, Data: c.Bytes()})
	}
	return sections
}

var _ resources.Asset = (*Bank)(nil)
