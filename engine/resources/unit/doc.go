/*
Package unit decodes engine "unit" assets: a fixed header of offsets followed by a node
hierarchy, a material table, a mesh table and a vertex datatype table.

Decoding is zero-copy. Every table keeps BufferViews into the descriptor's bytes, so those
bytes must outlive the Unit and must not change while it is in use. All tables are decoded
eagerly by New; once it returns, a Unit is immutable and safe for concurrent readers.

Layout

Every integer is little-endian. Offsets in the unit header are relative to the start of the
unit. Mesh offsets are relative to the mesh table; material and group offsets inside a mesh
are relative to that mesh. Each level is bounds-checked against the view it is relative to.

Fields whose meaning is unknown are kept verbatim and only exposed as raw bytes.

Lookups keyed by name hashes follow last-write-wins: when two entries share a key, the later
entry is the one the map returns, while the ordered accessors still return both.
*/
package unit
