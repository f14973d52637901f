package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/google/uuid"
	"github.com/viant/vecserve/vector"
)

const (
	// Magic prefixes every index file.
	Magic = "VSIX"
	// FormatVersion is the only header version this build reads and writes.
	FormatVersion uint16 = 1

	headerSize     = 36
	flagNormalized = 1 << 0
)

// ErrCorrupt is returned when index data is truncated, fails its checksum or
// carries an unknown header.
var ErrCorrupt = errors.New("index: corrupt index data")

// Header describes a persisted index.
type Header struct {
	Version    uint16
	Kind       Kind
	Metric     vector.Metric
	Normalized bool
	ArtifactID uuid.UUID
	Dim        int
	Count      int
}

// Encode serializes the header and vectors:
//
//	magic[4] version(u16) kind(u8) metric(u8) flags(u8) reserved[3]
//	artifact[16] dim(u32) n(u32) vectors(float32[n*dim]) crc32(u32)
//
// Tree-shaped indexes are rebuilt from the vectors on load, so one layout
// serves every kind.
func Encode(h Header, vectors [][]float32) ([]byte, error) {
	if !h.Kind.Valid() {
		return nil, fmt.Errorf("index: cannot encode kind %v", h.Kind)
	}
	if !h.Metric.Valid() {
		return nil, fmt.Errorf("index: cannot encode metric %q", h.Metric)
	}
	dim, err := CheckVectors(vectors)
	if err != nil {
		return nil, err
	}
	out := make([]byte, headerSize, headerSize+len(vectors)*dim*4+4)
	copy(out[0:4], Magic)
	binary.LittleEndian.PutUint16(out[4:6], FormatVersion)
	out[6] = uint8(h.Kind)
	out[7] = h.Metric.Code()
	if h.Normalized {
		out[8] = flagNormalized
	}
	copy(out[12:28], h.ArtifactID[:])
	binary.LittleEndian.PutUint32(out[28:32], uint32(dim))
	binary.LittleEndian.PutUint32(out[32:36], uint32(len(vectors)))
	for _, v := range vectors {
		b, err := vector.EncodeEmbedding(v)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	sum := make([]byte, 4)
	binary.LittleEndian.PutUint32(sum, crc32.ChecksumIEEE(out))
	return append(out, sum...), nil
}

// DecodeHeader parses and validates the fixed header only.
func DecodeHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < headerSize+4 {
		return h, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(data))
	}
	if string(data[0:4]) != Magic {
		return h, fmt.Errorf("%w: bad magic %q", ErrCorrupt, data[0:4])
	}
	h.Version = binary.LittleEndian.Uint16(data[4:6])
	if h.Version != FormatVersion {
		return h, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, h.Version)
	}
	h.Kind = Kind(data[6])
	if !h.Kind.Valid() {
		return h, fmt.Errorf("%w: unknown index kind %d", ErrCorrupt, data[6])
	}
	metric, ok := vector.MetricFromCode(data[7])
	if !ok {
		return h, fmt.Errorf("%w: unknown metric %d", ErrCorrupt, data[7])
	}
	h.Metric = metric
	h.Normalized = data[8]&flagNormalized != 0
	copy(h.ArtifactID[:], data[12:28])
	h.Dim = int(binary.LittleEndian.Uint32(data[28:32]))
	h.Count = int(binary.LittleEndian.Uint32(data[32:36]))
	if h.Count > 0 && h.Dim == 0 {
		return h, fmt.Errorf("%w: %d vectors with zero dimension", ErrCorrupt, h.Count)
	}
	return h, nil
}

// Decode parses the header, verifies the checksum and returns the vectors.
func Decode(data []byte) (Header, [][]float32, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return h, nil, err
	}
	// bound the declared shape by the payload before multiplying
	payload := uint64(len(data)) - headerSize - 4
	if h.Dim > 0 && uint64(h.Count) > payload/(uint64(h.Dim)*4) {
		return h, nil, fmt.Errorf("%w: header declares %d vectors of dim %d in %d bytes", ErrCorrupt, h.Count, h.Dim, payload)
	}
	want := uint64(headerSize) + uint64(h.Count)*uint64(h.Dim)*4 + 4
	if uint64(len(data)) != want {
		return h, nil, fmt.Errorf("%w: size %d, header declares %d", ErrCorrupt, len(data), want)
	}
	body := data[:len(data)-4]
	if got, exp := crc32.ChecksumIEEE(body), binary.LittleEndian.Uint32(data[len(data)-4:]); got != exp {
		return h, nil, fmt.Errorf("%w: checksum %08x, want %08x", ErrCorrupt, got, exp)
	}
	stride := h.Dim * 4
	vectors := make([][]float32, h.Count)
	off := headerSize
	for i := range vectors {
		v, err := vector.DecodeEmbedding(body[off : off+stride])
		if err != nil {
			return h, nil, fmt.Errorf("%w: vector %d: %v", ErrCorrupt, i, err)
		}
		vectors[i] = v
		off += stride
	}
	return h, vectors, nil
}
