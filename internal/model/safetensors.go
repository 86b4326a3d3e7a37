package model

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"
)

// tensorMeta is one entry of a safetensors header.
type tensorMeta struct {
	Dtype       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets [2]int `json:"data_offsets"`
}

// loadNetwork reads learned weights for the built-in architecture from a
// safetensors file. Every parameter must be present as F32 with the exact
// shape; extra tensors are ignored.
func loadNetwork(path string) (*network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("safetensors: %w", err)
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("safetensors: file too small: %d bytes", len(data))
	}

	// 8-byte LE header length, then a JSON header, then raw tensor bytes.
	headerLen := binary.LittleEndian.Uint64(data[:8])
	if uint64(len(data))-8 < headerLen {
		return nil, fmt.Errorf("safetensors: header length %d exceeds file size", headerLen)
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(data[8:8+headerLen], &header); err != nil {
		return nil, fmt.Errorf("safetensors: failed to parse header: %w", err)
	}
	body := data[8+headerLen:]

	n := newNetwork()
	n.kind = "safetensors"
	for _, p := range n.params() {
		raw, ok := header[p.name]
		if !ok {
			return nil, fmt.Errorf("safetensors: tensor %q not found", p.name)
		}
		var meta tensorMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("safetensors: bad metadata for %q: %w", p.name, err)
		}
		if meta.Dtype != "F32" {
			return nil, fmt.Errorf("safetensors: %q has dtype %s, want F32", p.name, meta.Dtype)
		}
		if !slices.Equal(meta.Shape, p.shape) {
			return nil, fmt.Errorf("safetensors: %q has shape %v, want %v", p.name, meta.Shape, p.shape)
		}

		start, end := meta.DataOffsets[0], meta.DataOffsets[1]
		if start < 0 || end > len(body) || end-start != len(p.data)*4 {
			return nil, fmt.Errorf("safetensors: %q data range [%d:%d] invalid for %d floats",
				p.name, start, end, len(p.data))
		}
		for i := range p.data {
			bits := binary.LittleEndian.Uint32(body[start+i*4:])
			p.data[i] = math.Float32frombits(bits)
		}
	}
	return n, nil
}
