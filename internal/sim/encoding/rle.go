// Package encoding holds the wire form of voxel dumps.
//
// A dump is base64(uvarint sx, sy, sz, then (block_id, run_len) uvarint pairs) where the
// runs cover the box in x-fastest, then z, then y order.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"

	"voxeledit.ai/internal/sim/world/kernel/model"
)

// MaxVoxels bounds what DecodeVoxels will expand.
const MaxVoxels = 1 << 24

var ErrCorrupt = errors.New("corrupt voxel dump")

// EncodeRLE appends (block_id, run_len) pairs for ids to buf.
func EncodeRLE(buf *bytes.Buffer, ids []uint16) {
	var tmp [binary.MaxVarintLen64]byte
	for i := 0; i < len(ids); {
		b := ids[i]
		run := 1
		for j := i + 1; j < len(ids) && ids[j] == b; j++ {
			run++
		}
		n := binary.PutUvarint(tmp[:], uint64(b))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])
		i += run
	}
}

// DecodeRLE expands pairs from raw until want voxels are produced.
func DecodeRLE(raw []byte, want int) ([]uint16, error) {
	out := make([]uint16, 0, want)
	for i := 0; i < len(raw); {
		b, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("%w: bad varint at %d", ErrCorrupt, i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("%w: bad varint at %d", ErrCorrupt, i)
		}
		i += n
		if b > 0xFFFF {
			return nil, fmt.Errorf("%w: block id too large: %d", ErrCorrupt, b)
		}
		if run == 0 || run > uint64(want-len(out)) {
			return nil, fmt.Errorf("%w: run of %d overflows %d voxels", ErrCorrupt, run, want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint16(b))
		}
	}
	if len(out) != want {
		return nil, fmt.Errorf("%w: got %d voxels, want %d", ErrCorrupt, len(out), want)
	}
	return out, nil
}

// EncodeVoxels encodes a size.X*size.Y*size.Z box of block ids.
func EncodeVoxels(size model.Vec3i, ids []uint16) (string, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return "", fmt.Errorf("encode voxels: bad size %v", size)
	}
	if size.Volume() != len(ids) {
		return "", fmt.Errorf("encode voxels: size %v holds %d voxels, got %d", size, size.Volume(), len(ids))
	}
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte
	for _, v := range [3]int{size.X, size.Y, size.Z} {
		n := binary.PutUvarint(tmp[:], uint64(v))
		buf.Write(tmp[:n])
	}
	EncodeRLE(&buf, ids)
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func DecodeVoxels(b64 string) (model.Vec3i, []uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return model.Vec3i{}, nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var dims [3]int
	i := 0
	for k := range dims {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 || v == 0 || v > MaxVoxels {
			return model.Vec3i{}, nil, fmt.Errorf("%w: bad header", ErrCorrupt)
		}
		dims[k] = int(v)
		i += n
	}
	size := model.FromArray(dims)
	if dims[0]*dims[1] > MaxVoxels || size.Volume() > MaxVoxels {
		return model.Vec3i{}, nil, fmt.Errorf("%w: %v exceeds %d voxels", ErrCorrupt, size, MaxVoxels)
	}
	ids, err := DecodeRLE(raw[i:], size.Volume())
	if err != nil {
		return model.Vec3i{}, nil, err
	}
	return size, ids, nil
}
