// Package digestcodec writes state digest payloads in a fixed byte layout.
package digestcodec

import (
	"encoding/binary"
	"sort"
)

type Writer interface {
	Write(p []byte) (n int, err error)
}

func WriteU64(w Writer, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.Write(tmp[:])
}

func WriteInt(w Writer, tmp *[8]byte, v int) { WriteU64(w, tmp, uint64(int64(v))) }

// WriteString length-prefixes s so adjacent strings cannot run together.
func WriteString(w Writer, tmp *[8]byte, s string) {
	WriteU64(w, tmp, uint64(len(s)))
	w.Write([]byte(s))
}

func WriteVec3(w Writer, tmp *[8]byte, v [3]int) {
	for _, c := range v {
		WriteInt(w, tmp, c)
	}
}

func BoolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// WriteSortedNonZeroIntMap emits a deterministic key-sorted map encoding,
// skipping zero values to keep digest payload stable and compact.
func WriteSortedNonZeroIntMap(w Writer, tmp *[8]byte, m map[string]int) {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		WriteString(w, tmp, k)
		WriteInt(w, tmp, m[k])
	}
}
