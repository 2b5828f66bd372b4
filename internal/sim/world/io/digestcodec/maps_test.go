package digestcodec

import (
	"bytes"
	"testing"
)

func TestSortedMapIgnoresOrderAndZeros(t *testing.T) {
	var a, b bytes.Buffer
	var tmp [8]byte
	WriteSortedNonZeroIntMap(&a, &tmp, map[string]int{"b": 2, "a": 1, "z": 0})
	WriteSortedNonZeroIntMap(&b, &tmp, map[string]int{"a": 1, "b": 2})
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("encodings differ")
	}
}

func TestStringsAreLengthPrefixed(t *testing.T) {
	var a, b bytes.Buffer
	var tmp [8]byte
	WriteString(&a, &tmp, "ab")
	WriteString(&a, &tmp, "c")
	WriteString(&b, &tmp, "a")
	WriteString(&b, &tmp, "bc")
	if bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("adjacent strings collided")
	}
}
