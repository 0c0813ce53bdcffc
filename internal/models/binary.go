package models

import (
	"encoding/binary"
	"math"
)

func le32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

func putLE32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

func f32(b []byte, off int) float32 {
	return math.Float32frombits(le32(b, off))
}

func putF32(b []byte, off int, v float32) {
	putLE32(b, off, math.Float32bits(v))
}
