package device

import (
	"encoding/binary"
	"math"
)

// Output buffers hold 4-wide vectors: float4 for single precision and
// double4 for double. Sample s of lane i lives at element s*Instances+i so
// that neighbouring lanes write neighbouring elements.
const VectorWidth = 4

// Slot is the element index of (lane, sample) in a randoms buffer.
func (l Launch) Slot(lane, sample int) int {
	return sample*l.Instances + lane
}

// PutVector stores v at element slot of buf.
func PutVector(buf []byte, slot int, double bool, v [VectorWidth]float64) {
	if double {
		base := slot * VectorWidth * 8
		for c, f := range v {
			binary.LittleEndian.PutUint64(buf[base+c*8:], math.Float64bits(f))
		}
		return
	}
	base := slot * VectorWidth * 4
	for c, f := range v {
		binary.LittleEndian.PutUint32(buf[base+c*4:], math.Float32bits(float32(f)))
	}
}

// Vector reads element slot of buf.
func Vector(buf []byte, slot int, double bool) [VectorWidth]float64 {
	var v [VectorWidth]float64
	if double {
		base := slot * VectorWidth * 8
		for c := range v {
			v[c] = math.Float64frombits(binary.LittleEndian.Uint64(buf[base+c*8:]))
		}
		return v
	}
	base := slot * VectorWidth * 4
	for c := range v {
		v[c] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[base+c*4:])))
	}
	return v
}

// Flatten reads the first count elements of buf as a flat slice of
// count*VectorWidth values.
func Flatten(buf []byte, count int, double bool) []float64 {
	out := make([]float64, 0, count*VectorWidth)
	for slot := range count {
		v := Vector(buf, slot, double)
		out = append(out, v[:]...)
	}
	return out
}
