package codec

import (
	"encoding/binary"
	"math"

	"github.com/x448/float16"

	"github.com/stewi1014/cborfree/encio"
)

// NaN and the infinities are always written as half-precision floats.
var (
	infShort    = [3]byte{encio.Half, 0x7c, 0x00}
	nanShort    = [3]byte{encio.Half, 0x7e, 0x00}
	negInfShort = [3]byte{encio.Half, 0xfc, 0x00}
)

// appendFloat appends f; specials as three bytes, everything else as a double.
func appendFloat(buff []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(buff, nanShort[:]...)
	case math.IsInf(f, 1):
		return append(buff, infShort[:]...)
	case math.IsInf(f, -1):
		return append(buff, negInfShort[:]...)
	}
	return binary.BigEndian.AppendUint64(append(buff, encio.Double), math.Float64bits(f))
}

// decodeFloat converts the argument of a float head to a float64.
// info is the head's additional information; 25, 26 or 27.
func decodeFloat(info byte, bits uint64) float64 {
	switch info {
	case encio.InfoUint16:
		return float64(float16.Frombits(uint16(bits)).Float32())
	case encio.InfoUint32:
		return float64(math.Float32frombits(uint32(bits)))
	default:
		return math.Float64frombits(bits)
	}
}
