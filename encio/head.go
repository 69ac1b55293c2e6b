package encio

import (
	"encoding/binary"
	"fmt"
)

// Major types.
const (
	MajorUint   byte = 0
	MajorNegInt byte = 1
	MajorBytes  byte = 2
	MajorText   byte = 3
	MajorArray  byte = 4
	MajorMap    byte = 5
	MajorTag    byte = 6
	MajorSimple byte = 7
)

// Additional information (low five bits) values.
const (
	InfoUint8      byte = 24
	InfoUint16     byte = 25
	InfoUint32     byte = 26
	InfoUint64     byte = 27
	InfoIndefinite byte = 31
)

// Fixed single-byte items.
const (
	False     byte = 0xf4
	True      byte = 0xf5
	Null      byte = 0xf6
	Undefined byte = 0xf7
	Half      byte = 0xf9
	Single    byte = 0xfa
	Double    byte = 0xfb
	Break     byte = 0xff
)

// MaxHeadSize is the longest possible head; control byte plus eight argument bytes.
const MaxHeadSize = 9

// AppendHead appends the head for major type major with argument n, using the shortest length class.
func AppendHead(buff []byte, major byte, n uint64) []byte {
	major <<= 5
	switch {
	case n < uint64(InfoUint8):
		return append(buff, major|byte(n))
	case n <= 0xff:
		return append(buff, major|InfoUint8, byte(n))
	case n <= 0xffff:
		return binary.BigEndian.AppendUint16(append(buff, major|InfoUint16), uint16(n))
	case n <= 0xffffffff:
		return binary.BigEndian.AppendUint32(append(buff, major|InfoUint32), uint32(n))
	default:
		return binary.BigEndian.AppendUint64(append(buff, major|InfoUint64), n)
	}
}

// HeadSize returns the number of bytes AppendHead writes for argument n.
func HeadSize(n uint64) int {
	switch {
	case n < uint64(InfoUint8):
		return 1
	case n <= 0xff:
		return 2
	case n <= 0xffff:
		return 3
	case n <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// Head is a parsed item head.
type Head struct {
	Major byte
	Info  byte

	// Arg is the argument; the value, length, count or tag number. It is zero for indefinite heads.
	Arg uint64

	// Size is the number of bytes the head occupies.
	Size int
}

// Indefinite reports whether the head opens an indefinite-length item (or is a break, for major type 7).
func (h Head) Indefinite() bool {
	return h.Info == InfoIndefinite
}

// ParseHead parses the head at the start of buff.
// If buff is too short, need is the number of bytes missing and the Head is not valid.
// Reserved length classes (28, 29, 30) return ErrMalformed.
func ParseHead(buff []byte) (h Head, need int, err error) {
	if len(buff) == 0 {
		return h, 1, nil
	}

	h.Major = buff[0] >> 5
	h.Info = buff[0] & 0x1f

	var extra int
	switch {
	case h.Info < InfoUint8:
		h.Arg = uint64(h.Info)
		h.Size = 1
		return h, 0, nil
	case h.Info == InfoUint8:
		extra = 1
	case h.Info == InfoUint16:
		extra = 2
	case h.Info == InfoUint32:
		extra = 4
	case h.Info == InfoUint64:
		extra = 8
	case h.Info == InfoIndefinite:
		h.Size = 1
		return h, 0, nil
	default:
		return h, 0, Errorf(ErrMalformed, "reserved additional information %v in control byte %#02x", h.Info, buff[0])
	}

	if len(buff) < 1+extra {
		return h, 1 + extra - len(buff), nil
	}

	arg := buff[1 : 1+extra]
	switch extra {
	case 1:
		h.Arg = uint64(arg[0])
	case 2:
		h.Arg = uint64(binary.BigEndian.Uint16(arg))
	case 4:
		h.Arg = uint64(binary.BigEndian.Uint32(arg))
	case 8:
		h.Arg = binary.BigEndian.Uint64(arg)
	}
	h.Size = 1 + extra
	return h, 0, nil
}

// String returns a short description of the head, for error messages.
func (h Head) String() string {
	if h.Indefinite() {
		return fmt.Sprintf("major %v indefinite", h.Major)
	}
	return fmt.Sprintf("major %v argument %v", h.Major, h.Arg)
}
