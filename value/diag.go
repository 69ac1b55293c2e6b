package value

import (
	"encoding/hex"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// RefTag is the tag number scalar references are written with.
const RefTag = 22098

// String returns v in CBOR diagnostic notation (RFC 8949 section 8).
// Containers are printed at every place they appear; a container that contains itself prints as <cycle>.
func (v Value) String() string {
	var sb strings.Builder
	writeDiag(&sb, v, make(map[interface{}]bool))
	return sb.String()
}

func writeDiag(sb *strings.Builder, v Value, open map[interface{}]bool) {
	switch v.kind {
	case Invalid:
		sb.WriteString("<invalid>")
	case NullKind:
		sb.WriteString("null")
	case BoolKind:
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case UintKind:
		sb.WriteString(strconv.FormatUint(v.n, 10))
	case NegIntKind:
		if v.n < math.MaxInt64 {
			sb.WriteString(strconv.FormatInt(-1-int64(v.n), 10))
			break
		}
		n := new(big.Int).SetUint64(v.n)
		sb.WriteString(n.Neg(n.Add(n, big.NewInt(1))).String())
	case FloatKind:
		sb.WriteString(formatFloat(v.Float()))
	case BytesKind:
		sb.WriteString("h'")
		sb.WriteString(hex.EncodeToString([]byte(v.s)))
		sb.WriteByte('\'')
	case TextKind:
		sb.WriteString(strconv.Quote(v.s))
	case TagKind:
		sb.WriteString(strconv.FormatUint(v.n, 10))
		sb.WriteByte('(')
		writeDiag(sb, v.Tagged(), open)
		sb.WriteByte(')')
	case SharedRefKind:
		sb.WriteString("29(")
		sb.WriteString(strconv.FormatUint(v.n, 10))
		sb.WriteByte(')')
	case ArrayKind, MapKind, RefKind:
		if open[v.p] {
			sb.WriteString("<cycle>")
			return
		}
		open[v.p] = true
		defer delete(open, v.p)

		switch v.kind {
		case ArrayKind:
			sb.WriteByte('[')
			for i, item := range v.Array().Items {
				if i > 0 {
					sb.WriteString(", ")
				}
				writeDiag(sb, item, open)
			}
			sb.WriteByte(']')
		case MapKind:
			sb.WriteByte('{')
			for i, p := range v.Map().Pairs {
				if i > 0 {
					sb.WriteString(", ")
				}
				writeDiag(sb, p.Key, open)
				sb.WriteString(": ")
				writeDiag(sb, p.Value, open)
			}
			sb.WriteByte('}')
		case RefKind:
			sb.WriteString(strconv.Itoa(RefTag))
			sb.WriteByte('(')
			writeDiag(sb, v.Ref().Value, open)
			sb.WriteByte(')')
		}
	default:
		sb.WriteString(v.kind.String())
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
