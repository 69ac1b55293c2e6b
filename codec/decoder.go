package codec

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/stewi1014/cborfree/encio"
	"github.com/stewi1014/cborfree/value"
)

// Decode decodes the single item held in data.
//
// If data ends early the error is an *encio.IncompleteError matching encio.ErrTruncated.
// Bytes after the item are ErrMalformed, unless config.SequenceMode is set, in which case only the first item is decoded
// and running out of input matches encio.ErrIncomplete instead.
func Decode(data []byte, config *Config) (value.Value, error) {
	d := NewDecoder(data, config)
	v, err := d.Next()
	if err == io.EOF {
		err = &encio.IncompleteError{Need: 1}
	}
	if err != nil {
		return value.Value{}, d.finish(err)
	}

	if d.SequenceMode {
		return v, nil
	}
	if rest := len(d.Buffered()); rest > 0 {
		return value.Value{}, encio.Errorf(encio.ErrMalformed, "%v bytes after the end of the item", rest)
	}
	return v, nil
}

// DecodeAll decodes every item in data.
func DecodeAll(data []byte, config *Config) ([]value.Value, error) {
	d := NewDecoder(data, config)
	var items []value.Value
	for {
		v, err := d.Next()
		switch {
		case err == io.EOF:
			return items, nil
		case err != nil:
			return nil, d.finish(err)
		}
		items = append(items, v)
	}
}

// NewDecoder returns a Decoder reading items from data.
// A bad config is reported by the first call to Next.
func NewDecoder(data []byte, config *Config) *Decoder {
	d := &Decoder{data: data}
	d.Config, d.err = config.copyAndFill()
	if d.err == nil && d.PreserveReferences {
		d.refs = new(referencer)
	}
	return d
}

// Decoder reads consecutive items from a buffer that may grow between calls.
//
// When the buffer ends part way through an item, Next returns an *encio.IncompleteError
// saying how many more bytes are needed, and leaves the cursor at the start of that item.
// Append to the buffer, call Renew, and call Next again.
//
// A Decoder must not be used concurrently.
type Decoder struct {
	*Config
	err error

	data []byte
	pos  int

	depth        int
	incompleteBy int

	// refs is nil unless references are preserved.
	refs *referencer

	scratch [value.ScratchSize]byte
}

// Next decodes the next item. It returns io.EOF when the buffer ends cleanly between items.
func (d *Decoder) Next() (value.Value, error) {
	if d.err != nil {
		return value.Value{}, d.err
	}
	if d.pos >= len(d.data) {
		d.incompleteBy = 0
		return value.Value{}, io.EOF
	}

	start := d.pos
	d.depth = 0
	v, err := d.decode(false)
	if d.refs != nil {
		d.refs.reset()
	}

	if err != nil {
		d.pos = start
		var incomplete *encio.IncompleteError
		if errors.As(err, &incomplete) {
			d.incompleteBy = incomplete.Need
		}
		return value.Value{}, err
	}

	d.incompleteBy = 0
	return v, nil
}

// IncompleteBy returns how many more bytes the last call to Next needed, or 0 if it did not run out.
func (d *Decoder) IncompleteBy() int {
	return d.incompleteBy
}

// Renew replaces the buffer with data, normally the old buffer with more appended, and moves the cursor to its start.
func (d *Decoder) Renew(data []byte) {
	d.data = data
	d.pos = 0
}

// Advance drops the bytes of the items already decoded, keeping the remainder.
func (d *Decoder) Advance() {
	d.data = d.data[d.pos:]
	d.pos = 0
}

// Buffered returns the bytes not yet decoded. The slice aliases the buffer.
func (d *Decoder) Buffered() []byte {
	return d.data[d.pos:]
}

// finish marks an incomplete error final unless the decoder is reading a sequence.
func (d *Decoder) finish(err error) error {
	var incomplete *encio.IncompleteError
	if d.Config != nil && !d.SequenceMode && errors.As(err, &incomplete) {
		return &encio.IncompleteError{Need: incomplete.Need, Final: true}
	}
	return err
}

// need returns an *encio.IncompleteError if fewer than n bytes remain.
func (d *Decoder) need(n int) error {
	if missing := d.pos + n - len(d.data); missing > 0 {
		return &encio.IncompleteError{Need: missing}
	}
	return nil
}

func (d *Decoder) readHead() (encio.Head, error) {
	h, need, err := encio.ParseHead(d.data[d.pos:])
	if err != nil {
		return h, err
	}
	if need > 0 {
		return h, &encio.IncompleteError{Need: need}
	}
	d.pos += h.Size
	return h, nil
}

// atBreak consumes a break byte if one is next.
func (d *Decoder) atBreak() (bool, error) {
	if err := d.need(1); err != nil {
		return false, err
	}
	if d.data[d.pos] == encio.Break {
		d.pos++
		return true, nil
	}
	return false, nil
}

// length checks a definite length or count read from the input before it is used.
func (d *Decoder) length(h encio.Head) (int, error) {
	if h.Arg > encio.TooBig {
		return 0, encio.Errorf(encio.ErrMalformed, "%v is too big", h)
	}
	return int(h.Arg), nil
}

// decode decodes one item. If share is set the item is registered as shareable,
// containers before their contents are decoded.
func (d *Decoder) decode(share bool) (value.Value, error) {
	d.depth++
	if d.depth > d.MaxDepth {
		return value.Value{}, encio.Errorf(encio.ErrRecursion, "nesting deeper than %v", d.MaxDepth)
	}

	h, err := d.readHead()
	if err != nil {
		return value.Value{}, err
	}

	var v value.Value
	switch h.Major {
	case encio.MajorUint, encio.MajorNegInt:
		if h.Indefinite() {
			return value.Value{}, encio.Errorf(encio.ErrMalformed, "indefinite length integer")
		}
		if h.Major == encio.MajorUint {
			v = value.Uint(h.Arg)
		} else {
			v = value.NegInt(h.Arg)
		}

	case encio.MajorBytes:
		s, err := d.readString(h)
		if err != nil {
			return value.Value{}, err
		}
		v = value.BytesString(s)

	case encio.MajorText:
		s, err := d.readString(h)
		if err != nil {
			return value.Value{}, err
		}
		if !d.NaiveUTF8 && !utf8.ValidString(s) {
			return value.Value{}, encio.Errorf(encio.ErrMalformed, "text string %q is not valid UTF-8", s)
		}
		v = value.Text(s)

	case encio.MajorArray:
		v, err = d.decodeArray(h, share)
		share = false

	case encio.MajorMap:
		v, err = d.decodeMap(h, share)
		share = false

	case encio.MajorTag:
		v, err = d.decodeTag(h, share)
		share = false

	default:
		v, err = d.decodeSimple(h)
	}
	if err != nil {
		return value.Value{}, err
	}

	if share {
		d.refs.add(v)
	}
	d.depth--
	return v, nil
}

// readString reads the payload of a byte or text string, joining the chunks of an indefinite length string.
func (d *Decoder) readString(h encio.Head) (string, error) {
	if h.Indefinite() {
		var sb strings.Builder
		for {
			end, err := d.atBreak()
			if err != nil {
				return "", err
			}
			if end {
				return sb.String(), nil
			}

			chunk, err := d.readHead()
			if err != nil {
				return "", err
			}
			if chunk.Major != h.Major || chunk.Indefinite() {
				return "", encio.Errorf(encio.ErrMalformed, "%v in indefinite length string of major %v", chunk, h.Major)
			}
			s, err := d.readString(chunk)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		}
	}

	n, err := d.length(h)
	if err != nil {
		return "", err
	}
	if err := d.need(n); err != nil {
		return "", err
	}
	s := string(d.data[d.pos : d.pos+n])
	d.pos += n
	return s, nil
}

// capacity returns a preallocation size for count items, bounded by the bytes left.
func (d *Decoder) capacity(count int) int {
	if rest := len(d.data) - d.pos; count > rest {
		return rest
	}
	return count
}

func (d *Decoder) decodeArray(h encio.Head, share bool) (value.Value, error) {
	a := new(value.Array)
	v := value.FromArray(a)
	if share {
		d.refs.add(v)
	}

	if h.Indefinite() {
		for {
			end, err := d.atBreak()
			if err != nil {
				return value.Value{}, err
			}
			if end {
				break
			}
			item, err := d.decode(false)
			if err != nil {
				return value.Value{}, err
			}
			a.Append(item)
		}
		return v, nil
	}

	count, err := d.length(h)
	if err != nil {
		return value.Value{}, err
	}
	a.Items = make([]value.Value, 0, d.capacity(count))
	for i := 0; i < count; i++ {
		item, err := d.decode(false)
		if err != nil {
			return value.Value{}, err
		}
		a.Append(item)
	}
	return v, nil
}

func (d *Decoder) decodeMap(h encio.Head, share bool) (value.Value, error) {
	m := new(value.Map)
	v := value.FromMap(m)
	if share {
		d.refs.add(v)
	}

	pair := func() error {
		key, err := d.decode(false)
		if err != nil {
			return err
		}
		if d.StringKeys {
			key = d.stringKey(key)
		}
		val, err := d.decode(false)
		if err != nil {
			return err
		}
		m.Add(key, val)
		return nil
	}

	if h.Indefinite() {
		for {
			end, err := d.atBreak()
			if err != nil {
				return value.Value{}, err
			}
			if end {
				break
			}
			if err := pair(); err != nil {
				return value.Value{}, err
			}
		}
		return v, nil
	}

	count, err := d.length(h)
	if err != nil {
		return value.Value{}, err
	}
	m.Pairs = make([]value.Pair, 0, d.capacity(count))
	for i := 0; i < count; i++ {
		if err := pair(); err != nil {
			return value.Value{}, err
		}
	}
	return v, nil
}

// stringKey writes integer keys in decimal as text keys. Other keys are returned as they are.
func (d *Decoder) stringKey(key value.Value) value.Value {
	switch key.Kind() {
	case value.UintKind:
		return value.Text(string(strconv.AppendUint(d.scratch[:0], key.Uint(), 10)))
	case value.NegIntKind:
		// -1-n is written as '-' followed by n+1, which only overflows for the smallest key.
		n := key.Uint()
		if n == math.MaxUint64 {
			return value.Text("-18446744073709551616")
		}
		return value.Text(string(strconv.AppendUint(append(d.scratch[:0], '-'), n+1, 10)))
	}
	return key
}

// decodeTag decodes the content of a tag. Registration as shareable is done here, not by the caller.
// Tag 22098 becomes a Ref only when the config could write that Ref again.
func (d *Decoder) decodeTag(h encio.Head, share bool) (value.Value, error) {
	if h.Indefinite() {
		return value.Value{}, encio.Errorf(encio.ErrMalformed, "indefinite length tag")
	}

	var (
		v   value.Value
		err error
	)
	switch {
	case h.Arg == TagShareable && d.PreserveReferences:
		if v, err = d.decode(true); err != nil {
			return value.Value{}, err
		}
		// registered by the inner decode
		share = false

	case h.Arg == TagSharedRef && d.PreserveReferences:
		index, err := d.readHead()
		if err != nil {
			return value.Value{}, err
		}
		if index.Major != encio.MajorUint || index.Indefinite() {
			return value.Value{}, encio.Errorf(encio.ErrMalformed, "shared reference index is %v, not an unsigned integer", index)
		}
		if v, err = d.refs.get(index.Arg); err != nil {
			return value.Value{}, err
		}

	case h.Arg == TagIndirection && d.EncodeScalarRefs:
		b := new(value.Box)
		v = value.FromBox(b)
		if share {
			d.refs.add(v)
			share = false
		}
		if b.Value, err = d.decode(false); err != nil {
			return value.Value{}, err
		}

	default:
		inner, err := d.decode(false)
		if err != nil {
			return value.Value{}, err
		}
		if handler, ok := d.TagHandlers[h.Arg]; ok {
			if v, err = handler(inner); err != nil {
				return value.Value{}, fmt.Errorf("tag %v handler: %w", h.Arg, err)
			}
		} else {
			v = value.Tag(h.Arg, inner)
		}
	}

	if share {
		d.refs.add(v)
	}
	return v, nil
}

func (d *Decoder) decodeSimple(h encio.Head) (value.Value, error) {
	switch h.Info {
	case encio.False & 0x1f:
		return value.Bool(false), nil
	case encio.True & 0x1f:
		return value.Bool(true), nil
	case encio.Null & 0x1f, encio.Undefined & 0x1f:
		return value.Null(), nil
	case encio.InfoUint16, encio.InfoUint32, encio.InfoUint64:
		return value.Float(decodeFloat(h.Info, h.Arg)), nil
	case encio.InfoIndefinite:
		return value.Value{}, encio.Errorf(encio.ErrMalformed, "break outside of an indefinite length item")
	}
	return value.Value{}, encio.Errorf(encio.ErrMalformed, "unsupported simple value %v", h.Arg)
}
