package cborfree

import (
	"errors"
	"io"
	"sync"

	"github.com/stewi1014/cborfree/codec"
	"github.com/stewi1014/cborfree/encio"
	"github.com/stewi1014/cborfree/value"
)

// NewSequenceDecoder returns an empty SequenceDecoder. config.SequenceMode is implied.
func NewSequenceDecoder(config *Config) *SequenceDecoder {
	var c Config
	if config != nil {
		c = *config
	}
	c.SequenceMode = true

	return &SequenceDecoder{
		d: codec.NewDecoder(nil, &c),
	}
}

// SequenceDecoder decodes a CBOR sequence that arrives in pieces.
// Give it bytes as they arrive, and Get items as they complete.
type SequenceDecoder struct {
	d *codec.Decoder
}

// Give appends data to the bytes waiting to be decoded. data is copied.
func (s *SequenceDecoder) Give(data []byte) {
	// Buffered is always a suffix of a buffer allocated here, never the caller's.
	s.d.Renew(append(s.d.Buffered(), data...))
}

// Get decodes the next item.
// ok is false, with a nil error, while the buffered bytes do not hold a whole item.
// After an error the offending bytes stay buffered, and every later Get fails the same way.
func (s *SequenceDecoder) Get() (v value.Value, ok bool, err error) {
	v, err = s.d.Next()
	switch {
	case err == io.EOF, errors.Is(err, encio.ErrIncomplete):
		return value.Value{}, false, nil
	case err != nil:
		return value.Value{}, false, err
	}

	s.d.Advance()
	return v, true, nil
}

// IncompleteBy returns how many more bytes the last Get needed to complete an item.
// It is exact when the item was cut inside its last string, and a lower bound otherwise.
func (s *SequenceDecoder) IncompleteBy() int {
	return s.d.IncompleteBy()
}

// Buffered returns the number of bytes given but not yet decoded.
func (s *SequenceDecoder) Buffered() int {
	return len(s.d.Buffered())
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, config *Config) *Decoder {
	return &Decoder{
		r:   r,
		seq: NewSequenceDecoder(config),
	}
}

// Decoder reads consecutive items from an io.Reader.
// It never reads past the end of the item being decoded, so r can be handed on afterwards.
// It is safe for concurrent use.
type Decoder struct {
	r     io.Reader
	mutex sync.Mutex
	seq   *SequenceDecoder
}

// Decode reads and decodes the next item.
// It returns io.EOF if r ends cleanly between items.
func (d *Decoder) Decode() (value.Value, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for {
		v, ok, err := d.seq.Get()
		if ok || err != nil {
			return v, err
		}

		need := d.seq.IncompleteBy()
		if need == 0 {
			need = 1
		}

		buff := make([]byte, need)
		if err := encio.Read(buff, d.r); err != nil {
			if d.seq.Buffered() == 0 && need == 1 && errors.Is(err, io.ErrUnexpectedEOF) {
				return value.Value{}, io.EOF
			}
			return value.Value{}, err
		}
		d.seq.Give(buff)
	}
}

// DecodeGo reads the next item and returns it as plain Go values.
func (d *Decoder) DecodeGo() (interface{}, error) {
	v, err := d.Decode()
	if err != nil {
		return nil, err
	}
	return value.ToGo(v)
}
