package cborfree

import (
	"io"
	"sync"

	"github.com/stewi1014/cborfree/codec"
	"github.com/stewi1014/cborfree/encio"
	"github.com/stewi1014/cborfree/value"
)

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer, config *Config) *Encoder {
	e := &Encoder{w: w}
	if config != nil {
		c := *config
		e.config = &c
	}
	return e
}

// Encoder writes items to an io.Writer, one after another, forming a CBOR sequence.
// It is safe for concurrent use; items are never interleaved.
type Encoder struct {
	w      io.Writer
	mutex  sync.Mutex
	config *Config
}

// Encode writes the encoding of v.
// Nothing is written if v cannot be encoded.
func (e *Encoder) Encode(v value.Value) error {
	buff, err := codec.Encode(v, e.config)
	if err != nil {
		return err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	return encio.Write(buff, e.w)
}

// EncodeGo writes the encoding of a plain Go value.
func (e *Encoder) EncodeGo(x interface{}) error {
	v, err := value.FromGo(x)
	if err != nil {
		return err
	}
	return e.Encode(v)
}
