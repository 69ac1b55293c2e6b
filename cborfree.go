// Package cborfree encodes and decodes CBOR (RFC 8949) to and from a dynamic value graph.
//
// Goals include:
// Faithful: every CBOR data item maps to a value.Value and back, with maps keeping their order and
// duplicate keys. Floats are written as doubles, except NaN and the infinities which use the short half-precision forms.
//
// Deterministic on request: Config.Canonical sorts map keys by major type, then length, then bytewise,
// so the same value always encodes to the same bytes.
//
// Shared and cyclic graphs: Config.PreserveReferences writes containers reached more than once with the shareable (28)
// and shared-reference (29) tags, and decodes them back into aliases, so cycles survive a round trip.
//
// Streaming: a Decoder reports exactly how many more bytes it needs when its input ends part way through an item,
// so items can be reassembled from any transport without reading past their end.
//
// cborfree/value is the value graph, cborfree/codec the encoder and decoder, and
// cborfree/encio the item head codec, output buffer and error types.
package cborfree

import (
	"github.com/stewi1014/cborfree/codec"
	"github.com/stewi1014/cborfree/value"
)

// Config defines configuration for encoding and decoding. The zero value, and nil, are the defaults.
type Config = codec.Config

// Encode returns the CBOR encoding of v.
func Encode(v value.Value, config *Config) ([]byte, error) {
	return codec.Encode(v, config)
}

// Decode decodes the single item in data.
func Decode(data []byte, config *Config) (value.Value, error) {
	return codec.Decode(data, config)
}

// DecodeAll decodes every item in data, a CBOR sequence.
func DecodeAll(data []byte, config *Config) ([]value.Value, error) {
	return codec.DecodeAll(data, config)
}

// Marshal encodes a plain Go value. See value.FromGo for what is accepted.
func Marshal(x interface{}, config *Config) ([]byte, error) {
	v, err := value.FromGo(x)
	if err != nil {
		return nil, err
	}
	return codec.Encode(v, config)
}

// Unmarshal decodes data into plain Go values. See value.ToGo for the types returned.
func Unmarshal(data []byte, config *Config) (interface{}, error) {
	v, err := codec.Decode(data, config)
	if err != nil {
		return nil, err
	}
	return value.ToGo(v)
}
