package codec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stewi1014/cborfree/encio"
	"github.com/stewi1014/cborfree/value"
)

// DefaultMaxDepth is the nesting ceiling used when Config.MaxDepth is zero.
const DefaultMaxDepth = 512

// Tag numbers with built-in meaning.
const (
	// TagShareable marks an item that later shared references may point back to.
	TagShareable = 28

	// TagSharedRef wraps the unsigned index of a previously shareable item.
	TagSharedRef = 29

	// TagIndirection wraps the target of a scalar reference.
	TagIndirection = value.RefTag
)

// StringMode selects how strings are written.
type StringMode uint8

// String modes.
const (
	// StringAsIs writes Text values as text strings and Bytes values as byte strings.
	StringAsIs StringMode = iota

	// StringUnicode writes every string as text; Bytes values are taken as Latin-1 and upgraded to UTF-8.
	StringUnicode

	// StringUTF8 writes every string as text without re-encoding; Text values are
	// first downgraded to one byte per character, failing on characters above U+00FF.
	StringUTF8

	// StringOctets is StringUTF8 but writes byte strings.
	StringOctets
)

var stringModeNames = [...]string{
	StringAsIs:    "as-is",
	StringUnicode: "unicode",
	StringUTF8:    "utf8",
	StringOctets:  "octets",
}

func (m StringMode) String() string {
	if int(m) < len(stringModeNames) {
		return stringModeNames[m]
	}
	return fmt.Sprintf("StringMode(%d)", uint8(m))
}

// ParseStringMode returns the StringMode named s.
func ParseStringMode(s string) (StringMode, error) {
	for m, name := range stringModeNames {
		if name == s {
			return StringMode(m), nil
		}
	}
	return 0, encio.Errorf(encio.ErrBadConfig, "unknown string mode %q", s)
}

// TagHandler rebuilds the content of a tag into the value that replaces it.
type TagHandler func(content value.Value) (value.Value, error)

// Config holds the options for encoding and decoding.
// The zero value encodes strings as-is in natural map order, without reference tracking.
type Config struct {
	// Canonical sorts map keys: by major type, then length, then bytewise.
	Canonical bool

	// PreserveReferences writes containers reached more than once as shareable and shared-reference tags,
	// and resolves those tags into aliases when decoding.
	PreserveReferences bool

	// EncodeScalarRefs allows Ref values to be encoded, and to take part in reference preservation.
	// When decoding, tag 22098 becomes a Ref only if it is set, and is kept as a plain Tag otherwise.
	EncodeScalarRefs bool

	// StringMode selects how strings and map keys are written.
	StringMode StringMode

	// NaiveUTF8 skips UTF-8 validation of decoded text strings.
	NaiveUTF8 bool

	// SequenceMode treats the input as any number of concatenated items.
	SequenceMode bool

	// StringKeys turns integer map keys into decimal text keys when decoding.
	StringKeys bool

	// MaxDepth is the deepest nesting allowed. Zero means DefaultMaxDepth.
	MaxDepth int

	// TagHandlers rebuild tagged content during decoding. Tags without a handler decode as Tag values.
	// The reference tags are never passed to handlers while PreserveReferences is set.
	TagHandlers map[uint64]TagHandler
}

// Flags is the bit-set form of the boolean Config options.
type Flags uint

// Flag bits.
const (
	FlagPreserveReferences Flags = 1 << iota
	FlagNaiveUTF8
	FlagSequenceMode
	FlagCanonical
	FlagEncodeScalarRefs
	FlagStringKeys
)

// ConfigFromFlags returns a Config with the options in flags set.
func ConfigFromFlags(flags Flags) *Config {
	return &Config{
		PreserveReferences: flags&FlagPreserveReferences != 0,
		NaiveUTF8:          flags&FlagNaiveUTF8 != 0,
		SequenceMode:       flags&FlagSequenceMode != 0,
		Canonical:          flags&FlagCanonical != 0,
		EncodeScalarRefs:   flags&FlagEncodeScalarRefs != 0,
		StringKeys:         flags&FlagStringKeys != 0,
	}
}

// Flags returns the boolean options of c as a bit-set.
func (c *Config) Flags() (flags Flags) {
	if c == nil {
		return 0
	}
	set := func(on bool, f Flags) {
		if on {
			flags |= f
		}
	}
	set(c.PreserveReferences, FlagPreserveReferences)
	set(c.NaiveUTF8, FlagNaiveUTF8)
	set(c.SequenceMode, FlagSequenceMode)
	set(c.Canonical, FlagCanonical)
	set(c.EncodeScalarRefs, FlagEncodeScalarRefs)
	set(c.StringKeys, FlagStringKeys)
	return
}

// String returns a string unique to the given configuration.
// Format is Config(options, StringMode: <mode>, MaxDepth: <n>, Tags: <numbers>).
// Options are
// - c for Canonical
// - p for PreserveReferences
// - s for EncodeScalarRefs
// - n for NaiveUTF8
// - q for SequenceMode
// - k for StringKeys
func (c *Config) String() string {
	// nil configs should format like &Config{}.
	// strings are for debugging and equality checks.
	if c == nil {
		return "Config()"
	}

	var elements = make([]string, 1)

	// options
	for _, o := range []struct {
		on bool
		c  string
	}{
		{c.Canonical, "c"},
		{c.PreserveReferences, "p"},
		{c.EncodeScalarRefs, "s"},
		{c.NaiveUTF8, "n"},
		{c.SequenceMode, "q"},
		{c.StringKeys, "k"},
	} {
		if o.on {
			elements[0] += o.c
		}
	}

	// other info

	if c.StringMode != StringAsIs {
		elements = append(elements, "StringMode: "+c.StringMode.String())
	}

	if c.MaxDepth != 0 {
		elements = append(elements, fmt.Sprintf("MaxDepth: %v", c.MaxDepth))
	}

	if len(c.TagHandlers) > 0 {
		tags := make([]uint64, 0, len(c.TagHandlers))
		for tag := range c.TagHandlers {
			tags = append(tags, tag)
		}
		sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
		elements = append(elements, fmt.Sprintf("Tags: %v", tags))
	}

	parts := elements[:0]
	for _, e := range elements {
		if e != "" {
			parts = append(parts, e)
		}
	}
	if len(parts) == 0 {
		return "Config()"
	}
	return "Config( " + strings.Join(parts, ", ") + ")"
}

// copyAndFill returns a copy of c with defaults filled in, or ErrBadConfig.
func (c *Config) copyAndFill() (*Config, error) {
	config := new(Config)
	if c != nil {
		*config = *c
	}

	if config.MaxDepth == 0 {
		config.MaxDepth = DefaultMaxDepth
	}
	if config.MaxDepth < 0 {
		return nil, encio.Errorf(encio.ErrBadConfig, "negative MaxDepth %v", config.MaxDepth)
	}
	if config.StringMode > StringOctets {
		return nil, encio.Errorf(encio.ErrBadConfig, "unknown %v", config.StringMode)
	}

	return config, nil
}
