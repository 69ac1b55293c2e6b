package codec

import (
	"golang.org/x/text/encoding/charmap"

	"github.com/stewi1014/cborfree/encio"
)

// upgrade reads s as Latin-1 and returns it as UTF-8.
func upgrade(s string) string {
	if isASCII(s) {
		return s
	}
	// the Latin-1 decoder maps every byte, it cannot fail.
	u, _ := charmap.ISO8859_1.NewDecoder().String(s)
	return u
}

// downgrade reads s as UTF-8 and returns it with one byte per character.
// Characters above U+00FF fail with ErrWideCharacter.
func downgrade(s string) (string, error) {
	if isASCII(s) {
		return s, nil
	}
	d, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return "", encio.Errorf(encio.ErrWideCharacter, "%q cannot be written one byte per character: %v", s, err)
	}
	return d, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
