// Package encio provides the byte-level pieces shared by the CBOR encoder and decoder:
// the item head (major type + argument) codec, the output Buffer, io helpers, and error types.
package encio

import (
	"errors"
	"fmt"
	"io"
)

// TooBig is a byte count used for sanity checking lengths read from untrusted input before allocating.
// Lengths larger than this are reported as ErrMalformed rather than attempted.
//
// By default it is 32MB on 32bit machines, and 128MB on 64bit machines.
// Feel free to change it.
var TooBig = uint64(1 << (25 + ((^uint(0) >> 32) & 2)))

// Read fills buff from r. The stream decoder asks for exactly the bytes an item still needs,
// so a reader that ends early gives an IOError wrapping io.ErrUnexpectedEOF.
func Read(buff []byte, r io.Reader) error {
	for got := 0; got < len(buff); {
		n, err := r.Read(buff[got:])
		got += n

		switch {
		case got > len(buff):
			return NewIOError(
				errors.New("bad io.Reader implementation"),
				fmt.Sprintf("%T reported %v bytes read into %v", r, got, len(buff)),
			)
		case got == len(buff):
			return nil
		case errors.Is(err, io.EOF):
			return NewIOError(io.ErrUnexpectedEOF, fmt.Sprintf("item needs %v more bytes", len(buff)-got))
		case err != nil:
			return NewIOError(err, fmt.Sprintf("read %v of %v bytes", got, len(buff)))
		case n == 0:
			return NewIOError(io.ErrNoProgress, fmt.Sprintf("read %v of %v bytes", got, len(buff)))
		}
	}
	return nil
}

// Write writes all of buff, one encoded item, to w.
// A writer that accepts part of it without an error is retried, with a warning.
func Write(buff []byte, w io.Writer) error {
	for done := 0; done < len(buff); {
		n, err := w.Write(buff[done:])
		done += n

		switch {
		case done > len(buff):
			return NewIOError(
				errors.New("bad io.Writer implementation"),
				fmt.Sprintf("%T reported %v bytes written of %v", w, done, len(buff)),
			)
		case err != nil:
			return NewIOError(err, fmt.Sprintf("wrote %v of %v bytes", done, len(buff)))
		case n == 0:
			return NewIOError(io.ErrShortWrite, fmt.Sprintf("wrote %v of %v bytes", done, len(buff)))
		case done < len(buff):
			Warnings.Warn("short write without error, retrying",
				"writer", fmt.Sprintf("%T", w),
				"written", done,
				"remaining", len(buff)-done,
			)
		}
	}
	return nil
}
