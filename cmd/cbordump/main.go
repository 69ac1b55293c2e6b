// cbordump prints CBOR data items in diagnostic notation.
//
// Input is a file named as the only argument, or stdin. It is read as a CBOR sequence,
// one line of output per item. With --hex the input is hex text, whitespace ignored.
//
// With --canonical each item is also re-encoded with sorted map keys and printed as hex.
// With --verify each item is checked for well-formedness by a second, independent decoder.
package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode"

	gocbor "github.com/fxamacker/cbor/v2"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/stewi1014/cborfree/codec"
)

func main() {
	logger := newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
	if err := run(os.Args[1:], os.Stdin, os.Stdout, logger); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		logger.Error("cbordump failed", "error", err)
		os.Exit(1)
	}
}

// newLogger logs text to a terminal, and JSON when stderr is piped or redirected.
func newLogger(w io.Writer, terminal bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if terminal {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

type params struct {
	hexInput   bool
	canonical  bool
	verify     bool
	references bool
	stringKeys bool
	naiveUTF8  bool
	stringMode string
	maxDepth   int
}

func run(args []string, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	var p params

	flagSet := pflag.NewFlagSet("cbordump", pflag.ContinueOnError)
	flagSet.SetOutput(stdout)
	flagSet.BoolVarP(&p.hexInput, "hex", "x", false, "treat input as hex-encoded CBOR")
	flagSet.BoolVarP(&p.canonical, "canonical", "c", false, "also print each item re-encoded with sorted map keys, in hex")
	flagSet.BoolVar(&p.verify, "verify", false, "check each item is well-formed with a second decoder")
	flagSet.BoolVarP(&p.references, "preserve-references", "p", false, "resolve shareable and shared-reference tags")
	flagSet.BoolVar(&p.stringKeys, "string-keys", false, "print integer map keys as text")
	flagSet.BoolVar(&p.naiveUTF8, "naive-utf8", false, "do not validate text strings")
	flagSet.StringVar(&p.stringMode, "string-mode", codec.StringAsIs.String(), "string mode for --canonical: as-is, unicode, utf8 or octets")
	flagSet.IntVar(&p.maxDepth, "max-depth", codec.DefaultMaxDepth, "deepest nesting allowed")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	mode, err := codec.ParseStringMode(p.stringMode)
	if err != nil {
		return err
	}

	rest := flagSet.Args()
	if len(rest) > 1 {
		return fmt.Errorf("expected at most one input file, got %q", rest)
	}

	data, err := readInput(rest, stdin, p.hexInput)
	if err != nil {
		return err
	}

	config := &codec.Config{
		PreserveReferences: p.references,
		StringKeys:         p.stringKeys,
		NaiveUTF8:          p.naiveUTF8,
		SequenceMode:       true,
		MaxDepth:           p.maxDepth,
	}
	var canonical *codec.Config
	if p.canonical {
		canonical = &codec.Config{
			Canonical:          true,
			PreserveReferences: p.references,
			StringMode:         mode,
			MaxDepth:           p.maxDepth,
		}
	}

	return dump(data, config, canonical, p.verify, stdout, logger)
}

// dump prints every item in data. canonical is nil unless items are re-encoded.
func dump(data []byte, config, canonical *codec.Config, verify bool, w io.Writer, logger *slog.Logger) error {
	d := codec.NewDecoder(data, config)
	items := 0

	for {
		offset := len(data) - len(d.Buffered())
		v, err := d.Next()
		switch {
		case err == io.EOF:
			logger.Info("done", "items", items, "bytes", len(data))
			return nil
		case err != nil:
			return fmt.Errorf("item %d at byte %d: %w", items, offset, err)
		}
		raw := data[offset : len(data)-len(d.Buffered())]

		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}

		if canonical != nil {
			out, err := codec.Encode(v, canonical)
			if err != nil {
				return fmt.Errorf("re-encode item %d: %w", items, err)
			}
			if !bytes.Equal(out, raw) {
				logger.Debug("canonical form differs", "item", items)
			}
			if _, err := fmt.Fprintln(w, hex.EncodeToString(out)); err != nil {
				return err
			}
		}

		if verify {
			if err := gocbor.Wellformed(raw); err != nil {
				return fmt.Errorf("item %d at byte %d rejected by second decoder: %w", items, offset, err)
			}
			notation, _, err := gocbor.DiagnoseFirst(raw)
			if err != nil {
				return fmt.Errorf("item %d at byte %d: %w", items, offset, err)
			}
			logger.Info("verified", "item", items, "diagnostic", notation)
		}

		items++
	}
}

// readInput reads the file named in args, or stdin when there is none.
// In hex mode whitespace is stripped and the rest decoded.
func readInput(args []string, stdin io.Reader, hexMode bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", args[0], err)
		}
	} else {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}

	if !hexMode {
		return data, nil
	}

	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	n, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded[:n], nil
}
