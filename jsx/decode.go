package jsx

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEncoding is returned for sources which are not valid UTF-8 after
// decoding.
var ErrEncoding = errors.New("source is not valid UTF-8")

// Decode reads a source file converting it to UTF-8. Byte order marks are
// honored and removed. When label is not empty it names the encoding (IANA
// or WHATWG label) of sources without a byte order mark.
func Decode(r io.Reader, label string) ([]byte, error) {
	fallback := transform.Transformer(transform.Nop)
	if label != "" {
		enc, name := charset.Lookup(label)
		if enc == nil {
			return nil, fmt.Errorf("unknown source encoding %q", label)
		}
		if name != "utf-8" {
			fallback = enc.NewDecoder()
		}
	}

	data, err := io.ReadAll(transform.NewReader(r, unicode.BOMOverride(fallback)))
	if err != nil {
		return nil, fmt.Errorf("unable to read source: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, ErrEncoding
	}
	return data, nil
}
