// Package textenc decodes input in legacy code pages to UTF-8 before parsing.
package textenc

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned for an encoding name that is not supported.
var ErrUnknownEncoding = errors.New("unknown encoding")

var encodings = map[string]encoding.Encoding{
	"utf-8":        unicode.UTF8BOM,
	"utf8":         unicode.UTF8BOM,
	"utf-16":       unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1250": charmap.Windows1250,
	"windows-1251": charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"cp1251":       charmap.Windows1251,
	"cp1252":       charmap.Windows1252,
	"koi8-r":       charmap.KOI8R,
}

// Lookup returns the encoding registered under name. Names are case-insensitive
// and an empty name means UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "utf-8"
	}
	enc, ok := encodings[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// NewReader wraps r so that it yields UTF-8 decoded from the named encoding.
// A leading UTF-8 byte order mark is dropped.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
