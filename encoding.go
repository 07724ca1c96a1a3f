package textdiff

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies the character encoding used to decode a byte source.
// The zero value is UTF-8.
type Encoding struct {
	name string
	enc  encoding.Encoding
}

// UTF8 is the encoding used when none is configured.
var UTF8 = Encoding{name: "UTF-8", enc: unicode.UTF8}

// LookupEncoding resolves an IANA charset name such as "UTF-8",
// "ISO-8859-1" or "UTF-16LE".
func LookupEncoding(name string) (Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return Encoding{}, &ConfigurationError{Field: "encoding", Value: name}
	}

	canonical, err := ianaindex.MIME.Name(enc)
	if err != nil {
		canonical, err = ianaindex.IANA.Name(enc)
	}
	if err != nil {
		canonical = strings.ToUpper(name)
	}

	return Encoding{name: canonical, enc: enc}, nil
}

// Name returns the canonical IANA name.
func (e Encoding) Name() string {
	if e.name == "" {
		return UTF8.name
	}
	return e.name
}

// Equal reports whether e and o decode bytes identically.
func (e Encoding) Equal(o Encoding) bool {
	return strings.EqualFold(e.Name(), o.Name())
}

func (e Encoding) String() string {
	return e.Name()
}

func (e Encoding) decoder() *encoding.Decoder {
	if e.enc == nil {
		return unicode.UTF8.NewDecoder()
	}
	return e.enc.NewDecoder()
}
