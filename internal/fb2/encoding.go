package fb2

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// xmlEncodingPattern extracts the declared encoding from an XML prolog.
var xmlEncodingPattern = regexp.MustCompile(`<\?xml[^>]*\bencoding=["']([A-Za-z0-9._-]+)["']`)

// decodeDocument converts raw document bytes to a UTF-8 string.
//
// Untrusted sources frequently mis-declare their encoding, so decoding is an
// explicit ordered list of attempts, first success wins:
//
//  1. the encoding declared in the XML prolog (resolved via the IANA index)
//  2. the bytes taken as UTF-8, if they validate
//  3. windows-1251, the de-facto legacy encoding of the catalog's corpus
//
// If every attempt fails the document is unreadable.
func decodeDocument(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	attempts := []func([]byte) (string, error){
		decodeDeclared,
		decodeUTF8,
		decodeWith(charmap.Windows1251),
	}

	var lastErr error
	for _, attempt := range attempts {
		text, err := attempt(data)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("%w: undecodable document: %v", ErrBadDocument, lastErr)
}

// decodeDeclared decodes using the encoding named in the XML prolog.
// Fails when no encoding is declared, the name is unknown, or the bytes do
// not survive the transform.
func decodeDeclared(data []byte) (string, error) {
	head := data
	if len(head) > 256 {
		head = head[:256]
	}

	m := xmlEncodingPattern.FindSubmatch(head)
	if m == nil {
		return "", fmt.Errorf("no declared encoding")
	}
	name := string(m[1])

	if isUTF8Name(name) {
		return decodeUTF8(data)
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return "", fmt.Errorf("unknown declared encoding %q", name)
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode as %q: %v", name, err)
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("decode as %q: invalid output", name)
	}
	return string(decoded), nil
}

func decodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("not valid UTF-8")
	}
	return string(data), nil
}

func decodeWith(enc encoding.Encoding) func([]byte) (string, error) {
	return func(data []byte) (string, error) {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}
}

func isUTF8Name(name string) bool {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return true
	}
	return false
}
