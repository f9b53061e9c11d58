package wire

import (
	"strings"

	"golang.org/x/net/http/httpguts"
)

// HeaderField is one raw "Name: Value" header line, preserved verbatim
// (modulo surrounding whitespace trimming on the value) from the request.
type HeaderField struct {
	Name  []byte
	Value []byte
}

// Header is the request's ordered sequence of raw header fields. Lookup is
// case-insensitive, matching real HTTP/1.1 semantics even though the
// underlying representation is the raw, ordered line sequence the data
// model calls for (spec.md §3's "ordered sequence of raw Name: Value
// lines").
type Header struct {
	fields []HeaderField
}

// Add appends a header field in wire order.
func (h *Header) Add(name, value []byte) {
	h.fields = append(h.fields, HeaderField{Name: name, Value: value})
}

// Fields returns the raw ordered fields.
func (h *Header) Fields() []HeaderField {
	return h.fields
}

// Get returns the value of the first field matching name, case-
// insensitively.
func (h *Header) Get(name string) (string, bool) {
	for _, f := range h.fields {
		if strings.EqualFold(string(f.Name), name) {
			return string(f.Value), true
		}
	}
	return "", false
}

// GetFirstToken returns the first comma-separated token of the named
// header's value. Used for Transfer-Encoding per spec.md §4.3 ("For
// Transfer-Encoding, only the first comma-separated token is returned").
func (h *Header) GetFirstToken(name string) (string, bool) {
	v, ok := h.Get(name)
	if !ok {
		return "", false
	}
	if idx := strings.IndexByte(v, ','); idx >= 0 {
		v = v[:idx]
	}
	return strings.TrimSpace(v), true
}

// tokenTable is a fast byte-class lookup for the RFC 7230 token grammar
// (`[A-Za-z0-9!#$%&'*+.^_`|~-]+`), mirroring the generated byte-class
// tables in the teacher's bytesconv_table_gen.go rather than a regexp.
var tokenTable [256]bool

func init() {
	for c := byte('0'); c <= '9'; c++ {
		tokenTable[c] = true
	}
	for c := byte('A'); c <= 'Z'; c++ {
		tokenTable[c] = true
	}
	for c := byte('a'); c <= 'z'; c++ {
		tokenTable[c] = true
	}
	for _, c := range []byte("!#$%&'*+.^_`|~-") {
		tokenTable[c] = true
	}
}

// wellKnownFieldNames is the small allow-list spec.md §4.3 calls for: field
// names that a strict reading of the token grammar would reject but that
// this server still accepts. Empty by default since none of the common
// legacy header names actually violate the RFC 7230 token grammar; kept as
// an explicit extension point rather than removed, matching the spec's
// "OR is one of a small allow-list of well-known names" prose.
var wellKnownFieldNames = map[string]struct{}{}

func isValidFieldName(name []byte) bool {
	if len(name) == 0 {
		return false
	}
	ok := true
	for _, c := range name {
		if !tokenTable[c] {
			ok = false
			break
		}
	}
	if ok {
		return true
	}
	if _, known := wellKnownFieldNames[string(name)]; known {
		return true
	}
	// Fall back to the RFC-grammar validator golang.org/x/net carries, in
	// case the fast table above is ever out of date with the standard.
	return httpguts.ValidHeaderFieldName(string(name))
}
