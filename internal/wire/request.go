package wire

import (
	"bytes"
	"strings"

	"originhttp/internal/herr"
)

// Request is the immutable, parsed request line + header block. The URI is
// preserved verbatim from the wire; Method and Proto are copied into plain
// strings.
type Request struct {
	Method string
	URI    []byte
	Proto  string // e.g. "1.1" or "1.0", without the "HTTP/" prefix
	Header Header
}

// IsHTTP10 reports whether the request declared HTTP/1.0, which per
// spec.md §4.6 means the connection closes after this exchange.
func (r *Request) IsHTTP10() bool {
	return r.Proto == "1.0"
}

const maxHeaderBlock = 8192

var crlfcrlf = []byte("\r\n\r\n")
var crlf = []byte("\r\n")

// CutMessage searches buf for the first CRLFCRLF. If found, it parses the
// header block [0, idx+4) and reports how many bytes to pop from the
// caller's receive buffer. If not found and buf is below the 8192-byte
// cap, it reports needMore. If not found and buf has reached the cap, it
// fails with a 413 protocol error. CutMessage never mutates buf; the
// caller is responsible for popping `consumed` bytes on success.
func CutMessage(buf []byte) (req *Request, consumed int, needMore bool, err error) {
	idx := bytes.Index(buf, crlfcrlf)
	if idx == -1 {
		if len(buf) >= maxHeaderBlock {
			return nil, 0, false, herr.ErrHeaderTooLarge
		}
		return nil, 0, true, nil
	}

	block := buf[:idx+len(crlfcrlf)]
	req, err = parseHeaderBlock(block)
	if err != nil {
		return nil, 0, false, err
	}
	return req, idx + len(crlfcrlf), false, nil
}

func parseHeaderBlock(block []byte) (*Request, error) {
	lines := bytes.Split(block, crlf)
	if len(lines) < 2 {
		return nil, herr.ErrMalformedStartLine
	}

	req := &Request{}
	if err := parseRequestLine(lines[0], req); err != nil {
		return nil, err
	}

	for _, line := range lines[1:] {
		if len(line) == 0 {
			// Terminating empty line; CutMessage already guaranteed its
			// presence via the CRLFCRLF locator.
			break
		}

		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			return nil, herr.ErrBadFieldName
		}
		name := line[:colon]
		if !isValidFieldName(name) {
			return nil, herr.ErrBadFieldName
		}

		value := bytes.Trim(line[colon+1:], " \t")

		// Own the bytes: block is a view into a buffer the caller may
		// mutate or recycle once CutMessage returns.
		nameCopy := append([]byte(nil), name...)
		valueCopy := append([]byte(nil), value...)
		req.Header.Add(nameCopy, valueCopy)
	}

	return req, nil
}

func parseRequestLine(line []byte, req *Request) error {
	tokens := bytes.Fields(line)
	if len(tokens) != 3 {
		return herr.ErrMalformedStartLine
	}

	method, target, version := tokens[0], tokens[1], tokens[2]

	if !strings.HasPrefix(string(version), "HTTP/") {
		return herr.ErrMalformedStartLine
	}

	req.Method = string(method)
	req.URI = append([]byte(nil), target...)
	req.Proto = strings.TrimPrefix(string(version), "HTTP/")
	return nil
}
