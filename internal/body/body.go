// Package body implements the polymorphic pull-based body reader: six
// concrete sources sharing one contract — successive Read calls return
// non-empty chunks until end-of-stream, after which every call returns an
// empty chunk, plus an optional Close for resource release.
//
// This is intentionally not an io.Reader: the engine needs to inspect Len()
// and invoke Close() without the caller-supplied-buffer convention
// io.Reader implies (spec.md §9 design notes: "Do not implement as a
// generator callback: the engine needs to invoke close and inspect length
// before reading").
package body

import (
	"context"
	"strings"

	"originhttp/internal/herr"
	"originhttp/internal/netio"
	"originhttp/internal/recvbuf"
	"originhttp/internal/wire"
)

// Reader is the body-reader contract. It structurally satisfies
// wire.BodyReader; wire declares that shape itself instead of importing
// this package, since body imports wire (for wire.Request) and the reverse
// import would be a cycle.
type Reader interface {
	Len() (n int64, known bool)
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// File is the minimal filesystem handle the static-file body readers need:
// sequential reads for whole-file transfers, positioned reads for ranges.
type File interface {
	Read(p []byte) (int, error)
	ReadAt(p []byte, off int64) (int, error)
	Close() error
}

const readChunkSize = 32 * 1024

// FromRequest dispatches the appropriate BodyReader for an incoming
// request per spec.md §4.4's readerFromReq table: GET/HEAD forbid a
// declared body, Content-Length wins over Transfer-Encoding: chunked,
// and the absence of both falls back to read-until-close.
func FromRequest(req *wire.Request, buf *recvbuf.Buffer, conn *netio.Conn) (Reader, error) {
	clStr, hasCL := req.Header.Get("Content-Length")
	teTok, hasTE := req.Header.GetFirstToken("Transfer-Encoding")
	chunked := hasTE && strings.EqualFold(teTok, "chunked")

	var contentLength int64
	if hasCL {
		n, err := parseContentLength(clStr)
		if err != nil {
			return nil, err
		}
		contentLength = n
	}

	if req.Method == "GET" || req.Method == "HEAD" {
		if (hasCL && contentLength > 0) || chunked {
			return nil, herr.ErrBodyNotAllowed
		}
		return NewMemoryReader(nil), nil
	}

	switch {
	case hasCL:
		return NewFixedLengthReader(buf, conn, contentLength), nil
	case chunked:
		return NewChunkedReader(buf, conn), nil
	default:
		return NewUntilCloseReader(buf, conn), nil
	}
}

func parseContentLength(s string) (int64, error) {
	s = strings.TrimSpace(s)
	var n int64
	if s == "" {
		return 0, herr.ErrBadContentLength
	}
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			return 0, herr.ErrBadContentLength
		}
		n = n*10 + int64(c-'0')
	}
	return n, nil
}
