package body

import (
	"bytes"
	"context"

	"originhttp/internal/herr"
	"originhttp/internal/netio"
	"originhttp/internal/recvbuf"
)

// hex2int mirrors the teacher's generated hex2intTable (bytesconv_table_gen.go)
// rather than calling strconv for each digit.
var hex2int [256]int8

func init() {
	for i := range hex2int {
		hex2int[i] = -1
	}
	for c := byte('0'); c <= '9'; c++ {
		hex2int[c] = int8(c - '0')
	}
	for c := byte('a'); c <= 'f'; c++ {
		hex2int[c] = int8(c-'a') + 10
	}
	for c := byte('A'); c <= 'F'; c++ {
		hex2int[c] = int8(c-'A') + 10
	}
}

// ChunkedReader decodes an HTTP/1.1 chunked body: repeatedly parse a
// hex chunk-size line, stream exactly that many data bytes (each Read call
// returning whatever contiguous slice is available), consume the trailing
// CRLF, and stop at the zero-size terminator chunk. Trailers are not
// supported (spec.md §1 non-goal); the terminator's own trailing CRLF is
// all that's consumed.
type ChunkedReader struct {
	buf  *recvbuf.Buffer
	conn *netio.Conn

	remainInChunk    int64
	needTrailingCRLF bool
	done             bool
}

func NewChunkedReader(buf *recvbuf.Buffer, conn *netio.Conn) *ChunkedReader {
	return &ChunkedReader{buf: buf, conn: conn}
}

func (r *ChunkedReader) Len() (int64, bool) { return 0, false }

func (r *ChunkedReader) Read(ctx context.Context) ([]byte, error) {
	for {
		if r.done {
			return nil, nil
		}

		if r.remainInChunk > 0 {
			if err := r.ensureBuffered(ctx, 1); err != nil {
				return nil, err
			}
			take := r.buf.Len()
			if int64(take) > r.remainInChunk {
				take = int(r.remainInChunk)
			}
			data := append([]byte(nil), r.buf.Bytes()[:take]...)
			r.buf.PopFront(take)
			r.remainInChunk -= int64(take)
			return data, nil
		}

		if r.needTrailingCRLF {
			if err := r.ensureBuffered(ctx, 2); err != nil {
				return nil, err
			}
			r.buf.PopFront(2)
			r.needTrailingCRLF = false
			continue
		}

		size, lineLen, err := r.nextChunkSize(ctx)
		if err != nil {
			return nil, err
		}
		r.buf.PopFront(lineLen)

		if size == 0 {
			if err := r.ensureBuffered(ctx, 2); err != nil {
				return nil, err
			}
			r.buf.PopFront(2)
			r.done = true
			return nil, nil
		}

		r.remainInChunk = size
		r.needTrailingCRLF = true
	}
}

func (r *ChunkedReader) Close() error { return nil }

// ensureBuffered pulls from the connection until at least n bytes are
// buffered. An empty pull is a fatal framing error.
func (r *ChunkedReader) ensureBuffered(ctx context.Context, n int) error {
	for r.buf.Len() < n {
		chunk, err := r.conn.Read(ctx)
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			return herr.ErrUnexpectedEOF
		}
		r.buf.Push(chunk)
	}
	return nil
}

// nextChunkSize locates the CRLF terminating the chunk-size line, pulling
// more bytes as needed, and parses the hex size. It returns the size and
// the number of bytes (including the CRLF) to pop from the buffer.
func (r *ChunkedReader) nextChunkSize(ctx context.Context) (size int64, lineLen int, err error) {
	for {
		idx := bytes.IndexByte(r.buf.Bytes(), '\n')
		if idx >= 1 && r.buf.Bytes()[idx-1] == '\r' {
			line := r.buf.Bytes()[:idx-1]
			if semi := bytes.IndexByte(line, ';'); semi >= 0 {
				line = line[:semi]
			}
			n, perr := parseHexSize(line)
			if perr != nil {
				return 0, 0, perr
			}
			return n, idx + 1, nil
		}

		chunk, rerr := r.conn.Read(ctx)
		if rerr != nil {
			return 0, 0, rerr
		}
		if len(chunk) == 0 {
			return 0, 0, herr.ErrUnexpectedEOF
		}
		r.buf.Push(chunk)
	}
}

func parseHexSize(line []byte) (int64, error) {
	if len(line) == 0 {
		return 0, herr.NewProtocolError(400, "bad chunk size")
	}
	var n int64
	for _, c := range line {
		v := hex2int[c]
		if v < 0 {
			return 0, herr.NewProtocolError(400, "bad chunk size")
		}
		n = n<<4 | int64(v)
	}
	return n, nil
}
