package body

import (
	"context"

	"originhttp/internal/herr"
	"originhttp/internal/netio"
	"originhttp/internal/recvbuf"
)

// FixedLengthReader serves exactly `declared` bytes from the shared
// receive buffer, pulling more from the connection whenever the buffer
// runs dry. An empty pull mid-body is a fatal unexpected-EOF error: the
// peer promised `declared` bytes via Content-Length and closed early.
type FixedLengthReader struct {
	buf      *recvbuf.Buffer
	conn     *netio.Conn
	declared int64
	remain   int64
}

func NewFixedLengthReader(buf *recvbuf.Buffer, conn *netio.Conn, declared int64) *FixedLengthReader {
	return &FixedLengthReader{buf: buf, conn: conn, declared: declared, remain: declared}
}

func (r *FixedLengthReader) Len() (int64, bool) { return r.declared, true }

func (r *FixedLengthReader) Read(ctx context.Context) ([]byte, error) {
	if r.remain == 0 {
		return nil, nil
	}

	if r.buf.Len() == 0 {
		chunk, err := r.conn.Read(ctx)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			return nil, herr.ErrUnexpectedEOF
		}
		r.buf.Push(chunk)
	}

	take := r.buf.Len()
	if int64(take) > r.remain {
		take = int(r.remain)
	}
	data := append([]byte(nil), r.buf.Bytes()[:take]...)
	r.buf.PopFront(take)
	r.remain -= int64(take)
	return data, nil
}

func (r *FixedLengthReader) Close() error { return nil }
