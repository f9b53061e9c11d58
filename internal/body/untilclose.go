package body

import (
	"context"

	"originhttp/internal/netio"
	"originhttp/internal/recvbuf"
)

// UntilCloseReader serves whatever is already buffered first, then pulls
// one chunk at a time from the connection until a clean empty pull signals
// end-of-stream. Used when a request carries neither Content-Length nor
// Transfer-Encoding: chunked.
type UntilCloseReader struct {
	buf     *recvbuf.Buffer
	conn    *netio.Conn
	drained bool
}

func NewUntilCloseReader(buf *recvbuf.Buffer, conn *netio.Conn) *UntilCloseReader {
	return &UntilCloseReader{buf: buf, conn: conn}
}

func (r *UntilCloseReader) Len() (int64, bool) { return 0, false }

func (r *UntilCloseReader) Read(ctx context.Context) ([]byte, error) {
	if !r.drained {
		r.drained = true
		if r.buf.Len() > 0 {
			data := append([]byte(nil), r.buf.Bytes()...)
			r.buf.PopFront(r.buf.Len())
			return data, nil
		}
	}
	return r.conn.Read(ctx)
}

func (r *UntilCloseReader) Close() error { return nil }
