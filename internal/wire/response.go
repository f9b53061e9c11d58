package wire

import (
	"context"
	"fmt"
	"strconv"

	"originhttp/internal/netio"
)

// BodyReader is the pull-based body source contract a Response's Body must
// satisfy. Declared here (rather than imported from package body) to avoid
// an import cycle: package body depends on wire.Request for its request-
// side dispatch, and wire.Response only needs this narrow shape.
type BodyReader interface {
	// Len reports the declared byte count, or ok=false for "unknown"
	// (chunked framing).
	Len() (n int64, ok bool)
	// Read returns the next non-empty chunk, or an empty chunk (nil, nil)
	// at end-of-stream. Every call after end-of-stream also returns an
	// empty chunk.
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// Response is a handler's answer: a status code, headers excluding the
// framing header (added by the writer), and a body source.
type Response struct {
	StatusCode int
	Header     Header
	Body       BodyReader
}

var reasonPhrases = map[int]string{
	200: "OK",
	201: "Created",
	204: "No Content",
	206: "Partial Content",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	500: "Internal Server Error",
	502: "Bad Gateway",
	503: "Service Unavailable",
}

func reasonPhrase(code int) string {
	if r, ok := reasonPhrases[code]; ok {
		return r
	}
	return fmt.Sprintf("%d Unknown Status Code", code)
}

// ResponseWriter encodes a Response onto a netio.Conn, negotiating
// content-length vs. chunked framing from the body's declared length.
type ResponseWriter struct {
	conn    *netio.Conn
	written int64
}

func NewResponseWriter(conn *netio.Conn) *ResponseWriter {
	return &ResponseWriter{conn: conn}
}

// BytesWritten reports the total wire bytes sent so far, including framing
// (status line, header lines, chunk size/CRLF overhead) — for the
// connection's bytes-written counter.
func (w *ResponseWriter) BytesWritten() int64 { return w.written }

// WriteHeader emits the status line and header block, adding the framing
// header (Content-Length or Transfer-Encoding: chunked) derived from
// resp.Body.Len(). Each header entry is written as its own line directly —
// spec.md §9 flags the original join-then-split encoding as a bug that
// only worked because headers never contained commas; this writer never
// reproduces that shortcut.
func (w *ResponseWriter) WriteHeader(ctx context.Context, resp *Response) error {
	var buf []byte

	buf = append(buf, "HTTP/1.1 "...)
	buf = strconv.AppendInt(buf, int64(resp.StatusCode), 10)
	buf = append(buf, ' ')
	buf = append(buf, reasonPhrase(resp.StatusCode)...)
	buf = append(buf, "\r\n"...)

	for _, f := range resp.Header.Fields() {
		buf = append(buf, f.Name...)
		buf = append(buf, ": "...)
		buf = append(buf, f.Value...)
		buf = append(buf, "\r\n"...)
	}

	if n, known := resp.Body.Len(); known {
		buf = append(buf, "Content-Length: "...)
		buf = strconv.AppendInt(buf, n, 10)
		buf = append(buf, "\r\n"...)
	} else {
		buf = append(buf, "Transfer-Encoding: chunked\r\n"...)
	}

	buf = append(buf, "\r\n"...)

	if err := w.conn.Write(ctx, buf); err != nil {
		return err
	}
	w.written += int64(len(buf))
	return nil
}

// WriteBody drains resp.Body to end-of-stream, framing each chunk as a
// chunked-encoding segment when the length is unknown, or writing it
// directly when the length is known. Must not be called for HEAD
// requests — the engine skips this call entirely in that case.
func (w *ResponseWriter) WriteBody(ctx context.Context, resp *Response) error {
	_, known := resp.Body.Len()

	for {
		chunk, err := resp.Body.Read(ctx)
		if err != nil {
			return err
		}

		if known {
			if len(chunk) == 0 {
				return nil
			}
			if err := w.conn.Write(ctx, chunk); err != nil {
				return err
			}
			w.written += int64(len(chunk))
			continue
		}

		// Unknown length: every read, including the terminating empty
		// one, is framed as a chunk.
		var frame []byte
		frame = strconv.AppendInt(frame, int64(len(chunk)), 16)
		frame = append(frame, "\r\n"...)
		frame = append(frame, chunk...)
		frame = append(frame, "\r\n"...)
		if err := w.conn.Write(ctx, frame); err != nil {
			return err
		}
		w.written += int64(len(frame))
		if len(chunk) == 0 {
			return nil
		}
	}
}
