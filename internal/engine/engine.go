// Package engine implements the per-connection request loop: parse a
// request, build its body reader, invoke the handler, write the response,
// drain any unread request body, and either keep the connection alive for
// the next HTTP/1.1 request or close it.
package engine

import (
	"context"
	"net"
	"time"

	"originhttp/internal/body"
	"originhttp/internal/herr"
	"originhttp/internal/logging"
	"originhttp/internal/metrics"
	"originhttp/internal/netio"
	"originhttp/internal/recvbuf"
	"originhttp/internal/wire"
)

// Handler must process one request and return a response. It may stream or
// buffer the body and may leave the response body's length unknown to
// trigger chunked framing, but it must never write to the socket directly
// — that's the response writer's job (spec.md §6's handler contract).
type Handler func(ctx context.Context, req *wire.Request, reqBody body.Reader) (*wire.Response, error)

// Conn drives one accepted connection through the request loop.
type Conn struct {
	nc      *netio.Conn
	handler Handler
	logger  logging.Logger
	metrics *metrics.Counters
}

// NewConn wraps an accepted net.Conn for serving. logger and m may be nil;
// defaults are substituted (a discarding logger, a throwaway counters
// instance) so callers that don't care about observability don't have to
// wire it up.
func NewConn(nc net.Conn, handler Handler, logger logging.Logger, m *metrics.Counters) *Conn {
	if logger == nil {
		logger = logging.Nop()
	}
	if m == nil {
		m = &metrics.Counters{}
	}
	return &Conn{nc: netio.New(nc), handler: handler, logger: logger, metrics: m}
}

// Serve runs the request loop until the connection closes, an HTTP/1.0
// request is served, or an unrecoverable error occurs. It always destroys
// the underlying socket before returning.
func (c *Conn) Serve(ctx context.Context) {
	c.metrics.ConnectionOpened()
	defer c.metrics.ConnectionClosed()
	defer c.nc.Close()

	remote := "-"
	if addr := c.nc.RemoteAddr(); addr != nil {
		remote = addr.String()
	}

	buf := recvbuf.Get()
	defer buf.Release()

	for {
		start := time.Now()

		req, err := c.readRequest(ctx, buf)
		if err != nil {
			c.onLoopError(ctx, remote, err, start)
			return
		}
		if req == nil {
			// Clean termination: peer closed with no request in flight.
			return
		}

		if !c.serveOne(ctx, remote, buf, req, start) {
			return
		}
	}
}

// readRequest implements spec.md §4.6 step 1: try to cut a complete
// header block from buf, pulling more bytes from the connection as
// needed. Returns (nil, nil) for a clean connection close with no request
// in flight, or a protocol/transport error otherwise.
func (c *Conn) readRequest(ctx context.Context, buf *recvbuf.Buffer) (*wire.Request, error) {
	for {
		req, consumed, needMore, err := wire.CutMessage(buf.Bytes())
		if err != nil {
			return nil, err
		}
		if !needMore {
			buf.PopFront(consumed)
			return req, nil
		}

		chunk, rerr := c.nc.Read(ctx)
		if rerr != nil {
			return nil, rerr
		}
		if len(chunk) == 0 {
			if buf.Len() == 0 {
				return nil, nil
			}
			return nil, herr.ErrUnexpectedEOF
		}
		buf.Push(chunk)
	}
}

// serveOne handles exactly one request/response exchange. It reports
// whether the loop should continue (keep-alive) or stop.
func (c *Conn) serveOne(ctx context.Context, remote string, buf *recvbuf.Buffer, req *wire.Request, start time.Time) (keepGoing bool) {
	reqBody, err := body.FromRequest(req, buf, c.nc)
	if err != nil {
		c.onLoopError(ctx, remote, err, start)
		return false
	}
	defer reqBody.Close()

	resp, herrValue := c.invoke(ctx, req, reqBody)
	if herrValue != nil {
		c.onLoopError(ctx, remote, herrValue, start)
		return false
	}
	defer resp.Body.Close()

	w := wire.NewResponseWriter(c.nc)
	defer func() { c.metrics.BytesWritten(w.BytesWritten()) }()

	if err := w.WriteHeader(ctx, resp); err != nil {
		c.logError(remote, req, start, err)
		return false
	}
	if req.Method != "HEAD" {
		if err := w.WriteBody(ctx, resp); err != nil {
			c.logError(remote, req, start, err)
			return false
		}
	}

	c.metrics.RequestServed()
	c.metrics.ObserveRequestLatency(time.Since(start))
	c.logAccess(remote, req, resp.StatusCode, start)

	if req.IsHTTP10() {
		return false
	}

	// Drain any body the handler didn't fully consume so the receive
	// buffer is aligned on the next pipelined-style request.
	if err := drainBody(ctx, reqBody); err != nil {
		c.logError(remote, req, start, err)
		return false
	}

	return true
}

func drainBody(ctx context.Context, r body.Reader) error {
	for {
		chunk, err := r.Read(ctx)
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			return nil
		}
	}
}

// invoke calls the handler, converting a returned error into a
// *herr.ProtocolError (possibly via herr.StatusCoder) or returning it
// as-is when it carries no status.
func (c *Conn) invoke(ctx context.Context, req *wire.Request, reqBody body.Reader) (*wire.Response, error) {
	resp, err := c.handler(ctx, req, reqBody)
	if err == nil {
		return resp, nil
	}
	if sc, ok := herr.AsStatusCoder(err); ok {
		return nil, herr.NewProtocolError(sc.HTTPStatus(), err.Error())
	}
	return nil, err
}

// onLoopError handles any error raised while reading a request, dispatching
// its body reader, or invoking the handler: a protocol error synthesizes
// and sends a matching response before the connection closes; anything
// else (transport errors, body-framing errors once streaming is in
// flight) just gets logged.
func (c *Conn) onLoopError(ctx context.Context, remote string, err error, start time.Time) {
	pe, ok := err.(*herr.ProtocolError)
	if !ok {
		c.logger.Printf("%s\t-\t-\t-\t%s\terr=%q", remote, fmtDur(time.Since(start)), err.Error())
		return
	}

	c.metrics.ProtocolErrorObserved()
	c.sendSynthesizedError(ctx, pe)
	c.logger.Printf("%s\t-\t-\t%d\t%s\terr=%q", remote, pe.Status, fmtDur(time.Since(start)), pe.Msg)
}

// sendSynthesizedError writes a best-effort error response for a protocol
// error caught at the connection boundary. Failures here are swallowed:
// the connection is being destroyed either way.
func (c *Conn) sendSynthesizedError(ctx context.Context, pe *herr.ProtocolError) {
	resp := &wire.Response{
		StatusCode: pe.Status,
		Body:       body.NewMemoryReader([]byte(pe.Msg + "\n")),
	}
	resp.Header.Add([]byte("Connection"), []byte("close"))

	w := wire.NewResponseWriter(c.nc)
	defer func() { c.metrics.BytesWritten(w.BytesWritten()) }()

	if err := w.WriteHeader(ctx, resp); err != nil {
		return
	}
	_ = w.WriteBody(ctx, resp)
}

func (c *Conn) logAccess(remote string, req *wire.Request, status int, start time.Time) {
	c.logger.Printf("%s\t%s\t%s\t%d\t%s", remote, req.Method, string(req.URI), status, fmtDur(time.Since(start)))
}

func (c *Conn) logError(remote string, req *wire.Request, start time.Time, err error) {
	c.logger.Printf("%s\t%s\t%s\t-\t%s\terr=%q", remote, req.Method, string(req.URI), fmtDur(time.Since(start)), err.Error())
}

func fmtDur(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
