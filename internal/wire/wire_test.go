package wire

import (
	"context"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"originhttp/internal/netio"
)

func TestCutMessageNeedsMoreOnPartialBuffer(t *testing.T) {
	req, consumed, needMore, err := CutMessage([]byte("GET / HTTP/1.1\r\nHost: x"))
	require.NoError(t, err)
	assert.True(t, needMore)
	assert.Nil(t, req)
	assert.Zero(t, consumed)
}

func TestCutMessageParsesRequestLineAndHeaders(t *testing.T) {
	raw := "GET /echo HTTP/1.1\r\nHost: example.com\r\nContent-Length: 5\r\n\r\nhello-tail"
	req, consumed, needMore, err := CutMessage([]byte(raw))
	require.NoError(t, err)
	assert.False(t, needMore)
	assert.Equal(t, len(raw)-len("hello-tail"), consumed)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/echo", string(req.URI))
	assert.Equal(t, "1.1", req.Proto)

	v, ok := req.Header.Get("host")
	assert.True(t, ok)
	assert.Equal(t, "example.com", v)

	cl, ok := req.Header.Get("Content-Length")
	assert.True(t, ok)
	assert.Equal(t, "5", cl)
}

func TestCutMessageIdempotentWithZeroRequests(t *testing.T) {
	buf := []byte("partial data with no terminator")
	_, _, needMore1, err1 := CutMessage(buf)
	require.NoError(t, err1)
	assert.True(t, needMore1)

	// Buffer untouched; calling again gives the same answer.
	_, _, needMore2, err2 := CutMessage(buf)
	require.NoError(t, err2)
	assert.True(t, needMore2)
}

func TestCutMessageFailsOnOversizedHeaderBlock(t *testing.T) {
	big := make([]byte, 0, 9000)
	big = append(big, "GET / HTTP/1.1\r\n"...)
	for len(big) < 8200 {
		big = append(big, "X-Pad: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\r\n"...)
	}
	_, _, _, err := CutMessage(big)
	require.Error(t, err)
}

func TestCutMessageRejectsBadFieldName(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nBad Name: x\r\n\r\n"
	_, _, _, err := CutMessage([]byte(raw))
	require.Error(t, err)
}

func TestCutMessageRejectsMalformedRequestLine(t *testing.T) {
	raw := "GET /\r\n\r\n"
	_, _, _, err := CutMessage([]byte(raw))
	require.Error(t, err)
}

func TestHeaderGetFirstTokenSplitsOnComma(t *testing.T) {
	var h Header
	h.Add([]byte("Transfer-Encoding"), []byte("chunked, gzip"))
	tok, ok := h.Get("transfer-encoding")
	require.True(t, ok)
	assert.Equal(t, "chunked, gzip", tok)

	first, ok := h.GetFirstToken("Transfer-Encoding")
	require.True(t, ok)
	assert.Equal(t, "chunked", first)
}

type memBody struct {
	chunks [][]byte
	i      int
	length int64
	known  bool
}

func (m *memBody) Len() (int64, bool) { return m.length, m.known }
func (m *memBody) Read(ctx context.Context) ([]byte, error) {
	if m.i >= len(m.chunks) {
		return nil, nil
	}
	c := m.chunks[m.i]
	m.i++
	return c, nil
}
func (m *memBody) Close() error { return nil }

func TestResponseWriterContentLengthFraming(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	srv := netio.New(c2)
	w := NewResponseWriter(srv)

	var h Header
	resp := &Response{
		StatusCode: 200,
		Header:     h,
		Body:       &memBody{chunks: [][]byte{[]byte("hello world.\n")}, length: 13, known: true},
	}

	done := make(chan error, 1)
	go func() {
		done <- w.WriteHeader(context.Background(), resp)
	}()
	out := readAll(t, c1, len("HTTP/1.1 200 OK\r\nContent-Length: 13\r\n\r\n"))
	require.NoError(t, <-done)
	assert.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 13\r\n\r\n", out)

	go func() {
		done <- w.WriteBody(context.Background(), resp)
	}()
	body := readAll(t, c1, len("hello world.\n"))
	require.NoError(t, <-done)
	assert.Equal(t, "hello world.\n", body)
}

func TestResponseWriterChunkedFraming(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	srv := netio.New(c2)
	w := NewResponseWriter(srv)

	var h Header
	resp := &Response{
		StatusCode: 200,
		Header:     h,
		Body:       &memBody{chunks: [][]byte{[]byte("Hello"), []byte("World!"), {}}},
	}

	go func() { _ = w.WriteHeader(context.Background(), resp) }()
	hdr := readAll(t, c1, len("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n"))
	assert.Equal(t, "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n", hdr)

	expected := "5\r\nHello\r\n6\r\nWorld!\r\n0\r\n\r\n"
	done := make(chan error, 1)
	go func() {
		done <- w.WriteBody(context.Background(), resp)
	}()
	body := readAll(t, c1, len(expected))
	require.NoError(t, <-done)
	assert.Equal(t, expected, body)
}

func readAll(t *testing.T, r io.Reader, n int) string {
	t.Helper()
	buf := make([]byte, n)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	return string(buf)
}
