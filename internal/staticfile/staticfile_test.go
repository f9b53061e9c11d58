package staticfile

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"originhttp/internal/body"
	"originhttp/internal/wire"
)

// fakeFile is an in-memory body.File backed by a byte slice.
type fakeFile struct {
	data   []byte
	pos    int
	closed bool
}

func (f *fakeFile) Read(p []byte) (int, error) {
	if f.pos >= len(f.data) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.pos:])
	f.pos += n
	return n, nil
}

func (f *fakeFile) ReadAt(p []byte, off int64) (int, error) {
	if int(off) >= len(f.data) {
		return 0, io.EOF
	}
	n := copy(p, f.data[off:])
	return n, nil
}

func (f *fakeFile) Close() error {
	f.closed = true
	return nil
}

// fakeFS serves a single fixed path and otherwise reports missing files.
type fakeFS struct {
	path string
	data []byte
	dir  bool
}

func (fs *fakeFS) Open(path string) (body.File, error) {
	if path != fs.path {
		return nil, errors.New("no such file")
	}
	return &fakeFile{data: fs.data}, nil
}

func (fs *fakeFS) Stat(path string) (FileInfo, error) {
	if path != fs.path {
		return FileInfo{}, errors.New("no such file")
	}
	return FileInfo{IsRegular: !fs.dir, Size: int64(len(fs.data))}, nil
}

func newReq(method, uri string, headers map[string]string) *wire.Request {
	req := &wire.Request{Method: method, URI: []byte(uri), Proto: "1.1"}
	for k, v := range headers {
		req.Header.Add([]byte(k), []byte(v))
	}
	return req
}

func readAllBody(t *testing.T, b wire.BodyReader) []byte {
	t.Helper()
	var out []byte
	for {
		chunk, err := b.Read(context.Background())
		require.NoError(t, err)
		if len(chunk) == 0 {
			return out
		}
		out = append(out, chunk...)
	}
}

func TestServeWholeFile(t *testing.T) {
	fs := &fakeFS{path: "/greeting.txt", data: []byte("hello world.\n")}
	req := newReq("GET", "/greeting.txt", nil)

	resp, err := Serve(req, fs, "/greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	n, known := resp.Body.Len()
	assert.True(t, known)
	assert.Equal(t, int64(13), n)
	assert.Equal(t, "hello world.\n", string(readAllBody(t, resp.Body)))
}

// TestServeRangeRequestMatchesSpecScenario4 is the literal spec.md §8
// scenario 4 acceptance test: a 10-byte file, "Range: bytes=0-3" yields
// "Content-Range: bytes 0-3/10" and a 3-byte body [0,3).
func TestServeRangeRequestMatchesSpecScenario4(t *testing.T) {
	fs := &fakeFS{path: "/a.bin", data: []byte("0123456789")}
	req := newReq("GET", "/a.bin", map[string]string{"Range": "bytes=0-3"})

	resp, err := Serve(req, fs, "/a.bin")
	require.NoError(t, err)
	assert.Equal(t, 206, resp.StatusCode)
	cr, ok := resp.Header.Get("Content-Range")
	require.True(t, ok)
	assert.Equal(t, "bytes 0-3/10", cr)
	assert.Equal(t, "012", string(readAllBody(t, resp.Body)))
}

// TestServeRangeStartBeyondSizeMatchesSpecScenario5 is the literal
// spec.md §8 scenario 5 acceptance test: a 10-byte file, "Range:
// bytes=100-" yields 416 with "Content-Range: bytes */10" and an empty
// body.
func TestServeRangeStartBeyondSizeMatchesSpecScenario5(t *testing.T) {
	fs := &fakeFS{path: "/a.bin", data: []byte("0123456789")}
	req := newReq("GET", "/a.bin", map[string]string{"Range": "bytes=100-"})

	resp, err := Serve(req, fs, "/a.bin")
	require.NoError(t, err)
	assert.Equal(t, 416, resp.StatusCode)
	cr, ok := resp.Header.Get("Content-Range")
	require.True(t, ok)
	assert.Equal(t, "bytes */10", cr)
	assert.Empty(t, readAllBody(t, resp.Body))
}

func TestServeRangeRequest(t *testing.T) {
	fs := &fakeFS{path: "/greeting.txt", data: []byte("hello world.\n")}
	req := newReq("GET", "/greeting.txt", map[string]string{"Range": "bytes=0-4"})

	resp, err := Serve(req, fs, "/greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, 206, resp.StatusCode)
	cr, ok := resp.Header.Get("Content-Range")
	require.True(t, ok)
	assert.Equal(t, "bytes 0-4/13", cr)
	assert.Equal(t, "hell", string(readAllBody(t, resp.Body)))
}

func TestServeOpenEndedRange(t *testing.T) {
	fs := &fakeFS{path: "/greeting.txt", data: []byte("hello world.\n")}
	req := newReq("GET", "/greeting.txt", map[string]string{"Range": "bytes=6-"})

	resp, err := Serve(req, fs, "/greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, 206, resp.StatusCode)
	cr, _ := resp.Header.Get("Content-Range")
	assert.Equal(t, "bytes 6-13/13", cr)
	assert.Equal(t, "world.\n", string(readAllBody(t, resp.Body)))
}

func TestServeRangeStartBeyondSizeIs416(t *testing.T) {
	fs := &fakeFS{path: "/greeting.txt", data: []byte("hello world.\n")}
	req := newReq("GET", "/greeting.txt", map[string]string{"Range": "bytes=100-200"})

	resp, err := Serve(req, fs, "/greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, 416, resp.StatusCode)
	cr, ok := resp.Header.Get("Content-Range")
	require.True(t, ok)
	assert.Equal(t, "bytes */13", cr)
	assert.Empty(t, readAllBody(t, resp.Body))
}

func TestServeMalformedRangeIs416(t *testing.T) {
	fs := &fakeFS{path: "/greeting.txt", data: []byte("hello world.\n")}
	req := newReq("GET", "/greeting.txt", map[string]string{"Range": "bytes=abc-def"})

	resp, err := Serve(req, fs, "/greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, 416, resp.StatusCode)
}

func TestServeMissingFileIs404(t *testing.T) {
	fs := &fakeFS{path: "/greeting.txt", data: []byte("hello world.\n")}
	req := newReq("GET", "/missing.txt", nil)

	resp, err := Serve(req, fs, "/missing.txt")
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "404 Not Found\n", string(readAllBody(t, resp.Body)))
}

func TestServeDirectoryIs404(t *testing.T) {
	fs := &fakeFS{path: "/assets", dir: true}
	req := newReq("GET", "/assets", nil)

	resp, err := Serve(req, fs, "/assets")
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
