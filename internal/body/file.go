package body

import (
	"context"
	"io"

	"originhttp/internal/herr"
)

var errFileSizeChanged = herr.NewProtocolError(500, "file size changed")

// FileReader streams an entire file of a known, previously-stat'd size via
// sequential positionless reads. It fails if the file ever returns fewer
// bytes than promised before reaching that size, or more bytes than
// promised — the file changed size out from under the response.
type FileReader struct {
	f    File
	size int64
	read int64
	buf  []byte
}

func NewFileReader(f File, size int64) *FileReader {
	return &FileReader{f: f, size: size, buf: make([]byte, readChunkSize)}
}

func (r *FileReader) Len() (int64, bool) { return r.size, true }

func (r *FileReader) Read(ctx context.Context) ([]byte, error) {
	if r.read == r.size {
		return nil, nil
	}

	n, err := r.f.Read(r.buf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if n == 0 {
		if r.read < r.size {
			return nil, errFileSizeChanged
		}
		return nil, nil
	}

	r.read += int64(n)
	if r.read > r.size {
		return nil, errFileSizeChanged
	}
	return append([]byte(nil), r.buf[:n]...), nil
}

func (r *FileReader) Close() error { return r.f.Close() }

// FileRangeReader streams the half-open byte range [start, end) of a file
// using positioned reads and a sliding offset, reusing one scratch buffer
// across calls.
type FileRangeReader struct {
	f      File
	offset int64
	end    int64
	length int64
	buf    []byte
}

func NewFileRangeReader(f File, start, end int64) *FileRangeReader {
	bufSize := readChunkSize
	if int64(bufSize) > end-start {
		bufSize = int(end - start)
	}
	if bufSize <= 0 {
		bufSize = 1
	}
	return &FileRangeReader{f: f, offset: start, end: end, length: end - start, buf: make([]byte, bufSize)}
}

func (r *FileRangeReader) Len() (int64, bool) { return r.length, true }

func (r *FileRangeReader) Read(ctx context.Context) ([]byte, error) {
	if r.offset >= r.end {
		return nil, nil
	}

	want := r.end - r.offset
	if want > int64(len(r.buf)) {
		want = int64(len(r.buf))
	}

	n, err := r.f.ReadAt(r.buf[:want], r.offset)
	if n == 0 {
		if err != nil && err != io.EOF {
			return nil, err
		}
		return nil, nil
	}

	r.offset += int64(n)
	return append([]byte(nil), r.buf[:n]...), nil
}

func (r *FileRangeReader) Close() error { return r.f.Close() }
