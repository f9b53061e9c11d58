// Package staticfile implements whole-file and single-byte-range HTTP
// responses for a filesystem collaborator, grounded on
// valyala-fasthttp/fs.go's FSHandler/fsFile/ParseByteRanges machinery but
// trimmed to this spec's single-range, no-compression, no-directory-
// listing scope (spec.md §1 non-goals: multi-range responses).
package staticfile

import (
	"fmt"
	"regexp"
	"strconv"

	"originhttp/internal/body"
	"originhttp/internal/wire"
)

// FileInfo is the filesystem contract's stat result (spec.md §6).
type FileInfo struct {
	IsRegular bool
	Size      int64
}

// FS is the abstract filesystem collaborator: open a handle, stat a path.
// Serve touches the filesystem only through this interface; OSFS (osfs.go)
// is the os-backed implementation that cmd/originserver wires in.
type FS interface {
	Open(path string) (body.File, error)
	Stat(path string) (FileInfo, error)
}

var rangeRE = regexp.MustCompile(`^bytes=(\d*)-(\d*)$`)

// Serve builds the response for a request against path on fsys: a 200 for
// a plain GET, a 206/416 for a Range request, or a 404 if path isn't a
// regular file. A Stat or Open error also yields the 404 response; the
// error is neither logged nor returned, and the error result is always nil.
func Serve(req *wire.Request, fsys FS, path string) (*wire.Response, error) {
	fi, statErr := fsys.Stat(path)
	if statErr != nil || !fi.IsRegular {
		return notFound(), nil
	}

	f, openErr := fsys.Open(path)
	if openErr != nil {
		return notFound(), nil
	}

	rangeVal, hasRange := req.Header.Get("Range")
	if !hasRange {
		return &wire.Response{StatusCode: 200, Body: body.NewFileReader(f, fi.Size)}, nil
	}

	start, end, ok := parseRange(rangeVal, fi.Size)
	if !ok {
		_ = f.Close()
		resp := &wire.Response{StatusCode: 416, Body: body.NewMemoryReader(nil)}
		resp.Header.Add([]byte("Content-Range"), []byte(fmt.Sprintf("bytes */%d", fi.Size)))
		return resp, nil
	}

	resp := &wire.Response{StatusCode: 206, Body: body.NewFileRangeReader(f, start, end)}
	// end is reported exactly as parsed/derived below — spec.md §4.7/§8
	// scenario 4 ("Range: bytes=0-3" on a 10-byte file yields
	// "Content-Range: bytes 0-3/10" with a 3-byte body [0,3)) fixes the
	// §9-flagged exclusive-vs-inclusive ambiguity by treating end as
	// exclusive everywhere: the same value both slices the file and is
	// echoed back in the header, with no per-path adjustment.
	resp.Header.Add([]byte("Content-Range"), []byte(fmt.Sprintf("bytes %d-%d/%d", start, end, fi.Size)))
	return resp, nil
}

func notFound() *wire.Response {
	return &wire.Response{StatusCode: 404, Body: body.NewMemoryReader([]byte("404 Not Found\n"))}
}

// parseRange parses a "bytes=(\d*)-(\d*)" Range header value against a
// known file size, per spec.md §4.7: start is the first group or 0, end is
// the second group or size. end is exclusive — used directly both to
// slice the file and to report in Content-Range, with no adjustment
// either way (spec.md §8 scenario 4 and §9/§12.6's resolved convention).
func parseRange(val string, size int64) (start, end int64, ok bool) {
	m := rangeRE.FindStringSubmatch(val)
	if m == nil {
		return 0, 0, false
	}

	if m[1] == "" {
		start = 0
	} else {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, 0, false
		}
		start = n
	}

	if start >= size {
		return 0, 0, false
	}

	if m[2] == "" {
		end = size
	} else {
		n, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return 0, 0, false
		}
		end = n
	}
	if end > size {
		end = size
	}
	if end <= start {
		return 0, 0, false
	}

	return start, end, true
}
