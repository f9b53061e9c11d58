package body

import "context"

// MemoryReader serves a single in-memory byte slice in one Read call, then
// reports end-of-stream on every subsequent call. Used for synthesized
// responses (static-file 404/416 bodies, forced-empty request bodies).
type MemoryReader struct {
	data []byte
	done bool
}

func NewMemoryReader(data []byte) *MemoryReader {
	return &MemoryReader{data: data}
}

func (r *MemoryReader) Len() (int64, bool) { return int64(len(r.data)), true }

func (r *MemoryReader) Read(ctx context.Context) ([]byte, error) {
	if r.done {
		return nil, nil
	}
	r.done = true
	return r.data, nil
}

func (r *MemoryReader) Close() error { return nil }
