// Package metrics holds small atomic counters and a bucketed latency
// histogram for the connection engine, generalized from the
// open-connection tracking valyala-fasthttp's Server keeps internally
// (concurrencyCh / open-connection bookkeeping in server.go) into a
// standalone, dependency-free counters type any collaborator can snapshot.
package metrics

import (
	"sync/atomic"
	"time"
)

// latencyBounds are the upper edges of the request-latency histogram's
// buckets, chosen to span a typical static-file/echo workload from
// sub-millisecond to multi-second. An observation beyond the last bound
// falls into the implicit overflow bucket.
var latencyBounds = [...]time.Duration{
	1 * time.Millisecond,
	5 * time.Millisecond,
	10 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	500 * time.Millisecond,
	1 * time.Second,
}

// Histogram is a fixed-bucket latency histogram built from atomic
// counters, the same primitive Counters itself uses, rather than a
// separate metrics library. The zero value is ready to use.
type Histogram struct {
	buckets [len(latencyBounds) + 1]int64
	count   int64
	sumNs   int64
}

// Observe records one latency sample.
func (h *Histogram) Observe(d time.Duration) {
	atomic.AddInt64(&h.count, 1)
	atomic.AddInt64(&h.sumNs, int64(d))

	idx := len(latencyBounds)
	for i, bound := range latencyBounds {
		if d <= bound {
			idx = i
			break
		}
	}
	atomic.AddInt64(&h.buckets[idx], 1)
}

// HistogramSnapshot is a point-in-time copy of a Histogram, safe to log or
// export. Bounds[i] is the upper edge of Counts[i]; Counts[len(Bounds)] is
// the overflow bucket for samples beyond the last bound.
type HistogramSnapshot struct {
	Bounds []time.Duration
	Counts []int64
	Count  int64
	Sum    time.Duration
}

func (h *Histogram) Snapshot() HistogramSnapshot {
	counts := make([]int64, len(h.buckets))
	for i := range h.buckets {
		counts[i] = atomic.LoadInt64(&h.buckets[i])
	}
	return HistogramSnapshot{
		Bounds: latencyBounds[:],
		Counts: counts,
		Count:  atomic.LoadInt64(&h.count),
		Sum:    time.Duration(atomic.LoadInt64(&h.sumNs)),
	}
}

// Counters tracks server-wide connection and request activity. The zero
// value is ready to use.
type Counters struct {
	connectionsAccepted int64
	connectionsActive   int64
	requestsServed      int64
	bytesWritten        int64
	protocolErrors      int64
	requestLatency      Histogram
}

// Snapshot is a point-in-time copy of the counters, safe to log or export.
type Snapshot struct {
	ConnectionsAccepted int64
	ConnectionsActive   int64
	RequestsServed      int64
	BytesWritten        int64
	ProtocolErrors      int64
	RequestLatency      HistogramSnapshot
}

func (c *Counters) ConnectionOpened() {
	atomic.AddInt64(&c.connectionsAccepted, 1)
	atomic.AddInt64(&c.connectionsActive, 1)
}

func (c *Counters) ConnectionClosed() {
	atomic.AddInt64(&c.connectionsActive, -1)
}

func (c *Counters) RequestServed() {
	atomic.AddInt64(&c.requestsServed, 1)
}

func (c *Counters) BytesWritten(n int64) {
	atomic.AddInt64(&c.bytesWritten, n)
}

func (c *Counters) ProtocolErrorObserved() {
	atomic.AddInt64(&c.protocolErrors, 1)
}

// ObserveRequestLatency records one request's end-to-end serve time.
func (c *Counters) ObserveRequestLatency(d time.Duration) {
	c.requestLatency.Observe(d)
}

func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		ConnectionsAccepted: atomic.LoadInt64(&c.connectionsAccepted),
		ConnectionsActive:   atomic.LoadInt64(&c.connectionsActive),
		RequestsServed:      atomic.LoadInt64(&c.requestsServed),
		BytesWritten:        atomic.LoadInt64(&c.bytesWritten),
		ProtocolErrors:      atomic.LoadInt64(&c.protocolErrors),
		RequestLatency:      c.requestLatency.Snapshot(),
	}
}
