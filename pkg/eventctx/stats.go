package eventctx

import (
	"sync/atomic"
	"time"
)

// processingTime accumulates the elapsed durations spent processing the
// events of one context. Safe for concurrent use; branches executing in
// parallel may add durations independently.
type processingTime struct {
	nanos atomic.Int64
}

// add records an elapsed processing duration.
// Negative and zero durations are ignored.
func (p *processingTime) add(d time.Duration) {
	if d <= 0 {
		return
	}
	p.nanos.Add(int64(d))
}

// total returns the accumulated processing time so far.
func (p *processingTime) total() time.Duration {
	return time.Duration(p.nanos.Load())
}
