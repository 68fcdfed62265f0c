// Package alloctracer folds allocation slow-path notifications into sink
// events and a bounded object-allocation sample stream.
package alloctracer

import (
	"sync"

	"github.com/influxdata/tdigest"

	"github.com/sampler-go/sampler-go"
)

// Thread is the per-thread allocation bookkeeping. Sampled allocation events
// are throttled, so not every event reaches the sink; the skipped counters
// summarize the discarded events and are folded into the next committed
// sample.
//
// A Thread must only be used by the single goroutine it belongs to.
type Thread struct {
	skippedEvents      uint64
	skippedAllocations uint64
}

/*
A Tracer publishes allocation events to an EventSink. Large and in-new-TLAB
allocations are additionally folded into a sample stream: a sample is
committed when the gates admit it, carrying the memory allocated and the
events skipped on that thread since its previous committed sample.

By default the sample stream is gated only by the sink's own commit gate.
NewWithSampler installs a Sampler in front of it, bounding the sample rate
independently of what the sink would accept.

This type is concurrency safe, except that each Thread must stay confined to
its own goroutine.
*/
type Tracer struct {
	sink    EventSink
	sampler sampler.Sampler

	mtx sync.Mutex
	// Guarded by mtx
	sizes *tdigest.TDigest
}

// New returns a Tracer whose sample stream is gated by the sink alone.
func New(sink EventSink) *Tracer {
	return &Tracer{
		sink:  sink,
		sizes: tdigest.NewWithCompression(100),
	}
}

// NewWithSampler returns a Tracer that offers each would-be sample to s
// before consulting the sink, so the sample stream tracks the sampler's
// target rate.
func NewWithSampler(sink EventSink, s sampler.Sampler) *Tracer {
	t := New(sink)
	t.sampler = s
	return t
}

// SendAllocationOutsideTLAB publishes an outside-TLAB allocation event and
// folds the allocation into the sample stream. The whole allocation is
// charged as the memory footprint.
func (t *Tracer) SendAllocationOutsideTLAB(thread *Thread, class string, address uintptr, allocSize uint64) {
	if t.sink.ShouldCommit(KindOutsideTLAB) {
		t.sink.Commit(Event{
			Kind:       KindOutsideTLAB,
			Class:      class,
			Address:    address,
			ObjectSize: allocSize,
		})
	}
	t.sendAllocationSample(thread, class, address, allocSize, allocSize)
}

// SendAllocationInNewTLAB publishes an in-new-TLAB allocation event and folds
// the allocation into the sample stream. The whole buffer, not just the
// object, is charged as the memory footprint since the previous sample.
func (t *Tracer) SendAllocationInNewTLAB(thread *Thread, class string, address uintptr, tlabSize uint64, allocSize uint64) {
	if t.sink.ShouldCommit(KindInNewTLAB) {
		t.sink.Commit(Event{
			Kind:       KindInNewTLAB,
			Class:      class,
			Address:    address,
			ObjectSize: allocSize,
			TLABSize:   tlabSize,
		})
	}
	t.sendAllocationSample(thread, class, address, allocSize, tlabSize)
}

// SendAllocationRequiringGC publishes an allocation-requiring-GC event. These
// are not part of the sample stream.
func (t *Tracer) SendAllocationRequiringGC(size uint64, gcID uint32) {
	if t.sink.ShouldCommit(KindAllocationRequiringGC) {
		t.sink.Commit(Event{
			Kind:       KindAllocationRequiringGC,
			ObjectSize: size,
			GCID:       gcID,
		})
	}
}

// SampledSizeQuantile returns the q quantile, from 0 to 1, of the object
// sizes carried by committed samples.
func (t *Tracer) SampledSizeQuantile(q float64) float64 {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.sizes.Quantile(q)
}

func (t *Tracer) sendAllocationSample(thread *Thread, class string, address uintptr, objectSize uint64, memorySize uint64) {
	if t.sampler != nil && !t.sampler.ShouldSample() {
		thread.skippedEvents++
		thread.skippedAllocations += memorySize
		return
	}
	if !t.sink.ShouldCommit(KindAllocationSample) {
		thread.skippedEvents++
		thread.skippedAllocations += memorySize
		return
	}

	t.sink.Commit(Event{
		Kind:               KindAllocationSample,
		Class:              class,
		Address:            address,
		ObjectSize:         objectSize,
		AllocatedSinceLast: thread.skippedAllocations + memorySize,
		SkippedEvents:      thread.skippedEvents,
	})
	thread.skippedEvents = 0
	thread.skippedAllocations = 0

	t.mtx.Lock()
	t.sizes.Add(float64(objectSize), 1)
	t.mtx.Unlock()
}
