package queue

import "github.com/okian/gridiron/pkg/metrics"

// Rejection reasons reported to a Meter.
const (
	ReasonClosed           = "closed"
	ReasonCapacityExceeded = "capacity_exceeded"
	ReasonContextCancelled = "context_cancelled"
	ReasonQueueFull        = "queue_full"
)

// Meter observes queue traffic.
type Meter interface {
	Init(capacity int)
	Enqueued(size, capacity int)
	Dequeued(size, capacity int)
	Rejected(reason string)
}

type nopMeter struct{}

func (nopMeter) Init(int)          {}
func (nopMeter) Enqueued(int, int) {}
func (nopMeter) Dequeued(int, int) {}
func (nopMeter) Rejected(string)   {}

// SummaryMeter reports to the summary queue gauges.
type SummaryMeter struct{}

// Init implements Meter.
func (SummaryMeter) Init(capacity int) {
	metrics.UpdateQueueCapacity(capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)
}

// Enqueued implements Meter.
func (SummaryMeter) Enqueued(size, capacity int) {
	metrics.RecordQueueEnqueue()
	updateSummarySize(size, capacity)
}

// Dequeued implements Meter.
func (SummaryMeter) Dequeued(size, capacity int) {
	metrics.RecordQueueDequeue()
	updateSummarySize(size, capacity)
}

// Rejected implements Meter.
func (SummaryMeter) Rejected(reason string) {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("summary_queue", reason)
}

func updateSummarySize(size, capacity int) {
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(capacity))
}

// CommandMeter reports to the command queue gauge, which sums every
// session's queue.
type CommandMeter struct{}

// Init implements Meter.
func (CommandMeter) Init(int) {}

// Enqueued implements Meter.
func (CommandMeter) Enqueued(int, int) { metrics.AddCommandQueueSize(1) }

// Dequeued implements Meter.
func (CommandMeter) Dequeued(int, int) { metrics.AddCommandQueueSize(-1) }

// Rejected implements Meter.
func (CommandMeter) Rejected(reason string) {
	metrics.RecordErrorByComponent("command_queue", reason)
}
