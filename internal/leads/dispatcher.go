package leads

import (
	"context"
	"sync"
	"time"

	"elite-gym/internal/models"
	"elite-gym/internal/observability/metrics"
	"elite-gym/pkg/logging"
)

const sendTimeout = 15 * time.Second

// Envelope is one formatted lead ready for hand-off.
type Envelope struct {
	SessionID   string
	Kind        string
	Destination string
	Text        string
}

// Dispatcher hands leads to a Sink without waiting for the outcome. Failures
// are logged and audited but never reported back to the flow that produced
// the lead: from the visitor's side a dispatch always succeeds.
type Dispatcher struct {
	sink     Sink
	channel  string
	recorder Recorder
	metrics  *metrics.LeadMetrics
	logger   *logging.Logger

	mu       sync.Mutex
	idle     *sync.Cond
	inflight int
	closed   bool
}

func NewDispatcher(sink Sink, channel string, recorder Recorder, m *metrics.LeadMetrics, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	d := &Dispatcher{
		sink:     sink,
		channel:  channel,
		recorder: recorder,
		metrics:  m,
		logger:   logger,
	}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Dispatch starts the hand-off in the background and returns immediately.
// After Close it drops the envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, env Envelope) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("dispatcher closed, lead hand-off dropped", "session_id", env.SessionID, "kind", env.Kind)
		return
	}
	d.inflight++
	d.mu.Unlock()

	go func() {
		defer d.finish()
		d.deliver(context.WithoutCancel(ctx), env)
	}()
}

func (d *Dispatcher) finish() {
	d.mu.Lock()
	d.inflight--
	if d.inflight == 0 {
		d.idle.Broadcast()
	}
	d.mu.Unlock()
}

// Wait blocks until no hand-off is in flight. It may run concurrently
// with Dispatch.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.inflight > 0 {
		d.idle.Wait()
	}
}

// Close stops accepting hand-offs and waits for the started ones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, env Envelope) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	row := &models.Dispatch{
		SessionID:   env.SessionID,
		Kind:        env.Kind,
		Channel:     d.channel,
		Destination: env.Destination,
		Status:      models.DispatchStatusSent,
		TextLength:  len([]rune(env.Text)),
	}

	err := d.sink.Send(ctx, env.SessionID, env.Destination, env.Text)
	if err != nil {
		row.Status = models.DispatchStatusFailed
		row.Error = err.Error()
		d.logger.Warn("lead hand-off failed", "session_id", env.SessionID, "kind", env.Kind, "channel", d.channel, "error", err)
	} else {
		d.logger.Info("lead handed off", "session_id", env.SessionID, "kind", env.Kind, "channel", d.channel)
	}
	d.metrics.ObserveDispatch(env.Kind, d.channel, err == nil)

	if d.recorder == nil {
		return
	}
	if err := d.recorder.Record(ctx, row); err != nil {
		d.logger.Error("failed to record dispatch", "session_id", env.SessionID, "error", err)
	}
}
