// services/hal/internal/worker/measure_worker.go
package worker

import (
	"context"
	"errors"
	"time"

	"chargepath-go/services/hal/internal/halcore"
	"chargepath-go/services/hal/internal/util"
)

// MeasureWorker owns one bus. It runs Trigger/Collect cycles for the
// adaptors on that bus one at a time, so register traffic from sampling
// never interleaves on the wire.
type MeasureWorker struct {
	cfg  halcore.WorkerConfig
	reqQ chan halcore.MeasureReq
	sink chan<- halcore.Result

	pending map[string]*cycle
	again   map[string]bool // prio request arrived while a cycle was pending
	queue   []*cycle
	timer   *time.Timer
}

type cycle struct {
	id      string
	adaptor halcore.Adaptor
	due     time.Time
	retries int
}

func New(cfg halcore.WorkerConfig, sink chan<- halcore.Result) *MeasureWorker {
	if cfg.TriggerTimeout <= 0 {
		cfg.TriggerTimeout = 100 * time.Millisecond
	}
	if cfg.CollectTimeout <= 0 {
		cfg.CollectTimeout = 250 * time.Millisecond
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 20 * time.Millisecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.InputQueueSize <= 0 {
		cfg.InputQueueSize = 8
	}
	return &MeasureWorker{
		cfg:     cfg,
		reqQ:    make(chan halcore.MeasureReq, cfg.InputQueueSize),
		sink:    sink,
		pending: map[string]*cycle{},
		again:   map[string]bool{},
		timer:   time.NewTimer(time.Hour),
	}
}

// Submit queues a cycle without blocking. false means the queue is full.
func (w *MeasureWorker) Submit(req halcore.MeasureReq) bool {
	select {
	case w.reqQ <- req:
		return true
	default:
		return false
	}
}

func (w *MeasureWorker) Start(ctx context.Context) {
	if !w.timer.Stop() {
		util.DrainTimer(w.timer)
	}
	go w.loop(ctx)
}

func (w *MeasureWorker) loop(ctx context.Context) {
	for {
		if next := w.nextDue(); next.IsZero() {
			util.ResetTimer(w.timer, time.Hour)
		} else {
			util.ResetTimer(w.timer, time.Until(next))
		}
		select {
		case <-ctx.Done():
			return
		case req := <-w.reqQ:
			if _, busy := w.pending[req.ID]; busy {
				if req.Prio {
					w.again[req.ID] = true
				}
				continue
			}
			w.trigger(ctx, &cycle{id: req.ID, adaptor: req.Adaptor})
		case <-w.timer.C:
			w.collectDue(ctx, time.Now())
		}
	}
}

func (w *MeasureWorker) trigger(ctx context.Context, c *cycle) {
	tctx, cancel := context.WithTimeout(ctx, w.cfg.TriggerTimeout)
	after, err := c.adaptor.Trigger(tctx)
	cancel()
	if err != nil {
		w.emit(ctx, halcore.Result{ID: c.id, Err: err})
		return
	}
	c.due = time.Now().Add(after)
	c.retries = 0
	w.pending[c.id] = c
	w.queue = append(w.queue, c)
}

func (w *MeasureWorker) collectDue(ctx context.Context, now time.Time) {
	var keep, rerun []*cycle
	for _, c := range w.queue {
		if now.Before(c.due) {
			keep = append(keep, c)
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, w.cfg.CollectTimeout)
		s, err := c.adaptor.Collect(cctx)
		cancel()
		if errors.Is(err, halcore.ErrNotReady) && c.retries < w.cfg.MaxRetries {
			c.retries++
			c.due = now.Add(w.cfg.RetryBackoff)
			keep = append(keep, c)
			continue
		}
		delete(w.pending, c.id)
		w.emit(ctx, halcore.Result{ID: c.id, Sample: s, Err: err})
		if w.again[c.id] {
			delete(w.again, c.id)
			rerun = append(rerun, c)
		}
	}
	w.queue = keep
	for _, c := range rerun {
		w.trigger(ctx, c)
	}
}

func (w *MeasureWorker) emit(ctx context.Context, r halcore.Result) {
	select {
	case w.sink <- r:
	case <-ctx.Done():
	}
}

func (w *MeasureWorker) nextDue() time.Time {
	var min time.Time
	for _, c := range w.queue {
		if min.IsZero() || c.due.Before(min) {
			min = c.due
		}
	}
	return min
}
