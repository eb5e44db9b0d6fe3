package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"chargepath-go/services/hal/internal/halcore"
)

type fakeAdaptor struct {
	id         string
	delay      time.Duration
	notReady   int // consecutive ErrNotReady before success
	triggerErr error
}

func (f *fakeAdaptor) ID() string                      { return f.id }
func (f *fakeAdaptor) Capabilities() []halcore.CapInfo { return nil }
func (f *fakeAdaptor) Trigger(ctx context.Context) (time.Duration, error) {
	return f.delay, f.triggerErr
}
func (f *fakeAdaptor) Collect(ctx context.Context) (halcore.Sample, error) {
	if f.notReady > 0 {
		f.notReady--
		return nil, halcore.ErrNotReady
	}
	return halcore.Sample{{Kind: "charger", Payload: "standby", TsMs: time.Now().UnixMilli()}}, nil
}
func (f *fakeAdaptor) Control(string, string, any) (any, error) { return nil, halcore.ErrUnsupported }

func fastConfig() halcore.WorkerConfig {
	return halcore.WorkerConfig{
		TriggerTimeout: 5 * time.Millisecond,
		CollectTimeout: 10 * time.Millisecond,
		RetryBackoff:   2 * time.Millisecond,
		MaxRetries:     3,
		InputQueueSize: 4,
	}
}

func waitResult(t *testing.T, ch <-chan halcore.Result) halcore.Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(300 * time.Millisecond):
		t.Fatal("timeout waiting for result")
	}
	return halcore.Result{}
}

func TestCollectRetriesNotReady(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan halcore.Result, 1)
	w := New(fastConfig(), results)
	w.Start(ctx)

	ad := &fakeAdaptor{id: "chg0", delay: time.Millisecond, notReady: 2}
	if !w.Submit(halcore.MeasureReq{ID: ad.id, Adaptor: ad}) {
		t.Fatal("submit failed")
	}
	r := waitResult(t, results)
	if r.ID != "chg0" || r.Err != nil || len(r.Sample) != 1 {
		t.Fatalf("result = %+v", r)
	}
}

func TestCollectGivesUpAfterMaxRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan halcore.Result, 1)
	w := New(fastConfig(), results)
	w.Start(ctx)

	ad := &fakeAdaptor{id: "chg0", notReady: 100}
	w.Submit(halcore.MeasureReq{ID: ad.id, Adaptor: ad})
	if r := waitResult(t, results); !errors.Is(r.Err, halcore.ErrNotReady) {
		t.Fatalf("result = %+v", r)
	}
}

func TestTriggerErrorIsReported(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan halcore.Result, 1)
	w := New(halcore.WorkerConfig{}, results)
	w.Start(ctx)

	boom := errors.New("boom")
	ad := &fakeAdaptor{id: "chg0", triggerErr: boom}
	w.Submit(halcore.MeasureReq{ID: ad.id, Adaptor: ad})
	if r := waitResult(t, results); !errors.Is(r.Err, boom) {
		t.Fatalf("result = %+v", r)
	}
}

func TestPrioDuringPendingCycleRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan halcore.Result, 4)
	w := New(fastConfig(), results)
	w.Start(ctx)

	ad := &fakeAdaptor{id: "chg0", delay: 20 * time.Millisecond}
	w.Submit(halcore.MeasureReq{ID: ad.id, Adaptor: ad})
	w.Submit(halcore.MeasureReq{ID: ad.id, Adaptor: ad})             // coalesced
	w.Submit(halcore.MeasureReq{ID: ad.id, Adaptor: ad, Prio: true}) // rerun once

	for i := 0; i < 2; i++ {
		if r := waitResult(t, results); r.Err != nil {
			t.Fatalf("result %d = %+v", i, r)
		}
	}
	select {
	case r := <-results:
		t.Fatalf("unexpected third result: %+v", r)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestSubmitFullQueue(t *testing.T) {
	w := New(halcore.WorkerConfig{InputQueueSize: 1}, make(chan halcore.Result, 1))
	ad := &fakeAdaptor{id: "chg0"}
	if !w.Submit(halcore.MeasureReq{ID: ad.id, Adaptor: ad}) {
		t.Fatal("first submit should fit")
	}
	if w.Submit(halcore.MeasureReq{ID: ad.id, Adaptor: ad}) {
		t.Fatal("second submit should report a full queue")
	}
}
