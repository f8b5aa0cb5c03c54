package scanlog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dynamic-qr-platform/internal/metrics"
	"dynamic-qr-platform/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	mu     sync.Mutex
	events []model.ScanEvent
	err    error
	block  chan struct{}
}

func (w *fakeWriter) Create(ctx context.Context, event *model.ScanEvent) error {
	if w.block != nil {
		select {
		case <-w.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, *event)
	return nil
}

func (w *fakeWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.events)
}

func opts() Options {
	return Options{QueueSize: 16, Workers: 2, WritesPerSec: 1000, WriteTimeout: time.Second}
}

func TestSinkWritesAndDrainsOnStop(t *testing.T) {
	w := &fakeWriter{}
	m := metrics.New(nil)
	s := New(w, opts(), m, zap.NewNop())
	s.Start()

	for i := 0; i < 10; i++ {
		s.Record(model.ScanEvent{QrCodeID: "q1"})
	}

	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, 10, w.count())
	assert.Equal(t, 10.0, testutil.ToFloat64(m.ScansRecorded))
	assert.Zero(t, s.Pending())
}

func TestSinkDropsWhenQueueFull(t *testing.T) {
	w := &fakeWriter{}
	m := metrics.New(nil)
	o := opts()
	o.QueueSize = 2
	s := New(w, o, m, zap.NewNop())

	// 未启动 worker，队列只能容纳两条
	for i := 0; i < 5; i++ {
		s.Record(model.ScanEvent{QrCodeID: "q1"})
	}
	assert.Equal(t, 2, s.Pending())
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ScansDropped))

	s.Start()
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, 2, w.count())
}

func TestSinkRecordAfterStop(t *testing.T) {
	m := metrics.New(nil)
	s := New(&fakeWriter{}, opts(), m, zap.NewNop())
	s.Start()
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	assert.NotPanics(t, func() { s.Record(model.ScanEvent{QrCodeID: "late"}) })
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansDropped))
}

func TestSinkWriteFailure(t *testing.T) {
	m := metrics.New(nil)
	s := New(&fakeWriter{err: errors.New("db down")}, opts(), m, zap.NewNop())
	s.Start()

	s.Record(model.ScanEvent{QrCodeID: "q1"})
	s.Record(model.ScanEvent{QrCodeID: "q2"})
	require.NoError(t, s.Stop(context.Background()))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScanWriteFailures))
	assert.Zero(t, testutil.ToFloat64(m.ScansRecorded))
}

func TestSinkRecordDoesNotBlock(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	m := metrics.New(nil)
	o := opts()
	o.QueueSize = 1
	o.Workers = 1
	o.WriteTimeout = 50 * time.Millisecond
	s := New(w, o, m, zap.NewNop())
	s.Start()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Record(model.ScanEvent{QrCodeID: "q1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record 被写库阻塞")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.Positive(t, testutil.ToFloat64(m.ScansDropped))
}

func TestSinkStopTimeout(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	o := opts()
	o.Workers = 1
	o.WriteTimeout = time.Minute
	s := New(w, o, metrics.New(nil), zap.NewNop())
	s.Start()
	s.Record(model.ScanEvent{QrCodeID: "q1"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)

	close(w.block)
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, 1, w.count())
}
