package queue

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

type recordingNotifier struct {
	mu     sync.Mutex
	got    []domain.TaskNotification
	err    error
	expect int
	done   chan struct{}
}

// newRecordingNotifier closes done once expect notifications have arrived.
func newRecordingNotifier(expect int) *recordingNotifier {
	r := &recordingNotifier{expect: expect, done: make(chan struct{})}
	if expect == 0 {
		close(r.done)
	}
	return r
}

func (r *recordingNotifier) Notify(_ context.Context, n domain.TaskNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	if len(r.got) == r.expect {
		close(r.done)
	}
	return r.err
}

func (r *recordingNotifier) snapshot() []domain.TaskNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TaskNotification(nil), r.got...)
}

func TestDispatcher_DeliversInOrderPerTask(t *testing.T) {
	rec := newRecordingNotifier(3)
	d := NewDispatcher(2, rec, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(domain.TaskNotification{TaskID: "t1", Status: domain.StatusApproved, Actor: "a"})
	d.Enqueue(domain.TaskNotification{TaskID: "t1", Status: domain.StatusRejected, Actor: "b"})
	d.Enqueue(domain.TaskNotification{TaskID: "t1", Status: domain.StatusApproved, Actor: "c"})

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifications not delivered")
	}

	got := rec.snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Actor)
	assert.Equal(t, "b", got[1].Actor)
	assert.Equal(t, "c", got[2].Actor)
}

func TestDispatcher_NotifierErrorDoesNotStopWorker(t *testing.T) {
	rec := newRecordingNotifier(2)
	rec.err = errors.New("boom")
	d := NewDispatcher(1, rec, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(domain.TaskNotification{TaskID: "x"})
	d.Enqueue(domain.TaskNotification{TaskID: "y"})

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped after error")
	}
}

func TestDispatcher_EnqueueDropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, newRecordingNotifier(0), zerolog.Nop())

	// Not started: nothing drains the buffer.
	for i := 0; i < channelBuffer+10; i++ {
		d.Enqueue(domain.TaskNotification{TaskID: "same"})
	}
	assert.Len(t, d.workers[0], channelBuffer)
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(8, newRecordingNotifier(0), zerolog.Nop())
	first := d.shardIndex("task-42")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex("task-42"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 8)
}

func TestNewDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, newRecordingNotifier(0), zerolog.Nop())
	assert.Len(t, d.workers, defaultWorkers)
}

func TestLogNotifier_WritesSimulatedEmail(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf))

	err := n.Notify(context.Background(), domain.TaskNotification{
		TaskID:       "t1",
		Status:       domain.StatusApproved,
		AssignedUser: "bob",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "task approved, email simulated for bob")
}

func TestFanout_ReturnsFirstErrorAndCallsAll(t *testing.T) {
	a := newRecordingNotifier(1)
	a.err = errors.New("first")
	b := newRecordingNotifier(1)

	err := Fanout{a, b}.Notify(context.Background(), domain.TaskNotification{TaskID: "t"})
	assert.EqualError(t, err, "first")
	assert.Len(t, b.snapshot(), 1)
}
