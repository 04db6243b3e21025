package papi

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPollTransport = errors.New("transport down")

// pollSession serves scripted task bodies, one per Get call.
type pollSession struct {
	bodies  []string
	errAt   int // 1-based call index that fails; 0 never fails
	calls   int
	queries []url.Values
}

func (s *pollSession) Get(_ context.Context, _ string, query url.Values) ([]byte, error) {
	s.calls++
	s.queries = append(s.queries, query)

	if s.errAt != 0 && s.calls == s.errAt {
		return nil, errPollTransport
	}

	idx := s.calls - 1
	if idx >= len(s.bodies) {
		idx = len(s.bodies) - 1
	}

	return []byte(s.bodies[idx]), nil
}

func (s *pollSession) Post(context.Context, string, interface{}) ([]byte, error) {
	return nil, errPollTransport
}

func (s *pollSession) Put(context.Context, string, interface{}) ([]byte, error) {
	return nil, errPollTransport
}

func (s *pollSession) Patch(context.Context, string, interface{}) ([]byte, error) {
	return nil, errPollTransport
}

func (s *pollSession) Delete(context.Context, string) ([]byte, error) {
	return nil, errPollTransport
}

// stubSleep replaces the pkg-level sleep with a recorder for the duration
// of one test.
func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()

	original := sleep

	var slept []time.Duration

	sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)

		return nil
	}

	t.Cleanup(func() { sleep = original })

	return &slept
}

func runningBody() string {
	return `{"id": "t-1", "finished": false, "code": 0, "error": "", "output": ["starting"], "last": 1}`
}

func finishedBody() string {
	return `{"id": "t-1", "finished": true, "code": 0, "error": "", "output": ["starting", "done"], "last": 2}`
}

func failedBody() string {
	return `{"id": "t-1", "finished": true, "code": 1, "error": "bundle extraction failed", "last": 2}`
}

func TestTask_Accessors(t *testing.T) {
	task := NewTask(&pollSession{}, "v1/tasks/t-1", Attrs{
		"id":       "t-1",
		"finished": true,
		"code":     float64(1),
		"error":    "bundle extraction failed",
		"output":   []any{"a", "b"},
		"last":     float64(2),
		"result":   map[string]any{"guid": "c-1"},
	})

	assert.Equal(t, "t-1", task.ID())
	assert.True(t, task.Finished())
	assert.Equal(t, 1, task.Code())
	assert.Equal(t, "bundle extraction failed", task.ErrorMessage())
	assert.Equal(t, []string{"a", "b"}, task.Output())
	assert.Equal(t, 2, task.Last())
	assert.Equal(t, map[string]any{"guid": "c-1"}, task.Result())
}

func TestTask_Accessors_Defaults(t *testing.T) {
	task := NewTask(&pollSession{}, "v1/tasks/t-1", Attrs{"id": "t-1"})

	assert.False(t, task.Finished())
	assert.Equal(t, 0, task.Code())
	assert.Empty(t, task.ErrorMessage())
	assert.Nil(t, task.Output())
	assert.Equal(t, 0, task.Last())
	assert.Nil(t, task.Result())
}

func TestTask_Update(t *testing.T) {
	session := &pollSession{bodies: []string{finishedBody()}}
	task := NewTask(session, "v1/tasks/t-1", Attrs{"id": "t-1", "finished": false})

	query := url.Values{"first": []string{"1"}, "wait": []string{"5"}}
	require.NoError(t, task.Update(context.Background(), query))

	assert.Equal(t, 1, session.calls)
	assert.Equal(t, query, session.queries[0])
	assert.True(t, task.Finished())
	assert.Equal(t, []string{"starting", "done"}, task.Output())
}

func TestTask_WaitFor_BackoffSchedule(t *testing.T) {
	slept := stubSleep(t)

	session := &pollSession{bodies: []string{
		runningBody(),
		runningBody(),
		runningBody(),
		finishedBody(),
	}}
	task := NewTask(session, "v1/tasks/t-1", Attrs{"id": "t-1", "finished": false})

	err := task.WaitFor(context.Background(), PollOptions{
		InitialWait: 1 * time.Second,
		MaxWait:     10 * time.Second,
		Backoff:     2,
	})
	require.NoError(t, err)

	// Finished on the 4th poll: three sleeps, geometric until done.
	assert.Equal(t, 4, session.calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}, *slept)
	assert.True(t, task.Finished())
}

func TestTask_WaitFor_MaxWaitCap(t *testing.T) {
	slept := stubSleep(t)

	session := &pollSession{bodies: []string{
		runningBody(),
		runningBody(),
		runningBody(),
		runningBody(),
		runningBody(),
		finishedBody(),
	}}
	task := NewTask(session, "v1/tasks/t-1", Attrs{"id": "t-1", "finished": false})

	err := task.WaitFor(context.Background(), PollOptions{
		InitialWait: 1 * time.Second,
		MaxWait:     4 * time.Second,
		Backoff:     2,
	})
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		4 * time.Second,
		4 * time.Second,
	}, *slept)
}

func TestTask_WaitFor_FixedInterval(t *testing.T) {
	slept := stubSleep(t)

	session := &pollSession{bodies: []string{
		runningBody(),
		runningBody(),
		runningBody(),
		finishedBody(),
	}}
	task := NewTask(session, "v1/tasks/t-1", Attrs{"id": "t-1", "finished": false})

	err := task.WaitFor(context.Background(), PollOptions{
		InitialWait: 1 * time.Second,
		MaxWait:     10 * time.Second,
		Backoff:     1,
	})
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{1 * time.Second, 1 * time.Second, 1 * time.Second}, *slept)
}

func TestTask_WaitFor_AlreadyFinished(t *testing.T) {
	slept := stubSleep(t)

	session := &pollSession{}
	task := NewTask(session, "v1/tasks/t-1", Attrs{"id": "t-1", "finished": true})

	require.NoError(t, task.WaitFor(context.Background(), DefaultPollOptions()))
	assert.Equal(t, 0, session.calls)
	assert.Empty(t, *slept)
}

func TestTask_WaitFor_TaskFailureIsNotAnError(t *testing.T) {
	slept := stubSleep(t)

	session := &pollSession{bodies: []string{runningBody(), failedBody()}}
	task := NewTask(session, "v1/tasks/t-1", Attrs{"id": "t-1", "finished": false})

	err := task.WaitFor(context.Background(), DefaultPollOptions())
	require.NoError(t, err)

	assert.True(t, task.Finished())
	assert.Equal(t, 1, task.Code())
	assert.Equal(t, "bundle extraction failed", task.ErrorMessage())
	assert.Len(t, *slept, 1)
}

func TestTask_WaitFor_TransportError(t *testing.T) {
	stubSleep(t)

	session := &pollSession{
		bodies: []string{runningBody(), runningBody()},
		errAt:  2,
	}
	task := NewTask(session, "v1/tasks/t-1", Attrs{"id": "t-1", "finished": false})

	err := task.WaitFor(context.Background(), DefaultPollOptions())
	require.ErrorIs(t, err, errPollTransport)
	assert.Equal(t, 2, session.calls)
}

func TestTask_WaitFor_ContextCancelled(t *testing.T) {
	session := &pollSession{bodies: []string{runningBody()}}
	task := NewTask(session, "v1/tasks/t-1", Attrs{"id": "t-1", "finished": false})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := task.WaitFor(ctx, PollOptions{InitialWait: time.Millisecond})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, session.calls)
}

func TestDefaultPollOptions(t *testing.T) {
	opts := DefaultPollOptions()

	assert.Equal(t, 1*time.Second, opts.InitialWait)
	assert.Equal(t, 10*time.Second, opts.MaxWait)
	assert.InDelta(t, 1.5, opts.Backoff, 0.0001)
}
