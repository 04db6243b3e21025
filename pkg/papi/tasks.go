package papi

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pressroom-io/papi/internal/constants"
)

// Task is a handle on a server-side task record. The server owns the
// record's lifecycle; this handle re-fetches it on demand and exposes the
// well-known fields. A task is done when Finished reports true; Code and
// ErrorMessage are meaningful only then.
type Task struct {
	*Resource
}

// NewTask wraps an already-fetched task record.
func NewTask(session Session, path string, attrs Attrs) *Task {
	return &Task{Resource: NewResource(session, path, attrs)}
}

// OpenTask fetches a task record by path.
func OpenTask(ctx context.Context, session Session, path string) (*Task, error) {
	resource, err := OpenResource(ctx, session, path)
	if err != nil {
		return nil, err
	}

	return &Task{Resource: resource}, nil
}

// ID returns the task identifier.
func (t *Task) ID() string {
	return t.StringOr("id", "")
}

// Finished reports whether the server has marked the task done. Absent
// means still running.
func (t *Task) Finished() bool {
	return t.BoolOr("finished", false)
}

// Code returns the task's exit code. Zero is success; nonzero is failure.
// Meaningful only once Finished is true.
func (t *Task) Code() int {
	return t.IntOr("code", 0)
}

// ErrorMessage returns the human-readable failure message, if any.
func (t *Task) ErrorMessage() string {
	return t.StringOr("error", "")
}

// Output returns the task's accumulated output lines.
func (t *Task) Output() []string {
	lines, err := t.Strings("output")
	if err != nil {
		return nil
	}

	return lines
}

// Last returns the output position to pass as "first" on the next update
// when tailing incrementally.
func (t *Task) Last() int {
	return t.IntOr("last", 0)
}

// Result returns the server-reported result payload, if any.
func (t *Task) Result() any {
	return t.AttrOr("result", nil)
}

// Update re-fetches the task once, replacing the snapshot. Extra query
// params ("first", "wait") are forwarded to the server.
func (t *Task) Update(ctx context.Context, query url.Values) error {
	return t.Refresh(ctx, query)
}

// PollOptions shapes the WaitFor schedule.
type PollOptions struct {
	// InitialWait is the first sleep between polls.
	InitialWait time.Duration
	// MaxWait caps the sleep between polls.
	MaxWait time.Duration
	// Backoff multiplies the sleep after each poll; 1.0 polls at a fixed
	// interval.
	Backoff float64
}

// DefaultPollOptions returns the standard polling schedule.
func DefaultPollOptions() PollOptions {
	return PollOptions{
		InitialWait: constants.DefaultTaskInitialWait,
		MaxWait:     constants.DefaultTaskMaxWait,
		Backoff:     constants.DefaultTaskBackoff,
	}
}

// sleep waits for d or until the context ends. Swapped out in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("waiting between polls: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// WaitFor polls the task until the server reports it finished. Each cycle
// is one Update followed by a sleep that grows by Backoff up to MaxWait; a
// poll that comes back finished skips the final sleep. A finished task
// that failed is not an error here; callers inspect Code and ErrorMessage.
// Cancel the context to abandon the poll early.
func (t *Task) WaitFor(ctx context.Context, opts PollOptions) error {
	wait := opts.InitialWait
	if wait <= 0 {
		wait = constants.DefaultTaskInitialWait
	}

	maxWait := opts.MaxWait
	if maxWait <= 0 {
		maxWait = constants.DefaultTaskMaxWait
	}

	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = constants.DefaultTaskBackoff
	}

	for !t.Finished() {
		err := t.Update(ctx, nil)
		if err != nil {
			return fmt.Errorf("polling task %s: %w", t.Path(), err)
		}

		if t.Finished() {
			break
		}

		err = sleep(ctx, wait)
		if err != nil {
			return err
		}

		next := time.Duration(float64(wait) * backoff)
		if next > maxWait {
			next = maxWait
		}

		wait = next
	}

	return nil
}
