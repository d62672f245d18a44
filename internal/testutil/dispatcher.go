package testutil

import (
	"context"
	"sync"

	"alfredoptarigan/cv-screening/internal/tasks"
)

// RecordingDispatcher captures dispatched tasks without running them.
type RecordingDispatcher struct {
	mu    sync.Mutex
	tasks []tasks.Task
	err   error
}

func (d *RecordingDispatcher) Dispatch(ctx context.Context, task tasks.Task) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.err != nil {
		return d.err
	}
	d.tasks = append(d.tasks, task)
	return nil
}

func (d *RecordingDispatcher) Tasks() []tasks.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]tasks.Task(nil), d.tasks...)
}

func (d *RecordingDispatcher) Fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}
