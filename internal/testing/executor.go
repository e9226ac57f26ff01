package testing

import "sync"

// Deferred queues asynchronous work until the test runs it, optionally out of order,
// to simulate network responses arriving in any sequence.
type Deferred struct {
	mu    sync.Mutex
	tasks []func()
}

// Go queues fn.
func (d *Deferred) Go(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, fn)
}

// Len returns the number of queued tasks.
func (d *Deferred) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// RunAt removes and runs the task at index i. It reports false when i is out of range.
func (d *Deferred) RunAt(i int) bool {
	d.mu.Lock()
	if i < 0 || i >= len(d.tasks) {
		d.mu.Unlock()
		return false
	}
	fn := d.tasks[i]
	d.tasks = append(d.tasks[:i], d.tasks[i+1:]...)
	d.mu.Unlock()

	fn()
	return true
}

// RunNext runs the oldest queued task.
func (d *Deferred) RunNext() bool { return d.RunAt(0) }

// RunLast runs the newest queued task.
func (d *Deferred) RunLast() bool { return d.RunAt(d.Len() - 1) }

// RunAll drains the queue in FIFO order, including tasks queued while draining.
func (d *Deferred) RunAll() {
	for d.RunNext() {
	}
}
