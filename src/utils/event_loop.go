package utils

import (
	"sync"

	"market-dashboard/src/logger"
)

// -----------------------------------------------------------------------------
// EventLoop
// -----------------------------------------------------------------------------

// EventLoop is the single logical execution context shared by the session,
// the store and the notifier. Tasks run one at a time and to completion, in
// the order they were posted. Whichever goroutine finds the loop idle drains
// the queue; a task posted while another one runs (including from inside a
// task) is queued behind it.
//
// The draining goroutine pays for every task queued meanwhile, so an HTTP
// handler or a transport read pump can be held up by a burst of ticks. Tasks
// must stay short and must never block on I/O; slow work such as closing a
// socket or writing to the journal is handed to another goroutine.
type EventLoop struct {
	mu      sync.Mutex
	tasks   []func()
	running bool
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewEventLoop(log *logger.Logger) *EventLoop {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &EventLoop{Logger: log}
}

// -----------------------------------------------------------------------------

// Post enqueues task. When the loop is idle the caller runs the queue until
// it is empty before Post returns.
func (l *EventLoop) Post(task func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, task)
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true

	for len(l.tasks) > 0 {
		next := l.tasks[0]
		l.tasks[0] = nil
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		l.run(next)

		l.mu.Lock()
	}

	l.running = false
	l.mu.Unlock()
}

// -----------------------------------------------------------------------------

// run executes one task. A panicking observer must not take the loop down.
func (l *EventLoop) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.Logger.Error("event loop task panicked: %v", r)
		}
	}()
	task()
}
