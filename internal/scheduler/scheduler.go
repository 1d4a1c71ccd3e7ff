// Package scheduler runs deferred and periodic callbacks that belong to a
// group, usually a browser session, so they can be cancelled together.
package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrClosed = errors.New("scheduler is shut down")

type key struct {
	group string
	name  string
}

type task struct {
	key    key
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	cancelled bool
}

// begin reports whether the callback may start. Once stop has returned,
// begin never reports true again.
func (t *task) begin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.cancelled && t.ctx.Err() == nil
}

func (t *task) stop() {
	t.cancel()
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
}

// Scheduler owns a set of named tasks. Scheduling a task under a
// (group, name) that is already pending replaces and cancels the old one.
//
// A cancelled task never starts its callback after Cancel returns; a callback
// that is already running sees its context cancelled.
type Scheduler struct {
	log *zap.Logger

	mu     sync.Mutex
	tasks  map[key]*task
	closed bool
	wg     sync.WaitGroup
}

func New(log *zap.Logger) *Scheduler {
	return &Scheduler{
		log:   log,
		tasks: make(map[key]*task),
	}
}

// After runs fn once, d from now.
func (s *Scheduler) After(group, name string, d time.Duration, fn func(ctx context.Context)) error {
	t, err := s.add(group, name)
	if err != nil {
		return err
	}

	go func() {
		defer s.finish(t)

		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-t.ctx.Done():
			return
		case <-timer.C:
		}
		if t.begin() {
			s.run(t, func() bool { fn(t.ctx); return false })
		}
	}()
	return nil
}

// Every runs fn each interval until fn returns false or the task is cancelled.
func (s *Scheduler) Every(group, name string, interval time.Duration, fn func(ctx context.Context) bool) error {
	if interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}
	t, err := s.add(group, name)
	if err != nil {
		return err
	}

	go func() {
		defer s.finish(t)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-t.ctx.Done():
				return
			case <-ticker.C:
			}
			if !t.begin() {
				return
			}
			if !s.run(t, func() bool { return fn(t.ctx) }) {
				return
			}
		}
	}()
	return nil
}

// Cancel stops the pending task under (group, name) and reports whether
// there was one.
func (s *Scheduler) Cancel(group, name string) bool {
	s.mu.Lock()
	t, ok := s.tasks[key{group, name}]
	if ok {
		delete(s.tasks, t.key)
	}
	s.mu.Unlock()

	if ok {
		t.stop()
	}
	return ok
}

// CancelGroup stops every pending task of group and returns how many there were.
func (s *Scheduler) CancelGroup(group string) int {
	return s.cancelWhere(func(k key) bool { return k.group == group })
}

// CancelPrefix stops the pending tasks of group whose name starts with prefix.
func (s *Scheduler) CancelPrefix(group, prefix string) int {
	return s.cancelWhere(func(k key) bool {
		return k.group == group && strings.HasPrefix(k.name, prefix)
	})
}

func (s *Scheduler) cancelWhere(match func(key) bool) int {
	var victims []*task

	s.mu.Lock()
	for k, t := range s.tasks {
		if match(k) {
			victims = append(victims, t)
			delete(s.tasks, k)
		}
	}
	s.mu.Unlock()

	for _, t := range victims {
		t.stop()
	}
	return len(victims)
}

func (s *Scheduler) Pending(group string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k := range s.tasks {
		if k.group == group {
			n++
		}
	}
	return n
}

// Shutdown cancels every task and waits for running callbacks to return.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	victims := make([]*task, 0, len(s.tasks))
	for k, t := range s.tasks {
		victims = append(victims, t)
		delete(s.tasks, k)
	}
	s.mu.Unlock()

	for _, t := range victims {
		t.stop()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.log.Warn("scheduler shutdown timed out; callbacks still running")
		return ctx.Err()
	}
}

func (s *Scheduler) add(group, name string) (*task, error) {
	ctx, cancel := context.WithCancel(context.Background())
	t := &task{key: key{group, name}, ctx: ctx, cancel: cancel}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	prev := s.tasks[t.key]
	s.tasks[t.key] = t
	s.wg.Add(1)
	s.mu.Unlock()

	if prev != nil {
		prev.stop()
	}
	return t, nil
}

func (s *Scheduler) finish(t *task) {
	s.mu.Lock()
	if s.tasks[t.key] == t {
		delete(s.tasks, t.key)
	}
	s.mu.Unlock()

	t.cancel()
	s.wg.Done()
}

// run invokes fn, turning a panic into a logged error that ends the task.
func (s *Scheduler) run(t *task, fn func() bool) (again bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduled task panicked",
				zap.String("group", t.key.group),
				zap.String("task", t.key.name),
				zap.Any("panic", r),
			)
			again = false
		}
	}()
	return fn()
}
