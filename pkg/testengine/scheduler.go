/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package testengine

import (
	"bytes"
	"container/list"
	"fmt"
	"math"

	"github.com/d-abe/ReactiveKit/pkg/logging"
)

// Unlimited is the saturated run budget set by RunAll.
const Unlimited = math.MaxInt

// Executor is the execution context a pipeline under test routes its work
// through. Submit may run work synchronously or queue it for later.
type Executor interface {
	Submit(work func())
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(work func())

func (f ExecutorFunc) Submit(work func()) {
	f(work)
}

// Immediate executes every submitted work item synchronously.
var Immediate Executor = ExecutorFunc(func(work func()) { work() })

type SchedulerOpt interface{}

type loggerOpt struct {
	logger logging.Logger
}

// LoggerOpt makes the scheduler log submissions and executions at debug level.
func LoggerOpt(logger logging.Logger) SchedulerOpt {
	return loggerOpt{logger: logger}
}

// Scheduler is an Executor that queues submitted work and runs it only when
// the test raises the run budget with RunOne or RunAll.
//
// Work runs synchronously on the goroutine that raised the budget (or
// submitted the work while budget was available), strictly in submission
// order. Work submitted while another item executes is appended to the queue
// and picked up by the same drain once everything before it has run.
//
// A Scheduler is not safe for concurrent use.
type Scheduler struct {
	// queue holds func() work items in submission order.
	queue *list.List

	// availableRuns is the number of items that may still execute, or Unlimited.
	availableRuns int

	numberOfRuns int

	// draining is set while the drain loop executes an item.
	draining bool

	logger logging.Logger
}

func NewScheduler(opts ...SchedulerOpt) *Scheduler {
	s := &Scheduler{
		queue:  list.New(),
		logger: logging.NilLogger,
	}

	for _, opt := range opts {
		switch v := opt.(type) {
		case loggerOpt:
			s.logger = logging.OrNil(v.logger)
		}
	}

	return s
}

// Context returns the scheduler as the execution context to inject into a
// pipeline under test.
func (s *Scheduler) Context() Executor {
	return s
}

// Submit appends work to the queue and runs as much of the queue as the
// current budget allows.
func (s *Scheduler) Submit(work func()) {
	s.queue.PushBack(work)
	s.logger.Log(logging.LevelDebug, "work submitted", "pending", s.queue.Len(), "budget", s.budget())
	s.drain()
}

// RunOne allows exactly one more queued item to run. It has no effect once
// RunAll has been called.
func (s *Scheduler) RunOne() {
	if s.availableRuns == Unlimited {
		return
	}
	s.availableRuns++
	s.drain()
}

// RunAll removes the budget limit for good and runs everything queued,
// including work queued by the items it runs.
func (s *Scheduler) RunAll() {
	s.availableRuns = Unlimited
	s.drain()
}

// NumberOfRuns returns the number of work items executed so far.
func (s *Scheduler) NumberOfRuns() int {
	return s.numberOfRuns
}

// Pending returns the number of queued items not yet executed.
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// drain re-reads the live queue length on every iteration, so items appended
// by the running item are visited by the same loop. Calls made from inside a
// running item only append or raise the budget; the outer loop does the work.
func (s *Scheduler) drain() {
	if s.draining {
		return
	}

	s.draining = true
	defer func() {
		s.draining = false
	}()

	for s.availableRuns > 0 && s.queue.Len() > 0 {
		work := s.queue.Remove(s.queue.Front()).(func())
		work()
		s.numberOfRuns++
		if s.availableRuns != Unlimited {
			s.availableRuns--
		}
		s.logger.Log(logging.LevelDebug, "work executed", "runs", s.numberOfRuns, "pending", s.queue.Len(), "budget", s.budget())
	}
}

func (s *Scheduler) budget() string {
	if s.availableRuns == Unlimited {
		return "unlimited"
	}
	return fmt.Sprint(s.availableRuns)
}

// Status summarizes the scheduler state for failure diagnostics.
func (s *Scheduler) Status() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Scheduler: runs=%d pending=%d budget=%s", s.numberOfRuns, s.queue.Len(), s.budget())
	if s.queue.Len() > 0 && s.availableRuns == 0 {
		fmt.Fprintf(&buf, " (queued work is waiting for RunOne or RunAll)")
	}
	return buf.String()
}
