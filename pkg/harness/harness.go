/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package harness asserts that the events a pipeline emits match an expected
// sequence, element by element.
//
// A typical test injects a testengine.Scheduler into the pipeline, attaches
// an assertion with Expect or ExpectNext, and then releases the queued work
// with RunOne or RunAll. Events flow synchronously into the assertion, which
// reports the first divergence through the Reporter and keeps going.
package harness

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/d-abe/ReactiveKit/pkg/events"
	"github.com/d-abe/ReactiveKit/pkg/logging"
)

// Disposable releases a subscription.
type Disposable interface {
	Dispose()
}

// DisposableFunc adapts a function to the Disposable interface.
type DisposableFunc func()

func (f DisposableFunc) Dispose() {
	f()
}

// Observable is the subscription capability of a pipeline under test. The
// observer must be invoked once per event, in emission order, on whatever
// goroutine runs the pipeline's work.
type Observable[T events.Element] interface {
	Observe(observer func(events.Event[T])) Disposable
}

// ObservableFunc adapts a function to the Observable interface.
type ObservableFunc[T events.Element] func(observer func(events.Event[T])) Disposable

func (f ObservableFunc[T]) Observe(observer func(events.Event[T])) Disposable {
	return f(observer)
}

// Reporter receives assertion failures. *testing.T and GinkgoT() satisfy it.
// A failure is reported, not thrown: later events and later assertions in the
// same test still run.
type Reporter interface {
	Errorf(format string, args ...interface{})
}

// Interceptor gets a copy of every event an assertion observes, e.g. to
// record it. An error is reported as an assertion failure.
type Interceptor[T events.Element] interface {
	Intercept(event events.Event[T]) error
}

type ExpectOpt interface{}

type messageOpt string

// MessageOpt prefixes every failure reported by the assertion.
func MessageOpt(message string) ExpectOpt {
	return messageOpt(message)
}

type fulfillOpt struct {
	expectation *Expectation
}

// FulfillOpt fulfills expectation when the assertion observes a termination
// event.
func FulfillOpt(expectation *Expectation) ExpectOpt {
	return fulfillOpt{expectation: expectation}
}

type interceptorOpt[T events.Element] struct {
	interceptor Interceptor[T]
}

// InterceptorOpt passes every observed event to interceptor.
func InterceptorOpt[T events.Element](interceptor Interceptor[T]) ExpectOpt {
	return interceptorOpt[T]{interceptor: interceptor}
}

type loggerOpt struct {
	logger logging.Logger
}

// LoggerOpt logs every observed event at debug level.
func LoggerOpt(logger logging.Logger) ExpectOpt {
	return loggerOpt{logger: logger}
}

type settings[T events.Element] struct {
	message      string
	expectation  *Expectation
	interceptors []Interceptor[T]
	logger       logging.Logger
}

func parseOpts[T events.Element](opts []ExpectOpt) *settings[T] {
	s := &settings[T]{
		logger: logging.NilLogger,
	}

	for _, opt := range opts {
		switch v := opt.(type) {
		case messageOpt:
			s.message = string(v)
		case fulfillOpt:
			s.expectation = v.expectation
		case interceptorOpt[T]:
			s.interceptors = append(s.interceptors, v.interceptor)
		case loggerOpt:
			s.logger = logging.OrNil(v.logger)
		}
	}

	return s
}

// Expect subscribes to source and checks that it emits exactly expected.
//
// Each observed event is compared with the next expected one using
// events.Equal. A mismatch, or an event arriving when nothing more is
// expected, is reported through r together with the events received so far
// and the location of the Expect call. Missing trailing events are not
// detected here: wait on an Expectation passed with FulfillOpt for that.
//
// The subscription is left to the pipeline's own teardown.
func Expect[T events.Element](r Reporter, source Observable[T], expected []events.Event[T], opts ...ExpectOpt) {
	expect(r, source, expected, callSite(2), parseOpts[T](opts))
}

// ExpectNext expects a Next event for each element, in order, followed by
// a completion.
func ExpectNext[T events.Element](r Reporter, source Observable[T], elements []T, opts ...ExpectOpt) {
	expected := append(events.NextAll(elements...), events.Completed[T]())
	expect(r, source, expected, callSite(2), parseOpts[T](opts))
}

func expect[T events.Element](r Reporter, source Observable[T], expected []events.Event[T], site string, s *settings[T]) {
	remaining := events.ListOf(expected...)
	received := &events.List[events.Event[T]]{}

	prefix := site + ": "
	if s.message != "" {
		prefix += s.message + " "
	}

	logger := logging.Decorate(s.logger, "expect: ", "site", site)

	report := func(format string, args ...interface{}) {
		if h, ok := r.(interface{ Helper() }); ok {
			h.Helper()
		}
		r.Errorf("%s%s", prefix, fmt.Sprintf(format, args...))
	}

	source.Observe(func(event events.Event[T]) {
		received.PushBack(event)
		logger.Log(logging.LevelDebug, "event observed", "index", received.Len()-1, "event", event)

		for _, interceptor := range s.interceptors {
			if err := interceptor.Intercept(event); err != nil {
				report("could not intercept %s: %v", event, err)
			}
		}

		next, ok := remaining.PopFront()
		if !ok {
			report("Got more events than expected. (Got %s instead of %s)",
				events.Format(received.Slice()), events.Format(expected))
			return
		}

		if !events.Equal(event, next) {
			report("(Got %s instead of %s)",
				events.Format(received.Slice()), events.Format(expected))
		}

		if event.IsTermination() && s.expectation != nil {
			s.expectation.Fulfill()
		}
	})
}

// callSite returns file:line of the caller skip frames above callSite.
func callSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
