/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package harness

import (
	"fmt"

	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"

	"github.com/d-abe/ReactiveKit/pkg/events"
)

// MatchEvent succeeds if the actual events.Event[T] equals expected under
// events.Equal.
//
//	Expect(collector.Events()[0]).To(MatchEvent(events.Next(1)))
func MatchEvent[T events.Element](expected events.Event[T]) types.GomegaMatcher {
	return &eventMatcher[T]{expected: expected}
}

type eventMatcher[T events.Element] struct {
	expected events.Event[T]
}

func (m *eventMatcher[T]) Match(actual interface{}) (bool, error) {
	event, ok := actual.(events.Event[T])
	if !ok {
		return false, fmt.Errorf("MatchEvent expects an events.Event[%T]. Got:\n%s", *new(T), format.Object(actual, 1))
	}
	return events.Equal(event, m.expected), nil
}

func (m *eventMatcher[T]) FailureMessage(actual interface{}) string {
	return format.Message(describe(actual), "to match event", m.expected.String())
}

func (m *eventMatcher[T]) NegatedFailureMessage(actual interface{}) string {
	return format.Message(describe(actual), "not to match event", m.expected.String())
}

// MatchEvents succeeds if the actual []events.Event[T] has the same length as
// expected and every event matches the one at the same index.
//
//	Expect(collector.Events()).To(MatchEvents(events.Next(1), events.Completed[int]()))
func MatchEvents[T events.Element](expected ...events.Event[T]) types.GomegaMatcher {
	return &eventsMatcher[T]{expected: expected}
}

type eventsMatcher[T events.Element] struct {
	expected []events.Event[T]
}

func (m *eventsMatcher[T]) Match(actual interface{}) (bool, error) {
	actualEvents, ok := actual.([]events.Event[T])
	if !ok {
		return false, fmt.Errorf("MatchEvents expects a []events.Event[%T]. Got:\n%s", *new(T), format.Object(actual, 1))
	}

	if len(actualEvents) != len(m.expected) {
		return false, nil
	}

	for i := range actualEvents {
		if !events.Equal(actualEvents[i], m.expected[i]) {
			return false, nil
		}
	}

	return true, nil
}

func (m *eventsMatcher[T]) FailureMessage(actual interface{}) string {
	return format.Message(m.describe(actual), "to match events", events.Format(m.expected))
}

func (m *eventsMatcher[T]) NegatedFailureMessage(actual interface{}) string {
	return format.Message(m.describe(actual), "not to match events", events.Format(m.expected))
}

func (m *eventsMatcher[T]) describe(actual interface{}) interface{} {
	if actualEvents, ok := actual.([]events.Event[T]); ok {
		return events.Format(actualEvents)
	}
	return actual
}

// describe renders events the same way the diagnostics of Expect do, so
// failure output does not dump internal fields.
func describe(actual interface{}) interface{} {
	if s, ok := actual.(fmt.Stringer); ok {
		return s.String()
	}
	return actual
}
