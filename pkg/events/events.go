/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package events defines the events observed from a pipeline under test and
// the equality used to compare them.
//
// An event is one of Next (carrying an element), Failed (carrying an error)
// or Completed. Failed and Completed are termination events: nothing may
// follow them on the same stream.
//
// Elements are restricted to the closed set of shapes enumerated by the
// Element constraint, so that Equal can compare them with each shape's
// natural equality.
package events

import (
	"fmt"
)

// Kind tags the variant of an Event.
type Kind int

const (
	KindNext Kind = iota
	KindFailed
	KindCompleted
)

func (k Kind) String() string {
	switch k {
	case KindNext:
		return "Next"
	case KindFailed:
		return "Failed"
	case KindCompleted:
		return "Completed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "Next":
		return KindNext, true
	case "Failed":
		return KindFailed, true
	case "Completed":
		return KindCompleted, true
	default:
		return 0, false
	}
}

// Event is one item emitted by a pipeline. Element is only meaningful for
// KindNext and Err only for KindFailed.
type Event[T Element] struct {
	Kind    Kind
	Element T
	Err     error
}

// Next returns an event carrying element.
func Next[T Element](element T) Event[T] {
	return Event[T]{Kind: KindNext, Element: element}
}

// Failed returns a failure event carrying err.
func Failed[T Element](err error) Event[T] {
	return Event[T]{Kind: KindFailed, Err: err}
}

// Completed returns a completion event.
func Completed[T Element]() Event[T] {
	return Event[T]{Kind: KindCompleted}
}

// NextAll returns a Next event for each element, in order.
func NextAll[T Element](elements ...T) []Event[T] {
	result := make([]Event[T], len(elements))
	for i, e := range elements {
		result[i] = Next(e)
	}
	return result
}

func (e Event[T]) IsNext() bool {
	return e.Kind == KindNext
}

func (e Event[T]) IsFailure() bool {
	return e.Kind == KindFailed
}

func (e Event[T]) IsCompletion() bool {
	return e.Kind == KindCompleted
}

// IsTermination reports whether e is a failure or a completion.
func (e Event[T]) IsTermination() bool {
	return e.Kind == KindFailed || e.Kind == KindCompleted
}

func (e Event[T]) String() string {
	switch e.Kind {
	case KindNext:
		return fmt.Sprintf("Next(%s)", FormatElement(e.Element))
	case KindFailed:
		return fmt.Sprintf("Failed(%v)", e.Err)
	case KindCompleted:
		return "Completed"
	default:
		return e.Kind.String()
	}
}

// Format renders a sequence of events the way failure diagnostics print them.
func Format[T Element](events []Event[T]) string {
	s := "["
	for i, e := range events {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + "]"
}
