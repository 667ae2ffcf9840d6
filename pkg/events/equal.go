/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package events

import (
	"fmt"
	"slices"
)

// Equal reports whether two events are considered equal for assertion
// purposes.
//
// Two completions are always equal. Two failures are equal whatever errors
// they carry: only the presence of a failure is compared. Two Next events are
// equal if their elements are equal under the element shape's natural
// equality. Events of different kinds are never equal.
func Equal[T Element](a, b Event[T]) bool {
	switch {
	case a.IsCompletion() && b.IsCompletion():
		return true
	case a.IsFailure() && b.IsFailure():
		return true
	case a.IsNext() && b.IsNext():
		return equalElements(a.Element, b.Element)
	default:
		return false
	}
}

// equalElements panics on a shape outside the Element constraint. The
// constraint makes that unreachable; reaching it means the switch below was
// not extended together with Element.
func equalElements[T Element](a, b T) bool {
	switch left := any(a).(type) {
	case int:
		return left == any(b).(int)
	case []int:
		return slices.Equal(left, any(b).([]int))
	case OptionalPair:
		return left.Equal(any(b).(OptionalPair))
	case string:
		return left == any(b).(string)
	case []string:
		return slices.Equal(left, any(b).([]string))
	case Changeset[[]int]:
		right := any(b).(Changeset[[]int])
		return slices.Equal(left.Collection, right.Collection) && equalIndices(left, right)
	case Changeset[[]Pair]:
		right := any(b).(Changeset[[]Pair])
		return EqualPairs(left.Collection, right.Collection) && equalIndices(left, right)
	default:
		panic(fmt.Sprintf("cannot compare that element type: %T %v", a, a))
	}
}

func equalIndices[C any](left, right Changeset[C]) bool {
	return slices.Equal(left.Inserts, right.Inserts) &&
		slices.Equal(left.Deletes, right.Deletes) &&
		slices.Equal(left.Updates, right.Updates)
}

// EqualPairs reports whether two pair sequences have the same length and
// equal keys and values at every index.
func EqualPairs(a, b []Pair) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i].Key != b[i].Key || a[i].Value != b[i].Value {
			return false
		}
	}

	return true
}
