/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package events

import (
	"fmt"
	"strings"
)

// Element enumerates the payload shapes the harness knows how to compare.
// Adding a shape means extending this constraint and the switch in
// equalElements.
type Element interface {
	int | []int | OptionalPair | string | []string | Changeset[[]int] | Changeset[[]Pair]
}

// OptionalPair is a pair of an optional integer and an integer.
type OptionalPair struct {
	First  *int
	Second int
}

// Some returns an OptionalPair whose first component is present.
func Some(first, second int) OptionalPair {
	return OptionalPair{First: &first, Second: second}
}

// None returns an OptionalPair whose first component is absent.
func None(second int) OptionalPair {
	return OptionalPair{Second: second}
}

// Equal compares presence and value of the first component and the value of
// the second.
func (p OptionalPair) Equal(other OptionalPair) bool {
	if (p.First == nil) != (other.First == nil) {
		return false
	}
	if p.First != nil && *p.First != *other.First {
		return false
	}
	return p.Second == other.Second
}

func (p OptionalPair) String() string {
	if p.First == nil {
		return fmt.Sprintf("(nil, %d)", p.Second)
	}
	return fmt.Sprintf("(%d, %d)", *p.First, p.Second)
}

// Pair is a (string, integer) tuple.
type Pair struct {
	Key   string
	Value int
}

func (p Pair) String() string {
	return fmt.Sprintf("(%q, %d)", p.Key, p.Value)
}

// Changeset describes a collection state together with the indices inserted,
// deleted and updated to reach it.
type Changeset[C any] struct {
	Collection C
	Inserts    []int
	Deletes    []int
	Updates    []int
}

func (c Changeset[C]) String() string {
	return fmt.Sprintf("{collection: %v, inserts: %v, deletes: %v, updates: %v}",
		c.Collection, c.Inserts, c.Deletes, c.Updates)
}

// FormatElement renders an element for diagnostics.
func FormatElement[T Element](element T) string {
	switch e := any(element).(type) {
	case string:
		return fmt.Sprintf("%q", e)
	case []string:
		quoted := make([]string, len(e))
		for i, s := range e {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return "[" + strings.Join(quoted, " ") + "]"
	default:
		return fmt.Sprintf("%v", e)
	}
}
