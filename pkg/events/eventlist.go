/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package events

import (
	"container/list"
)

// List represents an ordered list of items, e.g. the events still expected
// by an assertion or the events received so far.
// The zero value is an empty list ready to use.
type List[T any] struct {
	list *list.List
}

// ListOf returns a List holding items in order.
func ListOf[T any](items ...T) *List[T] {
	l := &List[T]{}
	for _, item := range items {
		l.PushBack(item)
	}
	return l
}

// Iterator returns a ListIterator used to iterate over the items in this list,
// starting from the beginning of the list.
func (l *List[T]) Iterator() *ListIterator[T] {
	if l.list == nil {
		return &ListIterator[T]{}
	}

	return &ListIterator[T]{
		currentElement: l.list.Front(),
	}
}

// PushBack appends an item to the end of the list.
// Returns the List itself, for the convenience of chaining multiple calls to PushBack.
func (l *List[T]) PushBack(item T) *List[T] {
	if l.list == nil {
		l.list = list.New()
	}

	l.list.PushBack(item)
	return l
}

// PushBackList appends all items in other to the end of the current List.
func (l *List[T]) PushBackList(other *List[T]) *List[T] {
	if other.list != nil {
		if l.list == nil {
			l.list = list.New()
		}
		l.list.PushBackList(other.list)
	}

	return l
}

// PopFront removes and returns the first item. ok is false if the list is empty.
func (l *List[T]) PopFront() (item T, ok bool) {
	if l.list == nil || l.list.Len() == 0 {
		return item, false
	}

	return l.list.Remove(l.list.Front()).(T), true
}

// Len returns the number of items in the List.
func (l *List[T]) Len() int {
	if l.list == nil {
		return 0
	}
	return l.list.Len()
}

// Slice copies the items into a new slice, in order.
func (l *List[T]) Slice() []T {
	result := make([]T, 0, l.Len())
	iter := l.Iterator()
	for item, ok := iter.Next(); ok; item, ok = iter.Next() {
		result = append(result, item)
	}
	return result
}

// ListIterator is returned from List.Iterator and iterates over the items of
// a List using its Next method.
type ListIterator[T any] struct {
	currentElement *list.Element
}

// Next returns the next item until the end of the associated List is
// encountered. Thereafter, ok is false.
func (li *ListIterator[T]) Next() (item T, ok bool) {
	if li.currentElement == nil {
		return item, false
	}

	result := li.currentElement.Value.(T)
	li.currentElement = li.currentElement.Next()

	return result, true
}
