/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package harness

import (
	"github.com/d-abe/ReactiveKit/pkg/events"
)

// Collector buffers every event of a subscription for later inspection,
// typically with MatchEvents.
type Collector[T events.Element] struct {
	received   events.List[events.Event[T]]
	terminated bool
	disposable Disposable
}

// Collect subscribes to source and buffers what it emits.
func Collect[T events.Element](source Observable[T]) *Collector[T] {
	c := &Collector[T]{}
	c.disposable = source.Observe(func(event events.Event[T]) {
		c.received.PushBack(event)
		if event.IsTermination() {
			c.terminated = true
		}
	})
	return c
}

// Events returns a copy of the events received so far.
func (c *Collector[T]) Events() []events.Event[T] {
	return c.received.Slice()
}

// Elements returns the elements of the Next events received so far.
func (c *Collector[T]) Elements() []T {
	var result []T
	iter := c.received.Iterator()
	for event, ok := iter.Next(); ok; event, ok = iter.Next() {
		if event.IsNext() {
			result = append(result, event.Element)
		}
	}
	return result
}

func (c *Collector[T]) Len() int {
	return c.received.Len()
}

// Terminated reports whether a failure or completion has been received.
func (c *Collector[T]) Terminated() bool {
	return c.terminated
}

// Dispose releases the subscription, if the source returned a Disposable.
func (c *Collector[T]) Dispose() {
	if c.disposable != nil {
		c.disposable.Dispose()
	}
}
