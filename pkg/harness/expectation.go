/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package harness

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Expectation is a oneshot completion signal. The harness fulfills it when a
// stream terminates; the test waits on it, bounded by a context.
type Expectation struct {
	description string
	once        sync.Once
	doneC       chan struct{}
}

func NewExpectation(description string) *Expectation {
	return &Expectation{
		description: description,
		doneC:       make(chan struct{}),
	}
}

// Fulfill marks the expectation fulfilled. Calls after the first have no effect.
func (e *Expectation) Fulfill() {
	e.once.Do(func() {
		close(e.doneC)
	})
}

// Done is closed once the expectation is fulfilled.
func (e *Expectation) Done() <-chan struct{} {
	return e.doneC
}

func (e *Expectation) IsFulfilled() bool {
	select {
	case <-e.doneC:
		return true
	default:
		return false
	}
}

// Wait blocks until the expectation is fulfilled or ctx is done.
func (e *Expectation) Wait(ctx context.Context) error {
	select {
	case <-e.doneC:
		return nil
	case <-ctx.Done():
		return errors.WithMessagef(ctx.Err(), "expectation %q was not fulfilled", e.description)
	}
}

func (e *Expectation) String() string {
	return e.description
}
