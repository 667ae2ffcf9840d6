/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package simplewal persists recorded events in a write-ahead log, so that
// the events a pipeline emitted during a test survive the test process and
// can be inspected afterwards, e.g. with eventcat.
package simplewal

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/tidwall/wal"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/d-abe/ReactiveKit/pkg/eventlog"
	"github.com/d-abe/ReactiveKit/pkg/events"
)

type WAL struct {
	mutex sync.Mutex
	log   *wal.Log

	// Index of the next entry to append, counted from 0.
	idx uint64
}

func Open(path string) (*WAL, error) {
	log, err := wal.Open(path, &wal.Options{
		NoSync: true,
		NoCopy: true,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "could not open WAL")
	}

	// The underlying log starts counting at 1 and we start at 0, so its last
	// index is our next one.
	idx, err := log.LastIndex()
	if err != nil {
		log.Close()
		return nil, errors.WithMessage(err, "failed obtaining last WAL index")
	}

	return &WAL{
		log: log,
		idx: idx,
	}, nil
}

func (w *WAL) IsEmpty() (bool, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	firstIndex, err := w.log.FirstIndex()
	if err != nil {
		return false, errors.WithMessage(err, "could not read first index")
	}

	return firstIndex == 0, nil
}

// LoadAll calls forEach with every record still in the log, in order.
func (w *WAL) LoadAll(forEach func(index uint64, record *structpb.Struct)) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	firstIndex, err := w.log.FirstIndex()
	if err != nil {
		return errors.WithMessage(err, "could not read first index")
	}

	if firstIndex == 0 {
		// WAL is empty
		return nil
	}

	lastIndex, err := w.log.LastIndex()
	if err != nil {
		return errors.WithMessage(err, "could not read last index")
	}

	for i := firstIndex; i <= lastIndex; i++ {
		data, err := w.log.Read(i)
		if err != nil {
			return errors.WithMessagef(err, "could not read index %d", i)
		}

		record := &structpb.Struct{}
		err = proto.Unmarshal(data, record)
		if err != nil {
			return errors.WithMessage(err, "error decoding to proto, is the WAL corrupt?")
		}

		forEach(i-1, record)
	}

	return nil
}

// Append writes record at the next index.
func (w *WAL) Append(record *structpb.Struct) error {
	data, err := proto.Marshal(record)
	if err != nil {
		return errors.WithMessage(err, "could not marshal")
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if err := w.log.Write(w.idx+1, data); err != nil {
		return errors.WithMessagef(err, "could not write index %d", w.idx)
	}
	w.idx++
	return nil
}

// Truncate drops every record below index.
func (w *WAL) Truncate(index uint64) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.log.TruncateFront(index + 1)
}

func (w *WAL) Sync() error {
	return w.log.Sync()
}

func (w *WAL) Close() error {
	return w.log.Close()
}

// Interceptor appends every event it intercepts to a WAL. It implements
// harness.Interceptor.
type Interceptor[T events.Element] struct {
	wal        *WAL
	timeSource func() int64
}

// NewInterceptor returns an Interceptor writing to w. Records are
// timestamped with timeSource, or 0 if timeSource is nil.
func NewInterceptor[T events.Element](w *WAL, timeSource func() int64) *Interceptor[T] {
	if timeSource == nil {
		timeSource = func() int64 { return 0 }
	}
	return &Interceptor[T]{
		wal:        w,
		timeSource: timeSource,
	}
}

func (i *Interceptor[T]) Intercept(event events.Event[T]) error {
	i.wal.mutex.Lock()
	seq := i.wal.idx
	i.wal.mutex.Unlock()

	return i.wal.Append(eventlog.EncodeEvent(seq, i.timeSource(), event))
}
