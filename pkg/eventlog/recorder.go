/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package eventlog

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/d-abe/ReactiveKit/pkg/events"
)

type RecorderOpt interface{}

type timeSourceOpt func() int64

// TimeSourceOpt can be used to override the default time source
// for a recorder. This can be useful for changing the
// granularity of the timestamps, or for making recordings
// byte-identical across runs in tests.
// The default time source will timestamp with the time, in
// milliseconds since the recorder was created.
func TimeSourceOpt(source func() int64) RecorderOpt {
	return timeSourceOpt(source)
}

type compressionLevelOpt int

// DefaultCompressionLevel is used for event capture when not overridden.
const DefaultCompressionLevel = gzip.DefaultCompression

// CompressionLevelOpt takes any of the compression levels supported
// by the golang standard gzip package.
func CompressionLevelOpt(level int) RecorderOpt {
	return compressionLevelOpt(level)
}

// DefaultBufferSize is the number of unwritten events which
// may be held in queue before blocking.
const DefaultBufferSize = 5000

type bufferSizeOpt int

// BufferSizeOpt overrides the default buffer size of the
// recorder buffer. Once the buffer overflows, Intercept
// blocks until the buffer has room.
func BufferSizeOpt(size int) RecorderOpt {
	return bufferSizeOpt(size)
}

// Recorder receives observed events, serializes them, compresses them,
// and writes them to a stream. It implements harness.Interceptor.
type Recorder[T events.Element] struct {
	timeSource       func() int64
	compressionLevel int
	seq              uint64
	eventC           chan *structpb.Struct
	doneC            chan struct{}
	exitC            chan struct{}

	exitErr      error
	exitErrMutex sync.Mutex
}

func NewRecorder[T events.Element](dest io.Writer, opts ...RecorderOpt) *Recorder[T] {
	startTime := time.Now()

	r := &Recorder[T]{
		timeSource: func() int64 {
			return time.Since(startTime).Milliseconds()
		},
		compressionLevel: DefaultCompressionLevel,
		eventC:           make(chan *structpb.Struct, DefaultBufferSize),
		doneC:            make(chan struct{}),
		exitC:            make(chan struct{}),
	}

	for _, opt := range opts {
		switch v := opt.(type) {
		case timeSourceOpt:
			r.timeSource = v
		case compressionLevelOpt:
			r.compressionLevel = int(v)
		case bufferSizeOpt:
			r.eventC = make(chan *structpb.Struct, v)
		}
	}

	go r.run(dest)

	return r
}

// Intercept takes an event and enqueues it into the event buffer.
// If there is no room in the buffer, it blocks. If draining the buffer
// to the output stream has completed (successfully or otherwise), Intercept
// returns an error.
func (r *Recorder[T]) Intercept(event events.Event[T]) error {
	// Both cases below may be ready once the recorder exited, so the exit is
	// checked first.
	select {
	case <-r.exitC:
		return r.exitError()
	default:
	}

	record := EncodeEvent(r.seq, r.timeSource(), event)

	select {
	case r.eventC <- record:
		r.seq++
		return nil
	case <-r.exitC:
		return r.exitError()
	}
}

func (r *Recorder[T]) exitError() error {
	r.exitErrMutex.Lock()
	defer r.exitErrMutex.Unlock()
	return r.exitErr
}

// Stop must be invoked to release the resources associated with this
// Recorder, and should only be invoked after the last event was intercepted.
// It flushes the buffer and returns the first error encountered while writing.
func (r *Recorder[T]) Stop() error {
	close(r.doneC)
	<-r.exitC
	if err := r.exitError(); err != errStopped {
		return err
	}
	return nil
}

var errStopped = fmt.Errorf("recorder stopped at caller request")

func (r *Recorder[T]) run(dest io.Writer) (exitErr error) {
	defer func() {
		r.exitErrMutex.Lock()
		r.exitErr = exitErr
		r.exitErrMutex.Unlock()
		close(r.exitC)
	}()

	gzWriter, err := gzip.NewWriterLevel(dest, r.compressionLevel)
	if err != nil {
		return errors.WithMessage(err, "could not create gzip writer")
	}
	defer func() {
		if err := gzWriter.Close(); err != nil && (exitErr == nil || exitErr == errStopped) {
			exitErr = errors.WithMessage(err, "could not flush gzip stream")
		}
	}()

	for {
		select {
		case <-r.doneC:
			for {
				select {
				case record := <-r.eventC:
					if err := WriteRecord(gzWriter, record); err != nil {
						return errors.WithMessage(err, "error serializing to stream")
					}
				default:
					return errStopped
				}
			}
		case record := <-r.eventC:
			if err := WriteRecord(gzWriter, record); err != nil {
				return errors.WithMessage(err, "error serializing to stream")
			}
		}
	}
}

// WriteRecord writes one size-prefixed recorded event to writer.
func WriteRecord(writer io.Writer, record *structpb.Struct) error {
	return writeSizePrefixedProto(writer, record)
}

func writeSizePrefixedProto(dest io.Writer, msg proto.Message) error {
	msgBytes, err := proto.Marshal(msg)
	if err != nil {
		return errors.WithMessage(err, "could not marshal")
	}

	lenBuf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutVarint(lenBuf, int64(len(msgBytes)))
	if _, err = dest.Write(lenBuf[:n]); err != nil {
		return errors.WithMessage(err, "could not write length prefix")
	}

	if _, err = dest.Write(msgBytes); err != nil {
		return errors.WithMessage(err, "could not write message")
	}

	return nil
}
