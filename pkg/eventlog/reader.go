/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package eventlog

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/d-abe/ReactiveKit/pkg/events"
)

// MaxRecordSize bounds the size prefix accepted by a Reader, so a corrupt
// log cannot make it allocate arbitrarily large buffers.
const MaxRecordSize = 64 << 20

// Reader reads back the records written by a Recorder.
type Reader struct {
	buffer   *bytes.Buffer
	gzReader *gzip.Reader
	source   *bufio.Reader
}

func NewReader(source io.Reader) (*Reader, error) {
	gzReader, err := gzip.NewReader(source)
	if err != nil {
		return nil, errors.WithMessage(err, "could not read source as a gzip stream")
	}

	return &Reader{
		buffer:   &bytes.Buffer{},
		gzReader: gzReader,
		source:   bufio.NewReader(gzReader),
	}, nil
}

// ReadRecord returns the next record, or io.EOF after the last one.
func (r *Reader) ReadRecord() (*structpb.Struct, error) {
	record := &structpb.Struct{}
	err := readSizePrefixedProto(r.source, record, r.buffer)
	if err == io.EOF {
		r.gzReader.Close()
		return nil, err
	}
	if err != nil {
		return nil, errors.WithMessage(err, "error reading event")
	}
	r.buffer.Reset()

	return record, nil
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() ([]*structpb.Struct, error) {
	var records []*structpb.Struct
	for {
		record, err := r.ReadRecord()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}

// DecodeAll decodes records into events, in order.
func DecodeAll[T events.Element](records []*structpb.Struct) ([]events.Event[T], error) {
	result := make([]events.Event[T], len(records))
	for i, record := range records {
		event, err := DecodeEvent[T](record)
		if err != nil {
			return nil, errors.WithMessagef(err, "record %d", i)
		}
		result[i] = event
	}
	return result, nil
}

func readSizePrefixedProto(reader *bufio.Reader, msg proto.Message, buffer *bytes.Buffer) error {
	l, err := binary.ReadVarint(reader)
	if err != nil {
		if err == io.EOF {
			return err
		}
		return errors.WithMessage(err, "could not read size prefix")
	}

	if l < 0 || l > MaxRecordSize {
		return errors.Errorf("invalid size prefix %d", l)
	}

	if _, err := io.CopyN(buffer, reader, l); err != nil {
		return errors.WithMessage(err, "could not read message")
	}

	if err := proto.Unmarshal(buffer.Bytes(), msg); err != nil {
		return errors.WithMessage(err, "could not unmarshal message")
	}

	return nil
}
