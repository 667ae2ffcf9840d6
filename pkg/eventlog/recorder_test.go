/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package eventlog_test

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"io"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/d-abe/ReactiveKit/pkg/eventlog"
	"github.com/d-abe/ReactiveKit/pkg/events"
)

var _ = Describe("Recorder", func() {
	var (
		output *bytes.Buffer
	)

	BeforeEach(func() {
		output = &bytes.Buffer{}
	})

	It("intercepts and writes events", func() {
		recorder := eventlog.NewRecorder[int](
			output,
			eventlog.TimeSourceOpt(func() int64 { return 2 }),
			eventlog.BufferSizeOpt(3),
		)
		Expect(recorder.Intercept(events.Next(1))).To(Succeed())
		Expect(recorder.Intercept(events.Completed[int]())).To(Succeed())
		Expect(recorder.Stop()).To(Succeed())
		Expect(output.Len()).To(BeNumerically(">", 0))
	})

	It("writes an empty but valid stream when nothing was intercepted", func() {
		recorder := eventlog.NewRecorder[string](output)
		Expect(recorder.Stop()).To(Succeed())

		reader, err := eventlog.NewReader(output)
		Expect(err).NotTo(HaveOccurred())
		_, err = reader.ReadRecord()
		Expect(err).To(Equal(io.EOF))
	})

	It("rejects events intercepted after Stop", func() {
		recorder := eventlog.NewRecorder[int](output, eventlog.BufferSizeOpt(10))
		Expect(recorder.Stop()).To(Succeed())

		for i := 0; i < 5; i++ {
			Expect(recorder.Intercept(events.Next(i))).To(MatchError("recorder stopped at caller request"))
		}
	})

	When("the destination fails", func() {
		It("reports the write error", func() {
			recorder := eventlog.NewRecorder[int](failingWriter{}, eventlog.CompressionLevelOpt(0))
			Expect(recorder.Intercept(events.Next(1))).To(Succeed())
			Expect(recorder.Stop()).To(MatchError(ContainSubstring("disk unplugged")))
		})
	})
})

var _ = Describe("Reader", func() {
	var (
		output *bytes.Buffer
	)

	BeforeEach(func() {
		output = &bytes.Buffer{}
		recorder := eventlog.NewRecorder[[]int](
			output,
			eventlog.TimeSourceOpt(func() int64 { return 2 }),
		)
		Expect(recorder.Intercept(events.Next([]int{1, 2}))).To(Succeed())
		Expect(recorder.Intercept(events.Failed[[]int](errors.New("broken pipe")))).To(Succeed())
		Expect(recorder.Stop()).To(Succeed())
	})

	It("can be read back with a Reader", func() {
		reader, err := eventlog.NewReader(output)
		Expect(err).NotTo(HaveOccurred())

		record, err := reader.ReadRecord()
		Expect(err).NotTo(HaveOccurred())
		Expect(eventlog.Seq(record)).To(Equal(uint64(0)))
		Expect(eventlog.Time(record)).To(Equal(int64(2)))
		Expect(eventlog.Kind(record)).To(Equal("Next"))

		record, err = reader.ReadRecord()
		Expect(err).NotTo(HaveOccurred())
		Expect(eventlog.Seq(record)).To(Equal(uint64(1)))
		event, err := eventlog.DecodeEvent[[]int](record)
		Expect(err).NotTo(HaveOccurred())
		Expect(event.IsFailure()).To(BeTrue())
		Expect(event.Err).To(MatchError("broken pipe"))

		_, err = reader.ReadRecord()
		Expect(err).To(Equal(io.EOF))
	})

	It("decodes every record", func() {
		reader, err := eventlog.NewReader(output)
		Expect(err).NotTo(HaveOccurred())
		records, err := reader.ReadAll()
		Expect(err).NotTo(HaveOccurred())

		decoded, err := eventlog.DecodeAll[[]int](records)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(HaveLen(2))
		Expect(events.Equal(decoded[0], events.Next([]int{1, 2}))).To(BeTrue())
		Expect(events.Equal(decoded[1], events.Failed[[]int](nil))).To(BeTrue())
	})

	When("the output is truncated", func() {
		BeforeEach(func() {
			output.Truncate(2)
		})

		It("reading returns an error", func() {
			_, err := eventlog.NewReader(output)
			Expect(err).To(MatchError("could not read source as a gzip stream: unexpected EOF"))
		})
	})
})

var _ = Describe("Reader with a corrupt size prefix", func() {
	// framed returns a gzip stream holding prefix followed by payload.
	framed := func(prefix int64, payload []byte) *bytes.Buffer {
		output := &bytes.Buffer{}
		gzWriter := gzip.NewWriter(output)
		varint := make([]byte, binary.MaxVarintLen64)
		n := binary.PutVarint(varint, prefix)
		_, err := gzWriter.Write(append(varint[:n], payload...))
		Expect(err).NotTo(HaveOccurred())
		Expect(gzWriter.Close()).To(Succeed())
		return output
	}

	It("returns an error for a negative prefix", func() {
		reader, err := eventlog.NewReader(framed(-5, nil))
		Expect(err).NotTo(HaveOccurred())

		_, err = reader.ReadRecord()
		Expect(err).To(MatchError("error reading event: invalid size prefix -5"))
	})

	It("returns an error for an oversized prefix", func() {
		reader, err := eventlog.NewReader(framed(eventlog.MaxRecordSize+1, []byte{0}))
		Expect(err).NotTo(HaveOccurred())

		_, err = reader.ReadRecord()
		Expect(err).To(MatchError(ContainSubstring("invalid size prefix")))
	})

	It("returns an error for a truncated record", func() {
		reader, err := eventlog.NewReader(framed(10, []byte{1, 2}))
		Expect(err).NotTo(HaveOccurred())

		_, err = reader.ReadRecord()
		Expect(err).To(MatchError("error reading event: could not read message: EOF"))
	})
})

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk unplugged")
}
