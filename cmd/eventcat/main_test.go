package main

import (
	"bytes"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/d-abe/ReactiveKit/pkg/baseline"
	"github.com/d-abe/ReactiveKit/pkg/config"
	"github.com/d-abe/ReactiveKit/pkg/eventlog"
	"github.com/d-abe/ReactiveKit/pkg/events"
	"github.com/d-abe/ReactiveKit/pkg/logging"
	"github.com/d-abe/ReactiveKit/pkg/simplewal"
)

var _ = Describe("Parsing", func() {
	It("parses a fully populated command line", func() {
		args, err := parseArgs([]string{
			"--input", "main.go",
			"--kind", "Next",
			"--kind", "Failed",
			"--json",
			"--logLevel", "error",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(args.input).NotTo(BeNil())
		Expect(args.input.Close()).NotTo(HaveOccurred())
		Expect(args.kinds).To(Equal([]string{"Next", "Failed"}))
		Expect(args.json).To(BeTrue())
	})

	It("reads stdin when no source is given", func() {
		args, err := parseArgs([]string{"--logLevel", "error"})
		Expect(err).NotTo(HaveOccurred())
		Expect(args.input).To(Equal(os.Stdin))
	})

	When("both kind includes and kind excludes are present", func() {
		It("returns an error", func() {
			_, err := parseArgs([]string{
				"--kind", "Next",
				"--notKind", "Completed",
			})
			Expect(err).To(MatchError("cannot set both --kind and --notKind"))
		})
	})

	When("more than one source is present", func() {
		It("returns an error", func() {
			_, err := parseArgs([]string{
				"--wal", "events",
				"--baseline", "counter",
			})
			Expect(err).To(MatchError("cannot combine --input, --wal and --baseline"))
		})
	})

	When("a baseline is requested without a baseline directory", func() {
		It("returns an error", func() {
			old, ok := os.LookupEnv(config.EnvBaselineDir)
			Expect(os.Unsetenv(config.EnvBaselineDir)).To(Succeed())
			defer func() {
				if ok {
					os.Setenv(config.EnvBaselineDir, old)
				}
			}()

			_, err := parseArgs([]string{"--baseline", "counter"})
			Expect(err).To(MatchError("cannot read --baseline without a baseline directory, set --baselineDir or REACTIVEKIT_BASELINE_DIR"))
		})
	})

	It("accepts a baseline with an explicit directory", func() {
		args, err := parseArgs([]string{"--baseline", "counter", "--baselineDir", "baselines", "--logLevel", "error"})
		Expect(err).NotTo(HaveOccurred())
		Expect(args.baseline).To(Equal("counter"))
		Expect(args.baselineDir).To(Equal("baselines"))
	})

	When("an unknown kind is given", func() {
		It("returns an error", func() {
			_, err := parseArgs([]string{"--kind", "Tick"})
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Execution", func() {
	var (
		output *bytes.Buffer
		args   *arguments
	)

	stream := []events.Event[[]int]{
		events.Next([]int{1, 2}),
		events.Next([]int{3}),
		events.Failed[[]int](errors.New("overflow")),
	}

	BeforeEach(func() {
		logBytes := &bytes.Buffer{}
		recorder := eventlog.NewRecorder[[]int](logBytes, eventlog.TimeSourceOpt(func() int64 { return 10 }))
		for _, event := range stream {
			Expect(recorder.Intercept(event)).To(Succeed())
		}
		Expect(recorder.Stop()).To(Succeed())

		output = &bytes.Buffer{}
		args = &arguments{
			input:  ioutil.NopCloser(logBytes),
			logger: logging.NilLogger,
		}
	})

	It("prints every record of an event log", func() {
		Expect(args.execute(output)).To(Succeed())
		Expect(output.String()).To(Equal(
			"seq=0 time=10 kind=Next element=[1 2]\n" +
				"seq=1 time=10 kind=Next element=[3]\n" +
				"seq=2 time=10 kind=Failed error=\"overflow\"\n" +
				"3 of 3 events shown\n",
		))
	})

	It("filters by kind", func() {
		args.notKinds = []string{"Next"}
		Expect(args.execute(output)).To(Succeed())
		Expect(output.String()).To(HavePrefix("seq=2 time=10 kind=Failed"))
		Expect(output.String()).To(HaveSuffix("1 of 3 events shown\n"))
	})

	It("prints JSON records", func() {
		args.json = true
		args.kinds = []string{"Failed"}
		Expect(args.execute(output)).To(Succeed())

		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		Expect(lines).To(HaveLen(1))
		record := &structpb.Struct{}
		Expect(protojson.Unmarshal([]byte(lines[0]), record)).To(Succeed())
		Expect(eventlog.Kind(record)).To(Equal("Failed"))
	})

	It("rejects input that is not an event log", func() {
		args.input = ioutil.NopCloser(strings.NewReader("plain text"))
		Expect(args.execute(output)).To(MatchError(ContainSubstring("bad input file")))
	})

	Context("with durable sources", func() {
		var (
			dir string
		)

		BeforeEach(func() {
			var err error
			dir, err = ioutil.TempDir("", "eventcat")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(dir)
		})

		It("reads a WAL", func() {
			walPath := filepath.Join(dir, "wal")
			wal, err := simplewal.Open(walPath)
			Expect(err).NotTo(HaveOccurred())
			interceptor := simplewal.NewInterceptor[[]int](wal, nil)
			for _, event := range stream {
				Expect(interceptor.Intercept(event)).To(Succeed())
			}
			Expect(wal.Close()).To(Succeed())

			args.walPath = walPath
			Expect(args.execute(output)).To(Succeed())
			Expect(output.String()).To(ContainSubstring("seq=1 time=0 kind=Next element=[3]\n"))
			Expect(output.String()).To(HaveSuffix("3 of 3 events shown\n"))
		})

		It("reads a baseline", func() {
			store, err := baseline.Open(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Save("words", []*structpb.Struct{
				eventlog.EncodeEvent(0, 0, events.Next("hello")),
				eventlog.EncodeEvent(1, 0, events.Completed[string]()),
			})).To(Succeed())
			Expect(store.Close()).To(Succeed())

			args.baseline = "words"
			args.baselineDir = dir
			Expect(args.execute(output)).To(Succeed())
			Expect(output.String()).To(Equal(
				"seq=0 time=0 kind=Next element=hello\n" +
					"seq=1 time=0 kind=Completed\n" +
					"2 of 2 events shown\n",
			))
		})
	})
})
