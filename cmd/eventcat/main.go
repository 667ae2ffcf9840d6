/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// eventcat prints recorded event streams. It reads the gzip logs written by
// eventlog.Recorder, the WALs written by simplewal.Interceptor and the
// baselines saved by harness.ExpectBaseline, and can filter them by kind.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/d-abe/ReactiveKit/pkg/baseline"
	"github.com/d-abe/ReactiveKit/pkg/config"
	"github.com/d-abe/ReactiveKit/pkg/eventlog"
	"github.com/d-abe/ReactiveKit/pkg/logging"
	"github.com/d-abe/ReactiveKit/pkg/simplewal"
)

var allKinds = []string{
	"Next",
	"Failed",
	"Completed",
}

// excludeByKind assumes at least one of include or exclude is nil.
func excludeByKind(value string, include []string, exclude []string) bool {
	if include != nil {
		for _, includeName := range include {
			if includeName == value {
				return false
			}
		}

		return true
	}

	for _, excludeName := range exclude {
		if excludeName == value {
			return true
		}
	}

	return false
}

type arguments struct {
	input       io.ReadCloser
	walPath     string
	baseline    string
	baselineDir string
	kinds       []string
	notKinds    []string
	json        bool
	logger      logging.Logger
}

func (a *arguments) shouldPrint(record *structpb.Struct) bool {
	return !excludeByKind(eventlog.Kind(record), a.kinds, a.notKinds)
}

// load returns every record of whichever source was selected.
func (a *arguments) load() ([]*structpb.Struct, error) {
	switch {
	case a.walPath != "":
		wal, err := simplewal.Open(a.walPath)
		if err != nil {
			return nil, err
		}
		defer wal.Close()

		var records []*structpb.Struct
		err = wal.LoadAll(func(index uint64, record *structpb.Struct) {
			records = append(records, record)
		})
		a.logger.Log(logging.LevelDebug, "loaded WAL", "path", a.walPath, "records", len(records))
		return records, err
	case a.baseline != "":
		store, err := baseline.Open(a.baselineDir)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		a.logger.Log(logging.LevelDebug, "loading baseline", "dir", a.baselineDir, "name", a.baseline)
		return store.Load(a.baseline)
	default:
		defer a.input.Close()

		reader, err := eventlog.NewReader(a.input)
		if err != nil {
			return nil, errors.WithMessage(err, "bad input file")
		}

		records, err := reader.ReadAll()
		if err != nil {
			return nil, errors.WithMessage(err, "failed reading input")
		}
		a.logger.Log(logging.LevelDebug, "read event log", "records", len(records))
		return records, nil
	}
}

func (a *arguments) execute(output io.Writer) error {
	records, err := a.load()
	if err != nil {
		return err
	}

	shown := 0
	for _, record := range records {
		if !a.shouldPrint(record) {
			continue
		}
		shown++

		if a.json {
			text, err := protojson.Marshal(record)
			if err != nil {
				return errors.WithMessage(err, "could not marshal event")
			}
			fmt.Fprintf(output, "%s\n", text)
			continue
		}

		fmt.Fprintf(output, "seq=%d time=%d kind=%s", eventlog.Seq(record), eventlog.Time(record), eventlog.Kind(record))
		fields := record.GetFields()
		if element, ok := fields[eventlog.FieldElement]; ok {
			fmt.Fprintf(output, " element=%v", element.AsInterface())
		}
		if msg, ok := fields[eventlog.FieldError]; ok {
			fmt.Fprintf(output, " error=%q", msg.GetStringValue())
		}
		fmt.Fprint(output, "\n")
	}

	if !a.json {
		fmt.Fprintf(output, "%d of %d events shown\n", shown, len(records))
	}

	return nil
}

func parseArgs(args []string) (*arguments, error) {
	app := kingpin.New("eventcat", "Utility for printing recorded event streams.")
	configFile := app.Flag("config", "YAML configuration file, REACTIVEKIT_* variables override it.").ExistingFile()
	input := app.Flag("input", "The gzip event log to read (defaults to stdin).").File()
	walPath := app.Flag("wal", "Read a WAL directory instead of an event log.").String()
	baselineName := app.Flag("baseline", "Read the named baseline instead of an event log.").String()
	baselineDir := app.Flag("baselineDir", "Baseline database directory (defaults to the configured one).").String()
	kinds := app.Flag("kind", "Which event kinds to print, may be repeated.").Enums(allKinds...)
	notKinds := app.Flag("notKind", "Which event kinds to exclude. (Cannot combine with --kind)").Enums(allKinds...)
	json := app.Flag("json", "Print each event as JSON.").Default("false").Bool()
	logLevel := app.Flag("logLevel", "Diagnostics written to stderr at this level or above.").Enum("debug", "info", "warn", "error")

	_, err := app.Parse(args)
	if err != nil {
		return nil, err
	}

	sources := 0
	for _, set := range []bool{*input != nil, *walPath != "", *baselineName != ""} {
		if set {
			sources++
		}
	}

	switch {
	case sources > 1:
		return nil, errors.Errorf("cannot combine --input, --wal and --baseline")
	case *kinds != nil && *notKinds != nil:
		return nil, errors.Errorf("cannot set both --kind and --notKind")
	case *baselineDir != "" && *baselineName == "":
		return nil, errors.Errorf("cannot set baselineDir without --baseline")
	}

	cfg := config.Default()
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
		if err != nil {
			return nil, err
		}
	}
	cfg, err = config.FromEnv(cfg)
	if err != nil {
		return nil, err
	}

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *baselineDir != "" {
		cfg.BaselineDir = *baselineDir
	}
	if *baselineName != "" && cfg.BaselineDir == "" {
		return nil, errors.Errorf("cannot read --baseline without a baseline directory, set --baselineDir or %s", config.EnvBaselineDir)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapLogger, err := logging.NewZapConfig(level).Build()
	if err != nil {
		return nil, errors.WithMessage(err, "could not build logger")
	}

	if *input == nil && *walPath == "" && *baselineName == "" {
		*input = os.Stdin
	}

	return &arguments{
		input:       *input,
		walPath:     *walPath,
		baseline:    *baselineName,
		baselineDir: cfg.BaselineDir,
		kinds:       *kinds,
		notKinds:    *notKinds,
		json:        *json,
		logger:      logging.NewZapLogger(zapLogger.With(zap.String("app", "eventcat"))),
	}, nil
}

func main() {
	kingpin.Version("0.0.1")
	args, err := parseArgs(os.Args[1:])
	if err != nil {
		kingpin.Fatalf("failed to parse arguments, %s, try --help", err)
	}
	err = args.execute(os.Stdout)
	if err != nil {
		fmt.Println("")
		kingpin.Fatalf("%s", err)
	}
}
