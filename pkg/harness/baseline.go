/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package harness

import (
	"errors"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/d-abe/ReactiveKit/pkg/baseline"
	"github.com/d-abe/ReactiveKit/pkg/eventlog"
	"github.com/d-abe/ReactiveKit/pkg/events"
	"github.com/d-abe/ReactiveKit/pkg/logging"
)

// ExpectBaseline compares what source emits with the sequence stored under
// name in store, exactly as Expect would with that sequence spelled out.
//
// With update set, nothing is compared. The observed events are saved under
// name once the stream terminates, replacing the previous baseline.
func ExpectBaseline[T events.Element](r Reporter, source Observable[T], store *baseline.Store, name string, update bool, opts ...ExpectOpt) {
	site := callSite(2)
	s := parseOpts[T](opts)

	if update {
		record(r, source, store, name, site, s)
		return
	}

	records, err := store.Load(name)
	if errors.Is(err, baseline.ErrNotFound) {
		r.Errorf("%s: no baseline named %q, set REACTIVEKIT_UPDATE_BASELINES=1 to record one", site, name)
		return
	}
	if err != nil {
		r.Errorf("%s: %v", site, err)
		return
	}

	expected, err := eventlog.DecodeAll[T](records)
	if err != nil {
		r.Errorf("%s: baseline %q: %v", site, name, err)
		return
	}

	expect(r, source, expected, site, s)
}

func record[T events.Element](r Reporter, source Observable[T], store *baseline.Store, name, site string, s *settings[T]) {
	var records []*structpb.Struct

	source.Observe(func(event events.Event[T]) {
		records = append(records, eventlog.EncodeEvent(uint64(len(records)), 0, event))

		for _, interceptor := range s.interceptors {
			if err := interceptor.Intercept(event); err != nil {
				r.Errorf("%s: could not intercept %s: %v", site, event, err)
			}
		}

		if !event.IsTermination() {
			return
		}

		if err := store.Save(name, records); err != nil {
			r.Errorf("%s: %v", site, err)
		} else {
			s.logger.Log(logging.LevelInfo, "baseline saved", "name", name, "events", len(records))
		}

		if s.expectation != nil {
			s.expectation.Fulfill()
		}
	})
}
