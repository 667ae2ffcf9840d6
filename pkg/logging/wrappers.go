/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logging

import "sync"

// Decorate returns a Logger that prefixes every message with prefix and puts
// the key/value pairs in kvs before those of every message.
func Decorate(logger Logger, prefix string, kvs ...interface{}) Logger {
	return &decorated{
		inner:  OrNil(logger),
		prefix: prefix,
		kvs:    kvs,
	}
}

type decorated struct {
	inner  Logger
	prefix string
	kvs    []interface{}
}

func (d *decorated) Log(level LogLevel, text string, kvs ...interface{}) {
	all := make([]interface{}, len(d.kvs), len(d.kvs)+len(kvs))
	copy(all, d.kvs)
	d.inner.Log(level, d.prefix+text, append(all, kvs...)...)
}

// Synchronize serializes calls to logger, for loggers shared between the
// test goroutine and pipelines running elsewhere.
func Synchronize(logger Logger) Logger {
	return &synchronized{inner: OrNil(logger)}
}

type synchronized struct {
	mutex sync.Mutex
	inner Logger
}

func (s *synchronized) Log(level LogLevel, text string, kvs ...interface{}) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.inner.Log(level, text, kvs...)
}
