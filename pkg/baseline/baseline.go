/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package baseline stores named sequences of recorded events. A test records
// the events a pipeline emits once, and later runs compare against the stored
// sequence instead of a hand-written one.
package baseline

import (
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrNotFound is returned by Load for a name that was never saved.
var ErrNotFound = errors.New("baseline not found")

const keyPrefix = "baseline-"

func baselineKey(name string) []byte {
	return []byte(keyPrefix + name)
}

type Store struct {
	db *badger.DB
}

// Open opens the store in dirPath, or an in-memory store if dirPath is empty.
func Open(dirPath string) (*Store, error) {
	var badgerOpts badger.Options
	if dirPath == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(dirPath).WithSyncWrites(false).WithTruncate(true)
	}
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, errors.WithMessage(err, "could not open backing db")
	}

	return &Store{
		db: db,
	}, nil
}

// Save stores records under name, replacing any previous sequence.
func (s *Store) Save(name string, records []*structpb.Struct) error {
	values := make([]*structpb.Value, len(records))
	for i, record := range records {
		values[i] = structpb.NewStructValue(record)
	}

	data, err := proto.Marshal(&structpb.ListValue{Values: values})
	if err != nil {
		return errors.WithMessagef(err, "could not marshal baseline %q", name)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(baselineKey(name), data)
	})
}

// Load returns the records saved under name.
func (s *Store) Load(name string) ([]*structpb.Struct, error) {
	var valCopy []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(baselineKey(name))
		if err != nil {
			return err
		}

		valCopy, err = item.ValueCopy(nil)
		return err
	})

	if err == badger.ErrKeyNotFound {
		return nil, errors.WithMessagef(ErrNotFound, "%q", name)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "could not load baseline %q", name)
	}

	list := &structpb.ListValue{}
	if err := proto.Unmarshal(valCopy, list); err != nil {
		return nil, errors.WithMessagef(err, "could not unmarshal baseline %q", name)
	}

	records := make([]*structpb.Struct, len(list.Values))
	for i, value := range list.Values {
		records[i] = value.GetStructValue()
		if records[i] == nil {
			return nil, errors.Errorf("baseline %q: entry %d is not a record", name, i)
		}
	}

	return records, nil
}

func (s *Store) Delete(name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(baselineKey(name))
	})
}

// Names returns the names of all saved baselines, sorted.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithMessage(err, "could not list baselines")
	}

	sort.Strings(names)
	return names, nil
}

func (s *Store) Sync() error {
	return s.db.Sync()
}

func (s *Store) Close() error {
	return s.db.Close()
}
