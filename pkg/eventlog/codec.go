/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package eventlog

import (
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/d-abe/ReactiveKit/pkg/events"
)

// Field names of a recorded event.
const (
	FieldSeq     = "seq"
	FieldTime    = "time"
	FieldKind    = "kind"
	FieldElement = "element"
	FieldError   = "error"
)

// RecordedError is the error carried by a decoded failure event. Only the
// message of the original error survives recording.
type RecordedError struct {
	Message string
}

func (e *RecordedError) Error() string {
	return e.Message
}

// EncodeEvent converts an event into its recorded form.
func EncodeEvent[T events.Element](seq uint64, time int64, event events.Event[T]) *structpb.Struct {
	fields := map[string]*structpb.Value{
		FieldSeq:  structpb.NewNumberValue(float64(seq)),
		FieldTime: structpb.NewNumberValue(float64(time)),
		FieldKind: structpb.NewStringValue(event.Kind.String()),
	}

	switch event.Kind {
	case events.KindNext:
		fields[FieldElement] = encodeElement(event.Element)
	case events.KindFailed:
		msg := ""
		if event.Err != nil {
			msg = event.Err.Error()
		}
		fields[FieldError] = structpb.NewStringValue(msg)
	}

	return &structpb.Struct{Fields: fields}
}

// DecodeEvent converts a recorded event back into an event.
func DecodeEvent[T events.Element](record *structpb.Struct) (events.Event[T], error) {
	var event events.Event[T]

	kindName := record.GetFields()[FieldKind].GetStringValue()
	kind, ok := events.ParseKind(kindName)
	if !ok {
		return event, errors.Errorf("unknown event kind %q", kindName)
	}
	event.Kind = kind

	switch kind {
	case events.KindNext:
		value, ok := record.GetFields()[FieldElement]
		if !ok {
			return event, errors.New("next event without element")
		}
		if err := decodeElement(value, &event.Element); err != nil {
			return event, errors.WithMessage(err, "could not decode element")
		}
	case events.KindFailed:
		event.Err = &RecordedError{Message: record.GetFields()[FieldError].GetStringValue()}
	}

	return event, nil
}

// Seq returns the sequence number of a recorded event.
func Seq(record *structpb.Struct) uint64 {
	return uint64(record.GetFields()[FieldSeq].GetNumberValue())
}

// Time returns the timestamp of a recorded event.
func Time(record *structpb.Struct) int64 {
	return int64(record.GetFields()[FieldTime].GetNumberValue())
}

// Kind returns the kind name of a recorded event.
func Kind(record *structpb.Struct) string {
	return record.GetFields()[FieldKind].GetStringValue()
}

func encodeElement[T events.Element](element T) *structpb.Value {
	switch e := any(element).(type) {
	case int:
		return structpb.NewNumberValue(float64(e))
	case []int:
		return intList(e)
	case events.OptionalPair:
		first := structpb.NewNullValue()
		if e.First != nil {
			first = structpb.NewNumberValue(float64(*e.First))
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"first":  first,
			"second": structpb.NewNumberValue(float64(e.Second)),
		}})
	case string:
		return structpb.NewStringValue(e)
	case []string:
		values := make([]*structpb.Value, len(e))
		for i, s := range e {
			values[i] = structpb.NewStringValue(s)
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values})
	case events.Changeset[[]int]:
		return changeset(intList(e.Collection), e)
	case events.Changeset[[]events.Pair]:
		values := make([]*structpb.Value, len(e.Collection))
		for i, p := range e.Collection {
			values[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
				"key":   structpb.NewStringValue(p.Key),
				"value": structpb.NewNumberValue(float64(p.Value)),
			}})
		}
		return changeset(structpb.NewListValue(&structpb.ListValue{Values: values}), e)
	default:
		panic(errors.Errorf("cannot encode that element type: %T", element))
	}
}

func intList(ints []int) *structpb.Value {
	values := make([]*structpb.Value, len(ints))
	for i, v := range ints {
		values[i] = structpb.NewNumberValue(float64(v))
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func changeset[C any](collection *structpb.Value, c events.Changeset[C]) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"collection": collection,
		"inserts":    intList(c.Inserts),
		"deletes":    intList(c.Deletes),
		"updates":    intList(c.Updates),
	}})
}

func decodeElement[T events.Element](value *structpb.Value, target *T) error {
	switch t := any(target).(type) {
	case *int:
		v, err := toInt(value)
		*t = v
		return err
	case *[]int:
		v, err := toInts(value)
		*t = v
		return err
	case *events.OptionalPair:
		fields := value.GetStructValue().GetFields()
		if fields == nil {
			return errors.New("expected a struct for an optional pair")
		}
		second, err := toInt(fields["second"])
		if err != nil {
			return errors.WithMessage(err, "second")
		}
		t.Second = second
		if first, ok := fields["first"]; ok {
			if _, isNull := first.GetKind().(*structpb.Value_NullValue); !isNull {
				v, err := toInt(first)
				if err != nil {
					return errors.WithMessage(err, "first")
				}
				t.First = &v
			}
		}
		return nil
	case *string:
		s, ok := value.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return errors.New("expected a string")
		}
		*t = s.StringValue
		return nil
	case *[]string:
		list, ok := value.GetKind().(*structpb.Value_ListValue)
		if !ok {
			return errors.New("expected a list of strings")
		}
		result := make([]string, len(list.ListValue.GetValues()))
		for i, v := range list.ListValue.GetValues() {
			s, ok := v.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return errors.Errorf("expected a string at index %d", i)
			}
			result[i] = s.StringValue
		}
		*t = result
		return nil
	case *events.Changeset[[]int]:
		fields, err := changesetFields(value, &t.Inserts, &t.Deletes, &t.Updates)
		if err != nil {
			return err
		}
		t.Collection, err = toInts(fields["collection"])
		return errors.WithMessage(err, "collection")
	case *events.Changeset[[]events.Pair]:
		fields, err := changesetFields(value, &t.Inserts, &t.Deletes, &t.Updates)
		if err != nil {
			return err
		}
		list, ok := fields["collection"].GetKind().(*structpb.Value_ListValue)
		if !ok {
			return errors.New("collection: expected a list of pairs")
		}
		t.Collection = make([]events.Pair, len(list.ListValue.GetValues()))
		for i, v := range list.ListValue.GetValues() {
			pair := v.GetStructValue().GetFields()
			n, err := toInt(pair["value"])
			if err != nil {
				return errors.WithMessagef(err, "collection: pair %d", i)
			}
			t.Collection[i] = events.Pair{Key: pair["key"].GetStringValue(), Value: n}
		}
		return nil
	default:
		return errors.Errorf("cannot decode that element type: %T", target)
	}
}

func changesetFields(value *structpb.Value, inserts, deletes, updates *[]int) (map[string]*structpb.Value, error) {
	fields := value.GetStructValue().GetFields()
	if fields == nil {
		return nil, errors.New("expected a struct for a changeset")
	}

	for name, target := range map[string]*[]int{"inserts": inserts, "deletes": deletes, "updates": updates} {
		v, err := toInts(fields[name])
		if err != nil {
			return nil, errors.WithMessage(err, name)
		}
		*target = v
	}

	return fields, nil
}

func toInt(value *structpb.Value) (int, error) {
	n, ok := value.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, errors.New("expected a number")
	}
	if n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, errors.Errorf("expected an integer, got %v", n.NumberValue)
	}
	return int(n.NumberValue), nil
}

func toInts(value *structpb.Value) ([]int, error) {
	list, ok := value.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, errors.New("expected a list of numbers")
	}
	result := make([]int, len(list.ListValue.GetValues()))
	for i, v := range list.ListValue.GetValues() {
		n, err := toInt(v)
		if err != nil {
			return nil, errors.WithMessagef(err, "index %d", i)
		}
		result[i] = n
	}
	return result, nil
}
