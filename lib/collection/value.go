package collection

import (
	"github.com/ValentinKolb/dSess/rpc/serializer"
	"reflect"
	"time"
)

// Kind tells whether a caller can mutate a value in place after reading it
type Kind uint8

const (
	// KindValue values are copied on return (numbers, strings, plain structs, ...)
	KindValue Kind = iota
	// KindMutableReference values share memory with the caller (maps, slices, pointers, ...)
	KindMutableReference
)

func (k Kind) String() string {
	if k == KindMutableReference {
		return "MutableReference"
	}
	return "Value"
}

// KindOf returns the kind of a value. Structs and arrays are mutable
// references if any of their fields or elements is one, since a returned
// copy still shares those references.
func KindOf(value interface{}) Kind {
	if value == nil {
		return KindValue
	}
	return kindOfType(reflect.TypeOf(value))
}

var timeType = reflect.TypeOf(time.Time{})

func kindOfType(t reflect.Type) Kind {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return KindMutableReference
	case reflect.Array:
		if t.Len() == 0 {
			return KindValue
		}
		return kindOfType(t.Elem())
	case reflect.Struct:
		// the location pointer of a time is never modified
		if t == timeType {
			return KindValue
		}
		for i := 0; i < t.NumField(); i++ {
			if kindOfType(t.Field(i).Type) == KindMutableReference {
				return KindMutableReference
			}
		}
		return KindValue
	default:
		return KindValue
	}
}

// ValueWrapper holds either the raw bytes of a value as loaded from the store
// or the materialized value. Raw bytes are deserialized on first access.
type ValueWrapper struct {
	raw          []byte
	value        interface{}
	materialized bool
}

// NewRawValue wraps serialized bytes
func NewRawValue(raw []byte) *ValueWrapper {
	return &ValueWrapper{raw: raw}
}

// NewValue wraps a materialized value
func NewValue(value interface{}) *ValueWrapper {
	return &ValueWrapper{value: value, materialized: true}
}

// Materialized reports whether the value has been deserialized (or was set directly)
func (w *ValueWrapper) Materialized() bool {
	return w.materialized
}

// Value returns the value, deserializing the raw bytes on first access.
// On error the wrapper stays unmaterialized.
func (w *ValueWrapper) Value(s serializer.IValueSerializer) (interface{}, error) {
	if w.materialized {
		return w.value, nil
	}
	value, err := s.Deserialize(w.raw)
	if err != nil {
		return nil, err
	}
	w.value = value
	w.materialized = true
	w.raw = nil
	return value, nil
}

// Kind returns the kind of the materialized value.
// Unmaterialized values cannot have been handed out, they report KindValue.
func (w *ValueWrapper) Kind() Kind {
	if !w.materialized {
		return KindValue
	}
	return KindOf(w.value)
}

// Set replaces the value
func (w *ValueWrapper) Set(value interface{}) {
	w.value = value
	w.materialized = true
	w.raw = nil
}

// Bytes returns the serialized form. Raw bytes that were never read are returned as is.
func (w *ValueWrapper) Bytes(s serializer.IValueSerializer) ([]byte, error) {
	if !w.materialized {
		return w.raw, nil
	}
	return s.Serialize(w.value)
}
