package serializer

import "fmt"

// IValueSerializer is the interface for all session value serializers.
// Serialize turns a value into bytes, Deserialize restores a value from them.
// Errors of both methods are returned unchanged to the caller of the library.
type IValueSerializer interface {
	// Serialize serializes a value into a byte array
	Serialize(value interface{}) ([]byte, error)
	// Deserialize restores a value from a byte array produced by Serialize
	Deserialize(data []byte) (interface{}, error)
}

// FromName creates a serializer by its configuration name (binary, gob, json)
func FromName(name string) (IValueSerializer, error) {
	switch name {
	case "binary", "":
		return NewBinarySerializer(), nil
	case "gob":
		return NewGOBSerializer(), nil
	case "json":
		return NewJSONSerializer(), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s (expected one of: binary, gob, json)", name)
	}
}
