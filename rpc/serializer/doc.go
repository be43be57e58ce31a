// Package serializer provides value serialization for session entries and
// cached responses. It defines a common interface and multiple implementations
// that turn arbitrary Go values into the bytes kept in the remote store and back.
//
// The package focuses on:
//   - Providing a consistent interface for different serialization formats
//   - Keeping the common case (strings, numbers, byte slices) small and fast
//   - Returning codec errors unchanged so callers see the real cause
//
// Key Components:
//
//   - IValueSerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: Tagged binary format. The first byte identifies the
//     type, basic types follow without further framing. Any other value is
//     encoded with gob behind a dedicated tag.
//
//   - gobSerializerImpl: Go's gob encoding with an envelope carrying the dynamic
//     type. Custom types must be made known with Register.
//
//   - jsonSerializerImpl: JSON encoding, useful for interoperability with other
//     systems reading the same store. Values come back as generic json types.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	serializer.Register(CartItem{})
//	s, _ := serializer.FromName("binary")
//	data, err := s.Serialize(CartItem{SKU: "a-1"})
//	value, err := s.Deserialize(data)
package serializer
