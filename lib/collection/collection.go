package collection

import (
	"fmt"
	"github.com/ValentinKolb/dSess/rpc/serializer"
	"sort"
	"strings"
)

// ChangeTrackingCollection is an ordered, case-insensitive view over the
// entries of one session record. It remembers which keys were modified or
// deleted since the last flush so that only those have to be written back.
//
// Thread-safety: a collection belongs to one unit of work and is not safe for concurrent use.
type ChangeTrackingCollection struct {
	serializer serializer.IValueSerializer

	names  []string                 // names in insertion order (casing of the first insertion)
	values map[string]*ValueWrapper // name -> value
	casing map[string]string        // upper case name -> name

	modified map[string]struct{}
	deleted  map[string]struct{}
	dirty    bool
}

// New creates an empty collection that uses s to (de)serialize values
func New(s serializer.IValueSerializer) *ChangeTrackingCollection {
	return &ChangeTrackingCollection{
		serializer: s,
		values:     make(map[string]*ValueWrapper),
		casing:     make(map[string]string),
		modified:   make(map[string]struct{}),
		deleted:    make(map[string]struct{}),
	}
}

// --------------------------------------------------------------------------
// Change Tracking
// --------------------------------------------------------------------------

// normalize returns the casing recorded when the name was first inserted.
// Unknown names are returned unchanged.
func (c *ChangeTrackingCollection) normalize(name string) string {
	if actual, ok := c.casing[strings.ToUpper(name)]; ok {
		return actual
	}
	return name
}

// record remembers the casing of a name on first insertion
func (c *ChangeTrackingCollection) record(name string) string {
	upper := strings.ToUpper(name)
	if actual, ok := c.casing[upper]; ok {
		return actual
	}
	c.casing[upper] = name
	return name
}

func (c *ChangeTrackingCollection) markModified(name string) {
	c.dirty = true
	delete(c.deleted, name)
	c.modified[name] = struct{}{}
}

func (c *ChangeTrackingCollection) markDeleted(name string) {
	c.dirty = true
	delete(c.modified, name)
	c.deleted[name] = struct{}{}
}

// Dirty reports whether the collection changed since the last reset
func (c *ChangeTrackingCollection) Dirty() bool {
	return c.dirty
}

// SetDirty sets the dirty flag. Setting it to false acknowledges a successful
// flush and clears the modified and deleted keys.
func (c *ChangeTrackingCollection) SetDirty(dirty bool) {
	c.dirty = dirty
	if !dirty {
		clear(c.modified)
		clear(c.deleted)
	}
}

// ModifiedKeys returns the modified keys in sorted order
func (c *ChangeTrackingCollection) ModifiedKeys() []string {
	return sortedKeys(c.modified)
}

// DeletedKeys returns the deleted keys in sorted order
func (c *ChangeTrackingCollection) DeletedKeys() []string {
	return sortedKeys(c.deleted)
}

// ModifiedEntries returns the serialized values of all modified keys.
// Serialization errors are returned unchanged.
func (c *ChangeTrackingCollection) ModifiedEntries() (map[string][]byte, error) {
	entries := make(map[string][]byte, len(c.modified))
	for name := range c.modified {
		w, ok := c.values[name]
		if !ok {
			continue
		}
		data, err := w.Bytes(c.serializer)
		if err != nil {
			return nil, err
		}
		entries[name] = data
	}
	return entries, nil
}

// Entries returns the serialized values of all keys (used to write a whole record)
func (c *ChangeTrackingCollection) Entries() (map[string][]byte, error) {
	entries := make(map[string][]byte, len(c.names))
	for _, name := range c.names {
		data, err := c.values[name].Bytes(c.serializer)
		if err != nil {
			return nil, err
		}
		entries[name] = data
	}
	return entries, nil
}

// AddSerializedData seeds the collection with a value loaded from the store.
// Seeding does not mark the key as modified.
func (c *ChangeTrackingCollection) AddSerializedData(name string, raw []byte) {
	name = c.record(name)
	if _, ok := c.values[name]; !ok {
		c.names = append(c.names, name)
	}
	c.values[name] = NewRawValue(raw)
}

// --------------------------------------------------------------------------
// Collection Operations
// --------------------------------------------------------------------------

// Get returns the value of a key. The boolean reports whether the key exists.
// Reading a mutable reference marks the key as modified since the caller may
// change it in place.
func (c *ChangeTrackingCollection) Get(name string) (interface{}, bool, error) {
	name = c.normalize(name)
	w, ok := c.values[name]
	if !ok {
		return nil, false, nil
	}
	value, err := w.Value(c.serializer)
	if err != nil {
		return nil, true, err
	}
	if w.Kind() == KindMutableReference {
		c.markModified(name)
	}
	return value, true, nil
}

// Set inserts or replaces the value of a key and marks it as modified
func (c *ChangeTrackingCollection) Set(name string, value interface{}) {
	name = c.record(name)
	c.markModified(name)
	if w, ok := c.values[name]; ok {
		w.Set(value)
		return
	}
	c.names = append(c.names, name)
	c.values[name] = NewValue(value)
}

// GetAt returns the value at the given position (see Get)
func (c *ChangeTrackingCollection) GetAt(index int) (interface{}, error) {
	name, err := c.nameAt(index)
	if err != nil {
		return nil, err
	}
	value, _, err := c.Get(name)
	return value, err
}

// SetAt replaces the value at the given position (see Set)
func (c *ChangeTrackingCollection) SetAt(index int, value interface{}) error {
	name, err := c.nameAt(index)
	if err != nil {
		return err
	}
	c.Set(name, value)
	return nil
}

// Remove removes a key. Existing keys are marked as deleted.
func (c *ChangeTrackingCollection) Remove(name string) {
	c.remove(c.normalize(name))
}

// RemoveAt removes the key at the given position
func (c *ChangeTrackingCollection) RemoveAt(index int) error {
	name, err := c.nameAt(index)
	if err != nil {
		return err
	}
	c.remove(name)
	return nil
}

// Clear marks all keys as deleted and empties the collection
func (c *ChangeTrackingCollection) Clear() {
	for _, name := range c.names {
		c.markDeleted(name)
	}
	c.names = nil
	clear(c.values)
}

// Keys returns the keys in insertion order
func (c *ChangeTrackingCollection) Keys() []string {
	keys := make([]string, len(c.names))
	copy(keys, c.names)
	return keys
}

// Count returns the number of keys
func (c *ChangeTrackingCollection) Count() int {
	return len(c.names)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func (c *ChangeTrackingCollection) remove(name string) {
	if _, ok := c.values[name]; !ok {
		return
	}
	c.markDeleted(name)
	delete(c.values, name)
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
}

func (c *ChangeTrackingCollection) nameAt(index int) (string, error) {
	if index < 0 || index >= len(c.names) {
		return "", fmt.Errorf("index %d out of range [0, %d)", index, len(c.names))
	}
	return c.names[index], nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
