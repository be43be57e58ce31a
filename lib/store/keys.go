package store

// KeyNamespacer prefixes every logical key with the application name so
// that a single store instance can be shared by multiple applications.
type KeyNamespacer struct {
	ApplicationName string
}

// NewKeyNamespacer creates a namespacer for the given application
func NewKeyNamespacer(applicationName string) KeyNamespacer {
	return KeyNamespacer{ApplicationName: applicationName}
}

// Key returns "{applicationName}_{logicalKey}"
func (n KeyNamespacer) Key(logicalKey string) string {
	return n.ApplicationName + "_" + logicalKey
}

// RecordKeys are the store keys that make up one session record.
// All keys share the hash tag {<namespaced id>} so that they map to the same
// cluster slot and can be used by a single script.
type RecordKeys struct {
	Lock  string // owner token of the current lock holder
	Data  string // hash with the serialized payload entries
	Lease string // lease duration in seconds
}

// RecordKeys returns the keys of the record with the given id
func (n KeyNamespacer) RecordKeys(id string) RecordKeys {
	tag := "{" + n.Key(id) + "}"
	return RecordKeys{
		Lock:  tag + "_Write_Lock",
		Data:  tag + "_Data",
		Lease: tag + "_SessionTimeout",
	}
}

// List returns the keys in the order scripts expect them (KEYS[1..3])
func (k RecordKeys) List() []string {
	return []string{k.Lock, k.Data, k.Lease}
}
