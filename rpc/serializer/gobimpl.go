package serializer

import (
	"bytes"
	"encoding/gob"
	"time"
)

func init() {
	// composite types that commonly end up in sessions; basic types are known to gob already
	gob.Register(map[string]string{})
	gob.Register(map[string]int{})
	gob.Register(map[string]interface{}{})
	gob.Register([]interface{}{})
	gob.Register(time.Time{})
}

// Register makes a custom type known to the gob based serializers.
// It must be called for every concrete type stored in a session that is not a basic type.
// Pointers are encoded as the value they point to.
func Register(value interface{}) {
	gob.Register(value)
}

// NewGOBSerializer creates a new serializer using Go's binary gob format
func NewGOBSerializer() IValueSerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the IValueSerializer interface using gob encoding
type gobSerializerImpl struct {
}

// gobEnvelope lets gob transport the dynamic type of the value
type gobEnvelope struct {
	Value interface{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IValueSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) Serialize(value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(gobEnvelope{Value: value}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) Deserialize(b []byte) (interface{}, error) {
	var env gobEnvelope
	dec := gob.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&env); err != nil {
		return nil, err
	}
	return env.Value, nil
}
