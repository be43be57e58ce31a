package serializer

import (
	"encoding/json"
)

// NewJSONSerializer creates a new serializer using json encoding.
// Deserialized values use the generic json types (map[string]interface{}, []interface{}, float64, ...).
func NewJSONSerializer() IValueSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IValueSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IValueSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(value interface{}) ([]byte, error) {
	return json.Marshal(value)
}

func (j jsonSerializerImpl) Deserialize(b []byte) (interface{}, error) {
	var value interface{}
	if err := json.Unmarshal(b, &value); err != nil {
		return nil, err
	}
	return value, nil
}
