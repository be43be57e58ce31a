package serializer

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// NewBinarySerializer creates a new serializer using a compact tagged binary format.
// Basic types are encoded directly, everything else falls back to gob.
func NewBinarySerializer() IValueSerializer {
	return &binarySerializerImpl{fallback: gobSerializerImpl{}}
}

// binarySerializerImpl implements IValueSerializer using a custom binary format
type binarySerializerImpl struct {
	fallback gobSerializerImpl
}

// Type tags, the first byte of every serialized value
const (
	tagNil     byte = 0
	tagString  byte = 1
	tagBytes   byte = 2
	tagBool    byte = 3
	tagInt     byte = 4
	tagInt64   byte = 5
	tagUint64  byte = 6
	tagFloat64 byte = 7
	tagTime    byte = 8
	tagGob     byte = 0xFF
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IValueSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return []byte{tagNil}, nil
	case string:
		result := make([]byte, 1+len(v))
		result[0] = tagString
		copy(result[1:], v)
		return result, nil
	case []byte:
		result := make([]byte, 1+len(v))
		result[0] = tagBytes
		copy(result[1:], v)
		return result, nil
	case bool:
		if v {
			return []byte{tagBool, 1}, nil
		}
		return []byte{tagBool, 0}, nil
	case int:
		return fixed64(tagInt, uint64(int64(v))), nil
	case int64:
		return fixed64(tagInt64, uint64(v)), nil
	case uint64:
		return fixed64(tagUint64, v), nil
	case float64:
		return fixed64(tagFloat64, math.Float64bits(v)), nil
	case time.Time:
		data, err := v.MarshalBinary()
		if err != nil {
			return nil, err
		}
		return append([]byte{tagTime}, data...), nil
	default:
		data, err := b.fallback.Serialize(value)
		if err != nil {
			return nil, err
		}
		return append([]byte{tagGob}, data...), nil
	}
}

func (b binarySerializerImpl) Deserialize(data []byte) (interface{}, error) {
	// Check minimum size (tag)
	if len(data) < 1 {
		return nil, fmt.Errorf("data too short for value tag")
	}

	payload := data[1:]
	switch data[0] {
	case tagNil:
		return nil, nil
	case tagString:
		return string(payload), nil
	case tagBytes:
		value := make([]byte, len(payload))
		copy(value, payload)
		return value, nil
	case tagBool:
		if len(payload) != 1 {
			return nil, fmt.Errorf("invalid length %d for bool", len(payload))
		}
		return payload[0] == 1, nil
	case tagInt, tagInt64, tagUint64, tagFloat64:
		if len(payload) != 8 {
			return nil, fmt.Errorf("invalid length %d for 64 bit value", len(payload))
		}
		raw := binary.BigEndian.Uint64(payload)
		switch data[0] {
		case tagInt:
			return int(int64(raw)), nil
		case tagInt64:
			return int64(raw), nil
		case tagUint64:
			return raw, nil
		default:
			return math.Float64frombits(raw), nil
		}
	case tagTime:
		var t time.Time
		if err := t.UnmarshalBinary(payload); err != nil {
			return nil, err
		}
		return t, nil
	case tagGob:
		return b.fallback.Deserialize(payload)
	default:
		return nil, fmt.Errorf("unknown value tag %d", data[0])
	}
}

// fixed64 encodes a tag followed by 8 big endian bytes
func fixed64(tag byte, v uint64) []byte {
	result := make([]byte, 9)
	result[0] = tag
	binary.BigEndian.PutUint64(result[1:], v)
	return result
}
