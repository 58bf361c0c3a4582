package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDList holds object references that may be sent or stored either as a single
// id or as an array of ids.
type IDList []primitive.ObjectID

// UnmarshalBSONValue accepts null, a single ObjectID, or an array of ObjectIDs so
// legacy documents written with a bare reference still decode.
func (l *IDList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*l = nil
		return nil
	case bsontype.ObjectID:
		var id primitive.ObjectID
		if err := bson.UnmarshalValue(t, data, &id); err != nil {
			return err
		}
		*l = IDList{id}
		return nil
	case bsontype.Array:
		var ids []primitive.ObjectID
		if err := bson.UnmarshalValue(t, data, &ids); err != nil {
			return err
		}
		*l = ids
		return nil
	default:
		return fmt.Errorf("cannot decode %s into IDList", t)
	}
}

// MarshalBSONValue always stores the list as an array.
func (l IDList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if l == nil {
		return bson.MarshalValue([]primitive.ObjectID{})
	}
	return bson.MarshalValue([]primitive.ObjectID(l))
}

// UnmarshalJSON accepts "", a hex id, or an array of hex ids.
func (l *IDList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}

	var raw []string
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("id list: %w", err)
		}
	} else {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("id list: %w", err)
		}
		if strings.TrimSpace(single) != "" {
			raw = []string{single}
		}
	}

	ids := make(IDList, 0, len(raw))
	for _, value := range raw {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("id list: invalid id %q", value)
		}
		ids = append(ids, id)
	}
	*l = ids
	return nil
}

// Contains reports whether id is a member of the list.
func (l IDList) Contains(id primitive.ObjectID) bool {
	for _, candidate := range l {
		if candidate == id {
			return true
		}
	}
	return false
}

// First returns the first id, or nil when the list is empty.
func (l IDList) First() *primitive.ObjectID {
	if len(l) == 0 {
		return nil
	}
	id := l[0]
	return &id
}
