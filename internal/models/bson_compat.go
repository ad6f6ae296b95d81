package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// StringList decodes category fields whether stored as a single string or an
// array of strings, so legacy menu documents keep decoding.
type StringList []string

func (s *StringList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null:
		*s = nil
		return nil
	case bsontype.Array:
		var values []string
		if err := bson.UnmarshalValue(t, data, &values); err != nil {
			return err
		}
		*s = values
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}

		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			*s = []string{}
			return nil
		}

		*s = []string{trimmed}
		return nil
	default:
		return fmt.Errorf("cannot decode %s into StringList", t)
	}
}

// MarshalBSONValue always stores the list as an array, keeping new writes
// consistent even when legacy documents used a string value.
func (s StringList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue([]string(s))
}

// DateList holds an order's delivery dates. Orders written after the split
// was introduced carry exactly one date, but older documents stored either a
// bare datetime or an array of several, so both shapes must decode.
type DateList []time.Time

func (d *DateList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null:
		*d = nil
		return nil
	case bsontype.Array:
		var values []time.Time
		if err := bson.UnmarshalValue(t, data, &values); err != nil {
			return err
		}
		*d = values
		return nil
	case bsontype.DateTime:
		var value time.Time
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		*d = []time.Time{value}
		return nil
	default:
		return fmt.Errorf("cannot decode %s into DateList", t)
	}
}

// MarshalBSONValue always stores the dates as an array.
func (d DateList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue([]time.Time(d))
}
