package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB stores V in a jsonb column.
type JSONB[T any] struct {
	V T
}

func (j JSONB[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (j *JSONB[T]) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		var zero T
		j.V = zero
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported source type %T", src)
	}
	return json.Unmarshal(data, &j.V)
}
