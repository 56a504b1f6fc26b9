package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Flag is a yes/no column stored as the single character 's' or 'n'.
type Flag bool

// Storage returns the column encoding of f.
func (f Flag) Storage() string {
	if f {
		return "s"
	}
	return "n"
}

// FlagFromStorage decodes a column value; anything but 's' is false.
func FlagFromStorage(v string) Flag {
	return Flag(strings.EqualFold(strings.TrimSpace(v), "s"))
}

func (f Flag) Value() (driver.Value, error) {
	return f.Storage(), nil
}

func (f *Flag) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = false
	case string:
		*f = FlagFromStorage(v)
	case []byte:
		*f = FlagFromStorage(string(v))
	case int64:
		*f = v == 1
	case bool:
		*f = Flag(v)
	default:
		return fmt.Errorf("flag: unsupported column type %T", src)
	}
	return nil
}

// UnmarshalJSON accepts true/false, "s"/"n" and 1/0.
func (f *Flag) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(v)
	case string:
		*f = FlagFromStorage(v)
	case float64:
		*f = v == 1
	default:
		return fmt.Errorf("flag: unsupported json value %s", string(b))
	}
	return nil
}
