package entity

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Date is a calendar day in storage form (yyyy-mm-dd). Drivers hand DATE
// columns back as time.Time, []byte or string depending on configuration;
// all of them are reduced to the same text.
type Date string

func (d Date) Value() (driver.Value, error) {
	return string(d), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = Date(v.Format(time.DateOnly))
	case string:
		*d = Date(dayPart(v))
	case []byte:
		*d = Date(dayPart(string(v)))
	default:
		return fmt.Errorf("date: unsupported column type %T", src)
	}
	return nil
}

// dayPart drops a time suffix such as "T00:00:00Z" or " 00:00:00".
func dayPart(s string) string {
	if len(s) > 10 && s[4] == '-' && s[7] == '-' {
		return s[:10]
	}
	return s
}
