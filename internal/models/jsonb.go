package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SlotList stores a slice of time slots as a JSONB column.
type SlotList []TimeSlot

// Value implements driver.Valuer.
func (l SlotList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *SlotList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// DayList stores the weekly template days as a JSONB column.
type DayList []TemplateDay

// Value implements driver.Valuer.
func (l DayList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *DayList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
