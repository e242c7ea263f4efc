package network

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const clockTimeLayout = "15:04:05"

// ClockTime is a wall-clock time of day stored in SQL TIME columns as HH:MM:SS
type ClockTime time.Duration

func NewClockTime(hour, minute, second int) ClockTime {
	return ClockTime(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second)
}

func ParseClockTime(value string) (ClockTime, error) {
	parsed, err := time.Parse(clockTimeLayout, value)
	if err != nil {
		return 0, fmt.Errorf("clock time %q: %w", value, ErrValidation)
	}

	return NewClockTime(parsed.Hour(), parsed.Minute(), parsed.Second()), nil
}

func (c ClockTime) String() string {
	total := int(time.Duration(c) / time.Second)

	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

func (c ClockTime) Value() (driver.Value, error) {
	return c.String(), nil
}

func (c *ClockTime) Scan(src any) error {
	var value string

	switch v := src.(type) {
	case string:
		value = v
	case []byte:
		value = string(v)
	case time.Time:
		*c = NewClockTime(v.Hour(), v.Minute(), v.Second())
		return nil
	case nil:
		*c = 0
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", src)
	}

	// Some drivers append fractional seconds
	if len(value) > len(clockTimeLayout) {
		value = value[:len(clockTimeLayout)]
	}

	parsed, err := ParseClockTime(value)
	if err != nil {
		return err
	}
	*c = parsed

	return nil
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	parsed, err := ParseClockTime(value)
	if err != nil {
		return err
	}
	*c = parsed

	return nil
}
