package schema

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

var jsonNull = []byte("null")

// unquote returns the contents of a JSON string literal, or the raw bytes for
// any other literal.
func unquote(data []byte) (string, error) {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(data), nil
}

// FlexInt is an integer that may be encoded as a JSON number or a numeric string.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		return nil
	}
	s, err := unquote(data)
	if err != nil {
		return err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		v = int64(f)
	}
	*n = FlexInt(v)
	return nil
}

// FlexFloat is a float that may be encoded as a JSON number or a numeric string.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		return nil
	}
	s, err := unquote(data)
	if err != nil {
		return err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*f = FlexFloat(v)
	return nil
}

// Millis is an instant encoded upstream as milliseconds since the Unix epoch,
// either as a JSON number or a string.
type Millis struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Millis) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		return nil
	}
	s, err := unquote(data)
	if err != nil {
		return err
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid millisecond timestamp %q", s)
	}
	m.Time = time.UnixMilli(ms).UTC()
	return nil
}

// MarshalJSON encodes the instant back into a millisecond string.
func (m Millis) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return jsonNull, nil
	}
	return json.Marshal(strconv.FormatInt(m.UnixMilli(), 10))
}

// Duration is a time span encoded upstream as a millisecond count, either as
// a JSON number or a string.
type Duration struct {
	time.Duration
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		return fmt.Errorf("duration is required")
	}
	s, err := unquote(data)
	if err != nil {
		return err
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("int required, got %q", s)
	}
	d.Duration = time.Duration(ms) * time.Millisecond
	return nil
}

// MarshalJSON encodes the span as a millisecond number.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Milliseconds())
}

// JSONText is a JSON document stored in a TEXT column.
// A nil JSONText is stored as NULL.
type JSONText []byte

// Value implements driver.Valuer.
func (j JSONText) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return string(j), nil
}

// Scan implements sql.Scanner.
func (j *JSONText) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case string:
		*j = JSONText(v)
	case []byte:
		*j = append(JSONText(nil), v...)
	default:
		return fmt.Errorf("cannot scan %T into JSONText", src)
	}
	return nil
}

// MarshalJSON emits the stored document verbatim.
func (j JSONText) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return jsonNull, nil
	}
	return j, nil
}

// String returns the document as a string.
func (j JSONText) String() string {
	return string(j)
}

// ToJSONText marshals v for storage in a JSON column. Nil values (including
// empty or null raw messages) become NULL.
func ToJSONText(v any) (JSONText, error) {
	switch raw := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
			return nil, nil
		}
		return JSONText(raw), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(data, jsonNull) {
		return nil, nil
	}
	return JSONText(data), nil
}
