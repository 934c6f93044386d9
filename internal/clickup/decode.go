package clickup

import (
	"encoding/json"
	"fmt"
)

type validator interface {
	Validate() error
}

// unmarshalField decodes body into dst. With a non-empty key, body must be an
// object carrying key with a non-null value, and only that value is decoded.
func unmarshalField(body json.RawMessage, key string, dst any) error {
	if key == "" {
		return json.Unmarshal(body, dst)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return err
	}
	raw, ok := envelope[key]
	if !ok {
		return fmt.Errorf("missing key %q", key)
	}
	if string(raw) == "null" {
		return fmt.Errorf("key %q is null", key)
	}
	return json.Unmarshal(raw, dst)
}

// decodeList decodes a list of records found under key and validates each one.
func decodeList[T any, PT interface {
	*T
	validator
}](path string, body json.RawMessage, key string) ([]T, error) {
	var items []T
	if err := unmarshalField(body, key, &items); err != nil {
		return nil, newDecodeError(path, body, err)
	}
	for i := range items {
		if err := PT(&items[i]).Validate(); err != nil {
			return nil, newDecodeError(path, body, fmt.Errorf("item %d: %w", i, err))
		}
	}
	return items, nil
}

// decodeOne decodes a single record and validates it.
func decodeOne[T any, PT interface {
	*T
	validator
}](path string, body json.RawMessage) (*T, error) {
	var item T
	if err := unmarshalField(body, "", &item); err != nil {
		return nil, newDecodeError(path, body, err)
	}
	if err := PT(&item).Validate(); err != nil {
		return nil, newDecodeError(path, body, err)
	}
	return &item, nil
}
