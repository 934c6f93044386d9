package schema

import (
	"encoding/json"
	"fmt"
)

// CustomFieldTypeDropDown is the only custom field type with a typed config.
const CustomFieldTypeDropDown = "drop_down"

// DropDownOption is one choice of a drop-down custom field.
type DropDownOption struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Color      *string `json:"color"`
	OrderIndex FlexInt `json:"orderindex"`
}

// DropDownTypeConfig is the type_config of a drop-down custom field.
type DropDownTypeConfig struct {
	Default     FlexInt          `json:"default"`
	Placeholder *string          `json:"placeholder"`
	Options     []DropDownOption `json:"options"`
}

// OptionForValue returns the option whose orderindex equals value.
// Drop-down values are stored upstream as the option's orderindex.
func (c *DropDownTypeConfig) OptionForValue(value int64) (DropDownOption, error) {
	var selected []DropDownOption
	valid := make([]int64, 0, len(c.Options))
	for _, o := range c.Options {
		valid = append(valid, int64(o.OrderIndex))
		if int64(o.OrderIndex) == value {
			selected = append(selected, o)
		}
	}
	switch len(selected) {
	case 0:
		return DropDownOption{}, fmt.Errorf("no value of %d in drop down, valid values are: %v", value, valid)
	case 1:
		return selected[0], nil
	default:
		return DropDownOption{}, fmt.Errorf("value %d matches %d drop down options", value, len(selected))
	}
}

// CustomFieldDefinition describes a custom field available on a list.
type CustomFieldDefinition struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	TypeConfig json.RawMessage `json:"type_config"`
}

// Validate checks if the CustomFieldDefinition has valid field values.
func (d *CustomFieldDefinition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("custom field id is required")
	}
	if d.Type == "" {
		return fmt.Errorf("custom field %s: type is required", d.ID)
	}
	return nil
}

// DropDownConfig decodes the field's type_config as a drop-down config.
func (d *CustomFieldDefinition) DropDownConfig() (*DropDownTypeConfig, error) {
	return decodeDropDownConfig(d.ID, d.Type, d.TypeConfig)
}

// CustomFieldValue is a custom field together with its value on a task.
type CustomFieldValue struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	TypeConfig     json.RawMessage `json:"type_config"`
	DateCreated    *string         `json:"date_created"`
	HideFromGuests bool            `json:"hide_from_guests"`
	Value          json.RawMessage `json:"value,omitempty"`
	Required       bool            `json:"required"`
}

// Validate checks if the CustomFieldValue has valid field values.
func (v *CustomFieldValue) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("custom field id is required")
	}
	if v.Type == "" {
		return fmt.Errorf("custom field %s: type is required", v.ID)
	}
	return nil
}

// DropDownConfig decodes the field's type_config as a drop-down config.
func (v *CustomFieldValue) DropDownConfig() (*DropDownTypeConfig, error) {
	return decodeDropDownConfig(v.ID, v.Type, v.TypeConfig)
}

// SelectedOption resolves a drop-down value to its option.
func (v *CustomFieldValue) SelectedOption() (DropDownOption, error) {
	cfg, err := v.DropDownConfig()
	if err != nil {
		return DropDownOption{}, err
	}
	var value FlexInt
	if len(v.Value) == 0 || string(v.Value) == "null" {
		return DropDownOption{}, fmt.Errorf("custom field %s has no value", v.ID)
	}
	if err := json.Unmarshal(v.Value, &value); err != nil {
		return DropDownOption{}, fmt.Errorf("custom field %s: %w", v.ID, err)
	}
	return cfg.OptionForValue(int64(value))
}

func decodeDropDownConfig(id, typ string, raw json.RawMessage) (*DropDownTypeConfig, error) {
	if typ != CustomFieldTypeDropDown {
		return nil, fmt.Errorf("custom field %s: unknown type: %s", id, typ)
	}
	var cfg DropDownTypeConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("custom field %s: invalid drop down config: %w", id, err)
	}
	return &cfg, nil
}
