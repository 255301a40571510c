package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Known personal info keys. They carry typed input widgets in the editor and are
// never stored as dynamic fields.
const (
	FieldFullName = "fullName"
	FieldJobTitle = "jobTitle"
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldLocation = "location"
)

// KnownFields lists the known personal info keys in display order.
var KnownFields = []string{FieldFullName, FieldJobTitle, FieldEmail, FieldPhone, FieldLocation}

// IsKnownField reports whether key is one of the known personal info keys.
func IsKnownField(key string) bool {
	for _, k := range KnownFields {
		if k == key {
			return true
		}
	}
	return false
}

// DynamicField is a user-added personal info field.
type DynamicField struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

// PersonalInfo holds the identity block of a resume: the known fields plus any
// dynamic fields in the order the user added them.
type PersonalInfo struct {
	FullName string `json:"fullName" validate:"max=200"`
	JobTitle string `json:"jobTitle" validate:"max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`

	Dynamic []DynamicField `json:"-" validate:"dive"`
}

// Get returns the value stored under key, known or dynamic.
func (p PersonalInfo) Get(key string) (string, bool) {
	switch key {
	case FieldFullName:
		return p.FullName, true
	case FieldJobTitle:
		return p.JobTitle, true
	case FieldEmail:
		return p.Email, true
	case FieldPhone:
		return p.Phone, true
	case FieldLocation:
		return p.Location, true
	}
	for _, f := range p.Dynamic {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// With returns a copy of p with key set to value. Setting an existing dynamic key
// keeps its position; new dynamic keys are appended.
func (p PersonalInfo) With(key, value string) PersonalInfo {
	out := p
	out.Dynamic = append([]DynamicField(nil), p.Dynamic...)
	switch key {
	case FieldFullName:
		out.FullName = value
	case FieldJobTitle:
		out.JobTitle = value
	case FieldEmail:
		out.Email = value
	case FieldPhone:
		out.Phone = value
	case FieldLocation:
		out.Location = value
	default:
		for i := range out.Dynamic {
			if out.Dynamic[i].Key == key {
				out.Dynamic[i].Value = value
				return out
			}
		}
		out.Dynamic = append(out.Dynamic, DynamicField{Key: key, Value: value})
	}
	return out
}

// Without returns a copy of p with the dynamic field key removed. Known fields are
// cleared instead of removed.
func (p PersonalInfo) Without(key string) PersonalInfo {
	if IsKnownField(key) {
		return p.With(key, "")
	}
	out := p
	out.Dynamic = make([]DynamicField, 0, len(p.Dynamic))
	for _, f := range p.Dynamic {
		if f.Key != key {
			out.Dynamic = append(out.Dynamic, f)
		}
	}
	return out
}

// Map flattens p into a single string map.
func (p PersonalInfo) Map() map[string]string {
	out := map[string]string{
		FieldFullName: p.FullName,
		FieldJobTitle: p.JobTitle,
		FieldEmail:    p.Email,
		FieldPhone:    p.Phone,
		FieldLocation: p.Location,
	}
	for _, f := range p.Dynamic {
		out[f.Key] = f.Value
	}
	return out
}

// MarshalJSON writes the known fields followed by the dynamic fields as one object.
func (p PersonalInfo) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(i int, key, value string) error {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return err
		}
		vb, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return nil
	}
	i := 0
	for _, key := range KnownFields {
		v, _ := p.Get(key)
		if err := write(i, key, v); err != nil {
			return nil, err
		}
		i++
	}
	for _, f := range p.Dynamic {
		if IsKnownField(f.Key) {
			continue
		}
		if err := write(i, f.Key, f.Value); err != nil {
			return nil, err
		}
		i++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object. Keys other than the known ones become dynamic
// fields, kept in document order.
func (p *PersonalInfo) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("personal info must be a JSON object")
	}
	var out PersonalInfo
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("personal info field %q: %w", key, err)
		}
		value, err := fieldString(raw)
		if err != nil {
			return fmt.Errorf("personal info field %q: %w", key, err)
		}
		out = out.With(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

// UnmarshalYAML decodes the same flat shape from YAML. Dynamic fields are ordered
// by key because yaml.v3 maps do not keep document order.
func (p *PersonalInfo) UnmarshalYAML(unmarshal func(any) error) error {
	var raw map[string]any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out PersonalInfo
	for _, k := range keys {
		value, err := fieldString(raw[k])
		if err != nil {
			return fmt.Errorf("personal info field %q: %w", k, err)
		}
		out = out.With(k, value)
	}
	*p = out
	return nil
}

// MarshalYAML writes the flat shape. yaml.v3 orders the keys.
func (p PersonalInfo) MarshalYAML() (any, error) {
	return p.Map(), nil
}

func fieldString(raw any) (string, error) {
	switch t := raw.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool, int, int64, uint64:
		return fmt.Sprint(t), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", raw)
	}
}
