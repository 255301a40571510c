// Package interchange converts between ResumeData and the portable JSON resume
// document (basics, work, education, skills, extraData, meta.theme).
package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// Document is the interchange shape.
type Document struct {
	Basics    Basics                 `json:"basics"`
	Work      []Work                 `json:"work"`
	Education []Education            `json:"education"`
	Skills    []Skill                `json:"skills"`
	ExtraData map[string]types.Value `json:"extraData,omitempty"`
	Theme     string                 `json:"theme,omitempty"`
	Meta      *Meta                  `json:"meta,omitempty"`
}

// Meta carries document metadata. Only the layout selector is used.
type Meta struct {
	Theme string `json:"theme,omitempty"`
}

// Work is a position. Company is accepted as an alias of Name on import.
type Work struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name,omitempty"`
	Company    string   `json:"company,omitempty"`
	Position   string   `json:"position"`
	Location   string   `json:"location,omitempty"`
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights,omitempty"`
}

// Education is a course of study.
type Education struct {
	ID          string `json:"id,omitempty"`
	Institution string `json:"institution"`
	StudyType   string `json:"studyType"`
	Area        string `json:"area"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Summary     string `json:"summary,omitempty"`
}

// Profile is a social profile of the basics block.
type Profile struct {
	Network  string `json:"network"`
	Username string `json:"username,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Basics is the identity block: the mapped known fields plus any other scalar
// keys, kept in document order.
type Basics struct {
	Fields   []types.DynamicField
	Profiles []Profile
}

// Get returns the value stored under the interchange key.
func (b Basics) Get(key string) (string, bool) {
	for _, f := range b.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// MarshalJSON writes the fields in order, followed by profiles when present.
func (b Basics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range b.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	if len(b.Profiles) > 0 {
		if len(b.Fields) > 0 {
			buf.WriteByte(',')
		}
		pb, err := json.Marshal(b.Profiles)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"profiles":`)
		buf.Write(pb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the basics object. A structured location is flattened
// into one line.
func (b *Basics) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("basics must be a JSON object")
	}
	var out Basics
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		switch key {
		case "profiles":
			if err := dec.Decode(&out.Profiles); err != nil {
				return fmt.Errorf("basics.profiles: %w", err)
			}
			continue
		case "location":
			var raw any
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("basics.location: %w", err)
			}
			out.set(key, flattenLocation(raw))
			continue
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("basics.%s: %w", key, err)
		}
		value, err := scalarString(raw)
		if err != nil {
			return fmt.Errorf("basics.%s: %w", key, err)
		}
		out.set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*b = out
	return nil
}

func (b *Basics) set(key, value string) {
	for i := range b.Fields {
		if b.Fields[i].Key == key {
			b.Fields[i].Value = value
			return
		}
	}
	b.Fields = append(b.Fields, types.DynamicField{Key: key, Value: value})
}

func flattenLocation(raw any) string {
	switch t := raw.(type) {
	case string:
		return t
	case map[string]any:
		var parts []string
		for _, k := range []string{"address", "city", "region", "postalCode", "countryCode"} {
			if s, ok := t[k].(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func scalarString(raw any) (string, error) {
	switch t := raw.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return fmt.Sprint(t), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", raw)
	}
}

// Skill is a skill entry, written as a plain string. On import an object with a
// name is accepted too.
type Skill struct {
	Name     string
	Keywords []string
}

// MarshalJSON writes the skill name.
func (s Skill) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Name)
}

// UnmarshalJSON accepts "Go" and {"name": "Go", "keywords": [...]}.
func (s *Skill) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*s = Skill{Name: name}
		return nil
	}
	var obj struct {
		Name     string   `json:"name"`
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("skill must be a string or an object with a name: %w", err)
	}
	*s = Skill{Name: obj.Name, Keywords: obj.Keywords}
	return nil
}
