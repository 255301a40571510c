package interchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
	embedded "github.com/jonathan/resume-builder/schemas"
)

// ImportError is returned when a document cannot be read.
type ImportError struct {
	Message string
	Cause   error
}

func (e *ImportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("import failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("import failed: %s", e.Message)
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}

// Mapping pairs an interchange key with the internal field it fills.
type Mapping struct {
	Section     string
	Interchange string
	Internal    string
}

// Mappings is the fixed, one-to-one field table between the two shapes.
var Mappings = []Mapping{
	{Section: "basics", Interchange: "name", Internal: types.FieldFullName},
	{Section: "basics", Interchange: "label", Internal: types.FieldJobTitle},
	{Section: "basics", Interchange: "email", Internal: types.FieldEmail},
	{Section: "basics", Interchange: "phone", Internal: types.FieldPhone},
	{Section: "basics", Interchange: "location", Internal: types.FieldLocation},
	{Section: "work", Interchange: "name", Internal: "company"},
	{Section: "work", Interchange: "position", Internal: "jobTitle"},
	{Section: "work", Interchange: "summary", Internal: "description"},
	{Section: "education", Interchange: "studyType", Internal: "degree"},
	{Section: "education", Interchange: "area", Internal: "field"},
	{Section: "education", Interchange: "summary", Internal: "description"},
}

func basicsInternal(key string) string {
	for _, m := range Mappings {
		if m.Section == "basics" && m.Interchange == key {
			return m.Internal
		}
	}
	return key
}

func basicsInterchange(key string) string {
	for _, m := range Mappings {
		if m.Section == "basics" && m.Internal == key {
			return m.Interchange
		}
	}
	return key
}

// escapePrefix marks a dynamic personal field whose own key would be read back
// as a known field or as the profiles list.
const escapePrefix = "x-"

func escapeBasicsKey(key string) string {
	if key == "profiles" || types.IsKnownField(key) || basicsInternal(key) != key ||
		strings.HasPrefix(key, escapePrefix) {
		return escapePrefix + key
	}
	return key
}

// unescapeBasicsKey returns the dynamic field key an escaped interchange key
// stands for.
func unescapeBasicsKey(key string) (string, bool) {
	inner, ok := strings.CutPrefix(key, escapePrefix)
	if !ok || types.IsKnownField(inner) {
		return "", false
	}
	return inner, true
}

// Imported is a resume read from a document, with the layout it selects, if any.
type Imported struct {
	Resume types.ResumeData
	Layout string
}

// Import reads an interchange document. The document is checked against the
// embedded schema before it is mapped.
func Import(data []byte) (Imported, error) {
	if err := schemas.Validate(embedded.Interchange, data); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return Imported{}, &ImportError{Message: "document does not match the interchange schema", Cause: err}
		}
		return Imported{}, &ImportError{Message: "invalid JSON", Cause: err}
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Imported{}, &ImportError{Message: "invalid interchange document", Cause: err}
	}
	return Imported{Resume: FromDocument(doc), Layout: doc.Layout()}, nil
}

// Layout returns the layout selector; meta.theme wins over theme.
func (d Document) Layout() string {
	if d.Meta != nil && strings.TrimSpace(d.Meta.Theme) != "" {
		return strings.TrimSpace(d.Meta.Theme)
	}
	return strings.TrimSpace(d.Theme)
}

// FromDocument maps an interchange document onto ResumeData. Entries keep their
// id when it is present and unique; all others get a fresh one.
func FromDocument(doc Document) types.ResumeData {
	var pi types.PersonalInfo
	for _, f := range doc.Basics.Fields {
		if key, ok := unescapeBasicsKey(f.Key); ok {
			pi = pi.With(key, f.Value)
			continue
		}
		pi = pi.With(basicsInternal(f.Key), f.Value)
	}
	for _, p := range doc.Basics.Profiles {
		key := strings.ToLower(strings.TrimSpace(p.Network))
		if key == "" {
			key = "profile"
		}
		if _, exists := pi.Get(key); exists {
			continue
		}
		value := p.URL
		if value == "" {
			value = p.Username
		}
		pi = pi.With(key, value)
	}

	ids := map[string]bool{}
	id := func(candidate string) string {
		if candidate == "" || ids[candidate] {
			candidate = types.NewID()
		}
		ids[candidate] = true
		return candidate
	}

	work := make([]types.WorkEntry, 0, len(doc.Work))
	for _, w := range doc.Work {
		company := w.Name
		if company == "" {
			company = w.Company
		}
		work = append(work, types.WorkEntry{
			ID:          id(w.ID),
			Company:     company,
			JobTitle:    w.Position,
			Location:    w.Location,
			StartDate:   w.StartDate,
			EndDate:     w.EndDate,
			Description: withHighlights(w.Summary, w.Highlights),
		})
	}

	education := make([]types.EducationEntry, 0, len(doc.Education))
	for _, e := range doc.Education {
		education = append(education, types.EducationEntry{
			ID:          id(e.ID),
			Institution: e.Institution,
			Degree:      e.StudyType,
			Field:       e.Area,
			StartDate:   e.StartDate,
			EndDate:     e.EndDate,
			Description: e.Summary,
		})
	}

	skills := make([]string, 0, len(doc.Skills))
	for _, s := range doc.Skills {
		skills = append(skills, s.Name)
	}

	r := types.ResumeData{
		PersonalInfo:   pi,
		WorkExperience: work,
		Education:      education,
		ExtraData:      doc.ExtraData,
	}
	return r.WithSkills(skills)
}

// withHighlights appends highlights to the summary as a Markdown list.
func withHighlights(summary string, highlights []string) string {
	var lines []string
	for _, h := range highlights {
		if h = strings.TrimSpace(h); h != "" {
			lines = append(lines, "- "+h)
		}
	}
	if len(lines) == 0 {
		return summary
	}
	list := strings.Join(lines, "\n")
	if strings.TrimSpace(summary) == "" {
		return list
	}
	return strings.TrimRight(summary, "\n") + "\n\n" + list
}

// ToDocument maps ResumeData onto the interchange shape. layout becomes meta.theme
// when set. Dynamic personal fields named like a mapped basics key, or like the
// escape prefix, are written with an "x-" prefix that FromDocument strips.
func ToDocument(r types.ResumeData, layout string) Document {
	var basics Basics
	for _, key := range types.KnownFields {
		v, _ := r.PersonalInfo.Get(key)
		basics.Fields = append(basics.Fields, types.DynamicField{Key: basicsInterchange(key), Value: v})
	}
	for _, f := range r.PersonalInfo.Dynamic {
		basics.set(escapeBasicsKey(f.Key), f.Value)
	}

	work := make([]Work, 0, len(r.WorkExperience))
	for _, w := range r.WorkExperience {
		work = append(work, Work{
			ID:        w.ID,
			Name:      w.Company,
			Position:  w.JobTitle,
			Location:  w.Location,
			StartDate: w.StartDate,
			EndDate:   w.EndDate,
			Summary:   w.Description,
		})
	}

	education := make([]Education, 0, len(r.Education))
	for _, e := range r.Education {
		education = append(education, Education{
			ID:          e.ID,
			Institution: e.Institution,
			StudyType:   e.Degree,
			Area:        e.Field,
			StartDate:   e.StartDate,
			EndDate:     e.EndDate,
			Summary:     e.Description,
		})
	}

	skills := make([]Skill, 0, len(r.Skills))
	for _, s := range r.Skills {
		skills = append(skills, Skill{Name: s})
	}

	doc := Document{
		Basics:    basics,
		Work:      work,
		Education: education,
		Skills:    skills,
		ExtraData: r.Clone().ExtraData,
	}
	if layout != "" {
		doc.Meta = &Meta{Theme: layout}
	}
	return doc
}

// Export encodes r as an indented interchange document.
func Export(r types.ResumeData, layout string) ([]byte, error) {
	return json.MarshalIndent(ToDocument(r, layout), "", "  ")
}

// Shape names the layout of a data document.
type Shape string

// Document shapes.
const (
	ShapeInterchange Shape = "interchange"
	ShapeInternal    Shape = "internal"
)

// DetectShape reports which shape a JSON object uses. Interchange documents are
// recognised by their basics, work, theme or meta keys.
func DetectShape(data []byte) (Shape, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", &ImportError{Message: "invalid JSON", Cause: err}
	}
	for _, key := range []string{"basics", "work", "theme", "meta"} {
		if _, ok := probe[key]; ok {
			return ShapeInterchange, nil
		}
	}
	return ShapeInternal, nil
}

// Parse reads a JSON document in either shape.
func Parse(data []byte) (Imported, error) {
	shape, err := DetectShape(data)
	if err != nil {
		return Imported{}, err
	}
	if shape == ShapeInterchange {
		return Import(data)
	}
	if err := schemas.Validate(embedded.Resume, data); err != nil {
		return Imported{}, &ImportError{Message: "document does not match the resume schema", Cause: err}
	}
	var r types.ResumeData
	if err := json.Unmarshal(data, &r); err != nil {
		return Imported{}, &ImportError{Message: "invalid resume document", Cause: err}
	}
	return Imported{Resume: r.EnsureIDs()}, nil
}

// ParseYAML reads a YAML document in the internal shape. It is checked against
// the same schema as JSON data, with scalars keeping their YAML types: an
// unquoted year is a number and fails where a string is expected.
func ParseYAML(data []byte) (Imported, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return Imported{}, &ImportError{Message: "invalid YAML", Cause: err}
	}
	if node.Kind == 0 {
		return Imported{Resume: types.ResumeData{}.EnsureIDs()}, nil
	}

	doc, err := yamlValue(&node)
	if err != nil {
		return Imported{}, &ImportError{Message: "invalid YAML", Cause: err}
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return Imported{}, &ImportError{Message: "invalid YAML", Cause: err}
	}
	if err := schemas.Validate(embedded.Resume, asJSON); err != nil {
		return Imported{}, &ImportError{Message: "document does not match the resume schema", Cause: err}
	}

	var r types.ResumeData
	if err := node.Decode(&r); err != nil {
		return Imported{}, &ImportError{Message: "invalid resume document", Cause: err}
	}
	return Imported{Resume: r.EnsureIDs()}, nil
}

// yamlValue converts a YAML tree into plain values that encode to JSON.
// Timestamps keep their source text.
func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = v
		}
		return out, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!timestamp" {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

// ReadFile reads a data file. .yaml and .yml files use the internal shape; other
// files are JSON in either shape.
func ReadFile(path string) (Imported, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Imported{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if isYAML(path) {
		return ParseYAML(data)
	}
	return Parse(data)
}

// Format selects the encoding of an exported file.
type Format string

// Export formats.
const (
	FormatInterchange Format = "interchange"
	FormatJSON        Format = "json"
	FormatYAML        Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatInterchange, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want interchange, json or yaml)", s)
	}
}

// FormatForPath picks YAML for .yaml and .yml paths and def otherwise.
func FormatForPath(path string, def Format) Format {
	if isYAML(path) {
		return FormatYAML
	}
	return def
}

// Encode writes r in format f. layout is only recorded by the interchange format.
func Encode(r types.ResumeData, layout string, f Format) ([]byte, error) {
	switch f {
	case FormatInterchange:
		return Export(r, layout)
	case FormatJSON:
		return json.MarshalIndent(r, "", "  ")
	case FormatYAML:
		return yaml.Marshal(r)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
