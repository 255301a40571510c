package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	embedded "github.com/jonathan/resume-builder/schemas"
)

const skillsSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["skills"],
	"properties": {
		"skills": {"type": "array", "items": {"type": "string"}}
	}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_Interchange(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{name: "minimal", doc: `{}`},
		{
			name: "full document",
			doc: `{
				"basics": {"name": "Jane", "label": "Engineer", "website": "example.com", "age": 40,
					"location": {"city": "Berlin"}, "profiles": [{"network": "GitHub", "url": "github.com/jane"}]},
				"work": [{"name": "Acme", "position": "Engineer", "highlights": ["Shipped"]}],
				"education": [{"institution": "MIT", "studyType": "BSc", "area": "CS"}],
				"skills": ["Go", {"name": "SQL", "keywords": ["Postgres"]}],
				"extraData": {"languages": ["English"]},
				"meta": {"theme": "modern"}
			}`,
		},
		{name: "work is not a list", doc: `{"work": {"name": "Acme"}}`, wantField: "work"},
		{name: "nested basics value", doc: `{"basics": {"website": {"url": "x"}}}`, wantField: "basics.website"},
		{name: "skill without name", doc: `{"skills": [{"keywords": []}]}`, wantField: "skills.0"},
		{name: "theme is not a string", doc: `{"meta": {"theme": 3}}`, wantField: "meta.theme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(embedded.Interchange, []byte(tt.doc))
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			fields := make([]string, len(verr.Errors))
			for i, fe := range verr.Errors {
				fields[i] = fe.Field
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidate_Resume(t *testing.T) {
	assert.NoError(t, Validate(embedded.Resume, []byte(`{
		"personalInfo": {"fullName": "Jane", "website": "example.com"},
		"workExperience": [{"id": "w1", "company": "Acme"}],
		"skills": ["Go"]
	}`)))

	err := Validate(embedded.Resume, []byte(`{"workExperience": [{"id": "w1"}]}`))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "workExperience.0", verr.Errors[0].Field)
}

func TestValidate_MalformedDocument(t *testing.T) {
	err := Validate(embedded.Interchange, []byte(`{ invalid json }`))
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("missing.schema.json", []byte(`{}`))
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "missing.schema.json", loadErr.Path)
}

func TestValidateJSON_Files(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "skills.schema.json", skillsSchema)

	valid := writeFile(t, dir, "valid.json", `{"skills": ["Go"]}`)
	assert.NoError(t, ValidateJSON(schemaPath, valid))

	missing := writeFile(t, dir, "missing.json", `{}`)
	err := ValidateJSON(schemaPath, missing)
	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)

	wrongType := writeFile(t, dir, "wrong.json", `{"skills": [1]}`)
	err = ValidateJSON(schemaPath, wrongType)
	validationErr, ok = err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Equal(t, "skills.0", validationErr.Errors[0].Field)
}

func TestValidateJSON_NonExistentFiles(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "skills.schema.json", skillsSchema)
	doc := writeFile(t, dir, "doc.json", `{"skills": []}`)

	err := ValidateJSON(filepath.Join(dir, "nope.schema.json"), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = ValidateJSON(schemaPath, filepath.Join(dir, "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "basics.name", Message: "Invalid type. Expected: string, given: integer"},
			{Field: "work", Message: "Invalid type. Expected: array, given: object"},
		},
	}

	assert.Equal(t, "validation failed:\n"+
		"  1. basics.name: Invalid type. Expected: string, given: integer\n"+
		"  2. work: Invalid type. Expected: array, given: object\n", err.Error())
}
