package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/interchange"
	"github.com/jonathan/resume-builder/internal/types"
)

func TestValidateCommand_Valid(t *testing.T) {
	data := writeFile(t, t.TempDir(), "data.json", sampleData)

	out, err := execute(t, "validate", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, "DOCUMENT IS VALID")

	out, err = execute(t, "validate", "--data", data, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "RESUME DATA")
	assert.Contains(t, out, "Acme")
}

func TestValidateCommand_Invalid(t *testing.T) {
	data := writeFile(t, t.TempDir(), "data.json", `{"education": [{"degree": "BSc"}]}`)

	out, err := execute(t, "validate", "--data", data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, out, "VALIDATION FAILED")
}

func TestValidateCommand_InvalidEmail(t *testing.T) {
	data := writeFile(t, t.TempDir(), "data.json", `{"personalInfo": {"email": "not-an-email"}}`)

	out, err := execute(t, "validate", "--data", data)
	require.Error(t, err)
	assert.Contains(t, out, "VALIDATION FAILED")
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "resume.json", `{"basics": {"name": "Ann", "label": "Chef"}, "meta": {"theme": "modern"}}`)
	output := filepath.Join(dir, "data.yaml")

	out, err := execute(t, "import", "--in", doc, "--out", output)
	require.NoError(t, err)
	assert.Contains(t, out, `Document selects layout "modern"`)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	imported, err := interchange.ParseYAML(content)
	require.NoError(t, err)
	assert.Equal(t, "Ann", imported.Resume.PersonalInfo.FullName)
	assert.Equal(t, "Chef", imported.Resume.PersonalInfo.JobTitle)
}

func TestImportCommand_Errors(t *testing.T) {
	_, err := execute(t, "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "in" not set`)

	bad := writeFile(t, t.TempDir(), "resume.json", `{"basics": "nope"}`)
	_, err = execute(t, "import", "--in", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interchange schema")
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.json", sampleData)
	output := filepath.Join(dir, "resume.json")

	out, err := execute(t, "export", "--data", data, "--layout", "sidebar", "--out", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported interchange document")

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	imported, err := interchange.Import(content)
	require.NoError(t, err)
	assert.Equal(t, "sidebar", imported.Layout)
	assert.Equal(t, "Jane Roe", imported.Resume.PersonalInfo.FullName)

	out, err = execute(t, "export", "--data", data, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "fullName: Jane Roe")

	_, err = execute(t, "export", "--data", data, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestLayoutsCommand(t *testing.T) {
	out, err := execute(t, "layouts")
	require.NoError(t, err)
	assert.Contains(t, out, "BUILT-IN LAYOUTS")
	assert.Contains(t, out, "sidebar")
	assert.Contains(t, out, "Themes: ")

	out, err = execute(t, "layouts", "--starter", "centered")
	require.NoError(t, err)
	assert.Contains(t, out, "layout-centered")
	assert.Contains(t, out, "{basics.fullName}")

	_, err = execute(t, "layouts", "--starter", "fancy")
	assert.Error(t, err)
}

func TestLiveRender(t *testing.T) {
	output := filepath.Join(t.TempDir(), "resume.html")
	var status bytes.Buffer
	lr := &liveRender{
		previewer: newPreviewer(),
		output:    output,
		status:    &status,
		data:      types.ResumeData{PersonalInfo: types.PersonalInfo{FullName: "Jane Roe"}},
	}
	require.NoError(t, lr.render())
	html, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Jane Roe")

	require.NoError(t, lr.setData(types.ResumeData{PersonalInfo: types.PersonalInfo{FullName: "John Doe"}}, "modern"))
	html, err = os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(html), "John Doe")
	assert.Contains(t, string(html), "resume layout-modern")

	require.NoError(t, lr.setSource(`function Layout() { return <p>{work[3].company}</p>; }`))
	assert.Contains(t, status.String(), "fallback shown")

	require.NoError(t, lr.setSource(`(<p>fixed {basics.fullName}</p>)`))
	html, err = os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<p>fixed John Doe</p>")
}

func TestWatchCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.json", sampleData)
	yamlData := writeFile(t, dir, "data.yaml", "skills: [Go]\n")

	_, err := execute(t, "watch", "--data", data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output file")

	_, err = execute(t, "watch", "--data", yamlData, "--out", filepath.Join(dir, "out.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSON data file")
}

func TestValidateCommand_ExtraSchema(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.json", sampleData)
	strict := writeFile(t, dir, "strict.schema.json", `{
		"type": "object",
		"required": ["extraData"]
	}`)

	out, err := execute(t, "validate", "--data", data, "--schema", strict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, out, "extraData")

	lenient := writeFile(t, dir, "lenient.schema.json", `{"type": "object", "required": ["skills"]}`)
	_, err = execute(t, "validate", "--data", data, "--schema", lenient)
	assert.NoError(t, err)
}
