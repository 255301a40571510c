package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-builder/internal/layouts"
)

func TestRenderCommand_Stdout(t *testing.T) {
	data := writeFile(t, t.TempDir(), "data.json", sampleData)

	out, err := execute(t, "render", "--data", data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "Jane Roe")
}

func TestRenderCommand_OutputFile(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.json", sampleData)
	output := filepath.Join(dir, "out", "resume.html")

	out, err := execute(t, "render", "-d", data, "--layout", "modern", "--theme", "ocean", "--out", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered modern (builtin, ok)")

	html, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(html), "resume layout-modern")
	assert.Contains(t, string(html), "#0f4c81")
}

func TestRenderCommand_CustomLayoutText(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.json", sampleData)
	custom := writeFile(t, dir, "layout.jsx", `(<p className="me">{basics.fullName} - {skills.join(", ")}</p>)`)

	out, err := execute(t, "render", "--data", data, "--custom", custom, "--text")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Roe - Go, SQL")
	assert.NotContains(t, out, "<p")
}

func TestRenderCommand_BrokenCustomLayout(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.json", sampleData)
	custom := writeFile(t, dir, "layout.jsx", `function Layout() { return <p>{work[3].company}</p>; }`)
	output := filepath.Join(dir, "resume.html")

	out, err := execute(t, "render", "--data", data, "--custom", custom, "--out", output)
	require.NoError(t, err)
	assert.Contains(t, out, "fallback shown")
}

func TestRenderCommand_AllLayouts(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.json", sampleData)
	outDir := filepath.Join(dir, "all")

	out, err := execute(t, "render", "--data", data, "--all-layouts", "--out", outDir)
	require.NoError(t, err)

	for _, l := range layouts.All() {
		html, err := os.ReadFile(filepath.Join(outDir, l.Name+".html"))
		require.NoError(t, err, l.Name)
		assert.Contains(t, string(html), "resume layout-"+l.Name)
		assert.Contains(t, out, "Rendered "+l.Name)
	}
}

func TestRenderCommand_AllLayoutsNeedsOutput(t *testing.T) {
	data := writeFile(t, t.TempDir(), "data.json", sampleData)
	_, err := execute(t, "render", "--data", data, "--all-layouts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--out")
}

func TestRenderCommand_Errors(t *testing.T) {
	data := writeFile(t, t.TempDir(), "data.json", sampleData)

	_, err := execute(t, "render", "--data", "/nonexistent/data.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data file not found")

	_, err = execute(t, "render")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data file")

	_, err = execute(t, "render", "--data", data, "--layout", "fancy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fancy")
}

func TestRenderCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.json", sampleData)
	cfgPath := writeFile(t, dir, "config.yaml", "data: "+data+"\nlayout: sidebar\n")

	out, err := execute(t, "render", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "resume layout-sidebar")

	out, err = execute(t, "render", "--config", cfgPath, "--layout", "simple")
	require.NoError(t, err)
	assert.Contains(t, out, "resume layout-simple", "flags win over the config file")
}

func TestRenderCommand_InvalidConfigFile(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", "data: /nonexistent/data.json\n")
	_, err := execute(t, "render", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data file not found")
}
