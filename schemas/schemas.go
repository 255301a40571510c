// Package schemas embeds the JSON Schemas of the resume data files.
package schemas

import "embed"

// Schema file names.
const (
	Interchange = "interchange.schema.json"
	Resume      = "resume.schema.json"
)

//go:embed *.schema.json
var FS embed.FS
