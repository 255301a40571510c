package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/jonathan/resume-builder/internal/element"
	"github.com/jonathan/resume-builder/internal/interchange"
	"github.com/jonathan/resume-builder/internal/layouts"
	"github.com/jonathan/resume-builder/internal/preview"
	"github.com/jonathan/resume-builder/internal/types"
)

// RenderRequest is the body of /render and /render/text. Data may be in the
// internal or the interchange shape.
type RenderRequest struct {
	Data         json.RawMessage `json:"data"`
	Layout       string          `json:"layout,omitempty"`
	Theme        string          `json:"theme,omitempty"`
	CustomLayout string          `json:"customLayout,omitempty"`
	Title        string          `json:"title,omitempty"`
}

// RenderResponse is the JSON form of a rendered preview.
type RenderResponse struct {
	HTML   string     `json:"html,omitempty"`
	Body   string     `json:"body"`
	Source string     `json:"source"`
	Layout string     `json:"layout"`
	Failed bool       `json:"failed"`
	Detail string     `json:"detail,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a custom layout that failed to build.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// LayoutInfo describes a built-in layout.
type LayoutInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
	Starter     string `json:"starter"`
}

// LayoutsResponse represents the response for /layouts
type LayoutsResponse struct {
	Layouts []LayoutInfo `json:"layouts"`
	Themes  []string     `json:"themes"`
}

// ImportResponse represents the response for /import
type ImportResponse struct {
	Data   types.ResumeData `json:"data"`
	Layout string           `json:"layout,omitempty"`
}

// ExportRequest is the body of /export.
type ExportRequest struct {
	Data   json.RawMessage `json:"data"`
	Layout string          `json:"layout,omitempty"`
}

func newRenderResponse(out preview.Output, withDocument bool) RenderResponse {
	resp := RenderResponse{
		Body:   out.Body,
		Source: string(out.Source),
		Layout: out.Layout,
		Failed: out.Failed,
		Detail: out.Detail,
	}
	if withDocument {
		resp.HTML = out.Document
	}
	if out.CustomErr != nil {
		resp.Error = &ErrorBody{Kind: out.CustomErr.Kind.String(), Message: out.CustomErr.Message}
	}
	return resp
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if HTTPStatus(err) == http.StatusRequestEntityTooLarge {
			return err
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// parseData reads resume data in either shape. Empty data is an empty resume.
func parseData(raw json.RawMessage) (interchange.Imported, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return interchange.Imported{}, nil
	}
	return interchange.Parse(raw)
}

func (s *Server) previewRequest(req RenderRequest) (preview.Request, error) {
	imported, err := parseData(req.Data)
	if err != nil {
		return preview.Request{}, err
	}
	layout := req.Layout
	if layout == "" {
		layout = imported.Layout
	}
	return preview.Request{
		Data:         imported.Resume,
		Layout:       layout,
		Theme:        req.Theme,
		CustomSource: req.CustomLayout,
		Title:        req.Title,
	}, nil
}

// writePreview writes out as an HTML document, or as JSON with ?format=json.
func (s *Server) writePreview(w http.ResponseWriter, r *http.Request, out preview.Output) {
	w.Header().Set("X-Resume-Layout", out.Layout)
	w.Header().Set("X-Resume-Source", string(out.Source))
	w.Header().Set("X-Resume-Fallback", strconv.FormatBool(out.Failed))

	if r.URL.Query().Get("format") == "json" {
		s.jsonResponse(w, http.StatusOK, newRenderResponse(out, true))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, out.Document) //nolint:errcheck
}

// handleLayouts lists the built-in layouts and themes
func (s *Server) handleLayouts(w http.ResponseWriter, _ *http.Request) {
	resp := LayoutsResponse{Themes: layouts.ThemeNames()}
	for _, l := range layouts.All() {
		desc, err := element.HTML(l.DescriptionHTML())
		if err != nil {
			s.errorFrom(w, fmt.Errorf("layout %s description: %w", l.Name, err))
			return
		}
		resp.Layouts = append(resp.Layouts, LayoutInfo{
			Name:        l.Name,
			Description: desc,
			Theme:       l.Theme.Name,
			Starter:     l.Starter(),
		})
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleRender renders resume data with a built-in or custom layout
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	out, ok := s.render(w, r)
	if !ok {
		return
	}
	s.writePreview(w, r, out)
}

// handleRenderText renders resume data and returns the visible text
func (s *Server) handleRenderText(w http.ResponseWriter, r *http.Request) {
	out, ok := s.render(w, r)
	if !ok {
		return
	}
	text, err := preview.PlainText(out.Body)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Resume-Source", string(out.Source))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text) //nolint:errcheck
}

// render renders a stateless request with a fresh previewer.
func (s *Server) render(w http.ResponseWriter, r *http.Request) (preview.Output, bool) {
	var req RenderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFrom(w, err)
		return preview.Output{}, false
	}
	preq, err := s.previewRequest(req)
	if err != nil {
		s.errorFrom(w, err)
		return preview.Output{}, false
	}
	out, err := s.newPreviewer().Render(preq)
	if err != nil {
		s.errorFrom(w, err)
		return preview.Output{}, false
	}
	return out, true
}

// handleImport converts an interchange document into resume data
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	imported, err := interchange.Import(body)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ImportResponse{Data: imported.Resume, Layout: imported.Layout})
}

// handleExport converts resume data into an interchange, JSON or YAML document
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := interchange.FormatInterchange
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := interchange.ParseFormat(f)
		if err != nil {
			s.errorFrom(w, &ErrValidation{Field: "format", Message: err.Error()})
			return
		}
		format = parsed
	}

	var req ExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFrom(w, err)
		return
	}
	imported, err := parseData(req.Data)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	layout := req.Layout
	if layout == "" {
		layout = imported.Layout
	}

	doc, err := interchange.Encode(imported.Resume, layout, format)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	contentType, filename := "application/json", "resume.json"
	if format == interchange.FormatYAML {
		contentType, filename = "application/yaml", "resume.yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(doc) //nolint:errcheck
}
