package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-builder/internal/layouts"
	"github.com/jonathan/resume-builder/internal/preview"
	"github.com/jonathan/resume-builder/internal/store"
)

// DraftRequest is the body of draft create and update requests. Data may be in
// the internal or the interchange shape.
type DraftRequest struct {
	Name         string          `json:"name"`
	Data         json.RawMessage `json:"data"`
	Layout       string          `json:"layout,omitempty"`
	Theme        string          `json:"theme,omitempty"`
	CustomLayout string          `json:"customLayout,omitempty"`
}

// DraftListResponse represents the response for GET /drafts
type DraftListResponse struct {
	Drafts []store.Draft `json:"drafts"`
	Count  int           `json:"count"`
}

// draft builds a store draft from the request, checking layout and theme names.
func (req DraftRequest) draft() (*store.Draft, error) {
	imported, err := parseData(req.Data)
	if err != nil {
		return nil, err
	}
	d := &store.Draft{
		Name:         req.Name,
		Data:         imported.Resume,
		Layout:       req.Layout,
		Theme:        req.Theme,
		CustomLayout: req.CustomLayout,
	}
	if d.Layout == "" {
		d.Layout = imported.Layout
	}
	if d.Layout != "" {
		l, err := layouts.Lookup(d.Layout)
		if err != nil {
			return nil, err
		}
		d.Layout = l.Name
	}
	if d.Theme != "" {
		t, ok := layouts.LookupTheme(d.Theme)
		if !ok {
			return nil, &layouts.UnknownThemeError{Name: d.Theme, Known: layouts.ThemeNames()}
		}
		d.Theme = t.Name
	}
	return d, nil
}

func draftID(r *http.Request) (uuid.UUID, error) {
	return store.ParseID(r.PathValue("id"))
}

// handleCreateDraft saves a new draft
func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFrom(w, err)
		return
	}
	d, err := req.draft()
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	if err := s.store.Create(r.Context(), d); err != nil {
		s.errorFrom(w, err)
		return
	}
	s.log.Info("draft created", zap.String("id", d.ID.String()), zap.String("name", d.Name))
	s.jsonResponse(w, http.StatusCreated, d)
}

// handleListDrafts lists all drafts, most recently updated first
func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.store.List(r.Context())
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, DraftListResponse{Drafts: drafts, Count: len(drafts)})
}

// handleGetDraft returns one draft
func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	d, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, d)
}

// handleUpdateDraft replaces a draft and notifies its event streams
func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	var req DraftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFrom(w, err)
		return
	}
	d, err := req.draft()
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	d.ID = id
	if err := s.store.Update(r.Context(), d); err != nil {
		s.errorFrom(w, err)
		return
	}
	s.events.publish(id)
	s.jsonResponse(w, http.StatusOK, d)
}

// handleDeleteDraft removes a draft and ends its event streams
func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.errorFrom(w, err)
		return
	}
	s.forgetPreviewer(id)
	s.events.publish(id)
	s.log.Info("draft deleted", zap.String("id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) renderDraft(d *store.Draft, title string) (preview.Output, error) {
	if title == "" {
		title = d.Name
	}
	return s.previewer(d.ID).Render(preview.Request{
		Data:         d.Data,
		Layout:       d.Layout,
		Theme:        d.Theme,
		CustomSource: d.CustomLayout,
		Title:        title,
	})
}

// handleDraftPreview renders a draft as an HTML document
func (s *Server) handleDraftPreview(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	d, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	out, err := s.renderDraft(d, r.URL.Query().Get("title"))
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.writePreview(w, r, out)
}

// handleDraftEvents streams a "render" event with the draft preview on connect
// and after every update. A "deleted" event ends the stream.
func (s *Server) handleDraftEvents(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	if _, err := s.store.Get(r.Context(), id); err != nil {
		s.errorFrom(w, err)
		return
	}

	changes, unsubscribe := s.events.subscribe(id)
	defer unsubscribe()

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx := r.Context()
	for {
		d, err := s.store.Get(ctx, id)
		switch {
		case err == nil:
			out, rerr := s.renderDraft(d, "")
			if rerr != nil {
				sse.WriteError(rerr.Error())
				break
			}
			if werr := sse.WriteEvent("render", newRenderResponse(out, false)); werr != nil {
				return
			}
		case HTTPStatus(err) == http.StatusNotFound:
			sse.WriteEvent("deleted", map[string]string{"id": id.String()}) //nolint:errcheck
			return
		default:
			if ctx.Err() != nil {
				return
			}
			s.log.Error("draft event stream failed", zap.Error(err))
			sse.WriteError("internal server error")
			return
		}

		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
		}
	}
}
