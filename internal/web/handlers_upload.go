package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/csvgrid/csvgrid/internal/web/templates"
)

// handleIndex renders the landing page with the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Index().Render(r.Context(), w)
}

// handleUpload accepts a multipart file upload, parses it and installs a
// new grid session. HTMX callers get the rendered grid back; API callers
// get JSON with the session ID and initial counts.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, errors.New("file too large or invalid form"), http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	delimiter := s.cfg.Upload.Delimiter()
	if d := r.FormValue("delimiter"); d != "" {
		delimiter = []rune(d)[0]
	}

	sessionID, view, err := s.service.CreateSession(header.Filename, data, delimiter)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if isHTMX(r) {
		// Let the client swap the grid in and update its address bar.
		w.Header().Set("HX-Push-Url", "/grid/"+sessionID)
		s.renderGrid(w, r, sessionID)
		return
	}

	writeJSON(w, map[string]any{
		"session_id": sessionID,
		"view":       view,
	})
}
