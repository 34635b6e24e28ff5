package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/csvgrid/csvgrid/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// handleGridPage renders the full grid page, or just the grid partial for
// HTMX refreshes.
func (s *Server) handleGridPage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	params, err := s.gridParams(sessionID)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if isHTMX(r) {
		templates.Grid(params).Render(r.Context(), w)
		return
	}
	templates.GridPage(params).Render(r.Context(), w)
}

// handleRows returns the current view as JSON.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	view, err := s.service.View(sessionID)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, view)
}

// handleFilter updates the text filter for one column.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	column := r.FormValue("column")

	if err := s.service.SetFilterText(sessionID, column, r.FormValue("text")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.renderGrid(w, r, sessionID)
}

// handleDateFilter sets or clears the exact-match date filter.
func (s *Server) handleDateFilter(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.service.SetDateFilter(sessionID, r.FormValue("column"), r.FormValue("date")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.renderGrid(w, r, sessionID)
}

// handleSort advances the three-state sort toggle for a column.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.service.ClickSort(sessionID, r.FormValue("column")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.renderGrid(w, r, sessionID)
}

// handleColumnVisibility toggles one column. The checkbox sends "visible"
// only when checked.
func (s *Server) handleColumnVisibility(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	column := r.FormValue("column")
	visible := r.FormValue("visible") != ""

	if err := s.service.SetColumnVisible(sessionID, column, visible); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.renderGrid(w, r, sessionID)
}

// handleShowAllColumns clears the hidden-column set.
func (s *Server) handleShowAllColumns(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.service.ShowAllColumns(sessionID); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.renderGrid(w, r, sessionID)
}

// handlePage requests a page; the engine clamps out-of-range values.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	page, _ := strconv.Atoi(r.FormValue("page"))

	if err := s.service.SetPage(sessionID, page); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.renderGrid(w, r, sessionID)
}

// handlePageSize switches between the allowed page sizes.
func (s *Server) handlePageSize(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	size, _ := strconv.Atoi(r.FormValue("size"))

	if err := s.service.SetPageSize(sessionID, size); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.renderGrid(w, r, sessionID)
}

// handleExport streams the filtered, sorted rows as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	fileName, err := s.service.FileName(sessionID)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="filtered_%s_%s.csv"`, timestamp, fileName))

	// Errors past this point cannot change the status line; the CSV
	// writer just stops.
	_ = s.service.ExportVisible(sessionID, w)
}

// handleClear discards a session and its dataset.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.service.Clear(sessionID); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if isHTMX(r) {
		// Send the browser back to the upload page.
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, map[string]string{"status": "cleared"})
}

// renderGrid answers a state-changing request with the new grid: an HTML
// partial for HTMX, the view JSON otherwise.
func (s *Server) renderGrid(w http.ResponseWriter, r *http.Request, sessionID string) {
	if isHTMX(r) {
		params, err := s.gridParams(sessionID)
		if err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.Grid(params).Render(r.Context(), w)
		return
	}

	view, err := s.service.View(sessionID)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, view)
}

// gridParams gathers everything the grid template needs.
func (s *Server) gridParams(sessionID string) (templates.GridParams, error) {
	view, err := s.service.View(sessionID)
	if err != nil {
		return templates.GridParams{}, err
	}
	headers, hidden, err := s.service.Headers(sessionID)
	if err != nil {
		return templates.GridParams{}, err
	}
	fileName, err := s.service.FileName(sessionID)
	if err != nil {
		return templates.GridParams{}, err
	}
	dateFilter, err := s.service.DateFilter(sessionID)
	if err != nil {
		return templates.GridParams{}, err
	}

	return templates.GridParams{
		SessionID:  sessionID,
		FileName:   fileName,
		View:       view,
		AllHeaders: headers,
		Hidden:     hidden,
		DateColumn: dateFilter.Column,
		DateValue:  dateFilter.Value,
	}, nil
}
