package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/csvgrid/csvgrid/internal/config"
	"github.com/csvgrid/csvgrid/internal/core"
	"github.com/csvgrid/csvgrid/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleCSV = "Name;City;Date\n" +
	"Alice;Oslo;2024-01-15\n" +
	"bob;Bergen;2024-02-01\n" +
	"Carol;Oslo;2024-01-15\n"

type uploadResponse struct {
	SessionID string     `json:"session_id"`
	View      table.View `json:"view"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Rate.Enabled = false

	opts := core.DefaultOptions()
	opts.FilterDebounce = 0
	return NewServer(core.NewService(opts), cfg)
}

// uploadCSV posts a multipart upload and returns the decoded JSON response.
func uploadCSV(t *testing.T, srv *Server, fileName, content string) uploadResponse {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "upload failed: %s", rec.Body.String())

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp
}

// postForm posts a urlencoded form to a grid endpoint and returns the
// recorded response.
func postForm(t *testing.T, srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func getView(t *testing.T, srv *Server, sessionID string) table.View {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/grid/"+sessionID+"/rows", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var view table.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

// ==============================
// Upload
// ==============================

func TestUpload_HappyPath(t *testing.T) {
	srv := newTestServer(t)

	resp := uploadCSV(t, srv, "people.csv", peopleCSV)

	assert.Equal(t, []string{"Name", "City", "Date"}, resp.View.Headers)
	assert.Equal(t, 3, resp.View.TotalCount)
	assert.Equal(t, 3, resp.View.FilteredCount)
	assert.Equal(t, 1, resp.View.Page)
}

func TestUpload_NoFile(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUpload_WrongExtension(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "report.pdf")
	require.NoError(t, err)
	fw.Write([]byte(peopleCSV))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "FILE003", errResp.Code)
	assert.Contains(t, errResp.Action, "CSV")
}

func TestUpload_EmptyFile(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_, err := mw.CreateFormFile("file", "empty.csv")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "FILE001", errResp.Code)
}

func TestUpload_HTMXGetsGridPartial(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "people.csv")
	require.NoError(t, err)
	fw.Write([]byte(peopleCSV))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("HX-Push-Url"), "/grid/"))
	assert.Contains(t, rec.Body.String(), "Alice")
	assert.Contains(t, rec.Body.String(), "<table")
}

// ==============================
// Grid state endpoints
// ==============================

func TestGrid_FilterSortRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	resp := uploadCSV(t, srv, "people.csv", peopleCSV)
	base := "/api/grid/" + resp.SessionID

	rec := postForm(t, srv, base+"/filter", url.Values{
		"column": {"City"},
		"text":   {"oslo"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	view := getView(t, srv, resp.SessionID)
	assert.Equal(t, 2, view.FilteredCount)
	assert.Equal(t, 3, view.TotalCount)

	// First click sorts ascending.
	rec = postForm(t, srv, base+"/sort", url.Values{"column": {"Name"}})
	require.Equal(t, http.StatusOK, rec.Code)

	view = getView(t, srv, resp.SessionID)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "Alice", view.Rows[0]["Name"])
	assert.Equal(t, "Carol", view.Rows[1]["Name"])

	// Clearing the filter brings everything back.
	rec = postForm(t, srv, base+"/filter", url.Values{
		"column": {"City"},
		"text":   {""},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	view = getView(t, srv, resp.SessionID)
	assert.Equal(t, 3, view.FilteredCount)
}

func TestGrid_PageSize(t *testing.T) {
	srv := newTestServer(t)

	var sb strings.Builder
	sb.WriteString("N\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "row%02d\n", i)
	}
	resp := uploadCSV(t, srv, "rows.csv", sb.String())
	base := "/api/grid/" + resp.SessionID

	rec := postForm(t, srv, base+"/page-size", url.Values{"size": {"10"}})
	require.Equal(t, http.StatusOK, rec.Code)

	view := getView(t, srv, resp.SessionID)
	assert.Equal(t, 10, view.PageSize)
	assert.Equal(t, 3, view.TotalPages)
	assert.Len(t, view.Rows, 10)

	rec = postForm(t, srv, base+"/page", url.Values{"page": {"3"}})
	require.Equal(t, http.StatusOK, rec.Code)

	view = getView(t, srv, resp.SessionID)
	assert.Equal(t, 3, view.Page)
	assert.Len(t, view.Rows, 10)
}

func TestGrid_DateFilter(t *testing.T) {
	srv := newTestServer(t)
	resp := uploadCSV(t, srv, "people.csv", peopleCSV)
	base := "/api/grid/" + resp.SessionID

	rec := postForm(t, srv, base+"/date-filter", url.Values{
		"column": {"Date"},
		"date":   {"2024-01-15"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	view := getView(t, srv, resp.SessionID)
	assert.Equal(t, 2, view.FilteredCount)

	// An empty date clears the filter.
	rec = postForm(t, srv, base+"/date-filter", url.Values{
		"column": {"Date"},
		"date":   {""},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	view = getView(t, srv, resp.SessionID)
	assert.Equal(t, 3, view.FilteredCount)
}

func TestGrid_ColumnVisibility(t *testing.T) {
	srv := newTestServer(t)
	resp := uploadCSV(t, srv, "people.csv", peopleCSV)
	base := "/api/grid/" + resp.SessionID

	// Unchecked box sends no "visible" value, hiding the column.
	rec := postForm(t, srv, base+"/columns", url.Values{"column": {"Date"}})
	require.Equal(t, http.StatusOK, rec.Code)

	view := getView(t, srv, resp.SessionID)
	assert.Equal(t, []string{"Name", "City"}, view.Headers)

	rec = postForm(t, srv, base+"/columns/all", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code)

	view = getView(t, srv, resp.SessionID)
	assert.Equal(t, []string{"Name", "City", "Date"}, view.Headers)
}

func TestGrid_UnknownSession(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/grid/no-such-session/rows", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "SES001", errResp.Code)
}

func TestGrid_Export(t *testing.T) {
	srv := newTestServer(t)
	resp := uploadCSV(t, srv, "people.csv", peopleCSV)
	base := "/api/grid/" + resp.SessionID

	rec := postForm(t, srv, base+"/filter", url.Values{
		"column": {"City"},
		"text":   {"Bergen"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, base+"/export", nil)
	out := httptest.NewRecorder()
	srv.Router().ServeHTTP(out, req)

	require.Equal(t, http.StatusOK, out.Code)
	assert.Equal(t, "text/csv", out.Header().Get("Content-Type"))
	assert.Contains(t, out.Header().Get("Content-Disposition"), "people.csv")

	body := out.Body.String()
	assert.Contains(t, body, "Name,City,Date")
	assert.Contains(t, body, "bob,Bergen")
	assert.NotContains(t, body, "Alice")
}

func TestGrid_Clear(t *testing.T) {
	srv := newTestServer(t)
	resp := uploadCSV(t, srv, "people.csv", peopleCSV)

	req := httptest.NewRequest(http.MethodDelete, "/api/grid/"+resp.SessionID, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/grid/"+resp.SessionID+"/rows", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGridPage_FullPage(t *testing.T) {
	srv := newTestServer(t)
	resp := uploadCSV(t, srv, "people.csv", peopleCSV)

	req := httptest.NewRequest(http.MethodGet, "/grid/"+resp.SessionID, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<html")
	assert.Contains(t, rec.Body.String(), "people.csv")
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRateLimiter(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute)
	handler := limiter.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client keeps its own bucket.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
