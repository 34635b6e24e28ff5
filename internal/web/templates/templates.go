// Package templates renders the HTML fragments the grid UI is built from.
//
// Components are plain templ.Component values written with
// templ.ComponentFunc: the markup surface here is small enough that the
// generator would add more build machinery than it saves. Everything
// dynamic goes through templ.EscapeString.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/csvgrid/csvgrid/internal/table"
)

// GridParams carries everything the grid partial needs to render.
type GridParams struct {
	SessionID  string
	FileName   string
	View       table.View
	AllHeaders []string
	Hidden     map[string]bool
	DateColumn string
	DateValue  string
}

// Index renders the landing page with the upload drop zone.
func Index() templ.Component {
	return page("csvgrid", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `
<section class="uploader">
  <h1>csvgrid</h1>
  <p>Drop a delimited text file here, or pick one, to explore it as a table.</p>
  <form id="upload-form" hx-post="/api/upload" hx-encoding="multipart/form-data" hx-target="#grid" hx-swap="innerHTML">
    <div class="dropzone" ondragover="event.preventDefault()" ondrop="handleDrop(event)">
      <input type="file" name="file" accept=".csv,.txt,.tsv" required>
    </div>
    <label>Delimiter
      <select name="delimiter">
        <option value=";" selected>semicolon</option>
        <option value=",">comma</option>
        <option value="	">tab</option>
        <option value="|">pipe</option>
      </select>
    </label>
    <button type="submit">Load file</button>
  </form>
</section>
<div id="grid"></div>
`)
		return err
	}))
}

// GridPage renders a full page around the grid partial.
func GridPage(p GridParams) templ.Component {
	return page(p.FileName+" - csvgrid", Grid(p))
}

// Grid renders the table with its filter row, column menu and pager.
// This is the HTMX swap target for every state-changing request.
func Grid(p GridParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		base := "/api/grid/" + templ.EscapeString(p.SessionID)

		fmt.Fprintf(w, `<div class="grid" id="grid-%s">`, templ.EscapeString(p.SessionID))
		fmt.Fprintf(w, `<div class="grid-meta">%s &middot; %d of %d rows</div>`,
			templ.EscapeString(p.FileName), p.View.FilteredCount, p.View.TotalCount)

		renderColumnMenu(w, base, p)
		renderDateFilter(w, base, p)

		io.WriteString(w, `<table><thead><tr>`)
		for _, h := range p.View.Headers {
			fmt.Fprintf(w,
				`<th><a href="#" hx-post="%s/sort" hx-vals='{"column":%q}' hx-target="closest .grid" hx-swap="outerHTML">%s</a></th>`,
				base, templ.EscapeString(h), templ.EscapeString(h))
		}
		io.WriteString(w, `</tr><tr class="filters">`)
		for _, h := range p.View.Headers {
			fmt.Fprintf(w,
				`<th><input name="text" hx-post="%s/filter" hx-vals='{"column":%q}' hx-trigger="keyup changed delay:300ms" hx-target="closest .grid" hx-swap="outerHTML" placeholder="filter"></th>`,
				base, templ.EscapeString(h))
		}
		io.WriteString(w, `</tr></thead><tbody>`)

		for _, row := range p.View.Rows {
			io.WriteString(w, `<tr>`)
			for _, h := range p.View.Headers {
				fmt.Fprintf(w, `<td>%s</td>`, templ.EscapeString(row[h]))
			}
			io.WriteString(w, `</tr>`)
		}
		io.WriteString(w, `</tbody></table>`)

		renderPager(w, base, p.View)

		fmt.Fprintf(w, `<a class="export" href="%s/export">Export filtered rows</a>`, base)
		fmt.Fprintf(w,
			` <button class="clear" hx-delete="%s" hx-confirm="Discard this file?" hx-target="closest .grid" hx-swap="outerHTML">Clear</button>`,
			base)
		io.WriteString(w, `</div>`)
		return nil
	})
}

// ErrorAlert renders a one-line user-visible error fragment.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert" role="alert"><strong>%s</strong> (Code: %s). %s</div>`,
			templ.EscapeString(message), templ.EscapeString(code), templ.EscapeString(action))
		return err
	})
}

// renderDateFilter draws the exact-match date filter. Submitting an empty
// date clears it.
func renderDateFilter(w io.Writer, base string, p GridParams) {
	fmt.Fprintf(w,
		`<form class="date-filter" hx-post="%s/date-filter" hx-target="closest .grid" hx-swap="outerHTML">`,
		base)
	io.WriteString(w, `<select name="column">`)
	for _, h := range p.AllHeaders {
		selected := ""
		if h == p.DateColumn {
			selected = " selected"
		}
		fmt.Fprintf(w, `<option value="%s"%s>%s</option>`,
			templ.EscapeString(h), selected, templ.EscapeString(h))
	}
	io.WriteString(w, `</select>`)
	fmt.Fprintf(w, `<input type="date" name="date" value="%s">`, templ.EscapeString(p.DateValue))
	io.WriteString(w, `<button type="submit">Filter by date</button></form>`)
}

func renderColumnMenu(w io.Writer, base string, p GridParams) {
	io.WriteString(w, `<details class="columns"><summary>Columns</summary>`)
	for _, h := range p.AllHeaders {
		checked := ""
		if !p.Hidden[h] {
			checked = " checked"
		}
		fmt.Fprintf(w,
			`<label><input type="checkbox" name="visible" hx-post="%s/columns" hx-vals='{"column":%q}' hx-target="closest .grid" hx-swap="outerHTML"%s> %s</label>`,
			base, templ.EscapeString(h), checked, templ.EscapeString(h))
	}
	fmt.Fprintf(w,
		`<button hx-post="%s/columns/all" hx-target="closest .grid" hx-swap="outerHTML">Show all</button>`, base)
	io.WriteString(w, `</details>`)
}

func renderPager(w io.Writer, base string, v table.View) {
	io.WriteString(w, `<nav class="pager">`)
	fmt.Fprintf(w, `<span>Page %d of %d</span>`, v.Page, v.TotalPages)

	if v.Page > 1 {
		pagerButton(w, base, v.Page-1, "Previous")
	}
	if v.Page < v.TotalPages {
		pagerButton(w, base, v.Page+1, "Next")
	}

	fmt.Fprintf(w, `<select name="size" hx-post="%s/page-size" hx-target="closest .grid" hx-swap="outerHTML">`, base)
	for _, size := range table.PageSizes {
		selected := ""
		if size == v.PageSize {
			selected = " selected"
		}
		fmt.Fprintf(w, `<option value="%d"%s>%d per page</option>`, size, selected, size)
	}
	io.WriteString(w, `</select></nav>`)
}

func pagerButton(w io.Writer, base string, page int, label string) {
	fmt.Fprintf(w,
		`<button hx-post="%s/page" hx-vals='{"page":"%s"}' hx-target="closest .grid" hx-swap="outerHTML">%s</button>`,
		base, strconv.Itoa(page), label)
}

// page wraps body in the shared document shell.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="/static/app.js" defer></script>
<link rel="stylesheet" href="/static/app.css">
</head>
<body>
`, templ.EscapeString(title))
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</body>\n</html>\n")
		return err
	})
}
