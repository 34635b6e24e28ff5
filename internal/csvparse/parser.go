// Package csvparse converts raw delimited text into an in-memory dataset.
//
// The parser is line-oriented: it splits the input on newlines and then
// re-joins lines whose quote count is odd, so quoted fields that span
// newlines still come out as a single field. It is deliberately permissive
// with malformed input - short rows are padded, long rows are truncated,
// and an unbalanced quote at end of input is tokenized as-is.
package csvparse

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultDelimiter is used when the caller does not pick one.
const DefaultDelimiter = ';'

const quote = '"'

// ErrEmptyInput is returned by Parse when the input contains no text at all.
var ErrEmptyInput = errors.New("csv file is empty")

// Row maps header names to cell values. Every row produced by the parser
// has exactly one entry per header; missing trailing fields are "".
type Row map[string]string

// Dataset is the parsed form of one uploaded file. It is never mutated
// after Parse returns, so concurrent readers need no locking.
type Dataset struct {
	Headers []string
	Rows    []Row
}

// Parse tokenizes delimiter-separated text into a Dataset.
//
// Line 0 supplies the headers. Data rows are assembled with quote-parity
// line joining (see joinQuoted), tokenized field by field, padded to the
// header width, and dropped entirely when every value is blank.
//
// A file that parses but yields zero data rows is not an error here; the
// caller decides how to surface that.
func Parse(text string, delimiter rune) (*Dataset, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}

	lines := strings.Split(text, "\n")

	headers := cleanHeaders(tokenize(lines[0], delimiter))

	ds := &Dataset{Headers: headers}

	for i := 1; i < len(lines); {
		logical, consumed := joinQuoted(lines, i)
		i += consumed

		if strings.TrimSpace(logical) == "" {
			continue
		}

		fields := tokenize(logical, delimiter)
		row := buildRow(headers, fields)
		if row != nil {
			ds.Rows = append(ds.Rows, row)
		}
	}

	return ds, nil
}

// joinQuoted assembles one logical row line starting at lines[start].
//
// A line with an odd number of quote characters has an unterminated quoted
// field that continues on the next raw line, so raw lines are appended
// (with the newline restored) until the quote count over the whole
// accumulated string is even or the input runs out. Returns the logical
// line and how many raw lines it consumed.
func joinQuoted(lines []string, start int) (string, int) {
	logical := lines[start]
	consumed := 1

	for strings.Count(logical, string(quote))%2 != 0 && start+consumed < len(lines) {
		logical += "\n" + lines[start+consumed]
		consumed++
	}

	return logical, consumed
}

// tokenize scans one logical line (which may contain embedded newlines)
// into trimmed field values.
//
// A doubled quote inside a quoted field emits one literal quote; any other
// quote toggles the in-quotes flag. The delimiter only closes a field when
// outside quotes. An unbalanced trailing quote just ends the scan with
// whatever accumulated - lenient by design.
func tokenize(line string, delimiter rune) []string {
	var fields []string
	var cur strings.Builder

	runes := []rune(line)
	inQuotes := false

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == quote:
			if inQuotes && i+1 < len(runes) && runes[i+1] == quote {
				cur.WriteRune(quote)
				i++ // skip the escaped quote
			} else {
				inQuotes = !inQuotes
			}
		case c == delimiter && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(c)
		}
	}

	fields = append(fields, strings.TrimSpace(cur.String()))
	return fields
}

// buildRow pairs headers with field values, padding short rows with ""
// and dropping extra fields beyond the header count. Returns nil when
// every value is blank, so the caller can skip the row.
func buildRow(headers []string, fields []string) Row {
	row := make(Row, len(headers))
	blank := true

	for i, h := range headers {
		v := ""
		if i < len(fields) {
			v = fields[i]
		}
		row[h] = v
		if strings.TrimSpace(v) != "" {
			blank = false
		}
	}

	if blank {
		return nil
	}
	return row
}

// cleanHeaders trims headers and enforces uniqueness. Empty headers get a
// positional name and duplicates get a numeric suffix so the header list
// can safely key row maps.
func cleanHeaders(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	headers := make([]string, len(raw))

	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		name := h
		for n := 2; ; n++ {
			if _, dup := seen[name]; !dup {
				break
			}
			name = fmt.Sprintf("%s (%d)", h, n)
		}
		seen[name] = struct{}{}
		headers[i] = name
	}

	return headers
}
