package core

import (
	"encoding/csv"
	"io"

	"github.com/csvgrid/csvgrid/internal/table"
)

// exportFlushInterval balances writer buffering against memory when
// streaming large exports.
const exportFlushInterval = 1000

// ExportVisible writes the session's filtered and sorted rows (all pages,
// visible columns only) as comma-separated CSV to w.
func (s *Service) ExportVisible(id string, w io.Writer) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}

	sess.debounce.Flush()

	sess.mu.Lock()
	// Export ignores pagination: widen the state to one page holding
	// every filtered row.
	st := sess.state
	st.Page = 1
	st.PageSize = len(sess.dataset.Rows)
	if st.PageSize < 1 {
		st.PageSize = 1
	}
	view := table.Compute(sess.dataset, st)
	sess.mu.Unlock()

	cw := csv.NewWriter(w)
	if err := cw.Write(view.Headers); err != nil {
		return err
	}

	record := make([]string, len(view.Headers))
	for i, row := range view.Rows {
		for j, h := range view.Headers {
			record[j] = row[h]
		}
		if err := cw.Write(record); err != nil {
			return err
		}

		if (i+1)%exportFlushInterval == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
