package dossier

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV parses a CSV export back into a table. The first record is the
// header.
func ReadCSV(r io.Reader) (Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("error reading CSV: %w", err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}
	return Table{Header: records[0], Rows: records[1:]}, nil
}

// Records returns each row keyed by header. Duplicate headers, such as a
// field labelled like an intrinsic key, get a "_2", "_3"... suffix, and
// short rows are padded with "".
func (t Table) Records() []map[string]string {
	headers := make([]string, len(t.Header))
	copy(headers, t.Header)

	seen := make(map[string]int)
	for i, h := range headers {
		if count, ok := seen[h]; ok {
			seen[h]++
			headers[i] = fmt.Sprintf("%s_%d", h, count+2)
		} else {
			seen[h] = 0
		}
	}

	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(row) {
				rec[h] = row[j]
			} else {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}
