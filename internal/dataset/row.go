package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is a single ingested record keyed by column header. Values are kept as
// raw text; typing happens during WorkItem parsing.
type Row map[string]string

// Table is an ingested sheet: the header row plus its data rows.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// NewRow converts loosely typed values (e.g. decoded JSON) into a Row.
func NewRow(values map[string]any) Row {
	row := make(Row, len(values))
	for k, v := range values {
		row[k] = stringify(v)
	}
	return row
}

// Get returns the trimmed value for key. A missing key yields "".
func (r Row) Get(key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSpace(r[key])
}

// NewTable builds a Table from a header record and positional records.
// Blank headers are named Column_N, short records are padded with "".
func NewTable(header []string, records [][]string) Table {
	headers := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		headers[i] = h
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if isBlankRecord(rec) {
			continue
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return Table{Headers: headers, Rows: rows}
}

func isBlankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
