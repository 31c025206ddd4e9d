package pagination

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
)

// HeaderNextSearchAfter carries the continuation token for the next page.
// Its absence means the last page has been reached.
const HeaderNextSearchAfter = "X-Next-Search-After"

// Page is one HTTP response's worth of records plus its continuation token.
// A page with zero records is a valid page, distinct from an error.
type Page struct {
	Records *Table
	Token   string
	Count   int
}

// searchBody is the JSON shape returned by the search endpoints.
type searchBody struct {
	ColumnNames []string         `json:"column-names"`
	Rows        []map[string]any `json:"rows"`
}

// NormalizePage parses one search response body into a Page and extracts the
// continuation token from the response headers. An empty body, an empty rows
// array, or a first row with no fields all normalize to an empty page.
func NormalizePage(resp *http.Response) (*Page, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	page := &Page{
		Records: &Table{},
		Token:   resp.Header.Get(HeaderNextSearchAfter),
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return page, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var parsed searchBody
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse response body: %w", err)
	}

	if len(parsed.Rows) == 0 || len(parsed.Rows[0]) == 0 {
		return page, nil
	}

	page.Records = tabulate(parsed.ColumnNames, parsed.Rows)
	page.Count = page.Records.NumRows()
	return page, nil
}

// tabulate converts decoded JSON rows into a Table with snake_case columns.
// The upstream column order is kept when the body declares it; otherwise
// columns come from the first row's keys, sorted for determinism.
func tabulate(columnNames []string, rows []map[string]any) *Table {
	wireColumns := columnNames
	if len(wireColumns) == 0 {
		wireColumns = make([]string, 0, len(rows[0]))
		for key := range rows[0] {
			wireColumns = append(wireColumns, key)
		}
		sort.Strings(wireColumns)
	}

	columns := make([]string, len(wireColumns))
	for i, col := range wireColumns {
		columns[i] = CanonicalColumn(col)
	}

	table := &Table{
		Columns: columns,
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		cells := make([]string, len(wireColumns))
		for i, col := range wireColumns {
			cells[i] = formatValue(row[col])
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

// formatValue renders a decoded JSON value as a table cell.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		// Nested structures should not occur in search rows; render as JSON
		// rather than dropping the value.
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
