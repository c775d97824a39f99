// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package statement

import (
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrEmptyResponse indicates the scraped document had no content.
	ErrEmptyResponse = errors.New("statement: empty response")

	// ErrTableNotFound indicates the document contains fewer tables than
	// the requested position expects.
	ErrTableNotFound = errors.New("statement: table not found")
)

// Row is a single statement line. ConceptID is the structured taxonomy
// identifier (e.g. an IFRS element name) when the source provides one and
// empty otherwise. Labels are not guaranteed unique within a table.
type Row struct {
	ConceptID string
	Label     string
	Cells     []string
}

// Table is a statement as extracted from a document: ordered rows
// addressable by indicator and ordered columns addressable by period.
type Table struct {
	Columns []string
	Rows    []Row
}

// ColumnIndex returns a map from column header to the lowest column index
// carrying that header. Sources sometimes repeat a period across several
// date-range columns; the first occurrence wins.
func (t *Table) ColumnIndex() map[string]int {
	idx := make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		if _, ok := idx[col]; !ok {
			idx[col] = i
		}
	}
	return idx
}

var conceptIDToken = regexp.MustCompile(`^[a-z][a-z0-9-]*_[A-Za-z][A-Za-z0-9_-]*$`)

// FlattenHeader collapses a multi-level column header into a single token.
// Preference order: a concept-id-like component, then a textual label
// component, then the first year-like component, then the first component
// verbatim.
func FlattenHeader(parts []string) string {
	trimmed := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			trimmed = append(trimmed, part)
		}
	}

	if len(trimmed) == 0 {
		return ""
	}

	for _, part := range trimmed {
		if conceptIDToken.MatchString(part) {
			return part
		}
	}

	for _, part := range trimmed {
		if isLabelToken(part) {
			return part
		}
	}

	for _, part := range trimmed {
		if yearToken.MatchString(part) {
			return part
		}
	}

	return trimmed[0]
}

// isLabelToken reports whether a header component reads as a period label
// rather than decoration. Period labels contain a year plus punctuation
// ("2023.12", "2023/12 (E)"); pure prose headers like "주요재무정보" are
// not period labels and do not qualify.
func isLabelToken(part string) bool {
	return yearToken.MatchString(part) && part != yearToken.FindString(part)
}

// ExtractTable locates the table at the given position within a parsed
// document and reshapes it into a Table. It fails with ErrEmptyResponse
// when the document has no body content and ErrTableNotFound when fewer
// tables exist than the position requires.
//
// Header cells may span multiple header rows; the components stacked above
// each column are flattened with FlattenHeader. The first cell of each body
// row is the row label; a data-nacc or data-id attribute on the row, when
// present, is kept as the row's concept id.
func ExtractTable(doc *goquery.Document, position int) (*Table, error) {
	if doc == nil || strings.TrimSpace(doc.Find("body").Text()) == "" {
		return nil, ErrEmptyResponse
	}

	tables := doc.Find("table")
	if tables.Length() <= position {
		return nil, ErrTableNotFound
	}

	sel := tables.Eq(position)
	table := &Table{}

	// Stack header rows so each column has its component strings in
	// document order. A cell spanning several rows occupies its columns in
	// the following rows too; those pages open with a rowspan'd indicator
	// label followed by a period row, so skipping occupied columns keeps
	// each period aligned with its cells.
	var headerParts [][]string
	occupied := make(map[int]int)
	sel.Find("thead tr").Each(func(_ int, tr *goquery.Selection) {
		col := 0
		skipOccupied := func() {
			for occupied[col] > 0 {
				occupied[col]--
				col++
			}
		}

		tr.Find("th").Each(func(_ int, th *goquery.Selection) {
			skipOccupied()

			span := 1
			if v, ok := th.Attr("colspan"); ok {
				if n, ok := ParseNumber(v); ok && n > 1 {
					span = int(n)
				}
			}

			rows := 1
			if v, ok := th.Attr("rowspan"); ok {
				if n, ok := ParseNumber(v); ok && n > 1 {
					rows = int(n)
				}
			}

			text := strings.TrimSpace(th.Text())
			for i := 0; i < span; i++ {
				for len(headerParts) <= col {
					headerParts = append(headerParts, nil)
				}
				headerParts[col] = append(headerParts[col], text)
				if rows > 1 {
					occupied[col] += rows - 1
				}
				col++
			}
		})
		skipOccupied()
	})

	// The leading header column labels the indicator names, not a period.
	for i, parts := range headerParts {
		if i == 0 {
			continue
		}
		table.Columns = append(table.Columns, FlattenHeader(parts))
	}

	sel.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("th, td")
		if cells.Length() == 0 {
			return
		}

		row := Row{Label: strings.TrimSpace(cells.First().Text())}
		if id, ok := tr.Attr("data-nacc"); ok {
			row.ConceptID = strings.TrimSpace(id)
		} else if id, ok := tr.Attr("data-id"); ok {
			row.ConceptID = strings.TrimSpace(id)
		}

		cells.Slice(1, cells.Length()).Each(func(_ int, td *goquery.Selection) {
			row.Cells = append(row.Cells, strings.TrimSpace(td.Text()))
		})

		if row.Label != "" || len(row.Cells) > 0 {
			table.Rows = append(table.Rows, row)
		}
	})

	return table, nil
}
