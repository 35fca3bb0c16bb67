// Package dataset reads the input workbook of paper records and writes the
// augmented output workbook.
package dataset

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/reva-ai/extract-cli/internal/model"
)

// Column headers recognized in the input sheet (case-insensitive).
const (
	linkColumn     = "Link"
	doiColumn      = "DOI"
	abstractColumn = "Abstract"
	keywordsColumn = "Keywords"
)

// Table is the loaded input sheet: a header row plus data rows, with the
// locator columns resolved. Row order is the record order and never
// changes.
type Table struct {
	SheetName string
	Header    []string
	Rows      [][]string

	linkCol int // -1 if absent
	doiCol  int // -1 if absent
}

// Load reads the workbook at path. With an empty sheet name the first
// sheet is used. The first row is the header.
func Load(path, sheet string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open workbook")
	}

	s, err := pickSheet(f, sheet)
	if err != nil {
		return nil, err
	}

	t := &Table{SheetName: s.Name, linkCol: -1, doiCol: -1}
	for i, row := range s.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if i == 0 {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}

	if len(t.Header) == 0 {
		return nil, eris.Errorf("dataset: sheet %q has no header row", s.Name)
	}

	for i, h := range t.Header {
		switch {
		case strings.EqualFold(strings.TrimSpace(h), linkColumn):
			t.linkCol = i
		case strings.EqualFold(strings.TrimSpace(h), doiColumn):
			t.doiCol = i
		}
	}
	if t.linkCol < 0 && t.doiCol < 0 {
		return nil, eris.Errorf("dataset: sheet %q has neither a %s nor a %s column", s.Name, linkColumn, doiColumn)
	}

	return t, nil
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		s, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("dataset: sheet %q not found", name)
		}
		return s, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("dataset: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

// Records converts data rows into pipeline records. The record id is the
// 1-based data row ordinal, which is stable across runs because the input
// is immutable once loaded.
func (t *Table) Records() []model.Record {
	records := make([]model.Record, 0, len(t.Rows))
	for i, row := range t.Rows {
		records = append(records, model.Record{
			ID:  strconv.Itoa(i + 1),
			URL: t.cell(row, t.linkCol),
			DOI: t.cell(row, t.doiCol),
		})
	}
	return records
}

func (t *Table) cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Write produces the output workbook: the input table with Abstract and
// Keywords columns appended, one result per input row, order preserved.
// Records without a result (e.g. a limited run) get empty cells.
func Write(path string, t *Table, results map[string]model.ExtractionResult) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(t.SheetName)
	if err != nil {
		return eris.Wrap(err, "dataset: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range t.Header {
		header.AddCell().Value = h
	}
	header.AddCell().Value = abstractColumn
	header.AddCell().Value = keywordsColumn

	for i, cells := range t.Rows {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().Value = c
		}
		// Pad short rows so the appended columns line up.
		for j := len(cells); j < len(t.Header); j++ {
			row.AddCell().Value = ""
		}

		res := results[strconv.Itoa(i+1)]
		row.AddCell().Value = res.Abstract
		row.AddCell().Value = model.JoinKeywords(res.Keywords)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "dataset: save workbook")
	}
	return nil
}
