package tui

import (
	"tableflip.dev/dynlink/pkg/form"
)

// rowKey identifies a drawn row independent of what is visible around it.
type rowKey struct {
	section form.SectionID
	row     int
	title   bool
}

// viewRow is one drawn line.
type viewRow struct {
	key  rowKey
	cell form.Cell
}

// visibleRows flattens the three sections into drawn lines. Section titles
// come first in each section; rows with zero height are skipped.
func visibleRows(s *form.Screen) ([]viewRow, error) {
	var out []viewRow
	for _, id := range form.Sections() {
		out = append(out, viewRow{key: rowKey{section: id, title: true}})
		n, err := s.NumberOfRows(id)
		if err != nil {
			return nil, err
		}
		for row := 0; row < n; row++ {
			h, err := s.RowHeight(id, row)
			if err != nil {
				return nil, err
			}
			if h <= 0 {
				continue
			}
			cell, err := s.CellContent(id, row)
			if err != nil {
				return nil, err
			}
			out = append(out, viewRow{key: rowKey{section: id, row: row}, cell: cell})
		}
	}
	return out, nil
}

// indexOf finds key in rows. A parameter item that is no longer drawn
// resolves to its group header.
func indexOf(s *form.Screen, rows []viewRow, key rowKey) int {
	for i, r := range rows {
		if r.key == key {
			return i
		}
	}
	if key.section == form.SectionParameters && !key.title {
		m := s.Parameters().Mapper()
		if g, err := m.GroupIndexOf(key.row); err == nil {
			if header, err := m.FlatIndex(g, 0); err == nil {
				return indexOf(s, rows, rowKey{section: form.SectionParameters, row: header})
			}
		}
	}
	return 0
}
