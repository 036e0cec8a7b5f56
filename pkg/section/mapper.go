package section

import "fmt"

// Position is a (group, row-within-group) coordinate. Row 0 is the header.
type Position struct {
	Group int
	Row   int
}

// IsHeader reports whether the position addresses a group header.
func (p Position) IsHeader() bool { return p.Row == 0 }

// Item returns the zero based item index for non-header rows.
func (p Position) Item() int { return p.Row - 1 }

// HeaderOffsets returns the flat index of each group's header given the item
// count of every group: offset[i] = i + sum(sizes[:i]).
func HeaderOffsets(sizes []int) []int {
	offsets := make([]int, len(sizes))
	index := 0
	for i, n := range sizes {
		offsets[i] = index
		index += n + 1
	}
	return offsets
}

// TotalRows is the number of flat rows: one header plus one row per item for
// every group.
func TotalRows(sizes []int) int {
	total := 0
	for _, n := range sizes {
		total += n + 1
	}
	return total
}

// Mapper resolves flat row indices against a fixed list of group sizes.
// Offsets are recomputed per call; they depend only on group sizes, which
// never change after construction, so collapse state cannot affect them.
type Mapper struct {
	sizes []int
}

// NewMapper builds a Mapper for the given group sizes.
func NewMapper(sizes []int) Mapper {
	cp := make([]int, len(sizes))
	copy(cp, sizes)
	return Mapper{sizes: cp}
}

// Mapper returns an index mapper over the store's groups.
func (s *Store[T]) Mapper() Mapper {
	return Mapper{sizes: s.Sizes()}
}

// HeaderOffsets returns the header offsets for the mapped groups.
func (m Mapper) HeaderOffsets() []int { return HeaderOffsets(m.sizes) }

// TotalRows returns the flat row count.
func (m Mapper) TotalRows() int { return TotalRows(m.sizes) }

// GroupIndexOf returns the largest i such that HeaderOffsets()[i] <= flatRow.
func (m Mapper) GroupIndexOf(flatRow int) (int, error) {
	if flatRow < 0 || flatRow >= m.TotalRows() {
		return 0, fmt.Errorf("%w: flat row %d of %d", ErrIndexOutOfRange, flatRow, m.TotalRows())
	}
	offsets := m.HeaderOffsets()
	group := 0
	for i, off := range offsets {
		if off > flatRow {
			break
		}
		group = i
	}
	return group, nil
}

// RowWithinGroup returns flatRow minus its group's header offset. A row equal
// to a header offset resolves to 0, the header of that group.
func (m Mapper) RowWithinGroup(flatRow int) (int, error) {
	p, err := m.Locate(flatRow)
	if err != nil {
		return 0, err
	}
	return p.Row, nil
}

// Locate resolves flatRow to its group and row within that group.
func (m Mapper) Locate(flatRow int) (Position, error) {
	g, err := m.GroupIndexOf(flatRow)
	if err != nil {
		return Position{}, err
	}
	return Position{Group: g, Row: flatRow - m.HeaderOffsets()[g]}, nil
}

// FlatIndex is the inverse of Locate.
func (m Mapper) FlatIndex(group, row int) (int, error) {
	if group < 0 || group >= len(m.sizes) {
		return 0, fmt.Errorf("%w: group %d of %d", ErrIndexOutOfRange, group, len(m.sizes))
	}
	if row < 0 || row > m.sizes[group] {
		return 0, fmt.Errorf("%w: row %d in group %d", ErrIndexOutOfRange, row, group)
	}
	return m.HeaderOffsets()[group] + row, nil
}

// RowRange returns the half-open flat range [start, end) covering the header
// and every item of group. It is the exact set of rows to redraw after the
// group is toggled.
func (m Mapper) RowRange(group int) (start, end int, err error) {
	start, err = m.FlatIndex(group, 0)
	if err != nil {
		return 0, 0, err
	}
	return start, start + m.sizes[group] + 1, nil
}

// FlatHeight resolves flatRow and returns its height from the store.
func (s *Store[T]) FlatHeight(flatRow int) (float64, error) {
	p, err := s.Mapper().Locate(flatRow)
	if err != nil {
		return 0, err
	}
	return s.RowHeight(p.Group, p.Row)
}
