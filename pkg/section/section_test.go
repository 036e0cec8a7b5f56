package section

import (
	"errors"
	"math/rand"
	"testing"
)

func groupsOfSizes(sizes ...int) []Group[int] {
	groups := make([]Group[int], len(sizes))
	next := 0
	for i, n := range sizes {
		items := make([]int, n)
		for j := range items {
			items[j] = next
			next++
		}
		groups[i] = Group[int]{Name: string(rune('A' + i)), Items: items}
	}
	return groups
}

func TestAnalyticsLayout(t *testing.T) {
	s := New(groupsOfSizes(5, 7, 3, 3, 3))
	m := s.Mapper()

	want := []int{0, 6, 14, 18, 22}
	got := m.HeaderOffsets()
	if len(got) != len(want) {
		t.Fatalf("expected %d offsets, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("offset[%d] = %d, want %d (all %v)", i, got[i], want[i], got)
		}
	}
	if total := m.TotalRows(); total != 26 {
		t.Fatalf("expected 26 rows, got %d", total)
	}
}

func TestBoundaryResolvesToNextHeader(t *testing.T) {
	m := New(groupsOfSizes(5, 7, 3, 3, 3)).Mapper()

	g, err := m.GroupIndexOf(6)
	if err != nil {
		t.Fatalf("GroupIndexOf: %v", err)
	}
	if g != 1 {
		t.Fatalf("expected row 6 in group 1, got %d", g)
	}
	r, err := m.RowWithinGroup(6)
	if err != nil {
		t.Fatalf("RowWithinGroup: %v", err)
	}
	if r != 0 {
		t.Fatalf("expected row 6 to be a header, got row %d", r)
	}

	p, _ := m.Locate(5)
	if p.Group != 0 || p.Row != 5 {
		t.Fatalf("expected row 5 to be last item of group 0, got %+v", p)
	}
	p, _ = m.Locate(25)
	if p.Group != 4 || p.Row != 3 {
		t.Fatalf("expected row 25 to be last item of group 4, got %+v", p)
	}
}

func TestOutOfRange(t *testing.T) {
	s := New(groupsOfSizes(2, 1))
	m := s.Mapper()

	for _, row := range []int{-1, m.TotalRows(), m.TotalRows() + 10} {
		if _, err := m.GroupIndexOf(row); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("GroupIndexOf(%d): expected ErrIndexOutOfRange, got %v", row, err)
		}
		if _, err := m.RowWithinGroup(row); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("RowWithinGroup(%d): expected ErrIndexOutOfRange, got %v", row, err)
		}
	}
	for _, g := range []int{-1, 2} {
		if err := s.Toggle(g); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("Toggle(%d): expected ErrIndexOutOfRange, got %v", g, err)
		}
	}
	if _, err := s.RowHeight(0, 3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("RowHeight past last item: expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := m.FlatIndex(1, 2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("FlatIndex past last item: expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestOffsetFormulaForRandomSizes(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		k := 1 + rng.Intn(10)
		sizes := make([]int, k)
		sum := 0
		for i := range sizes {
			sizes[i] = 1 + rng.Intn(10)
			sum += sizes[i]
		}
		m := NewMapper(sizes)
		offsets := m.HeaderOffsets()

		prefix := 0
		for i := range sizes {
			if offsets[i] != i+prefix {
				t.Fatalf("sizes %v: offset[%d] = %d, want %d", sizes, i, offsets[i], i+prefix)
			}
			prefix += sizes[i]
		}
		if m.TotalRows() != k+sum {
			t.Fatalf("sizes %v: total %d, want %d", sizes, m.TotalRows(), k+sum)
		}

		for i, off := range offsets {
			g, err := m.GroupIndexOf(off)
			if err != nil || g != i {
				t.Fatalf("sizes %v: GroupIndexOf(%d) = %d, %v; want %d", sizes, off, g, err, i)
			}
		}
		for r := 0; r < m.TotalRows(); r++ {
			p, err := m.Locate(r)
			if err != nil {
				t.Fatalf("sizes %v: Locate(%d): %v", sizes, r, err)
			}
			if p.Row < 0 || p.Row > sizes[p.Group] {
				t.Fatalf("sizes %v: row %d resolved to %+v", sizes, r, p)
			}
			back, err := m.FlatIndex(p.Group, p.Row)
			if err != nil || back != r {
				t.Fatalf("sizes %v: FlatIndex(%+v) = %d, %v; want %d", sizes, p, back, err, r)
			}
		}
	}
}

func TestGroupsStartCollapsed(t *testing.T) {
	s := New(groupsOfSizes(2, 2, 2), Expanded(1))
	for i, want := range []bool{true, false, true} {
		got, err := s.Collapsed(i)
		if err != nil {
			t.Fatalf("Collapsed(%d): %v", i, err)
		}
		if got != want {
			t.Fatalf("group %d collapsed = %v, want %v", i, got, want)
		}
	}
}

func TestRowHeight(t *testing.T) {
	s := New(groupsOfSizes(2), WithHeights(Heights{Header: 1, Item: 2}))

	if h, _ := s.RowHeight(0, 0); h != 1 {
		t.Fatalf("header height = %v, want 1", h)
	}
	if h, _ := s.RowHeight(0, 1); h != 0 {
		t.Fatalf("collapsed item height = %v, want 0", h)
	}
	if err := s.Toggle(0); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if h, _ := s.RowHeight(0, 2); h != 2 {
		t.Fatalf("expanded item height = %v, want 2", h)
	}
}

func TestToggleTwiceRestoresHeights(t *testing.T) {
	s := New(groupsOfSizes(5, 7, 3, 3, 3))
	m := s.Mapper()
	before := make([]float64, m.TotalRows())
	for r := range before {
		h, err := s.FlatHeight(r)
		if err != nil {
			t.Fatalf("FlatHeight(%d): %v", r, err)
		}
		before[r] = h
	}

	for g := 0; g < s.Len(); g++ {
		_ = s.Toggle(g)
		_ = s.Toggle(g)
	}
	for r := range before {
		if h, _ := s.FlatHeight(r); h != before[r] {
			t.Fatalf("row %d height %v after double toggle, want %v", r, h, before[r])
		}
	}
}

func TestCollapseDoesNotMoveRows(t *testing.T) {
	s := New(groupsOfSizes(5, 7, 3, 3, 3))
	offsets := s.Mapper().HeaderOffsets()
	total := s.Mapper().TotalRows()

	s.ExpandAll()
	_ = s.Toggle(2)
	after := s.Mapper().HeaderOffsets()
	for i := range offsets {
		if offsets[i] != after[i] {
			t.Fatalf("offset %d moved from %d to %d", i, offsets[i], after[i])
		}
	}
	if s.Mapper().TotalRows() != total {
		t.Fatalf("total rows changed from %d to %d", total, s.Mapper().TotalRows())
	}
}

func TestRowRangeCoversExactlyOneGroup(t *testing.T) {
	m := New(groupsOfSizes(5, 7, 3, 3, 3)).Mapper()
	start, end, err := m.RowRange(1)
	if err != nil {
		t.Fatalf("RowRange: %v", err)
	}
	if start != 6 || end != 14 {
		t.Fatalf("RowRange(1) = [%d,%d), want [6,14)", start, end)
	}
	for r := start; r < end; r++ {
		if g, _ := m.GroupIndexOf(r); g != 1 {
			t.Fatalf("row %d in range belongs to group %d", r, g)
		}
	}
}

func TestNewCheckedRejectsEmptyGroups(t *testing.T) {
	if _, err := NewChecked[int](nil); err == nil {
		t.Fatalf("expected error for no groups")
	}
	if _, err := NewChecked([]Group[int]{{Name: "x"}}); err == nil {
		t.Fatalf("expected error for empty items")
	}
	if _, err := NewChecked(groupsOfSizes(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewCheckedRejectsDuplicateItems(t *testing.T) {
	tests := map[string][]Group[int]{
		"across groups": {{Name: "A", Items: []int{1, 2}}, {Name: "B", Items: []int{2}}},
		"within group":  {{Name: "A", Items: []int{3, 3}}},
	}
	for name, groups := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := NewChecked(groups); !errors.Is(err, ErrDuplicateItem) {
				t.Fatalf("expected ErrDuplicateItem, got %v", err)
			}
		})
	}
	if _, err := NewChecked(groupsOfSizes(5, 7, 3, 3, 3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStoreCopiesInput(t *testing.T) {
	groups := groupsOfSizes(2)
	s := New(groups)
	groups[0].Items[0] = 99
	if v, _ := s.Item(0, 0); v == 99 {
		t.Fatalf("store aliases caller slice")
	}
	g, _ := s.Group(0)
	g.Items[0] = 42
	if v, _ := s.Item(0, 0); v == 42 {
		t.Fatalf("Group returned aliased items")
	}
}
