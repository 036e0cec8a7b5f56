// Package section holds an ordered set of named, collapsible groups and maps
// them onto a single flat row space suitable for driving a virtualized list.
//
// Every group contributes one header row followed by one row per item. Rows
// exist regardless of collapse state; collapsing a group only changes the
// height reported for its item rows, so flat indices never shift.
package section

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned for group, row or flat indices outside the
// valid bounds. It indicates a binding bug rather than bad user input.
var ErrIndexOutOfRange = errors.New("section: index out of range")

// ErrDuplicateItem is returned by NewChecked when an item appears more than
// once across all groups.
var ErrDuplicateItem = errors.New("section: duplicate item")

// Group is a named cluster of items. Items are opaque to this package; their
// order defines the flat layout order.
type Group[T any] struct {
	Name      string
	Items     []T
	Collapsed bool
}

// Heights configures the value returned by RowHeight.
type Heights struct {
	Header float64
	Item   float64
}

// DefaultHeights matches a touch-sized table layout.
var DefaultHeights = Heights{Header: 44, Item: 80}

// Option customises a Store.
type Option func(*options)

type options struct {
	heights  Heights
	expanded map[int]bool
}

// WithHeights overrides the header and item heights.
func WithHeights(h Heights) Option {
	return func(o *options) {
		o.heights = h
	}
}

// Expanded starts the given groups expanded instead of collapsed.
func Expanded(groupIndexes ...int) Option {
	return func(o *options) {
		if o.expanded == nil {
			o.expanded = make(map[int]bool, len(groupIndexes))
		}
		for _, i := range groupIndexes {
			o.expanded[i] = true
		}
	}
}

// Store owns the static group schema and the mutable collapsed flags.
type Store[T any] struct {
	groups  []Group[T]
	heights Heights
}

// New builds a Store. Every group starts collapsed unless named by Expanded.
// The Collapsed field of the input groups is ignored; use Expanded instead.
func New[T any](groups []Group[T], opts ...Option) *Store[T] {
	o := &options{heights: DefaultHeights}
	for _, opt := range opts {
		opt(o)
	}
	s := &Store[T]{
		groups:  make([]Group[T], len(groups)),
		heights: o.heights,
	}
	for i, g := range groups {
		items := make([]T, len(g.Items))
		copy(items, g.Items)
		s.groups[i] = Group[T]{
			Name:      g.Name,
			Items:     items,
			Collapsed: !o.expanded[i],
		}
	}
	return s
}

// NewChecked is New plus schema validation: at least one group, every
// group named and non-empty, and no item repeated in or across groups.
func NewChecked[T comparable](groups []Group[T], opts ...Option) (*Store[T], error) {
	if len(groups) == 0 {
		return nil, errors.New("section: no groups")
	}
	seen := make(map[T]string)
	for i, g := range groups {
		if g.Name == "" {
			return nil, fmt.Errorf("section: group %d has no name", i)
		}
		if len(g.Items) == 0 {
			return nil, fmt.Errorf("section: group %q has no items", g.Name)
		}
		for _, item := range g.Items {
			if prev, ok := seen[item]; ok {
				return nil, fmt.Errorf("%w: %v in %q and %q", ErrDuplicateItem, item, prev, g.Name)
			}
			seen[item] = g.Name
		}
	}
	return New(groups, opts...), nil
}

// Len returns the number of groups.
func (s *Store[T]) Len() int { return len(s.groups) }

// Heights returns the configured heights.
func (s *Store[T]) Heights() Heights { return s.heights }

// Group returns a copy of the group at i.
func (s *Store[T]) Group(i int) (Group[T], error) {
	if err := s.checkGroup(i); err != nil {
		return Group[T]{}, err
	}
	g := s.groups[i]
	items := make([]T, len(g.Items))
	copy(items, g.Items)
	g.Items = items
	return g, nil
}

// Groups returns copies of all groups.
func (s *Store[T]) Groups() []Group[T] {
	out := make([]Group[T], len(s.groups))
	for i := range s.groups {
		out[i], _ = s.Group(i)
	}
	return out
}

// Sizes returns the item count of each group.
func (s *Store[T]) Sizes() []int {
	out := make([]int, len(s.groups))
	for i, g := range s.groups {
		out[i] = len(g.Items)
	}
	return out
}

// Item returns the item at itemIndex (zero based, not counting the header).
func (s *Store[T]) Item(groupIndex, itemIndex int) (T, error) {
	var zero T
	if err := s.checkGroup(groupIndex); err != nil {
		return zero, err
	}
	items := s.groups[groupIndex].Items
	if itemIndex < 0 || itemIndex >= len(items) {
		return zero, fmt.Errorf("%w: item %d in group %d", ErrIndexOutOfRange, itemIndex, groupIndex)
	}
	return items[itemIndex], nil
}

// Collapsed reports the collapsed flag of group i.
func (s *Store[T]) Collapsed(i int) (bool, error) {
	if err := s.checkGroup(i); err != nil {
		return false, err
	}
	return s.groups[i].Collapsed, nil
}

// Toggle flips the collapsed flag of group i.
func (s *Store[T]) Toggle(i int) error {
	if err := s.checkGroup(i); err != nil {
		return err
	}
	s.groups[i].Collapsed = !s.groups[i].Collapsed
	return nil
}

// SetCollapsed sets the collapsed flag of group i.
func (s *Store[T]) SetCollapsed(i int, collapsed bool) error {
	if err := s.checkGroup(i); err != nil {
		return err
	}
	s.groups[i].Collapsed = collapsed
	return nil
}

// CollapseAll collapses every group.
func (s *Store[T]) CollapseAll() {
	for i := range s.groups {
		s.groups[i].Collapsed = true
	}
}

// ExpandAll expands every group.
func (s *Store[T]) ExpandAll() {
	for i := range s.groups {
		s.groups[i].Collapsed = false
	}
}

// RowHeight returns the height of row itemRow within group groupIndex, where
// row 0 is the header and rows 1..n are the items. Item rows of a collapsed
// group have height zero.
func (s *Store[T]) RowHeight(groupIndex, itemRow int) (float64, error) {
	if err := s.checkGroup(groupIndex); err != nil {
		return 0, err
	}
	g := s.groups[groupIndex]
	if itemRow < 0 || itemRow > len(g.Items) {
		return 0, fmt.Errorf("%w: row %d in group %d", ErrIndexOutOfRange, itemRow, groupIndex)
	}
	if itemRow == 0 {
		return s.heights.Header, nil
	}
	if g.Collapsed {
		return 0, nil
	}
	return s.heights.Item, nil
}

func (s *Store[T]) checkGroup(i int) error {
	if i < 0 || i >= len(s.groups) {
		return fmt.Errorf("%w: group %d of %d", ErrIndexOutOfRange, i, len(s.groups))
	}
	return nil
}
