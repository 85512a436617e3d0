// Package listing filters and sorts the list views: provider comparison,
// saved providers, notes and the booking tracking list.
package listing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnsupportedSort  = errors.New("unsupported sort key")
	ErrUnsupportedOrder = errors.New("unsupported sort order")
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"

	// AllCategories disables the category filter, like an empty category.
	AllCategories = "all"
)

// Query is what a list view is asked for. Zero values mean "no filter" and the
// view's default sort.
type Query struct {
	Search   string `form:"search" json:"search,omitempty"`
	Category string `form:"category" json:"category,omitempty"`
	Tag      string `form:"tag" json:"tag,omitempty"`
	SortBy   string `form:"sortBy" json:"sortBy,omitempty"`
	Order    string `form:"order" json:"order,omitempty"`
}

// Less orders two items ascending.
type Less[T any] func(a, b T) bool

// View describes how one list is searched, filtered and sorted.
type View[T any] struct {
	// Fields returns the searchable text of an item.
	Fields func(T) []string
	// Category returns the item's category selector. Nil disables category filtering.
	Category func(T) string
	// Tags returns the item's tags. Nil disables tag filtering.
	Tags func(T) []string
	// Pinned items precede the rest whatever the sort.
	Pinned func(T) bool

	Sorts        map[string]Less[T]
	DefaultSort  string
	DefaultOrder string
}

// Apply filters items by q and sorts what is left. The input slice is not modified.
func (v View[T]) Apply(items []T, q Query) ([]T, error) {
	less, err := v.comparator(q)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)
	if strings.EqualFold(category, AllCategories) {
		category = ""
	}
	tag := strings.TrimSpace(q.Tag)

	out := make([]T, 0, len(items))
	for _, item := range items {
		if search != "" && !v.matches(item, search) {
			continue
		}
		if category != "" && v.Category != nil && v.Category(item) != category {
			continue
		}
		if tag != "" && v.Tags != nil && !containsExact(v.Tags(item), tag) {
			continue
		}
		out = append(out, item)
	}

	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out, nil
}

func (v View[T]) comparator(q Query) (Less[T], error) {
	key := strings.TrimSpace(q.SortBy)
	order := strings.ToLower(strings.TrimSpace(q.Order))
	if key == "" {
		key = v.DefaultSort
		if order == "" {
			order = v.DefaultOrder
		}
	}
	// An explicitly chosen key sorts ascending unless told otherwise.
	if order == "" {
		order = OrderAsc
	}
	if order != OrderAsc && order != OrderDesc {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOrder, q.Order)
	}

	var less Less[T]
	if key != "" {
		l, ok := v.Sorts[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedSort, key)
		}
		less = l
		if order == OrderDesc {
			less = func(a, b T) bool { return l(b, a) }
		}
	}
	if v.Pinned == nil {
		return less, nil
	}
	pinned := v.Pinned
	return func(a, b T) bool {
		pa, pb := pinned(a), pinned(b)
		if pa != pb {
			return pa
		}
		return less != nil && less(a, b)
	}, nil
}

func (v View[T]) matches(item T, search string) bool {
	if v.Fields == nil {
		return false
	}
	for _, f := range v.Fields(item) {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// SortKeys lists the view's sort keys in alphabetical order.
func (v View[T]) SortKeys() []string {
	keys := make([]string, 0, len(v.Sorts))
	for k := range v.Sorts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsExact(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
