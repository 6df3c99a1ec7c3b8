// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"math"
	"strconv"
)

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("", 10)   // returns 10
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Pageable describes a page request: a zero-based page index, a page size and
// an optional sort column with direction.
type Pageable struct {
	Page   int
	Size   int
	SortBy string
	Desc   bool
}

// Offset returns the number of rows to skip for this page. It saturates at
// math.MaxInt instead of wrapping.
func (p Pageable) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// Page is a computed slice of a larger result set. The navigation flags are
// derived once in NewPage so consumers can copy them without recomputation.
type Page[T any] struct {
	items   []T
	number  int
	size    int
	total   int64
	pages   int
	first   bool
	last    bool
	hasNext bool
	hasPrev bool
}

// NewPage computes navigation metadata for items fetched with p out of total
// matching rows. A non-positive size yields a single page.
func NewPage[T any](items []T, p Pageable, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 1
	if p.Size > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	number := p.Page
	if number < 0 {
		number = 0
	}
	hasNext := number+1 < pages
	return Page[T]{
		items:   items,
		number:  number,
		size:    p.Size,
		total:   total,
		pages:   pages,
		first:   number == 0,
		last:    !hasNext,
		hasNext: hasNext,
		hasPrev: number > 0,
	}
}

// MapPage converts the items of pg with fn, keeping all metadata.
func MapPage[T, U any](pg Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(pg.items))
	for i, it := range pg.items {
		out[i] = fn(it)
	}
	return Page[U]{
		items:   out,
		number:  pg.number,
		size:    pg.size,
		total:   pg.total,
		pages:   pg.pages,
		first:   pg.first,
		last:    pg.last,
		hasNext: pg.hasNext,
		hasPrev: pg.hasPrev,
	}
}

func (pg Page[T]) Content() []T         { return pg.items }
func (pg Page[T]) Number() int          { return pg.number }
func (pg Page[T]) Size() int            { return pg.size }
func (pg Page[T]) TotalElements() int64 { return pg.total }
func (pg Page[T]) TotalPages() int      { return pg.pages }
func (pg Page[T]) IsFirst() bool        { return pg.first }
func (pg Page[T]) IsLast() bool         { return pg.last }
func (pg Page[T]) HasNext() bool        { return pg.hasNext }
func (pg Page[T]) HasPrevious() bool    { return pg.hasPrev }
