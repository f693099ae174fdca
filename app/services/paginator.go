package services

import (
	"fmt"
	"strconv"
	"strings"
)

// Page is one window of a paginated listing.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int
	PerPage  int
}

func (p *Page[T]) HasNext() bool     { return p.Number < p.NumPages }
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }
func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}
func (p *Page[T]) NextNumber() int     { return p.Number + 1 }
func (p *Page[T]) PreviousNumber() int { return p.Number - 1 }

// PageRange lists every page number, for pager links.
func (p *Page[T]) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

// numPages always reports at least one page so an empty listing still
// renders.
func numPages(count, perPage int) int {
	if count == 0 {
		return 1
	}
	return (count + perPage - 1) / perPage
}

// resolvePage turns the raw ?page= value into a page number. An empty value
// means the first page and "last" the final one.
func resolvePage(raw string, pages int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	if raw == "last" {
		return pages, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not 'last', nor an integer", ErrInvalidPage, raw)
	}
	if n < 1 || n > pages {
		return 0, fmt.Errorf("%w: page %d is out of range 1..%d", ErrInvalidPage, n, pages)
	}
	return n, nil
}
