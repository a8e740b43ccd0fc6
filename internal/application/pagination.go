package application

import (
	"context"
	"strconv"
	"strings"
)

// PageSize is the number of rows shown per listing page.
const PageSize = 10

// Page is one page of a listing together with its position.
type Page[T any] struct {
	Items       []T
	Number      int
	NumPages    int
	Total       int
	HasNext     bool
	HasPrevious bool
}

// ParsePageNumber interprets a raw page query value. Missing or non-numeric
// input selects the first page. Numbers below one are passed through and
// resolve to the last page.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return n
}

type pageFetcher[T any] func(ctx context.Context, limit, offset int) ([]T, int, error)

// paginate fetches the requested page. A page past the end, or below one,
// resolves to the last page. An empty listing has a single empty page.
func paginate[T any](ctx context.Context, requested, size int, fetch pageFetcher[T]) (Page[T], error) {
	if size <= 0 {
		size = PageSize
	}
	number := requested
	if number < 1 {
		number = 1 << 30
	}

	items, total, err := fetch(ctx, size, (number-1)*size)
	if err != nil {
		return Page[T]{}, err
	}

	numPages := (total + size - 1) / size
	if numPages == 0 {
		numPages = 1
	}
	if number > numPages {
		number = numPages
		items, total, err = fetch(ctx, size, (number-1)*size)
		if err != nil {
			return Page[T]{}, err
		}
		numPages = (total + size - 1) / size
		if numPages == 0 {
			numPages = 1
		}
	}

	if items == nil {
		items = []T{}
	}

	return Page[T]{
		Items:       items,
		Number:      number,
		NumPages:    numPages,
		Total:       total,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}, nil
}
