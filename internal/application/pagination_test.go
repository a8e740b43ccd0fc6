package application

import (
	"context"
	"testing"
)

func numbers(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func sliceFetcher(items []int) pageFetcher[int] {
	return func(ctx context.Context, limit, offset int) ([]int, int, error) {
		return window(items, limit, offset), len(items), nil
	}
}

func TestParsePageNumber(t *testing.T) {
	t.Parallel()

	cases := map[string]int{"": 1, "abc": 1, "2": 2, " 3 ": 3, "0": 0, "-4": -4}
	for raw, want := range cases {
		if got := ParsePageNumber(raw); got != want {
			t.Fatalf("ParsePageNumber(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		total     int
		requested int
		number    int
		size      int
		first     int
		numPages  int
	}{
		{name: "first page", total: 15, requested: 1, number: 1, size: 10, first: 1, numPages: 2},
		{name: "partial last page", total: 15, requested: 2, number: 2, size: 5, first: 11, numPages: 2},
		{name: "past the end", total: 15, requested: 9, number: 2, size: 5, first: 11, numPages: 2},
		{name: "below one", total: 15, requested: 0, number: 2, size: 5, first: 11, numPages: 2},
		{name: "negative", total: 25, requested: -1, number: 3, size: 5, first: 21, numPages: 3},
		{name: "empty listing", total: 0, requested: 4, number: 1, size: 0, numPages: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			page, err := paginate(context.Background(), tc.requested, PageSize, sliceFetcher(numbers(tc.total)))
			if err != nil {
				t.Fatalf("paginate failed: %v", err)
			}
			if page.Number != tc.number || page.NumPages != tc.numPages || len(page.Items) != tc.size {
				t.Fatalf("got number=%d pages=%d size=%d", page.Number, page.NumPages, len(page.Items))
			}
			if tc.size > 0 && page.Items[0] != tc.first {
				t.Fatalf("expected first item %d, got %d", tc.first, page.Items[0])
			}
			if page.Items == nil {
				t.Fatalf("expected non-nil items")
			}
			if page.HasPrevious != (tc.number > 1) || page.HasNext != (tc.number < tc.numPages) {
				t.Fatalf("unexpected navigation flags %+v", page)
			}
		})
	}
}
