package web

import (
	"net/url"
	"reflect"
	"testing"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []int
	}{
		{"no pages", 1, 0, nil},
		{"single page", 1, 1, []int{1}},
		{"five pages shows all", 3, 5, []int{1, 2, 3, 4, 5}},
		{"start of long run", 1, 20, []int{1, 2, 3, 4, Gap, 20}},
		{"page three still start-anchored", 3, 20, []int{1, 2, 3, 4, Gap, 20}},
		{"middle", 10, 20, []int{1, Gap, 9, 10, 11, Gap, 20}},
		{"first middle position", 4, 20, []int{1, Gap, 3, 4, 5, Gap, 20}},
		{"end-anchored", 18, 20, []int{1, Gap, 17, 18, 19, 20}},
		{"last page", 20, 20, []int{1, Gap, 17, 18, 19, 20}},
		{"six pages middle", 4, 6, []int{1, Gap, 3, 4, 5, 6}},
		{"current clamped low", -3, 20, []int{1, 2, 3, 4, Gap, 20}},
		{"current clamped high", 99, 20, []int{1, Gap, 17, 18, 19, 20}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Window(tc.current, tc.total)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Window(%d, %d) = %v, want %v", tc.current, tc.total, got, tc.want)
			}
		})
	}
}

func TestPageLinksCarryFilters(t *testing.T) {
	filters := url.Values{"search": {"zelda"}, "tags": {"retro"}}
	links := PageLinks(2, 3, filters)

	want := []PageLink{
		{Number: 1, URL: "/themes?page=1&search=zelda&tags=retro"},
		{Number: 2, Current: true, URL: "/themes?page=2&search=zelda&tags=retro"},
		{Number: 3, URL: "/themes?page=3&search=zelda&tags=retro"},
	}
	if !reflect.DeepEqual(links, want) {
		t.Fatalf("PageLinks = %+v, want %+v", links, want)
	}
	// The caller's values must not pick up the page parameter.
	if filters.Get("page") != "" {
		t.Fatalf("filters mutated: %v", filters)
	}
}

func TestPageLinksRenderGaps(t *testing.T) {
	links := PageLinks(10, 20, nil)
	var gaps, numbered int
	for _, l := range links {
		if l.Gap {
			gaps++
			continue
		}
		numbered++
		if l.URL == "" {
			t.Fatalf("page %d missing URL", l.Number)
		}
	}
	if gaps != 2 || numbered != 5 {
		t.Fatalf("expected 5 pages around 2 gaps, got %d/%d", numbered, gaps)
	}
}
