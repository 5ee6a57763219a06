package web

import (
	"net/url"
	"strconv"
)

// Gap marks an elided run of page numbers in a pagination window.
const Gap = -1

// Window returns the page numbers to render for the current position,
// eliding the middle with Gap entries once the total grows past five
// pages. current is clamped into [1, total].
func Window(current, total int) []int {
	if total <= 0 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	if total <= 5 {
		pages := make([]int, 0, total)
		for p := 1; p <= total; p++ {
			pages = append(pages, p)
		}
		return pages
	}

	if current <= 3 {
		return []int{1, 2, 3, 4, Gap, total}
	}
	if current >= total-2 {
		return []int{1, Gap, total - 3, total - 2, total - 1, total}
	}
	return []int{1, Gap, current - 1, current, current + 1, Gap, total}
}

// PageLink is one rendered pagination entry.
type PageLink struct {
	Number  int
	Gap     bool
	Current bool
	URL     string
}

// PageLinks expands Window into renderable links. Each link keeps the
// active catalogue filters so paging through a filtered result set stays
// on that result set.
func PageLinks(current, total int, filters url.Values) []PageLink {
	window := Window(current, total)
	links := make([]PageLink, 0, len(window))
	for _, p := range window {
		if p == Gap {
			links = append(links, PageLink{Gap: true})
			continue
		}
		params := url.Values{}
		for key, vals := range filters {
			params[key] = vals
		}
		params.Set("page", strconv.Itoa(p))
		links = append(links, PageLink{
			Number:  p,
			Current: p == current,
			URL:     "/themes?" + params.Encode(),
		})
	}
	return links
}
