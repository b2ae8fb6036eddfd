package search

// PageSize is the number of dogs requested per page.
const PageSize = 24

const maxPagesToShow = 5

// Ellipsis marks a gap in the output of PageWindow.
const Ellipsis = 0

// TotalPages returns ceil(total/PageSize), never less than 1.
func TotalPages(total int) int {
	if total <= 0 {
		return 1
	}

	return (total + PageSize - 1) / PageSize
}

// From returns the search offset for a 1-based page.
func From(page int) int {
	if page <= 1 {
		return 0
	}

	return (page - 1) * PageSize
}

// PageWindow lists the page buttons a pagination control shows. Every page is
// listed when there are at most five; otherwise the first and last page frame
// a short run around current, with Ellipsis standing in for the gaps.
func PageWindow(current, total int) []int {
	if total <= maxPagesToShow {
		pages := make([]int, 0, total)
		for i := 1; i <= total; i++ {
			pages = append(pages, i)
		}
		return pages
	}

	switch {
	case current <= 3:
		return []int{1, 2, 3, 4, Ellipsis, total}
	case current >= total-2:
		return []int{1, Ellipsis, total - 3, total - 2, total - 1, total}
	default:
		return []int{1, Ellipsis, current - 1, current, current + 1, Ellipsis, total}
	}
}
