package history

// pageWindowRadius pages shown on each side of the current page.
const pageWindowRadius = 2

// Pagination derived paging controls for a fetched page.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	// Window page numbers to display, clamped to [1, TotalPages].
	Window  []int
	HasPrev bool
	HasNext bool
}

// Paginate computes the paging controls for a page described by total record
// count, offset and page size.
func Paginate(total, skip, limit int) Pagination {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if skip < 0 {
		skip = 0
	}

	currentPage := skip/limit + 1
	totalPages := (total + limit - 1) / limit

	p := Pagination{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
	}
	if totalPages < 1 {
		return p
	}

	start := currentPage - pageWindowRadius
	if start < 1 {
		start = 1
	}
	end := currentPage + pageWindowRadius
	if end > totalPages {
		end = totalPages
	}
	for i := start; i <= end; i++ {
		p.Window = append(p.Window, i)
	}

	p.HasPrev = currentPage > 1
	p.HasNext = currentPage < totalPages

	return p
}
