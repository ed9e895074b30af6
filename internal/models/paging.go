package models

// PagedResult is one bounded slice of a larger result set plus the metadata a
// list view needs to render paging controls. Loaders at the persistence
// boundary produce it uniformly for every record type; consumers never branch
// on result shape.
//
// A PagedResult is immutable once constructed and owned by the controller
// that requested it until rendered.
type PagedResult[R any] struct {
	Items      []R
	TotalCount int
	Page       int
	PageSize   int
}

// TotalPages returns the page count implied by TotalCount and PageSize,
// never less than 1 even for an empty result set.
func (p PagedResult[R]) TotalPages() int {
	if p.PageSize <= 0 {
		return 1
	}
	pages := (p.TotalCount + p.PageSize - 1) / p.PageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// HasNext reports whether a page exists after this one.
func (p PagedResult[R]) HasNext() bool {
	return p.Page < p.TotalPages()
}

// HasPrev reports whether a page exists before this one.
func (p PagedResult[R]) HasPrev() bool {
	return p.Page > 1
}

// FirstItem returns the 1-based ordinal of the first item on this page,
// or 0 when the result set is empty. Used for "Showing X-Y of Z" labels.
func (p PagedResult[R]) FirstItem() int {
	if p.TotalCount == 0 {
		return 0
	}
	return (p.Page-1)*p.PageSize + 1
}

// LastItem returns the 1-based ordinal of the last item on this page,
// or 0 when the result set is empty.
func (p PagedResult[R]) LastItem() int {
	if p.TotalCount == 0 {
		return 0
	}
	last := p.Page * p.PageSize
	if last > p.TotalCount {
		last = p.TotalCount
	}
	return last
}
