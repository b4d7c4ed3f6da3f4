package domain

// Page is one slice of a paged listing
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// PageParams selects a page; zero values fall back to per-endpoint defaults
type PageParams struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

// WithDefaults fills unset fields
func (p PageParams) WithDefaults(size int, sortBy, sortDir string) PageParams {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = size
	}
	if p.SortBy == "" {
		p.SortBy = sortBy
	}
	if p.SortDir == "" {
		p.SortDir = sortDir
	}
	return p
}
