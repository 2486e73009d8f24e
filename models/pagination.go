package models

// PagedResult is one page of a larger result set. TotalPages mirrors what the
// upstream provider reports when the page came from a provider fetch, or is
// derived from TotalCount/PageSize for locally stored collections.
type PagedResult[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalCount int `json:"totalCount"`
}

// NewPagedResult derives page math for a locally stored collection.
func NewPagedResult[T any](data []T, totalCount, page, pageSize int) PagedResult[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return PagedResult[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: totalCount,
	}
}
